// ABOUTME: Note commands that call the host through the bridge client
// ABOUTME: new, show, list, edit, rm, and search with table or JSON output
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/zenoter/internal/bridge"
	"github.com/harper/zenoter/internal/db"
)

var (
	newTitle       string
	showJSONOutput bool

	listSince      string
	listJSONOutput bool

	editTitle   string
	editContent string

	searchJSONOutput bool
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note ID %q", arg)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// firstLine is a one-line preview of markdown content.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if runes := []rune(line); len(runes) > 60 {
		line = string(runes[:57]) + "..."
	}
	return line
}

func printNoteTable(w io.Writer, notes []db.Note) {
	idColor := color.New(color.FgCyan)
	titleColor := color.New(color.Bold)

	fmt.Fprintln(w, "ID\tUpdated\t\t\tTitle\t\tPreview")
	fmt.Fprintln(w, "--\t-------\t\t\t-----\t\t-------")
	for _, n := range notes {
		idColor.Fprintf(w, "%d", n.ID)
		fmt.Fprintf(w, "\t%s\t", n.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		titleColor.Fprint(w, n.Title)
		fmt.Fprintf(w, "\t\t%s\n", firstLine(n.Content))
	}
}

func printNote(w io.Writer, n *db.Note) {
	color.New(color.FgCyan).Fprintf(w, "#%d ", n.ID)
	color.New(color.Bold).Fprintln(w, n.Title)
	fmt.Fprintf(w, "created %s, updated %s\n\n",
		n.CreatedAt.Local().Format(time.DateTime),
		n.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintln(w, n.Content)
}

var newCmd = &cobra.Command{
	Use:     "new [content]",
	Aliases: []string{"add"},
	Short:   "Create a note",
	Long:    `Create a note. Pass "-" as content to read it from stdin.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := args[0]
		if content == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = string(data)
		}

		return withClient(cmd, func(c *bridge.Client) error {
			n, err := c.CreateNote(cmd.Context(), db.CreateNoteInput{Title: newTitle, Content: content})
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Note created (ID: %d)\n", n.ID)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return withClient(cmd, func(c *bridge.Client) error {
			n, err := c.GetNoteByID(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}
			if n == nil {
				return fmt.Errorf("note %d not found", id)
			}
			if showJSONOutput {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			printNote(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var since time.Time
		if listSince != "" {
			var err error
			if since, err = dateparse.ParseAny(listSince); err != nil {
				return fmt.Errorf("invalid --since date: %w", err)
			}
		}

		return withClient(cmd, func(c *bridge.Client) error {
			notes, err := c.GetAllNotes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}

			if !since.IsZero() {
				filtered := make([]db.Note, 0, len(notes))
				for _, n := range notes {
					if !n.UpdatedAt.Before(since) {
						filtered = append(filtered, n)
					}
				}
				notes = filtered
			}

			if listJSONOutput {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			printNoteTable(cmd.OutOrStdout(), notes)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a note's title or content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var patch db.NotePatch
		if cmd.Flags().Changed("title") {
			patch.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &editContent
		}
		if patch.Title == nil && patch.Content == nil {
			return errors.New("nothing to change: pass --title and/or --content")
		}

		return withClient(cmd, func(c *bridge.Client) error {
			n, err := c.UpdateNote(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}
			if n == nil {
				return fmt.Errorf("note %d not found", id)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Note %d updated\n", n.ID)
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		return withClient(cmd, func(c *bridge.Client) error {
			deleted, err := c.DeleteNote(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}
			if !deleted {
				color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Note %d not found\n", id)
				return nil
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Note %d deleted\n", id)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search note titles and content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		return withClient(cmd, func(c *bridge.Client) error {
			notes, err := c.SearchNotes(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to search notes: %w", err)
			}
			if searchJSONOutput {
				return writeJSON(cmd.OutOrStdout(), notes)
			}
			printNoteTable(cmd.OutOrStdout(), notes)
			return nil
		})
	},
}

func init() {
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Note title")
	showCmd.Flags().BoolVar(&showJSONOutput, "json", false, "Output as JSON")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only notes updated since this date (natural language or ISO)")
	listCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output as JSON")
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "Output as JSON")

	rootCmd.AddCommand(newCmd, showCmd, listCmd, editCmd, rmCmd, searchCmd)
}
