// ABOUTME: Unit tests for the root command and CLI helpers
// ABOUTME: Runs commands through cobra against an in-process host
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/zenoter/internal/app"
	"github.com/harper/zenoter/internal/config"
	"github.com/harper/zenoter/internal/db"
)

// resetFlags puts every flag back to its default so commands can run more
// than once in a test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes args and returns what the command wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := configPath
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config="+path))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return stdout.String(), err
}

// startHost runs a host on temp paths and points the CLI at it through the
// environment overrides.
func startHost(t *testing.T) *app.Host {
	t.Helper()
	dir, err := os.MkdirTemp("", "zc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	socket := filepath.Join(dir, "c.sock")
	dbPath := filepath.Join(dir, "data", "zenoter.db")
	t.Setenv(config.EnvSocket, socket)
	t.Setenv(config.EnvDBPath, dbPath)

	oldPath := configPath
	configPath = filepath.Join(dir, "config.toml")
	t.Cleanup(func() { configPath = oldPath })

	h := app.NewHost(&config.Config{DBPath: dbPath, SocketPath: socket, LogLevel: "info"}, nil)
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { _ = h.Shutdown() })
	return h
}

func TestRootCommand(t *testing.T) {
	t.Run("has correct metadata", func(t *testing.T) {
		assert.Equal(t, "zenoter", rootCmd.Use)
		assert.Contains(t, rootCmd.Long, "zenoter serve")
	})

	t.Run("registers every command", func(t *testing.T) {
		names := map[string]bool{}
		for _, cmd := range rootCmd.Commands() {
			names[cmd.Name()] = true
		}
		for _, want := range []string{"serve", "new", "show", "list", "edit", "rm", "search", "mcp", "config", "version"} {
			assert.True(t, names[want], "missing command %q", want)
		}
	})

	t.Run("help runs without error", func(t *testing.T) {
		_, err := runCLI(t, "--help")
		assert.NoError(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "zenoter "+Version+"\n", out)
}

func TestConfigInit(t *testing.T) {
	oldPath := configPath
	configPath = filepath.Join(t.TempDir(), "zenoter", "config.toml")
	t.Cleanup(func() { configPath = oldPath })

	out, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default().DBPath, cfg.DBPath)

	_, err = runCLI(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestCommandsWithoutHost(t *testing.T) {
	dir, err := os.MkdirTemp("", "zc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv(config.EnvSocket, filepath.Join(dir, "missing.sock"))

	_, err = runCLI(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zenoter serve")
}

func TestNoteCommands(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	out, err := runCLI(t, "new", "# Shopping\n- eggs", "--title", "Groceries")
	require.NoError(t, err)
	assert.Equal(t, "Note created (ID: 1)\n", out)

	n, err := h.Store().GetNoteByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "# Shopping\n- eggs", n.Content)

	out, err = runCLI(t, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 Groceries")
	assert.Contains(t, out, "- eggs")

	out, err = runCLI(t, "show", "1", "--json")
	require.NoError(t, err)
	var shown db.Note
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, n.ID, shown.ID)

	_, err = runCLI(t, "show", "99")
	assert.ErrorContains(t, err, "not found")

	_, err = runCLI(t, "show", "abc")
	assert.ErrorContains(t, err, "invalid note ID")

	out, err = runCLI(t, "edit", "1", "--content", "- bread")
	require.NoError(t, err)
	assert.Equal(t, "Note 1 updated\n", out)

	n, err = h.Store().GetNoteByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "- bread", n.Content)

	_, err = runCLI(t, "edit", "1")
	assert.ErrorContains(t, err, "nothing to change")

	out, err = runCLI(t, "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "Note 1 deleted\n", out)

	out, err = runCLI(t, "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "Note 1 not found\n", out)
}

func TestListAndSearchCommands(t *testing.T) {
	h := startHost(t)
	ctx := context.Background()

	_, err := h.Store().CreateNote(ctx, db.CreateNoteInput{Title: "Recipes", Content: "pasta al limone"})
	require.NoError(t, err)
	_, err = h.Store().CreateNote(ctx, db.CreateNoteInput{Title: "Work", Content: "standup notes"})
	require.NoError(t, err)

	out, err := runCLI(t, "list", "--json")
	require.NoError(t, err)
	var listed []db.Note
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Work", listed[0].Title)

	out, err = runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Recipes")
	assert.Contains(t, out, "standup notes")

	out, err = runCLI(t, "list", "--since", "2999-01-01", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))

	_, err = runCLI(t, "list", "--since", "not a date")
	assert.ErrorContains(t, err, "invalid --since")

	out, err = runCLI(t, "search", "PASTA", "--json")
	require.NoError(t, err)
	var found []db.Note
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Recipes", found[0].Title)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "# Title", firstLine("\n# Title\nbody"))
	assert.Equal(t, "", firstLine(""))
	long := strings.Repeat("x", 80)
	assert.Len(t, firstLine(long), 60)

	accented := firstLine(strings.Repeat("é", 80))
	assert.True(t, utf8.ValidString(accented))
	assert.Equal(t, 60, utf8.RuneCountInString(accented))
	assert.Equal(t, strings.Repeat("é", 40), firstLine(strings.Repeat("é", 40)))
}
