// ABOUTME: Note CRUD and substring search
// ABOUTME: All statements use placeholders; updates go through a fixed column whitelist
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Note is a persisted markdown note.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoteInput holds the fields for a new note. Title defaults to "".
type CreateNoteInput struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// NotePatch is a partial update. Nil fields are left unchanged.
type NotePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// patchColumns maps each patchable field to its column. Column names in the
// UPDATE statement come only from this table.
var patchColumns = []struct {
	column string
	value  func(NotePatch) *string
}{
	{column: "title", value: func(p NotePatch) *string { return p.Title }},
	{column: "content", value: func(p NotePatch) *string { return p.Content }},
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

const noteColumns = "id, title, content, created_at, updated_at"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (Note, error) {
	var n Note
	var createdAt, updatedAt string
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &createdAt, &updatedAt); err != nil {
		return Note{}, err
	}

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return Note{}, fmt.Errorf("parse created_at: %w", err)
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Note{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return n, nil
}

func getNote(ctx context.Context, q querier, id int64) (*Note, error) {
	row := q.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func queryNotes(ctx context.Context, q querier, query string, args ...any) ([]Note, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateNote inserts a note and returns the stored record.
func (s *Store) CreateNote(ctx context.Context, in CreateNoteInput) (*Note, error) {
	database, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	now := formatTime(time.Now())
	result, err := database.ExecContext(ctx,
		"INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)",
		in.Title, in.Content, now, now,
	)
	if err != nil {
		return nil, opError("create note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, opError("create note", err)
	}

	n, err := getNote(ctx, database, id)
	if err != nil {
		return nil, opError("create note", err)
	}
	if n == nil {
		return nil, opError("create note", fmt.Errorf("note %d missing after insert", id))
	}
	return n, nil
}

// GetNoteByID returns the note, or nil if it does not exist.
func (s *Store) GetNoteByID(ctx context.Context, id int64) (*Note, error) {
	database, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	n, err := getNote(ctx, database, id)
	return n, opError("get note", err)
}

// GetAllNotes returns every note, most recently updated first.
func (s *Store) GetAllNotes(ctx context.Context) ([]Note, error) {
	database, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	notes, err := queryNotes(ctx, database,
		"SELECT "+noteColumns+" FROM notes ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, opError("list notes", err)
	}
	return notes, nil
}

// UpdateNote applies patch to the note and refreshes updated_at. A patch with
// no fields set returns the current row unchanged. Returns nil if the note
// does not exist.
func (s *Store) UpdateNote(ctx context.Context, id int64, patch NotePatch) (*Note, error) {
	database, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, opError("update note", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getNote(ctx, tx, id)
	if err != nil {
		return nil, opError("update note", err)
	}
	if current == nil {
		return nil, nil
	}

	var sets []string
	var args []any
	for _, f := range patchColumns {
		if v := f.value(patch); v != nil {
			sets = append(sets, f.column+" = ?")
			args = append(args, *v)
		}
	}
	if len(sets) == 0 {
		return current, nil
	}

	// updated_at must move forward even if the clock has not.
	ts := time.Now().UTC()
	if !ts.After(current.UpdatedAt) {
		ts = current.UpdatedAt.Add(time.Nanosecond)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(ts), id)

	query := "UPDATE notes SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, opError("update note", err)
	}

	updated, err := getNote(ctx, tx, id)
	if err != nil {
		return nil, opError("update note", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, opError("update note", err)
	}
	return updated, nil
}

// DeleteNote removes the note and reports whether a row was deleted.
func (s *Store) DeleteNote(ctx context.Context, id int64) (bool, error) {
	database, release, err := s.conn()
	if err != nil {
		return false, err
	}
	defer release()

	result, err := database.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return false, opError("delete note", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, opError("delete note", err)
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchNotes returns notes whose title or content contains query, most
// recently updated first. An empty query matches every note.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]Note, error) {
	database, release, err := s.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	pattern := "%" + likeEscaper.Replace(query) + "%"
	notes, err := queryNotes(ctx, database,
		"SELECT "+noteColumns+` FROM notes
		WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, id DESC`,
		pattern, pattern,
	)
	if err != nil {
		return nil, opError("search notes", err)
	}
	return notes, nil
}
