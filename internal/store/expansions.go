package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/blackwell-systems/readfromfile/internal/macro"
	"github.com/blackwell-systems/readfromfile/internal/normalize"
)

// InsertExpansion stores e and returns its ID.
func (db *DB) InsertExpansion(e *Expansion) (int64, error) {
	at := e.ExpandedAt
	if at.IsZero() {
		at = time.Now()
	}
	result, err := db.conn.Exec(
		`INSERT INTO expansions
		(expanded_at, input, base_dir, resolved_path, kind, text, lines, kept, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), e.Input, e.BaseDir, e.ResolvedPath,
		e.Kind, e.Text, e.Lines, e.Kept, e.Message,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListExpansions returns recorded expansions, newest first.
func (db *DB) ListExpansions(f Filter) ([]Expansion, error) {
	query := `SELECT id, expanded_at, input, base_dir, resolved_path, kind, text, lines, kept, message
		FROM expansions`
	var where []string
	var args []any
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Path != "" {
		where = append(where, "resolved_path = ?")
		args = append(args, f.Path)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expansion
	for rows.Next() {
		var e Expansion
		var at string
		var baseDir, resolved, text, message sql.NullString
		if err := rows.Scan(&e.ID, &at, &e.Input, &baseDir, &resolved, &e.Kind,
			&text, &e.Lines, &e.Kept, &message); err != nil {
			return nil, err
		}
		e.ExpandedAt, _ = time.Parse(time.RFC3339Nano, at)
		e.BaseDir = baseDir.String
		e.ResolvedPath = resolved.String
		e.Text = text.String
		e.Message = message.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneExpansions deletes all but the newest keep rows and returns how many
// were removed.
func (db *DB) PruneExpansions(keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.New("keep must not be negative")
	}
	result, err := db.conn.Exec(
		`DELETE FROM expansions WHERE id NOT IN
		(SELECT id FROM expansions ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Recorder adapts a DB to macro.Recorder.
type Recorder struct {
	db *DB
}

// NewRecorder returns a macro.Recorder backed by db.
func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

// Record implements macro.Recorder.
func (r *Recorder) Record(o macro.Outcome) error {
	_, err := r.db.InsertExpansion(FromOutcome(o))
	return err
}

// FromOutcome converts a macro outcome to a storable row.
func FromOutcome(o macro.Outcome) *Expansion {
	e := &Expansion{
		ExpandedAt:   o.At,
		Input:        o.Input,
		BaseDir:      o.BaseDir,
		ResolvedPath: o.Result.Path,
		Text:         o.Result.Text,
		Lines:        o.Result.Lines,
		Kept:         o.Result.Kept,
		Message:      o.Message,
	}

	var ne *normalize.Error
	switch {
	case errors.As(o.Err, &ne):
		e.Kind = ne.Kind.String()
		if ne.Kind == normalize.KindReadFailure {
			e.ResolvedPath = ne.Path
		}
	case o.Err != nil:
		e.Kind = normalize.KindReadFailure.String()
	case o.Result.Text == "":
		e.Kind = KindEmpty
	default:
		e.Kind = KindOK
	}
	return e
}
