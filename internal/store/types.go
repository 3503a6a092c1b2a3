// Package store provides SQLite access for the readfromfile expansion history.
package store

import "time"

// Expansion is one recorded macro invocation.
type Expansion struct {
	ID           int64     `json:"id"`
	ExpandedAt   time.Time `json:"expanded_at"`
	Input        string    `json:"input"`
	BaseDir      string    `json:"base_dir,omitempty"`
	ResolvedPath string    `json:"resolved_path,omitempty"`
	// Kind is "ok", "empty", or a normalize.Kind name.
	Kind    string `json:"kind"`
	Text    string `json:"text,omitempty"`
	Lines   int    `json:"lines"`
	Kept    int    `json:"kept"`
	Message string `json:"message,omitempty"`
}

// Outcome kinds stored for successful expansions.
const (
	KindOK    = "ok"
	KindEmpty = "empty"
)

// Filter narrows ListExpansions.
type Filter struct {
	// Limit caps the number of rows; 0 means no cap.
	Limit int
	// Kind restricts results to one outcome kind.
	Kind string
	// Path restricts results to one resolved path.
	Path string
}
