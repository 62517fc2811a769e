package types

// SourceUnit is one discovered source file. It is immutable once discovered.
type SourceUnit struct {
	// Position in discovery order; also the unit's slot in the outcome arena.
	Index int `json:"index"`

	// Absolute filesystem path.
	AbsPath string `json:"abs_path"`

	// Path relative to the input root using forward slashes (e.g., "x/y.ula").
	// For single-file runs this is the file's base name.
	RelPath string `json:"rel_path"`
}

// Artifact is the persisted form of a successful outcome.
type Artifact struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
