// Package storage defines the vault file-system boundary. Both indices
// read the corpus exclusively through Provider, always with paths
// relative to a single vault root.
package storage

import "time"

// Info is the file metadata the indices care about. BirthTime is
// best-effort: platforms without a creation timestamp report the
// modification time, and front-matter dates take precedence anyway.
type Info struct {
	ModTime   time.Time
	BirthTime time.Time
	Size      int64
}

// Entry is one markdown file found by List.
type Entry struct {
	Path     string // vault-relative, forward slashes
	Checksum string // hex SHA-256 of the content
	ModTime  time.Time
}

// Provider is the read-only interface over the vault.
type Provider interface {
	// Root returns the absolute vault root.
	Root() string
	// Exists reports whether path names an existing regular file.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat returns metadata for the file at path.
	Stat(path string) (Info, error)
	// List walks dir (vault-relative, "" for the whole vault) and
	// returns an entry for every markdown file beneath it.
	List(dir string) ([]Entry, error)
}
