// Package testutil provides shared test helpers for setting up corpus
// vaults with documents.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paravault/paravault/internal/models"
	"github.com/paravault/paravault/internal/storage"
)

// TestVault creates a temporary vault directory with the four category
// roots and a storage.Provider over it.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	for _, cat := range models.Categories() {
		if err := os.MkdirAll(filepath.Join(vaultDir, string(cat)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteDoc writes a document at the given vault-relative path, creating
// intermediate directories as needed, and returns the slash-separated
// relative path.
func WriteDoc(t *testing.T, vaultDir, relPath, content string) string {
	t.Helper()
	full := filepath.Join(vaultDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return relPath
}

// RemoveDoc deletes a document from the vault.
func RemoveDoc(t *testing.T, vaultDir, relPath string) {
	t.Helper()
	if err := os.Remove(filepath.Join(vaultDir, filepath.FromSlash(relPath))); err != nil {
		t.Fatal(err)
	}
}

// Doc builds a minimal document body with YAML frontmatter from a
// title, tags and extra body text.
func Doc(title string, tags []string, body string) string {
	out := "---\ntitle: " + title + "\n"
	if len(tags) > 0 {
		out += "tags:\n"
		for _, tag := range tags {
			out += "  - " + tag + "\n"
		}
	}
	out += "---\n\n" + body + "\n"
	return out
}
