package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paravault/paravault/internal/links"
	"github.com/paravault/paravault/internal/search"
	"github.com/paravault/paravault/internal/testutil"
)

func watchEnv(t *testing.T) (string, *search.Engine, *links.Indexer, context.CancelFunc) {
	t.Helper()
	vaultDir, store := testutil.TestVault(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	fuzzy := search.NewMatcher()
	engine := search.NewEngine(store, search.NewScorer(search.DefaultWeights()), fuzzy, logger)
	linkIndex := links.NewIndexer(store, logger)
	if err := engine.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := linkIndex.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, store, logger, engine, linkIndex)
	time.Sleep(100 * time.Millisecond)
	return vaultDir, engine, linkIndex, cancel
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_NewFileIndexed(t *testing.T) {
	vaultDir, engine, linkIndex, _ := watchEnv(t)

	testutil.WriteDoc(t, vaultDir, "projects/new.md", testutil.Doc("New", nil, "links [[other]]"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/new.md")
		return ok
	}, "new file not indexed by watcher")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		res, err := linkIndex.Query(links.QueryOptions{Type: links.QueryBroken})
		return err == nil && len(res) == 1 && res[0].Path == "projects/new.md"
	}, "new file's links not indexed by watcher")
}

func TestWatch_DeleteRemovesFromIndices(t *testing.T) {
	vaultDir, engine, linkIndex, _ := watchEnv(t)

	testutil.WriteDoc(t, vaultDir, "projects/del.md", testutil.Doc("Delete Me", nil, ""))
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/del.md")
		return ok
	}, "precondition: file should be indexed")

	testutil.RemoveDoc(t, vaultDir, "projects/del.md")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/del.md")
		return !ok
	}, "deleted file still in the document index")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(linkIndex.Paths()) == 0
	}, "deleted file still in the link graph")
}

func TestWatch_NewDirWatched(t *testing.T) {
	vaultDir, engine, _, _ := watchEnv(t)

	subDir := filepath.Join(vaultDir, "projects", "subdir")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	testutil.WriteDoc(t, vaultDir, "projects/subdir/deep.md", testutil.Doc("Deep", nil, ""))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/subdir/deep.md")
		return ok
	}, "file in new subdir not indexed by watcher")
}

func TestWatch_RenameReconciles(t *testing.T) {
	vaultDir, engine, _, _ := watchEnv(t)

	testutil.WriteDoc(t, vaultDir, "projects/old.md", testutil.Doc("Rename", nil, ""))
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/old.md")
		return ok
	}, "precondition: file should be indexed")

	oldPath := filepath.Join(vaultDir, "projects", "old.md")
	newPath := filepath.Join(vaultDir, "projects", "renamed.md")
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, oldOK := engine.Lookup("projects/old.md")
		_, newOK := engine.Lookup("projects/renamed.md")
		return !oldOK && newOK
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestWatch_DirRenameReconciles(t *testing.T) {
	vaultDir, engine, _, _ := watchEnv(t)

	subDir := filepath.Join(vaultDir, "projects", "sub")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	testutil.WriteDoc(t, vaultDir, "projects/sub/a.md", testutil.Doc("Sub A", nil, ""))
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := engine.Lookup("projects/sub/a.md")
		return ok
	}, "precondition: file should be indexed")

	if err := os.Rename(subDir, filepath.Join(vaultDir, "projects", "sub2")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, oldOK := engine.Lookup("projects/sub/a.md")
		_, newOK := engine.Lookup("projects/sub2/a.md")
		return !oldOK && newOK
	}, "directory rename not reconciled: old paths should drop and new paths index")
}
