package cli

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "filing.json", canonicalFiling)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, os.WriteFile(path, []byte(agentOutput), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchFileMissing(t *testing.T) {
	err := watchFile(context.Background(), "/does/not/exist.json", func() {})
	assert.Error(t, err)
}
