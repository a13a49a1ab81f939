package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBurstsIntoOneReload(t *testing.T) {
	dir := t.TempDir()
	var reloads int32
	w := NewWatcher(dir, func() { atomic.AddInt32(&reloads, 1) })
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "0-0.json"), []byte("{}"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reloads) >= 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(dir, func() {})
	require.NoError(t, w.Start())
	w.Stop()
	require.NotPanics(t, w.Stop)
}
