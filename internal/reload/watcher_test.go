package reload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, dirs ...string) <-chan string {
	t.Helper()
	w, err := NewWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dirs, func(path string) {
		changed <- path
	}))
	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatcher_DetectsTemplateChange(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "tts.html")
	require.NoError(t, os.WriteFile(tmpl, []byte("<html>v1</html>"), 0644))

	changed := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(tmpl, []byte("<html>v2</html>"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for template change")
	assert.Equal(t, tmpl, path)
}

func TestWatcher_DetectsFileInNewSubdir(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, dir)

	sub := filepath.Join(dir, "js")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	newFile := filepath.Join(sub, "tts.js")
	require.NoError(t, os.WriteFile(newFile, []byte("// js"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file in new subdirectory")
	assert.Equal(t, newFile, path)
}

func TestWatcher_IgnoresSwapFiles(t *testing.T) {
	dir := t.TempDir()
	changed := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tts.html.swp"), []byte("x"), 0644))

	_, ok := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, ok, "swap files must not trigger a reload")
}

func TestWatcher_MultipleDirsAndMissingDir(t *testing.T) {
	templates := t.TempDir()
	static := t.TempDir()
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	changed := startWatcher(t, templates, missing, static)

	cssFile := filepath.Join(static, "app.css")
	require.NoError(t, os.WriteFile(cssFile, []byte("body{}"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback from second directory")
	assert.Equal(t, cssFile, path)
}

func TestWatcher_WriteAfterChmodStillReloads(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "tts.html")
	require.NoError(t, os.WriteFile(tmpl, []byte("<html>v1</html>"), 0644))

	changed := startWatcher(t, dir)
	require.NoError(t, os.Chmod(tmpl, 0600))
	require.NoError(t, os.WriteFile(tmpl, []byte("<html>v2</html>"), 0600))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "write right after chmod must trigger a reload")
	assert.Equal(t, tmpl, path)
}

func TestIsReloadOp(t *testing.T) {
	assert.True(t, isReloadOp(fsnotify.Write))
	assert.True(t, isReloadOp(fsnotify.Create))
	assert.True(t, isReloadOp(fsnotify.Remove))
	assert.True(t, isReloadOp(fsnotify.Rename))
	assert.True(t, isReloadOp(fsnotify.Write|fsnotify.Chmod))
	assert.False(t, isReloadOp(fsnotify.Chmod))
}

func TestDebouncer_WindowAndEviction(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	start := time.Now()

	assert.True(t, d.allow("/t/a.html", start))
	assert.False(t, d.allow("/t/a.html", start.Add(10*time.Millisecond)))
	assert.True(t, d.allow("/t/b.html", start.Add(20*time.Millisecond)))
	assert.Len(t, d.last, 2)

	// a.html expired, b.html still inside its window
	assert.True(t, d.allow("/t/a.html", start.Add(60*time.Millisecond)))
	assert.Len(t, d.last, 2)

	// everything old is evicted once a new path arrives
	assert.True(t, d.allow("/t/c.html", start.Add(500*time.Millisecond)))
	assert.Len(t, d.last, 1)
	assert.Contains(t, d.last, "/t/c.html")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	require.NoError(t, w.Watch([]string{t.TempDir()}, func(string) {}))
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestShouldIgnorePath(t *testing.T) {
	testCases := []struct {
		path   string
		ignore bool
	}{
		{"/srv/templates/tts.html", false},
		{"/srv/static/js/edit.js", false},
		{"/srv/templates/.tts.html.swp", true},
		{"/srv/templates/tts.html~", true},
		{"/srv/templates/4913", true},
		{"/srv/static/node_modules/x.js", true},
		{"/srv/static/.git/HEAD", true},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.ignore, shouldIgnorePath(tc.path), tc.path)
	}
}
