package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, 6, c.Threads)
	assert.Equal(t, time.Second, c.DelayDuration())
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 3*time.Second, c.RetryDelay)
	assert.Equal(t, -1, c.MaxRetries)
	assert.True(t, c.IncludeMetadata)
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	delay := 0.0
	retries := 2

	cfg, used, err := NewStore(t.TempDir()).LoadMerged(Options{
		IgnoreConfig: true,
		Scraper:      "syosetu",
		Threads:      3,
		Delay:        &delay,
		MaxRetries:   &retries,
		NoMetadata:   true,
		Range:        "2-4",
		Timeout:      time.Minute,
	})

	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", used)
	assert.Equal(t, "syosetu", cfg.Scraper)
	assert.Equal(t, 3, cfg.Threads)
	assert.Zero(t, cfg.DelayDuration())
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.False(t, cfg.IncludeMetadata)
	assert.Equal(t, "2-4", cfg.Range)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 3*time.Second, cfg.RetryDelay)
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	cfg, used, err := NewStore(t.TempDir()).LoadMerged(Options{Output: "out"})

	require.NoError(t, err)
	assert.Contains(t, used, "noveld config init")
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, DefaultThreads, cfg.Threads)
}

func TestLoadMergedPartialProfile(t *testing.T) {
	s := NewStore(t.TempDir())
	path, err := s.Init()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("threads: 2\ntimeout: 30s\ncloudflare: true\n"), 0o644))

	cfg, used, err := s.LoadMerged(Options{Threads: 4})

	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.Cloudflare)
	assert.True(t, cfg.IncludeMetadata)
	assert.Equal(t, -1, cfg.MaxRetries)
}

func TestLoadMergedBrokenProfile(t *testing.T) {
	s := NewStore(t.TempDir())
	path, err := s.Init()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("threads: [nope"), 0o644))

	_, _, err = s.LoadMerged(Options{})
	assert.ErrorContains(t, err, "failed to load config")
}

func TestSaveAndLoadYAMLKeepsDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	c := DefaultConfig()
	c.RetryDelay = 1500 * time.Millisecond
	c.AudioExtension = "m4a"

	require.NoError(t, SaveYAML(c, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "retry_delay: 1.5s")

	back, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.ActivePath()
	assert.ErrorIs(t, err, ErrNoConfig)

	def, err := s.Init()
	require.NoError(t, err)
	assert.FileExists(t, def)

	_, err = s.Init()
	assert.True(t, errors.Is(err, os.ErrExist))

	fast, err := s.Create("fast")
	require.NoError(t, err)
	assert.FileExists(t, fast)

	_, err = s.Create("fast")
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, s.Switch("fast"))
	label, err := s.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "fast", label)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Default", list[0].Label)
	assert.False(t, list[0].Active)
	assert.Equal(t, "fast", list[1].Label)
	assert.True(t, list[1].Active)

	require.NoError(t, s.Rename("fast", "quick"))
	label, _ = s.CurrentLabel()
	assert.Equal(t, "quick", label)

	switched, err := s.Remove("quick")
	require.NoError(t, err)
	assert.True(t, switched)
	label, _ = s.CurrentLabel()
	assert.Equal(t, DefaultLabel, label)

	_, err = s.Remove(DefaultLabel)
	assert.Error(t, err)

	assert.Error(t, s.Switch("missing"))
	assert.Error(t, s.Switch("../escape"))
}

func TestStoreAddValidatesYAML(t *testing.T) {
	s := NewStore(t.TempDir())
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("threads: 1\n"), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":\n- ["), 0o644))

	require.NoError(t, s.Add("good", good))
	assert.ErrorContains(t, s.Add("bad", bad), "invalid config")
	assert.ErrorContains(t, s.Add("good", good), "already exists")
}

func TestStoreReset(t *testing.T) {
	s := NewStore(t.TempDir())
	path, err := s.Init()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("threads: 1\n"), 0o644))

	got, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestRoot(t *testing.T) {
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "noveld"), Root())

	t.Setenv("APPDATA", "/appdata")
	assert.Equal(t, filepath.Join("/appdata", "noveld"), Root())
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	DefaultConfig().Print(&buf)

	out := buf.String()
	assert.Contains(t, out, " -threads: 6\n")
	assert.Contains(t, out, " -delay: 1s\n")
	assert.Contains(t, out, " -max_retries: unlimited\n")
	assert.NotContains(t, out, "-scraper")
}
