package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radmind-go/transcriptd/config"
	"github.com/radmind-go/transcriptd/session"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcriptd.yaml")
	want := config.Default()
	want.ServerURL = "https://transcripts.example.com"
	want.ChecksumAlgorithm = "sha256"
	want.CaseSensitive = false

	require.NoError(t, config.Save(path, want))
	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestToSessionAppliesOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.ChecksumAlgorithm = "md5"
	cfg.ChecksumEnabled = false

	sess := config.ToSession(cfg, session.CompareAll&^session.CompareCksum)
	assert.Equal(t, "md5", sess.ChecksumAlgorithm)
	assert.False(t, sess.ChecksumEnabled)
	assert.Equal(t, session.CompareAll&^session.CompareCksum, sess.Compare)
}
