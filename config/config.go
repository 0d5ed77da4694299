// Package config loads and persists the on-disk client configuration
// for the transcript engine: the upstream server URL, the checksum
// algorithm to use, buffering thresholds, and the comparison defaults
// that seed a session.Context for a run. Grounded on rclone's
// fs/config (a user-editable file merged with command-line overrides)
// but persisted as YAML via gopkg.in/yaml.v2 rather than rclone's INI
// dialect, and bound to CLI flags with github.com/spf13/pflag instead
// of the stdlib flag package, matching the pack's preferred flag
// library.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/radmind-go/transcriptd/checksum"
	"github.com/radmind-go/transcriptd/session"
)

// Config is the persisted shape of a client configuration file.
type Config struct {
	ServerURL         string `yaml:"server_url"`
	ChecksumAlgorithm string `yaml:"checksum_algorithm"`
	ChecksumEnabled   bool   `yaml:"checksum_enabled"`
	CaseSensitive     bool   `yaml:"case_sensitive"`
	WarnOnExclude     bool   `yaml:"warn_on_exclude"`
	Force             bool   `yaml:"force"`
	BufferThreshold   int64  `yaml:"buffer_threshold"`
	ReadBufferSize    int    `yaml:"read_buffer_size"`
}

// Default returns the configuration a fresh install ships with. Its
// comparison and buffering fields match session.New's defaults; the
// checksum algorithm (xxh3) is set here, as session.New leaves it empty.
func Default() *Config {
	return &Config{
		ChecksumAlgorithm: string(checksum.XXH3),
		ChecksumEnabled:   true,
		CaseSensitive:     true,
		BufferThreshold:   session.DefaultBufferThreshold,
		ReadBufferSize:    session.DefaultReadBufferSize,
	}
}

// Load reads a YAML configuration file at path, starting from
// Default() so a partial file only overrides the fields it mentions.
// A missing file is not an error: Load returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating or truncating the file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// RegisterFlags binds cfg's fields to flags on fs, so command-line
// arguments can override whatever was loaded from the config file.
// Flags are bound by reference: call this after Load and parse fs
// before reading cfg again.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "transcript server base URL")
	fs.StringVar(&cfg.ChecksumAlgorithm, "checksum", cfg.ChecksumAlgorithm, "checksum algorithm (md5, sha1, sha256, crc32, xxh3)")
	fs.BoolVar(&cfg.ChecksumEnabled, "checksums", cfg.ChecksumEnabled, "compare content checksums, not just size and metadata")
	fs.BoolVar(&cfg.CaseSensitive, "case-sensitive", cfg.CaseSensitive, "treat paths as case-sensitive")
	fs.BoolVar(&cfg.WarnOnExclude, "warn-on-exclude", cfg.WarnOnExclude, "log a diagnostic when an exclude pattern hides a selected entry")
	fs.BoolVar(&cfg.Force, "force", cfg.Force, "clear immutable/append attributes before mutating a file")
	fs.Int64Var(&cfg.BufferThreshold, "buffer-threshold", cfg.BufferThreshold, "max transcript size, in bytes, kept fully in memory")
	fs.IntVar(&cfg.ReadBufferSize, "read-buffer-size", cfg.ReadBufferSize, "streaming read buffer size for checksum computation")
}

// ToSession builds a session.Context seeded from cfg. compare lets the
// caller apply any field-comparison overrides (e.g. from a -t style
// flag); pass session.CompareAll to use every field.
func ToSession(cfg *Config, compare session.CompareFields) *session.Context {
	sess := session.New()
	sess.ChecksumAlgorithm = cfg.ChecksumAlgorithm
	sess.ChecksumEnabled = cfg.ChecksumEnabled
	sess.CaseSensitive = cfg.CaseSensitive
	sess.WarnOnExclude = cfg.WarnOnExclude
	sess.Force = cfg.Force
	sess.BufferThreshold = cfg.BufferThreshold
	sess.ReadBufferSize = cfg.ReadBufferSize
	sess.Compare = compare
	return sess
}
