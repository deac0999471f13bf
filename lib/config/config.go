// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bridgecheck/bridgecheck/lib/binhash"
	"github.com/bridgecheck/bridgecheck/lib/payload"
)

// EnvVar names the environment variable read by [Load].
const EnvVar = "BRIDGECHECK_CONFIG"

// Config is the master configuration for a conformance run.
type Config struct {
	// Bridge configures how the tool under test is invoked.
	Bridge BridgeConfig `yaml:"bridge" json:"bridge"`

	// Run selects what to run and how.
	Run RunConfig `yaml:"run" json:"run"`

	// Scratch names the device paths scenarios create and remove.
	Scratch ScratchConfig `yaml:"scratch" json:"scratch"`

	// Payload sizes the random data moved across the bridge.
	Payload PayloadConfig `yaml:"payload" json:"payload"`

	// Report configures the machine-readable run report.
	Report ReportConfig `yaml:"report" json:"report"`
}

// BridgeConfig configures the tool under test.
type BridgeConfig struct {
	// Binary is the bridge executable, a path or a name on PATH.
	// Default: adb
	Binary string `yaml:"binary" json:"binary"`

	// CommandTimeout bounds every invocation of the tool, as a Go
	// duration string. Empty or "0" waits forever.
	// Default: "" (no timeout)
	CommandTimeout string `yaml:"command_timeout" json:"command_timeout"`
}

// Timeout parses CommandTimeout. Call after [Config.Validate].
func (b BridgeConfig) Timeout() time.Duration {
	timeout, _ := parseTimeout(b.CommandTimeout)
	return timeout
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if timeout < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	return timeout, nil
}

// RunConfig selects devices and scenarios.
type RunConfig struct {
	// Serials restricts the run to these devices. Empty means every
	// attached device.
	Serials []string `yaml:"serials" json:"serials"`

	// Scenarios restricts the run to these scenario names. Empty means
	// all scenarios.
	Scenarios []string `yaml:"scenarios" json:"scenarios"`

	// Seed drives payload sizes (and content when
	// Payload.DeterministicContent is set).
	// Default: 0
	Seed uint64 `yaml:"seed" json:"seed"`

	// Algorithm is the digest used for integrity checks.
	// Default: md5
	Algorithm string `yaml:"algorithm" json:"algorithm"`

	// LockDir holds the per-device lock files.
	// Default: the system temp directory
	LockDir string `yaml:"lock_dir" json:"lock_dir"`

	// HostTempDir is where host-side payloads are created.
	// Default: "" (the system temp directory)
	HostTempDir string `yaml:"host_temp_dir" json:"host_temp_dir"`
}

// ScratchConfig names device-side scratch locations. Whatever exists
// at these paths is deleted before and after each scenario.
type ScratchConfig struct {
	// Dir is the writable device directory.
	// Default: /data/local/tmp
	Dir string `yaml:"dir" json:"dir"`

	// File is the scratch file name for push and pull, inside Dir.
	// Default: adb_test_file
	File string `yaml:"file" json:"file"`

	// SyncDir is the scratch directory name for sync, inside Dir.
	// Default: adb_test_dir
	SyncDir string `yaml:"sync_dir" json:"sync_dir"`

	// SyncPartition is the partition argument passed to sync. Dir must
	// live under it.
	// Default: data
	SyncPartition string `yaml:"sync_partition" json:"sync_partition"`
}

// FilePath is the device path of the push/pull scratch file.
func (s ScratchConfig) FilePath() string {
	return path.Join(s.Dir, s.File)
}

// SyncPath is the device path of the sync scratch directory.
func (s ScratchConfig) SyncPath() string {
	return path.Join(s.Dir, s.SyncDir)
}

// PayloadConfig sizes scenario data.
type PayloadConfig struct {
	// PushSize is the byte size of the pushed buffer.
	// Default: 524288 (512 KiB)
	PushSize int `yaml:"push_size" json:"push_size"`

	// PullKiB is the dd block count (of 1024 bytes) created on the
	// device for pull.
	// Default: 512
	PullKiB int `yaml:"pull_kib" json:"pull_kib"`

	// SyncFiles is the number of files staged for sync.
	// Default: 32
	SyncFiles int `yaml:"sync_files" json:"sync_files"`

	// SyncSizes is the range sync file sizes are drawn from.
	// Default: [4 KiB, 128 KiB) in 1 KiB steps
	SyncSizes payload.SizeRange `yaml:"sync_sizes" json:"sync_sizes"`

	// DeterministicContent derives file content from Run.Seed instead
	// of crypto/rand.
	// Default: false
	DeterministicContent bool `yaml:"deterministic_content" json:"deterministic_content"`
}

// ReportConfig configures the run report.
type ReportConfig struct {
	// Path is where the report is written. The extension selects the
	// encoding (.json, .yaml, .cbor) and an optional compression
	// suffix (.zst, .lz4). Empty writes no report.
	// Default: ""
	Path string `yaml:"path" json:"path"`
}

// Default returns the default configuration. Every field has the
// value the harness uses when no file is given.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Binary: "adb",
		},
		Run: RunConfig{
			Seed:      0,
			Algorithm: string(binhash.MD5),
			LockDir:   os.TempDir(),
		},
		Scratch: ScratchConfig{
			Dir:           "/data/local/tmp",
			File:          "adb_test_file",
			SyncDir:       "adb_test_dir",
			SyncPartition: "data",
		},
		Payload: PayloadConfig{
			PushSize:  512 << 10,
			PullKiB:   512,
			SyncFiles: 32,
			SyncSizes: payload.SizeRange{
				Min:  4 << 10,
				Max:  128 << 10,
				Step: 1 << 10,
			},
		},
	}
}

// Load loads configuration from the BRIDGECHECK_CONFIG environment
// variable. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your bridgecheck.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, on top of
// [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// Resolve loads from explicitPath when set, otherwise from
// BRIDGECHECK_CONFIG when set, otherwise returns [Default].
func Resolve(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return LoadFile(explicitPath)
	}
	if os.Getenv(EnvVar) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

// loadFile merges a single configuration file into c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Bridge.Binary = expandVars(c.Bridge.Binary, vars)
	c.Run.LockDir = expandVars(c.Run.LockDir, vars)
	c.Run.HostTempDir = expandVars(c.Run.HostTempDir, vars)
	c.Report.Path = expandVars(c.Report.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Bridge.Binary == "" {
		errs = append(errs, errors.New("bridge.binary is required"))
	}
	if _, err := parseTimeout(c.Bridge.CommandTimeout); err != nil {
		errs = append(errs, fmt.Errorf("bridge.command_timeout: %w", err))
	}

	if _, err := binhash.ParseAlgorithm(c.Run.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("run.algorithm: %w", err))
	}
	for _, serial := range c.Run.Serials {
		if strings.TrimSpace(serial) == "" {
			errs = append(errs, errors.New("run.serials must not contain empty entries"))
			break
		}
	}

	if !isDevicePath(c.Scratch.Dir) {
		errs = append(errs, fmt.Errorf("scratch.dir must be a clean absolute device path of [A-Za-z0-9._+-] segments, got %q", c.Scratch.Dir))
	}
	if !isPlainName(c.Scratch.File) {
		errs = append(errs, fmt.Errorf("scratch.file must be a plain file name, got %q", c.Scratch.File))
	}
	if !isPlainName(c.Scratch.SyncDir) {
		errs = append(errs, fmt.Errorf("scratch.sync_dir must be a plain directory name, got %q", c.Scratch.SyncDir))
	}
	if !isPlainName(c.Scratch.SyncPartition) {
		errs = append(errs, fmt.Errorf("scratch.sync_partition must be a partition name, got %q", c.Scratch.SyncPartition))
	} else if isDevicePath(c.Scratch.Dir) && !strings.HasPrefix(c.Scratch.Dir+"/", "/"+c.Scratch.SyncPartition+"/") {
		errs = append(errs, fmt.Errorf("scratch.dir %s is not under partition /%s", c.Scratch.Dir, c.Scratch.SyncPartition))
	}

	if c.Payload.PushSize <= 0 {
		errs = append(errs, fmt.Errorf("payload.push_size must be positive, got %d", c.Payload.PushSize))
	}
	if c.Payload.PullKiB <= 0 {
		errs = append(errs, fmt.Errorf("payload.pull_kib must be positive, got %d", c.Payload.PullKiB))
	}
	if c.Payload.SyncFiles <= 0 {
		errs = append(errs, fmt.Errorf("payload.sync_files must be positive, got %d", c.Payload.SyncFiles))
	}
	if err := c.Payload.SyncSizes.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("payload.sync_sizes: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Scratch names are pasted into device shell command lines, so they are
// limited to characters the device shell never splits or expands.
var plainName = regexp.MustCompile(`^[A-Za-z0-9._+-]+$`)

func isPlainName(name string) bool {
	return name != "." && name != ".." && plainName.MatchString(name)
}

// isDevicePath accepts a clean absolute path below the root whose
// segments are all plain names.
func isDevicePath(dir string) bool {
	if !path.IsAbs(dir) || dir == "/" || path.Clean(dir) != dir {
		return false
	}
	for _, segment := range strings.Split(dir[1:], "/") {
		if !isPlainName(segment) {
			return false
		}
	}
	return true
}
