// Package wsconfig loads and persists the tool's own TOML configuration:
// a single global file under the user's home directory, plus one
// per-repository file. Loads are cached per process; any successful write
// invalidates the cache, per spec invariant I7.
package wsconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// GlobalConfig is the single process-wide record, persisted to
// ~/.workstack/config.toml.
type GlobalConfig struct {
	WorkstacksRoot      string `toml:"workstacks_root"`
	UseStackTool        bool   `toml:"use_graphite"`
	ShellSetupComplete  bool   `toml:"shell_setup_complete"`
	ShowPRInfo          bool   `toml:"show_pr_info"`
	ShowPRChecks        bool   `toml:"show_pr_checks"`
	RebaseStackLocation string `toml:"rebase_stack_location"`
}

// PostCreate is the [post_create] table of a PerRepoConfig.
type PostCreate struct {
	Shell    string   `toml:"shell"`
	Commands []string `toml:"commands"`
}

// PerRepoConfig is per-repository configuration: env template variables
// rendered into new worktrees' .env files, plus post-create hooks.
type PerRepoConfig struct {
	Env        map[string]string `toml:"env"`
	PostCreate PostCreate        `toml:"post_create"`
}

const (
	defaultRebaseStackLocation = ".rebase-stack"
	globalConfigDirName        = ".workstack"
	globalConfigFileName       = "config.toml"
	perRepoConfigFileName      = "config.toml"
)

// DefaultGlobalConfig returns a GlobalConfig with every optional field at
// its spec-documented default.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		RebaseStackLocation: defaultRebaseStackLocation,
	}
}

// Store loads and persists both config layers, caching each read-through
// per process until the next successful write.
type Store struct {
	homeDir string

	mu     sync.Mutex
	global *GlobalConfig
	repos  map[string]*PerRepoConfig // keyed by repo root
}

// NewStore returns a Store rooted at the user's home directory.
func NewStore(homeDir string) *Store {
	return &Store{homeDir: homeDir, repos: make(map[string]*PerRepoConfig)}
}

func (s *Store) globalPath() string {
	return filepath.Join(s.homeDir, globalConfigDirName, globalConfigFileName)
}

// LoadGlobal reads the global config, caching the result. A missing
// workstacks_root is a fatal precondition for any command that needs it —
// this function returns it as-is (possibly empty) and lets the caller
// decide, per spec section 7 ("missing required global config").
func (s *Store) LoadGlobal() (GlobalConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.global != nil {
		return *s.global, nil
	}

	cfg := DefaultGlobalConfig()
	data, err := os.ReadFile(s.globalPath())
	switch {
	case err == nil:
		if _, decodeErr := toml.Decode(string(data), &cfg); decodeErr != nil {
			return GlobalConfig{}, fmt.Errorf("wsconfig: parse global config: %w", decodeErr)
		}
	case os.IsNotExist(err):
		// no file yet: defaults stand, workstacks_root stays empty
	default:
		return GlobalConfig{}, fmt.Errorf("wsconfig: read global config: %w", err)
	}

	s.global = &cfg
	return cfg, nil
}

// SetGlobal applies a partial update to keys in updates (by TOML key name)
// and persists the result, leaving every other key untouched (spec
// property P7). Unknown keys are a user-input error.
func (s *Store) SetGlobal(updates map[string]string) (GlobalConfig, error) {
	cfg, err := s.LoadGlobal()
	if err != nil {
		return GlobalConfig{}, err
	}
	for key, value := range updates {
		if err := applyGlobalKey(&cfg, key, value); err != nil {
			return GlobalConfig{}, err
		}
	}
	if err := s.writeGlobal(cfg); err != nil {
		return GlobalConfig{}, err
	}
	s.mu.Lock()
	s.global = &cfg
	s.mu.Unlock()
	return cfg, nil
}

func applyGlobalKey(cfg *GlobalConfig, key, value string) error {
	switch key {
	case "workstacks_root":
		cfg.WorkstacksRoot = value
	case "use_graphite":
		cfg.UseStackTool = value == "true"
	case "shell_setup_complete":
		cfg.ShellSetupComplete = value == "true"
	case "show_pr_info":
		cfg.ShowPRInfo = value == "true"
	case "show_pr_checks":
		cfg.ShowPRChecks = value == "true"
	case "rebase_stack_location":
		cfg.RebaseStackLocation = value
	default:
		return fmt.Errorf("wsconfig: unknown config key %q", key)
	}
	return nil
}

// writeGlobal persists cfg atomically: written to a temp file in the same
// directory, then renamed over the target, so a crash mid-write leaves the
// prior file intact (spec invariant I7).
func (s *Store) writeGlobal(cfg GlobalConfig) error {
	dir := filepath.Join(s.homeDir, globalConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("wsconfig: create config dir: %w", err)
	}
	return atomicWriteTOML(filepath.Join(dir, globalConfigFileName), cfg)
}

// LoadPerRepo reads a repository's config, preferring
// <workstacksDir>/config.toml and falling back to <repoRoot>/config.toml.
// A missing file yields a zero-value PerRepoConfig, not an error.
func (s *Store) LoadPerRepo(repoRoot, workstacksDir string) (PerRepoConfig, error) {
	s.mu.Lock()
	if cached, ok := s.repos[repoRoot]; ok {
		defer s.mu.Unlock()
		return *cached, nil
	}
	s.mu.Unlock()

	for _, candidate := range []string{
		filepath.Join(workstacksDir, perRepoConfigFileName),
		filepath.Join(repoRoot, perRepoConfigFileName),
	} {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		var cfg PerRepoConfig
		if _, decodeErr := toml.Decode(string(data), &cfg); decodeErr != nil {
			return PerRepoConfig{}, fmt.Errorf("wsconfig: parse per-repo config %s: %w", candidate, decodeErr)
		}
		s.mu.Lock()
		s.repos[repoRoot] = &cfg
		s.mu.Unlock()
		return cfg, nil
	}

	cfg := PerRepoConfig{}
	s.mu.Lock()
	s.repos[repoRoot] = &cfg
	s.mu.Unlock()
	return cfg, nil
}

func atomicWriteTOML(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("wsconfig: create temp file: %w", err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("wsconfig: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("wsconfig: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("wsconfig: rename into place: %w", err)
	}
	return nil
}

type ctxKey struct{}

// WithGlobal stores cfg in ctx for downstream components that need it
// without threading it through every call.
func WithGlobal(ctx context.Context, cfg GlobalConfig) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// GlobalFromContext retrieves a GlobalConfig stored by WithGlobal, or the
// zero value if none was stored.
func GlobalFromContext(ctx context.Context) GlobalConfig {
	cfg, _ := ctx.Value(ctxKey{}).(GlobalConfig)
	return cfg
}
