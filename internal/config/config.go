// Package config loads orphdat's ambient configuration: environment
// variables, an optional ".env" file, and an optional per-user YAML
// configuration file, layered in that priority order (env wins over .env,
// .env wins over YAML defaults).
//
// Grounded on the teacher's pkg/configuration (a YAMLConfiguration struct
// loaded via pkg/encoding's LoadAndUnmarshal helper) and its use of
// joho/godotenv at the CLI entrypoint to populate process environment
// variables before flag parsing.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the per-user YAML configuration file name, resolved relative
// to the user's home directory.
const FileName = ".orphdat.yml"

// YAMLConfiguration is the on-disk shape of the optional YAML configuration
// file.
type YAMLConfiguration struct {
	// ConflictPolicy names the ConflictResolver to use: one of "keep",
	// "overwrite", "abort".
	ConflictPolicy string `yaml:"conflict_policy"`
	// Verbose enables Trace-level Reporter output by default.
	Verbose bool `yaml:"verbose"`
	// Roots are the default walk roots used when none are given explicitly.
	Roots []string `yaml:"roots"`
}

// Config is orphdat's resolved runtime configuration.
type Config struct {
	ConflictPolicy string
	Verbose        bool
	Roots          []string
}

// defaults mirrors the zero-config behavior: interactive conflict handling
// disabled (callers must pick a policy), not verbose, and the current
// working directory as the sole root.
func defaults() Config {
	return Config{
		ConflictPolicy: "abort",
		Verbose:        false,
		Roots:          []string{"."},
	}
}

// Load resolves a Config by layering, from lowest to highest priority: the
// per-user YAML file (if present), a ".env" file in the working directory
// (if present), and process environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if yamlCfg, err := loadYAML(); err != nil {
		return Config{}, err
	} else if yamlCfg != nil {
		applyYAML(&cfg, yamlCfg)
	}

	// godotenv.Load populates process environment variables from ".env" in
	// the working directory without overriding variables already set,
	// matching the teacher's convention of treating .env as a local
	// development convenience layered beneath the real environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "unable to load .env file")
	}

	applyEnv(&cfg)

	return cfg, nil
}

func loadYAML() (*YAMLConfiguration, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}
	path := filepath.Join(home, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to read configuration file %s", path)
	}

	result := &YAMLConfiguration{}
	if err := yaml.Unmarshal(data, result); err != nil {
		return nil, errors.Wrapf(err, "unable to parse configuration file %s", path)
	}
	return result, nil
}

func applyYAML(cfg *Config, yamlCfg *YAMLConfiguration) {
	if yamlCfg.ConflictPolicy != "" {
		cfg.ConflictPolicy = yamlCfg.ConflictPolicy
	}
	if yamlCfg.Verbose {
		cfg.Verbose = yamlCfg.Verbose
	}
	if len(yamlCfg.Roots) > 0 {
		cfg.Roots = yamlCfg.Roots
	}
}

func applyEnv(cfg *Config) {
	if policy := os.Getenv("ORPHDAT_CONFLICT_POLICY"); policy != "" {
		cfg.ConflictPolicy = policy
	}
	if verbose, ok := os.LookupEnv("ORPHDAT_VERBOSE"); ok {
		if parsed, err := strconv.ParseBool(verbose); err == nil {
			cfg.Verbose = parsed
		}
	}
	if roots := os.Getenv("ORPHDAT_ROOTS"); roots != "" {
		cfg.Roots = strings.Split(roots, string(os.PathListSeparator))
	}
}
