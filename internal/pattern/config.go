package pattern

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Global setting names.
const (
	SettingOnParseFailure = "on_parse_failure"
)

// Parse-failure policies.
const (
	PolicyIgnore = "ignore"
	PolicyWarn   = "warn"
	PolicyAbort  = "abort"
)

// Config is the top-level pattern configuration: a parse-failure policy
// plus an ordered list of pattern-file paths. Order is significant; the
// first loaded pattern with a given identity wins.
type Config struct {
	OnParseFailure string   `mapstructure:"on_parse_failure"`
	Patterns       []string `mapstructure:"patterns"`
}

// LoadConfig reads the pattern configuration at path and loads every listed
// pattern file in order. Relative pattern paths are resolved against the
// configuration file's directory. A missing or malformed configuration file
// is a ConfigError. Under the abort policy a single failing pattern file
// fails the whole call and leaves the registry unchanged.
func (r *Registry) LoadConfig(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault(SettingOnParseFailure, PolicyWarn)

	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	switch cfg.OnParseFailure {
	case PolicyIgnore, PolicyWarn, PolicyAbort:
	default:
		return &ConfigError{
			Path: path,
			Err:  fmt.Errorf("invalid %s value %q", SettingOnParseFailure, cfg.OnParseFailure),
		}
	}

	r.settings[SettingOnParseFailure] = cfg.OnParseFailure

	// Load into a scratch registry sharing the settings, then commit, so
	// an abort failure registers nothing at all.
	scratch := NewRegistry(r.logger)
	scratch.settings = r.settings
	base := filepath.Dir(path)
	for _, pf := range cfg.Patterns {
		if !filepath.IsAbs(pf) {
			pf = filepath.Join(base, pf)
		}
		if err := scratch.AddPattern(pf); err != nil {
			return err
		}
	}

	for _, p := range scratch.patterns {
		if _, dup := r.index[p.Identity()]; dup {
			continue
		}
		r.patterns = append(r.patterns, p)
		r.index[p.Identity()] = p
	}
	r.modules = append(r.modules, scratch.modules...)
	return nil
}
