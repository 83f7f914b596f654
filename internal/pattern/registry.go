package pattern

import (
	"strings"

	"go.uber.org/zap"

	"github.com/semadiff/semadiff/internal/ir"
	"github.com/semadiff/semadiff/internal/ir/parser"
)

// Registry owns the set of loaded difference patterns together with the
// modules backing them. Modules stay referenced here for the registry's
// lifetime so the instruction references held by patterns never outlive
// their module. The registry grows monotonically; there is no removal.
//
// Thread Safety: a Registry is not safe for concurrent use. Loading runs
// once at startup; afterwards the registry is read-only.
type Registry struct {
	settings map[string]string
	patterns []*Pattern // insertion order, significant for first-wins
	index    map[Identity]*Pattern
	modules  []*ir.Module
	logger   *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger disables diagnostics.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		settings: make(map[string]string),
		index:    make(map[Identity]*Pattern),
		logger:   logger,
	}
}

// Setting returns a global setting shared by all loaded patterns.
func (r *Registry) Setting(name string) (string, bool) {
	v, ok := r.settings[name]
	return v, ok
}

// OnParseFailure returns the active parse-failure policy.
func (r *Registry) OnParseFailure() string {
	if v, ok := r.settings[SettingOnParseFailure]; ok {
		return v
	}
	return PolicyWarn
}

// HasPatterns reports whether any patterns are loaded.
func (r *Registry) HasPatterns() bool {
	return len(r.patterns) > 0
}

// Patterns returns the loaded patterns in load order.
func (r *Registry) Patterns() []*Pattern {
	out := make([]*Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// AddPattern loads the pattern module at path and registers the pattern it
// defines. The module must contain exactly one function per side prefix.
// Load failures are resolved here according to the on-parse-failure policy:
// under ignore and warn the pattern is dropped and AddPattern returns nil,
// under abort the typed error is returned to the caller.
func (r *Registry) AddPattern(path string) error {
	mod, err := parser.ParseFile(path)
	if err != nil {
		return r.applyPolicy(path, &InitError{Pattern: path, Err: err})
	}

	newFn, err := singleByPrefix(mod, NewPrefix)
	if err != nil {
		return r.applyPolicy(path, err)
	}
	oldFn, err := singleByPrefix(mod, OldPrefix)
	if err != nil {
		return r.applyPolicy(path, err)
	}

	p := &Pattern{
		Name: strings.TrimPrefix(newFn.Name, NewPrefix),
		New:  newFn,
		Old:  oldFn,
	}
	if err := p.initialize(); err != nil {
		return r.applyPolicy(path, err)
	}

	if prev, ok := r.index[p.Identity()]; ok {
		// First loaded pattern with a given identity wins; later
		// duplicates are discarded, not merged.
		r.logger.Debug("duplicate pattern discarded",
			zap.String("pattern", p.Name),
			zap.String("kept", prev.Name),
			zap.String("file", path))
		return nil
	}

	r.modules = append(r.modules, mod)
	r.patterns = append(r.patterns, p)
	r.index[p.Identity()] = p
	r.logger.Debug("pattern loaded",
		zap.String("pattern", p.Name),
		zap.String("file", path))
	return nil
}

// applyPolicy resolves a pattern load failure per the configured policy.
func (r *Registry) applyPolicy(path string, err error) error {
	switch r.OnParseFailure() {
	case PolicyAbort:
		return err
	case PolicyIgnore:
		return nil
	default: // warn
		r.logger.Warn("pattern dropped",
			zap.String("file", path),
			zap.Error(err))
		return nil
	}
}

// singleByPrefix locates the one function carrying the side prefix.
func singleByPrefix(mod *ir.Module, prefix string) (*ir.Function, error) {
	fns := mod.FunctionsByPrefix(prefix)
	if len(fns) != 1 {
		return nil, &ShapeError{Path: mod.Path, Prefix: prefix, Count: len(fns)}
	}
	return fns[0], nil
}
