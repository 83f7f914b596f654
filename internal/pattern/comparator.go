package pattern

import (
	"go.uber.org/zap"

	"github.com/semadiff/semadiff/internal/ir"
)

// Comparator is the surface consulted by the differential function
// comparator while it walks a live function pair. It binds the registry's
// patterns to one function pair at a time; Initialize rebinds it and
// discards any prior session state.
//
// Thread Safety: a Comparator holds session-scoped cursor state and is not
// safe for concurrent comparison passes. Concurrent callers must serialize
// access or hold independent Comparator instances over their own registry.
type Comparator struct {
	registry *Registry

	// NewFun and OldFun are the functions of the active comparison pass.
	// Nil until the first Initialize call.
	NewFun *ir.Function
	OldFun *ir.Function

	sessions []*Session
}

// New builds a comparator with a freshly loaded registry: it reads the
// configuration at configPath and loads every pattern it lists. A nil
// logger disables diagnostics.
func New(configPath string, logger *zap.Logger) (*Comparator, error) {
	reg := NewRegistry(logger)
	if err := reg.LoadConfig(configPath); err != nil {
		return nil, err
	}
	return NewComparator(reg), nil
}

// NewComparator wraps an already-populated registry.
func NewComparator(registry *Registry) *Comparator {
	return &Comparator{registry: registry}
}

// Initialize binds the comparator to a function pair for one comparison
// pass. Every pattern gets a fresh session with cursors at its start
// positions; prior sessions are discarded, never resumed. Initialize never
// fails: with no patterns loaded the pass simply matches nothing. It
// returns the comparator to allow call chaining.
func (c *Comparator) Initialize(newFn, oldFn *ir.Function) *Comparator {
	c.NewFun = newFn
	c.OldFun = oldFn
	c.sessions = c.sessions[:0]
	for _, p := range c.registry.patterns {
		c.sessions = append(c.sessions, newSession(p))
	}
	return c
}

// HasPatterns reports whether the registry holds any patterns.
func (c *Comparator) HasPatterns() bool {
	return c.registry.HasPatterns()
}

// Registry returns the backing registry.
func (c *Comparator) Registry() *Registry {
	return c.registry
}

// Sessions returns the active pattern sessions of the current pass. The
// matching loop that consumes them owns cursor advancement; this package
// never moves cursors on its own.
func (c *Comparator) Sessions() []*Session {
	return c.sessions
}

// GetPatternMetadata decodes the pattern annotation attached to inst. It
// returns false for instructions without a recognized annotation and for
// annotations whose operands cannot be decoded; this is the common case
// and never an error. The call has no effect on session cursors.
func (c *Comparator) GetPatternMetadata(inst *ir.Instruction) (Metadata, bool) {
	if inst == nil {
		return Metadata{}, false
	}
	ann := inst.Annotation(MetadataName)
	if ann == nil {
		return Metadata{}, false
	}
	return parseAnnotation(ann)
}
