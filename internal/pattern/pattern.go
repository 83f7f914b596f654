package pattern

import "github.com/semadiff/semadiff/internal/ir"

// Pattern is one known, accepted difference: a pair of old/new program
// fragments plus state derived once at initialization. After a successful
// load a Pattern is read-only; per-comparison progress lives in a Session.
type Pattern struct {
	// Name identifies the pattern in diagnostics. It is not part of the
	// pattern's identity.
	Name string
	// New and Old are the two sides of the difference, located in the
	// pattern module by their name prefixes.
	New *ir.Function
	Old *ir.Function

	// MetadataMap holds the decoded metadata of every validly annotated
	// instruction on either side. Built once by initialize, read-only
	// afterward.
	MetadataMap map[*ir.Instruction]Metadata

	// NewStart and OldStart are the instructions from which matching
	// proceeds on each side: the first instruction marked first-difference,
	// or the side's entry instruction when none is marked. Never nil after
	// successful initialization.
	NewStart *ir.Instruction
	OldStart *ir.Instruction
}

// Identity is the registry key for a pattern: the identity of its two
// constituent functions. Patterns with different names but the same
// function pair are duplicates.
type Identity struct {
	New string
	Old string
}

// Identity returns the pattern's registry key.
func (p *Pattern) Identity() Identity {
	return Identity{New: p.New.ID(), Old: p.Old.ID()}
}

// Metadata returns the decoded metadata for a pattern instruction.
func (p *Pattern) Metadata(inst *ir.Instruction) (Metadata, bool) {
	md, ok := p.MetadataMap[inst]
	return md, ok
}

// Session tracks progress through one pattern during a single comparison
// pass. Cursors begin at the pattern's start positions and are advanced by
// the matching loop that owns the session; a session is never shared
// between passes.
type Session struct {
	Pattern *Pattern
	NewPos  *ir.Instruction
	OldPos  *ir.Instruction
}

func newSession(p *Pattern) *Session {
	return &Session{Pattern: p, NewPos: p.NewStart, OldPos: p.OldStart}
}

// Reset rewinds both cursors to the pattern's start positions.
func (s *Session) Reset() {
	s.NewPos = s.Pattern.NewStart
	s.OldPos = s.Pattern.OldStart
}
