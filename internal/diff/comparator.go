// Package diff implements the differential function comparator: it walks
// an old/new function pair instruction by instruction and classifies every
// divergence either as a known difference covered by a loaded pattern or
// as a semantic difference worth reporting.
package diff

import (
	"go.uber.org/zap"

	"github.com/semadiff/semadiff/internal/ir"
	"github.com/semadiff/semadiff/internal/pattern"
)

// Kind classifies the outcome of comparing one function pair.
type Kind int

const (
	Equal Kind = iota
	Known
	Semantic
	OnlyInNew
	OnlyInOld
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Known:
		return "known difference"
	case Semantic:
		return "semantic difference"
	case OnlyInNew:
		return "only in new"
	case OnlyInOld:
		return "only in old"
	default:
		return "unknown"
	}
}

// Difference is the comparison result for one function.
type Difference struct {
	Function string
	Kind     Kind
	// Patterns names the patterns that covered divergences in this
	// function, in the order they matched.
	Patterns []string
	// NewInst and OldInst locate the first unexplained diverging
	// instruction pair for Semantic results. Either may be nil when one
	// side ran out of instructions.
	NewInst *ir.Instruction
	OldInst *ir.Instruction
}

// Comparator drives function-pair comparisons against a loaded pattern set.
type Comparator struct {
	patterns *pattern.Comparator
	logger   *zap.Logger
}

// New creates a comparator. A nil logger disables diagnostics.
func New(p *pattern.Comparator, logger *zap.Logger) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{patterns: p, logger: logger}
}

// CompareModules compares every function of the new module against its
// same-named counterpart in the old module, then reports old functions
// with no counterpart. Order follows the modules' declaration order.
func (c *Comparator) CompareModules(newMod, oldMod *ir.Module) []Difference {
	var out []Difference
	for _, newFn := range newMod.Functions {
		oldFn := oldMod.Function(newFn.Name)
		if oldFn == nil {
			out = append(out, Difference{Function: newFn.Name, Kind: OnlyInNew})
			continue
		}
		out = append(out, c.CompareFunctions(newFn, oldFn))
	}
	for _, oldFn := range oldMod.Functions {
		if newMod.Function(oldFn.Name) == nil {
			out = append(out, Difference{Function: oldFn.Name, Kind: OnlyInOld})
		}
	}
	return out
}

// CompareFunctions walks the two instruction streams in lockstep. On a
// divergence it consults the pattern comparator; a divergence covered by a
// pattern on both sides is consumed and the walk continues past it.
func (c *Comparator) CompareFunctions(newFn, oldFn *ir.Function) Difference {
	c.patterns.Initialize(newFn, oldFn)

	d := Difference{Function: newFn.Name}
	newInsts := newFn.Instructions()
	oldInsts := oldFn.Instructions()

	i, j := 0, 0
	for i < len(newInsts) && j < len(oldInsts) {
		if instEqual(newInsts[i], oldInsts[j]) {
			i++
			j++
			continue
		}
		name, ni, nj, ok := c.matchKnown(newInsts, oldInsts, i, j)
		if !ok {
			d.Kind = Semantic
			d.NewInst = newInsts[i]
			d.OldInst = oldInsts[j]
			return d
		}
		c.logger.Debug("divergence covered by pattern",
			zap.String("function", newFn.Name),
			zap.String("pattern", name))
		d.Patterns = append(d.Patterns, name)
		i, j = ni, nj
	}

	if i < len(newInsts) || j < len(oldInsts) {
		d.Kind = Semantic
		if i < len(newInsts) {
			d.NewInst = newInsts[i]
		}
		if j < len(oldInsts) {
			d.OldInst = oldInsts[j]
		}
		return d
	}

	if len(d.Patterns) > 0 {
		d.Kind = Known
	}
	return d
}

// matchKnown tries every loaded pattern against the divergence at
// (newInsts[i], oldInsts[j]). A pattern matches when both of its sides,
// walked from their start positions to their ends, line up with the
// corresponding target stream. On success it returns the pattern name and
// the target positions just past the consumed region.
func (c *Comparator) matchKnown(newInsts, oldInsts []*ir.Instruction, i, j int) (string, int, int, bool) {
	for _, s := range c.patterns.Sessions() {
		s.Reset()
		ni, ok := matchSide(s.Pattern, s.NewPos, newInsts, i, func(cur *ir.Instruction) { s.NewPos = cur })
		if !ok {
			continue
		}
		nj, ok := matchSide(s.Pattern, s.OldPos, oldInsts, j, func(cur *ir.Instruction) { s.OldPos = cur })
		if !ok {
			continue
		}
		return s.Pattern.Name, ni, nj, true
	}
	return "", i, j, false
}

// matchSide walks one pattern side from cur to the end of its function,
// consuming target instructions from pos. Without an active basic-block
// limit the target must match in lockstep; an active limit of N allows
// skipping target instructions across at most N following blocks before
// the next pattern instruction matches. The limit ends at an instruction
// marked basic-block-limit-end.
func matchSide(p *pattern.Pattern, cur *ir.Instruction, target []*ir.Instruction, pos int, setCur func(*ir.Instruction)) (int, bool) {
	limit := -1
	for inst := cur; inst != nil; inst = inst.Next() {
		setCur(inst)
		md, hasMD := p.Metadata(inst)
		if hasMD && md.BasicBlockLimit >= 0 {
			limit = md.BasicBlockLimit
		}

		np, ok := consume(target, pos, inst, limit)
		if !ok {
			return pos, false
		}
		pos = np

		if hasMD && md.BasicBlockLimitEnd {
			limit = -1
		}
	}
	return pos, true
}

// consume matches one pattern instruction against the target stream.
func consume(target []*ir.Instruction, pos int, patInst *ir.Instruction, limit int) (int, bool) {
	if pos >= len(target) {
		return pos, false
	}
	if limit < 0 {
		if !patternMatch(target[pos], patInst) {
			return pos, false
		}
		return pos + 1, true
	}

	crossed := 0
	blk := target[pos].Parent
	for k := pos; k < len(target); k++ {
		if target[k].Parent != blk {
			crossed++
			blk = target[k].Parent
			if crossed > limit {
				return pos, false
			}
		}
		if patternMatch(target[k], patInst) {
			return k + 1, true
		}
	}
	return pos, false
}

// instEqual compares a new-build instruction against an old-build one.
// Register operands rename freely between builds; every other operand must
// be identical.
func instEqual(a, b *ir.Instruction) bool {
	if a.Op != b.Op || len(a.Operands) != len(b.Operands) {
		return false
	}
	for k := range a.Operands {
		if isRegister(a.Operands[k]) && isRegister(b.Operands[k]) {
			continue
		}
		if a.Operands[k] != b.Operands[k] {
			return false
		}
	}
	return true
}

// patternMatch compares a live instruction against a pattern instruction.
// Pattern registers are placeholders; every other operand, globals
// included, must match exactly.
func patternMatch(live, pat *ir.Instruction) bool {
	if live.Op != pat.Op || len(live.Operands) != len(pat.Operands) {
		return false
	}
	for k := range pat.Operands {
		if isRegister(pat.Operands[k]) && isRegister(live.Operands[k]) {
			continue
		}
		if live.Operands[k] != pat.Operands[k] {
			return false
		}
	}
	return true
}

func isRegister(op string) bool {
	return len(op) > 0 && op[0] == '%'
}
