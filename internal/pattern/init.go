package pattern

import (
	"fmt"

	"github.com/semadiff/semadiff/internal/ir"
)

// initialize populates the pattern's metadata map and start positions from
// the instructions of both sides. It fails when a side has no instructions,
// since a pattern with no comparable body is meaningless. The two sides are
// not required to have equal length or shape; that is a matching-time
// concern of the differential comparator.
func (p *Pattern) initialize() error {
	p.MetadataMap = make(map[*ir.Instruction]Metadata)

	newStart, err := p.scanSide(p.New)
	if err != nil {
		return err
	}
	oldStart, err := p.scanSide(p.Old)
	if err != nil {
		return err
	}
	p.NewStart = newStart
	p.OldStart = oldStart
	return nil
}

// scanSide walks one side in program order, decoding every recognized
// annotation, and returns the side's start position: the first instruction
// marked first-difference, or the entry instruction when none is marked.
func (p *Pattern) scanSide(fn *ir.Function) (*ir.Instruction, error) {
	insts := fn.Instructions()
	if len(insts) == 0 {
		return nil, &InitError{
			Pattern: p.Name,
			Err:     fmt.Errorf("function %s has no instructions", fn.Name),
		}
	}

	start := insts[0]
	marked := false
	for _, inst := range insts {
		ann := inst.Annotation(MetadataName)
		if ann == nil {
			continue
		}
		md, ok := parseAnnotation(ann)
		if !ok {
			// A single malformed annotation does not take down the
			// pattern; the instruction simply carries no metadata.
			continue
		}
		p.MetadataMap[inst] = md
		if md.FirstDifference && !marked {
			start = inst
			marked = true
		}
	}
	return start, nil
}
