// Package pattern implements the known-difference pattern core: a registry
// of pre-recorded old/new program fragments, the metadata mini-language
// attached to their instructions, and the comparator façade consulted by
// the differential function comparator during its traversal.
package pattern

import (
	"strconv"

	"github.com/semadiff/semadiff/internal/ir"
)

const (
	// MetadataName is the annotation marker recognized on pattern
	// instructions.
	MetadataName = "sema.pattern"
	// NewPrefix marks the new side of a difference pattern.
	NewPrefix = "new_"
	// OldPrefix marks the old side of a difference pattern.
	OldPrefix = "old_"
)

// Operand keywords of the metadata mini-language.
const (
	opBasicBlockLimit    = "basic-block-limit"
	opBasicBlockLimitEnd = "basic-block-limit-end"
	opFirstDifference    = "first-difference"
)

// Metadata is the decoded annotation of one pattern instruction.
type Metadata struct {
	// BasicBlockLimit is the remaining number of following basic blocks
	// covered by a bounded matching region. -1 means the limit was never
	// set; 0 means the region ends at the current instruction. The two
	// must never be conflated.
	BasicBlockLimit int
	// BasicBlockLimitEnd marks the last instruction covered by an active
	// basic-block limit. Only meaningful when a limit is set.
	BasicBlockLimitEnd bool
	// FirstDifference marks the instruction from which matching begins;
	// instructions before it are an ignorable common prefix.
	FirstDifference bool
}

// NewMetadata returns a Metadata with the limit at its unset sentinel.
func NewMetadata() Metadata {
	return Metadata{BasicBlockLimit: -1}
}

// ParseOperand decodes the annotation operand at index into md, resolving
// operands it depends on first. It returns the index of the next unparsed
// operand, or -1 when index is out of range or the operand cannot be
// decoded. Unknown operand keywords are skipped so pattern files written
// against newer schemas still load.
func ParseOperand(md *Metadata, ann *ir.Annotation, index int) int {
	if ann == nil || index < 0 || index >= len(ann.Operands) {
		return -1
	}
	switch ann.Operands[index] {
	case opBasicBlockLimit:
		if index+1 >= len(ann.Operands) {
			return -1
		}
		limit, err := strconv.Atoi(ann.Operands[index+1])
		if err != nil || limit < 0 {
			return -1
		}
		md.BasicBlockLimit = limit
		return index + 2

	case opBasicBlockLimitEnd:
		if md.BasicBlockLimit < 0 {
			// The end marker only makes sense under an active limit.
			// Resolve the limit operand on this node first; without one
			// the annotation is malformed.
			dep := operandIndex(ann, opBasicBlockLimit)
			if dep < 0 || ParseOperand(md, ann, dep) < 0 {
				return -1
			}
		}
		md.BasicBlockLimitEnd = true
		return index + 1

	case opFirstDifference:
		md.FirstDifference = true
		return index + 1

	default:
		return index + 1
	}
}

// parseAnnotation drives a full left-to-right parse of every operand on the
// node. A malformed operand yields (zero, false): a single bad annotation
// means "no metadata here", never an error.
func parseAnnotation(ann *ir.Annotation) (Metadata, bool) {
	md := NewMetadata()
	for i := 0; i < len(ann.Operands); {
		i = ParseOperand(&md, ann, i)
		if i < 0 {
			return Metadata{}, false
		}
	}
	return md, true
}

// operandIndex finds the first occurrence of the given operand keyword.
func operandIndex(ann *ir.Annotation, op string) int {
	for i, o := range ann.Operands {
		if o == op {
			return i
		}
	}
	return -1
}
