package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semadiff/semadiff/internal/ir"
)

func ann(operands ...string) *ir.Annotation {
	return &ir.Annotation{Name: MetadataName, Operands: operands}
}

func TestNewMetadata_Sentinel(t *testing.T) {
	md := NewMetadata()
	assert.Equal(t, -1, md.BasicBlockLimit)
	assert.False(t, md.BasicBlockLimitEnd)
	assert.False(t, md.FirstDifference)
}

func TestParseOperand_BasicBlockLimit(t *testing.T) {
	md := NewMetadata()
	next := ParseOperand(&md, ann("basic-block-limit", "3"), 0)

	assert.Equal(t, 2, next)
	assert.Equal(t, 3, md.BasicBlockLimit)
	assert.False(t, md.BasicBlockLimitEnd)
}

func TestParseOperand_LimitZeroIsNotSentinel(t *testing.T) {
	md := NewMetadata()
	next := ParseOperand(&md, ann("basic-block-limit", "0"), 0)

	require.Equal(t, 2, next)
	// 0 ends the bounded region at the current instruction; -1 means the
	// limit was never set. The two must stay distinguishable.
	assert.Equal(t, 0, md.BasicBlockLimit)
	assert.NotEqual(t, NewMetadata().BasicBlockLimit, md.BasicBlockLimit)
}

func TestParseOperand_LimitMissingValue(t *testing.T) {
	md := NewMetadata()
	assert.Equal(t, -1, ParseOperand(&md, ann("basic-block-limit"), 0))
}

func TestParseOperand_LimitBadValue(t *testing.T) {
	md := NewMetadata()
	assert.Equal(t, -1, ParseOperand(&md, ann("basic-block-limit", "many"), 0))

	md = NewMetadata()
	assert.Equal(t, -1, ParseOperand(&md, ann("basic-block-limit", "-2"), 0))
}

func TestParseOperand_FirstDifference(t *testing.T) {
	md := NewMetadata()
	next := ParseOperand(&md, ann("first-difference"), 0)

	assert.Equal(t, 1, next)
	assert.True(t, md.FirstDifference)
}

func TestParseOperand_LimitEndAfterLimit(t *testing.T) {
	a := ann("basic-block-limit", "2", "basic-block-limit-end")
	md := NewMetadata()

	next := ParseOperand(&md, a, 0)
	require.Equal(t, 2, next)
	next = ParseOperand(&md, a, next)
	require.Equal(t, 3, next)

	assert.Equal(t, 2, md.BasicBlockLimit)
	assert.True(t, md.BasicBlockLimitEnd)
}

func TestParseOperand_LimitEndResolvesDependency(t *testing.T) {
	// The end marker precedes the limit operand on the node; parsing it
	// must resolve the limit operand first.
	a := ann("basic-block-limit-end", "basic-block-limit", "1")
	md := NewMetadata()

	next := ParseOperand(&md, a, 0)
	assert.Equal(t, 1, next)
	assert.True(t, md.BasicBlockLimitEnd)
	assert.Equal(t, 1, md.BasicBlockLimit)
}

func TestParseOperand_LimitEndWithoutLimit(t *testing.T) {
	md := NewMetadata()
	assert.Equal(t, -1, ParseOperand(&md, ann("basic-block-limit-end"), 0))
}

func TestParseOperand_UnknownOperandSkipped(t *testing.T) {
	a := ann("future-extension", "first-difference")
	md := NewMetadata()

	next := ParseOperand(&md, a, 0)
	require.Equal(t, 1, next)
	next = ParseOperand(&md, a, next)
	require.Equal(t, 2, next)

	assert.True(t, md.FirstDifference)
}

func TestParseOperand_IndexOutOfRange(t *testing.T) {
	md := NewMetadata()
	assert.Equal(t, -1, ParseOperand(&md, ann("first-difference"), 1))
	assert.Equal(t, -1, ParseOperand(&md, ann("first-difference"), -1))
	assert.Equal(t, -1, ParseOperand(&md, nil, 0))
}

func TestParseAnnotation_RoundTrip(t *testing.T) {
	// limit=N with no end marker parses to {N, false}.
	md, ok := parseAnnotation(ann("basic-block-limit", "4"))
	require.True(t, ok)
	assert.Equal(t, 4, md.BasicBlockLimit)
	assert.False(t, md.BasicBlockLimitEnd)
	assert.False(t, md.FirstDifference)
}

func TestParseAnnotation_Malformed(t *testing.T) {
	_, ok := parseAnnotation(ann("basic-block-limit-end"))
	assert.False(t, ok)

	_, ok = parseAnnotation(ann("basic-block-limit", "nope"))
	assert.False(t, ok)
}

func TestParseAnnotation_Empty(t *testing.T) {
	md, ok := parseAnnotation(ann())
	require.True(t, ok)
	assert.Equal(t, NewMetadata(), md)
}
