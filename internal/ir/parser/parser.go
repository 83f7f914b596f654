// Package parser loads textual SIR modules into the in-memory IR graph.
//
// The format is line-oriented:
//
//	; comment
//	module example
//
//	func new_p1 {
//	entry:
//	  load %x, @cfg !sema.pattern{first-difference}
//	  add %y, %x, 1
//	  br exit
//	exit:
//	  ret %y
//	}
//
// A `module` header is optional; without one the module is named after the
// file. Instructions before the first label go into an implicit "entry"
// block. At most one annotation suffix (`!name{tok tok, ...}`) is accepted
// per instruction line.
package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/semadiff/semadiff/internal/ir"
)

// ParseError reports a malformed module file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// ParseFile reads and parses the SIR module at path.
func ParseFile(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", path, err)
	}
	mod, err := parse(path, string(data))
	if err != nil {
		return nil, err
	}
	mod.Path = path
	if mod.Name == "" {
		mod.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return mod, nil
}

// Parse parses an in-memory SIR module. The name is used for diagnostics
// and as the module name when the source has no module header.
func Parse(name, source string) (*ir.Module, error) {
	mod, err := parse(name, source)
	if err != nil {
		return nil, err
	}
	mod.Path = name
	if mod.Name == "" {
		mod.Name = name
	}
	return mod, nil
}

type parser struct {
	file string
	mod  *ir.Module
	fn   *ir.Function
	blk  *ir.Block
	line int
}

func parse(file, source string) (*ir.Module, error) {
	p := &parser{file: file, mod: &ir.Module{}}

	sc := bufio.NewScanner(strings.NewReader(source))
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if p.fn != nil {
		return nil, p.errorf("unexpected end of file: function %q is missing its closing brace", p.fn.Name)
	}
	return p.mod, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{File: p.file, Line: p.line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(raw string) error {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch {
	case strings.HasPrefix(line, "module "):
		if p.fn != nil {
			return p.errorf("module header inside function %q", p.fn.Name)
		}
		p.mod.Name = strings.TrimSpace(strings.TrimPrefix(line, "module "))
		return nil

	case strings.HasPrefix(line, "func "):
		return p.beginFunction(line)

	case line == "}":
		if p.fn == nil {
			return p.errorf("unmatched closing brace")
		}
		p.fn, p.blk = nil, nil
		return nil

	case strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t"):
		return p.beginBlock(strings.TrimSuffix(line, ":"))

	default:
		return p.parseInstruction(line)
	}
}

func (p *parser) beginFunction(line string) error {
	if p.fn != nil {
		return p.errorf("nested function declaration")
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "func "))
	if !strings.HasSuffix(rest, "{") {
		return p.errorf("function declaration must end with '{'")
	}
	name := strings.TrimSpace(strings.TrimSuffix(rest, "{"))
	if name == "" {
		return p.errorf("function declaration is missing a name")
	}
	if p.mod.Function(name) != nil {
		return p.errorf("duplicate function %q", name)
	}
	p.fn = &ir.Function{Name: name, Module: p.mod}
	p.mod.Functions = append(p.mod.Functions, p.fn)
	p.blk = nil
	return nil
}

func (p *parser) beginBlock(label string) error {
	if p.fn == nil {
		return p.errorf("block label %q outside a function", label)
	}
	blk := &ir.Block{Label: label, Parent: p.fn, Index: len(p.fn.Blocks)}
	p.fn.Blocks = append(p.fn.Blocks, blk)
	p.blk = blk
	return nil
}

func (p *parser) parseInstruction(line string) error {
	if p.fn == nil {
		return p.errorf("instruction outside a function")
	}
	if p.blk == nil {
		// Instructions before the first label form the entry block.
		if err := p.beginBlock("entry"); err != nil {
			return err
		}
	}

	text, ann, err := p.splitAnnotation(line)
	if err != nil {
		return err
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return p.errorf("instruction has no opcode")
	}

	inst := &ir.Instruction{
		Op:       fields[0],
		Operands: fields[1:],
		Parent:   p.blk,
		Index:    len(p.blk.Instructions),
		Line:     p.line,
	}
	if ann != nil {
		inst.Annotations = append(inst.Annotations, ann)
	}
	p.blk.Instructions = append(p.blk.Instructions, inst)
	return nil
}

// splitAnnotation separates an optional trailing `!name{...}` annotation
// from the instruction text.
func (p *parser) splitAnnotation(line string) (string, *ir.Annotation, error) {
	at := strings.Index(line, "!")
	if at < 0 {
		return line, nil, nil
	}
	text := strings.TrimSpace(line[:at])
	raw := line[at+1:]

	open := strings.Index(raw, "{")
	if open < 0 || !strings.HasSuffix(raw, "}") {
		return "", nil, p.errorf("malformed annotation: expected !name{...}")
	}
	name := strings.TrimSpace(raw[:open])
	if name == "" {
		return "", nil, p.errorf("annotation is missing a name")
	}
	body := raw[open+1 : len(raw)-1]

	ann := &ir.Annotation{Name: name}
	for _, tok := range strings.FieldsFunc(body, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	}) {
		ann.Operands = append(ann.Operands, tok)
	}
	return text, ann, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		return line[:i]
	}
	return line
}
