package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `; sample module
module example

func new_p1 {
entry:
  load %x, @cfg !sema.pattern{first-difference}
  add %y, %x, 1
  br exit
exit:
  ret %y
}

func old_p1 {
  ret %y
}
`

func TestParse_Module(t *testing.T) {
	mod, err := Parse("sample.sir", sample)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if mod.Name != "example" {
		t.Errorf("module name: got %s, want example", mod.Name)
	}
	if len(mod.Functions) != 2 {
		t.Fatalf("function count: got %d, want 2", len(mod.Functions))
	}

	fn := mod.Functions[0]
	if fn.Name != "new_p1" {
		t.Errorf("function name: got %s", fn.Name)
	}
	if len(fn.Blocks) != 2 {
		t.Fatalf("block count: got %d, want 2", len(fn.Blocks))
	}
	if fn.Blocks[0].Label != "entry" || fn.Blocks[1].Label != "exit" {
		t.Errorf("block labels: got %s, %s", fn.Blocks[0].Label, fn.Blocks[1].Label)
	}

	insts := fn.Instructions()
	if len(insts) != 4 {
		t.Fatalf("instruction count: got %d, want 4", len(insts))
	}
	if insts[0].Op != "load" {
		t.Errorf("op: got %s, want load", insts[0].Op)
	}
	if len(insts[0].Operands) != 2 || insts[0].Operands[0] != "%x" || insts[0].Operands[1] != "@cfg" {
		t.Errorf("operands: got %v", insts[0].Operands)
	}
}

func TestParse_Annotation(t *testing.T) {
	mod, err := Parse("a.sir", `
func new_p {
  load %x, @t !sema.pattern{basic-block-limit 2, first-difference}
  ret %x
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	inst := mod.Functions[0].Entry()
	ann := inst.Annotation("sema.pattern")
	if ann == nil {
		t.Fatal("annotation not attached")
	}

	want := []string{"basic-block-limit", "2", "first-difference"}
	if len(ann.Operands) != len(want) {
		t.Fatalf("operand count: got %v", ann.Operands)
	}
	for i, op := range want {
		if ann.Operands[i] != op {
			t.Errorf("operand %d: got %s, want %s", i, ann.Operands[i], op)
		}
	}
}

func TestParse_ImplicitEntryBlock(t *testing.T) {
	mod, err := Parse("a.sir", "func f {\n  ret %x\n}\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fn := mod.Functions[0]
	if len(fn.Blocks) != 1 || fn.Blocks[0].Label != "entry" {
		t.Errorf("implicit block: got %+v", fn.Blocks)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"unclosed function", "func f {\n  ret %x\n", "missing its closing brace"},
		{"instruction outside function", "ret %x\n", "outside a function"},
		{"label outside function", "entry:\n", "outside a function"},
		{"duplicate function", "func f {\n ret %x\n}\nfunc f {\n ret %x\n}\n", "duplicate function"},
		{"nested function", "func f {\nfunc g {\n", "nested function"},
		{"malformed annotation", "func f {\n  ret %x !sema.pattern\n}\n", "malformed annotation"},
		{"unmatched brace", "}\n", "unmatched closing brace"},
		{"missing name", "func {\n}\n", "missing a name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("bad.sir", tc.source)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tc.want)
			}
			var perr *ParseError
			if pe, ok := err.(*ParseError); ok {
				perr = pe
			} else {
				t.Fatalf("error type: got %T, want *ParseError", err)
			}
			if perr.Line == 0 {
				t.Error("ParseError has no line number")
			}
		})
	}
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	mod, err := Parse("a.sir", `
; leading comment

func f {
  ret %x ; trailing comment
}
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	insts := mod.Functions[0].Instructions()
	if len(insts) != 1 || len(insts[0].Operands) != 1 {
		t.Errorf("trailing comment not stripped: %+v", insts[0])
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mem_opt.sir")
	src := "func new_p {\n ret %x\n}\nfunc old_p {\n ret %x\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	mod, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if mod.Path != path {
		t.Errorf("module path: got %s, want %s", mod.Path, path)
	}
	// Without a module header the file base name becomes the module name.
	if mod.Name != "mem_opt" {
		t.Errorf("module name: got %s, want mem_opt", mod.Name)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.sir")); err == nil {
		t.Error("expected error for missing file")
	}
}
