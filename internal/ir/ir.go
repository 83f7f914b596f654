// Package ir defines the in-memory intermediate representation semadiff
// operates over: modules containing functions, functions containing basic
// blocks, blocks containing instructions. Instructions may carry named
// annotation nodes attached by the pattern author.
//
// The module owns every node reachable from it. Consumers (the pattern
// registry, the differential comparator) hold plain references into the
// graph and never free or mutate nodes after loading.
package ir

// Module is one compiled-program unit, typically loaded from a .sir file.
type Module struct {
	Name      string // from the module header line, or the file base name
	Path      string // source path as given to the loader, "" for in-memory modules
	Functions []*Function
}

// Function finds a function by exact name. Returns nil if absent.
func (m *Module) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// FunctionsByPrefix returns all functions whose name starts with prefix,
// in declaration order.
func (m *Module) FunctionsByPrefix(prefix string) []*Function {
	var out []*Function
	for _, fn := range m.Functions {
		if len(fn.Name) >= len(prefix) && fn.Name[:len(prefix)] == prefix {
			out = append(out, fn)
		}
	}
	return out
}

// Function is a named control-flow graph of basic blocks.
type Function struct {
	Name   string
	Module *Module
	Blocks []*Block
}

// ID returns a stable identity for the function: the owning module's path
// plus the function name. Two loads of the same file yield functions with
// equal IDs even though the nodes are distinct.
func (f *Function) ID() string {
	if f.Module == nil {
		return f.Name
	}
	return f.Module.Path + ":" + f.Name
}

// Instructions returns every instruction of the function in program order
// (blocks in declaration order, instructions in block order).
func (f *Function) Instructions() []*Instruction {
	var out []*Instruction
	for _, b := range f.Blocks {
		out = append(out, b.Instructions...)
	}
	return out
}

// Entry returns the first instruction of the function in program order,
// or nil when the function has no instructions.
func (f *Function) Entry() *Instruction {
	for _, b := range f.Blocks {
		if len(b.Instructions) > 0 {
			return b.Instructions[0]
		}
	}
	return nil
}

// Block is a labeled straight-line sequence of instructions.
type Block struct {
	Label        string
	Parent       *Function
	Index        int // position within Parent.Blocks
	Instructions []*Instruction
}

// Instruction is one atomic operation node.
type Instruction struct {
	Op       string   // mnemonic, e.g. "load", "add", "br"
	Operands []string // raw operand tokens; register operands start with '%'
	Parent   *Block
	Index    int // position within Parent.Instructions
	Line     int // source line in the module file, for diagnostics

	// Annotations attached to this instruction, keyed lookup via Annotation.
	// Most instructions carry none.
	Annotations []*Annotation
}

// Annotation is a named metadata node: a flat list of operand tokens whose
// meaning is defined by whoever recognizes the name.
type Annotation struct {
	Name     string
	Operands []string
}

// Annotation returns the first attached annotation with the given name,
// or nil when the instruction carries none.
func (i *Instruction) Annotation(name string) *Annotation {
	for _, a := range i.Annotations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Next returns the instruction following i in program order, crossing into
// the next non-empty block when i ends its block. Returns nil at the end of
// the function.
func (i *Instruction) Next() *Instruction {
	b := i.Parent
	if b == nil {
		return nil
	}
	if i.Index+1 < len(b.Instructions) {
		return b.Instructions[i.Index+1]
	}
	if b.Parent == nil {
		return nil
	}
	for bi := b.Index + 1; bi < len(b.Parent.Blocks); bi++ {
		nb := b.Parent.Blocks[bi]
		if len(nb.Instructions) > 0 {
			return nb.Instructions[0]
		}
	}
	return nil
}

// Function returns the function containing i, or nil for detached nodes.
func (i *Instruction) Function() *Function {
	if i.Parent == nil {
		return nil
	}
	return i.Parent.Parent
}
