package bytecode

import "fmt"

// CaptureKind distinguishes where a function's captured binding comes from
// in its defining scope (§4.1 "Capture resolution").
type CaptureKind int

const (
	// CaptureParentLocal closes over a cell-promoted local slot of the
	// immediately enclosing function.
	CaptureParentLocal CaptureKind = iota
	// CaptureParentVarRef closes over a var-ref already captured by the
	// immediately enclosing function (a transitive capture, §4.1
	// "Transitive capture").
	CaptureParentVarRef
)

// CaptureSource describes one entry of a BytecodeUnit's closure variable
// table: how slot i of the child's var-ref array is populated when
// FCLOSURE instantiates it in the parent's frame (§6.1 "FCLOSURE").
type CaptureSource struct {
	Kind  CaptureKind
	Index uint16 // parent local slot (CaptureParentLocal) or parent var-ref slot (CaptureParentVarRef)
	Name  string // binding name, for disassembly and diagnostics only
}

// Binding is a named local slot surviving into the BytecodeUnit's debug
// metadata (local-variable-name table, §3 "Bytecode unit").
type Binding struct {
	Name  string
	Slot  uint16
	IsArg bool
}

// Flags bit-packs the per-function metadata flags of §3 "Bytecode unit":
// strict / async / generator / arrow / derived-constructor / has-this.
type Flags uint16

const (
	FlagStrict Flags = 1 << iota
	FlagAsync
	FlagGenerator
	FlagArrow
	FlagDerivedConstructor
	FlagHasThis
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// BytecodeUnit is the emitted artifact of one function (or the top-level
// program, treated as an implicit function per §4.5 "Program body"): a
// flat instruction byte vector plus the constant pool, local-name table,
// and capture descriptors the VM needs to instantiate and run it. This is
// the compiler's entire output surface — everything the (external) VM
// consumes (§1, §6.1, §6.3).
type BytecodeUnit struct {
	Name string // function name, or "" for anonymous / the top-level program

	Code      []byte // encoded instruction stream, see asm.go
	Constants []Const
	Locals    []Binding
	Captures  []CaptureSource

	NumArgs     int // declared (pre-rest) parameter count
	MaxLocals   int // high-water mark of scope.Core's local slot counter
	MaxStack    int // computed by asm.StackDepth after code is final

	SelfCaptureSlot int // var-ref slot holding the function's own closure for recursive named function expressions/declarations, or -1

	Flags Flags
}

// ConstKind tags the dynamic type of one constant-pool entry (§3 "Bytecode
// unit", PUSH_CONST operand).
type ConstKind int

const (
	ConstString ConstKind = iota
	ConstBigInt
	ConstRegexp
	ConstTemplateObject
	ConstFunction // nested *BytecodeUnit, instantiated by FCLOSURE
)

// Const is one constant-pool entry. Only one of the fields matching Kind
// is populated.
type Const struct {
	Kind ConstKind

	Str      string // ConstString, ConstBigInt (decimal text), ConstRegexp pattern
	RegexpFl string // ConstRegexp flags
	Cooked   []*string
	Raw      []string // ConstTemplateObject
	Func     *BytecodeUnit
}

func (c Const) String() string {
	switch c.Kind {
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstBigInt:
		return c.Str + "n"
	case ConstRegexp:
		return "/" + c.Str + "/" + c.RegexpFl
	case ConstTemplateObject:
		return fmt.Sprintf("template(%d parts)", len(c.Raw))
	case ConstFunction:
		name := c.Func.Name
		if name == "" {
			name = "<anonymous>"
		}
		return "function " + name
	default:
		return "<bad const>"
	}
}
