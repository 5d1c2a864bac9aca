package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a textual listing of unit to w, modeled on the
// teacher's Dasm: one instruction per line, offset-prefixed, operands
// rendered according to their width, nested function constants listed
// recursively afterward. This is diagnostic tooling only; the compiler
// never parses its own output.
func Disassemble(w io.Writer, unit *BytecodeUnit) error {
	name := unit.Name
	if name == "" {
		name = "<anonymous>"
	}
	if _, err := fmt.Fprintf(w, "function %s (%d args, %d locals, max_stack=%d)\n",
		name, unit.NumArgs, unit.MaxLocals, unit.MaxStack); err != nil {
		return err
	}

	code := unit.Code
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		if _, err := fmt.Fprintf(w, "  %5d  %-24s", pc, op.String()); err != nil {
			return err
		}
		switch op.Width() {
		case OperandNone:
		case OperandU8:
			fmt.Fprintf(w, " %d", ReadU8(code, pc))
		case OperandU16:
			fmt.Fprintf(w, " %d", ReadU16(code, pc))
		case OperandAtom:
			fmt.Fprintf(w, " atom#%d", ReadU16(code, pc))
		case OperandU32:
			fmt.Fprintf(w, " %d", ReadU32(code, pc))
		case OperandI32:
			disp := ReadI32(code, pc)
			fmt.Fprintf(w, " %+d (-> %d)", disp, pc+InsnSize(op)+int(disp))
		case OperandConst:
			idx := ReadU32(code, pc)
			if int(idx) < len(unit.Constants) {
				fmt.Fprintf(w, " const#%d (%s)", idx, unit.Constants[idx])
			} else {
				fmt.Fprintf(w, " const#%d", idx)
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		pc += InsnSize(op)
	}

	for _, c := range unit.Constants {
		if c.Kind == ConstFunction {
			fmt.Fprintln(w)
			if err := Disassemble(w, c.Func); err != nil {
				return err
			}
		}
	}
	return nil
}
