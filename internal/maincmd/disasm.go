package maincmd

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/lucorth/esbc/bytecode"
)

// Disasm reads a gob-encoded bytecode.BytecodeUnit from args[0] (produced
// by a caller's own compiler.Compile + encoding/gob round trip — this
// engine has no binary wire format of its own, §6.1/§6.3) and prints its
// disassembly. Validate already guarantees exactly one path argument.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("disasm: %w", err)
	}
	defer f.Close()

	var unit bytecode.BytecodeUnit
	if err := gob.NewDecoder(f).Decode(&unit); err != nil {
		return fmt.Errorf("disasm: decoding %s: %w", args[0], err)
	}
	return bytecode.Disassemble(stdio.Stdout, &unit)
}
