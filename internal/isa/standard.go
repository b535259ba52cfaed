package isa

import (
	"fmt"
	"strconv"
)

// Opcode indexes the instruction table.
type Opcode int

// Reference opcode numbering. Genomes are encoded against this order, so
// entries may only ever be appended.
const (
	OpNopA Opcode = iota
	OpNopB
	OpNopC
	OpNopX
	OpMovHead
	OpIfLabel
	OpHSearch
	OpNand
	OpInput
	OpOutput
	OpRepro

	StandardSize = int(OpRepro) + 1
)

var standardNames = [StandardSize]string{
	OpNopA:    "nop-a",
	OpNopB:    "nop-b",
	OpNopC:    "nop-c",
	OpNopX:    "nop-x",
	OpMovHead: "mov-head",
	OpIfLabel: "if-label",
	OpHSearch: "h-search",
	OpNand:    "nand",
	OpInput:   "input",
	OpOutput:  "output",
	OpRepro:   "repro",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < StandardSize {
		return standardNames[op]
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// InstructionSet supplies the handlers of the non-modifier reference
// instructions. The nop modifiers are built in.
type InstructionSet[H, O, E any] struct {
	MovHead Handler[H, O, E]
	IfLabel Handler[H, O, E]
	HSearch Handler[H, O, E]
	Nand    Handler[H, O, E]
	Input   Handler[H, O, E]
	Output  Handler[H, O, E]
	Repro   Handler[H, O, E]
}

// Standard builds the reference eleven-instruction dispatcher.
func Standard[H, O, E any](set InstructionSet[H, O, E]) (*Dispatcher[H, O, E], error) {
	nop := func(H, O, E) bool { return true }
	handlers := [StandardSize]Handler[H, O, E]{
		OpNopA:    nop,
		OpNopB:    nop,
		OpNopC:    nop,
		OpNopX:    nop,
		OpMovHead: set.MovHead,
		OpIfLabel: set.IfLabel,
		OpHSearch: set.HSearch,
		OpNand:    set.Nand,
		OpInput:   set.Input,
		OpOutput:  set.Output,
		OpRepro:   set.Repro,
	}

	insts := make([]Instruction[H, O, E], StandardSize)
	for i := range insts {
		op := Opcode(i)
		insts[i] = Instruction[H, O, E]{
			Name:     standardNames[op],
			Modifier: op <= OpNopX,
			Handler:  handlers[op],
		}
	}
	d, err := New(insts...)
	if err != nil {
		return nil, fmt.Errorf("build standard instruction set: %w", err)
	}
	return d, nil
}
