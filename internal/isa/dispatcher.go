// Package isa maps genome opcodes to instruction handlers.
//
// The dispatcher knows nothing about instruction semantics. It keeps an
// append-only opcode table, runs the handler for a fetched opcode and tells
// the fetch loop which opcodes are nop modifiers.
package isa

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode        = errors.New("opcode outside instruction table")
	ErrDuplicateInstruction = errors.New("instruction already registered")
	ErrMissingHandler       = errors.New("instruction handler is required")
)

// Handler executes one instruction against the hardware, organism and
// environment state. The meaning of the result belongs to the instruction.
type Handler[H, O, E any] func(hw H, org O, env E) bool

// Instruction is one opcode table entry. Modifier instructions do not run on
// their own; the fetch loop consumes them as operands of the preceding
// instruction.
type Instruction[H, O, E any] struct {
	Name     string
	Modifier bool
	Handler  Handler[H, O, E]
}

// Dispatcher is an ordered opcode table. Opcode numbering is fixed by
// registration order and never changes for the life of a dispatcher.
type Dispatcher[H, O, E any] struct {
	table  []Instruction[H, O, E]
	byName map[string]Opcode
}

// New builds a dispatcher, assigning opcodes in argument order.
func New[H, O, E any](insts ...Instruction[H, O, E]) (*Dispatcher[H, O, E], error) {
	d := &Dispatcher[H, O, E]{byName: make(map[string]Opcode, len(insts))}
	for _, inst := range insts {
		if _, err := d.Append(inst); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Append registers inst under the next free opcode.
func (d *Dispatcher[H, O, E]) Append(inst Instruction[H, O, E]) (Opcode, error) {
	if inst.Name == "" {
		return 0, errors.New("instruction name is required")
	}
	if inst.Handler == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingHandler, inst.Name)
	}
	if d.byName == nil {
		d.byName = make(map[string]Opcode)
	}
	if op, exists := d.byName[inst.Name]; exists {
		return 0, fmt.Errorf("%w: %s at opcode %d", ErrDuplicateInstruction, inst.Name, op)
	}
	op := Opcode(len(d.table))
	d.table = append(d.table, inst)
	d.byName[inst.Name] = op
	return op, nil
}

// Execute runs the handler registered for op.
func (d *Dispatcher[H, O, E]) Execute(op Opcode, hw H, org O, env E) (bool, error) {
	if !d.Valid(op) {
		return false, fmt.Errorf("%w: %d (table size %d)", ErrUnknownOpcode, op, len(d.table))
	}
	return d.table[op].Handler(hw, org, env), nil
}

// IsModifier reports whether op is a nop-class modifier. Unknown opcodes are
// not modifiers.
func (d *Dispatcher[H, O, E]) IsModifier(op Opcode) bool {
	return d.Valid(op) && d.table[op].Modifier
}

func (d *Dispatcher[H, O, E]) Valid(op Opcode) bool {
	return op >= 0 && int(op) < len(d.table)
}

func (d *Dispatcher[H, O, E]) Len() int {
	return len(d.table)
}

func (d *Dispatcher[H, O, E]) Name(op Opcode) (string, error) {
	if !d.Valid(op) {
		return "", fmt.Errorf("%w: %d", ErrUnknownOpcode, op)
	}
	return d.table[op].Name, nil
}

func (d *Dispatcher[H, O, E]) Lookup(name string) (Opcode, bool) {
	op, ok := d.byName[name]
	return op, ok
}

// Names lists instruction names in opcode order.
func (d *Dispatcher[H, O, E]) Names() []string {
	names := make([]string, len(d.table))
	for i, inst := range d.table {
		names[i] = inst.Name
	}
	return names
}

// ModifierRun counts the consecutive modifier opcodes in program starting at
// start. The fetch loop uses it to find the label that follows an
// instruction; the program itself is not touched.
func (d *Dispatcher[H, O, E]) ModifierRun(program []Opcode, start int) int {
	n := 0
	for i := start; i >= 0 && i < len(program); i++ {
		if !d.IsModifier(program[i]) {
			break
		}
		n++
	}
	return n
}
