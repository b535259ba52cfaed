package isa

import (
	"errors"
	"testing"
)

type testHardware struct {
	trace []string
	regs  [3]int
}

type testOrganism struct {
	outputs []int
}

type testEnv struct {
	inputs []int
	births int
}

func recordingHandler(name string, result bool) Handler[*testHardware, *testOrganism, *testEnv] {
	return func(hw *testHardware, _ *testOrganism, _ *testEnv) bool {
		hw.trace = append(hw.trace, name)
		return result
	}
}

func newTestSet() InstructionSet[*testHardware, *testOrganism, *testEnv] {
	return InstructionSet[*testHardware, *testOrganism, *testEnv]{
		MovHead: recordingHandler("mov-head", true),
		IfLabel: recordingHandler("if-label", false),
		HSearch: recordingHandler("h-search", true),
		Nand: func(hw *testHardware, _ *testOrganism, _ *testEnv) bool {
			hw.regs[1] = ^(hw.regs[1] & hw.regs[2])
			return true
		},
		Input: func(hw *testHardware, _ *testOrganism, env *testEnv) bool {
			if len(env.inputs) == 0 {
				return false
			}
			hw.regs[1], env.inputs = env.inputs[0], env.inputs[1:]
			return true
		},
		Output: func(hw *testHardware, org *testOrganism, _ *testEnv) bool {
			org.outputs = append(org.outputs, hw.regs[1])
			return true
		},
		Repro: func(_ *testHardware, _ *testOrganism, env *testEnv) bool {
			env.births++
			return true
		},
	}
}

func newStandard(t *testing.T) *Dispatcher[*testHardware, *testOrganism, *testEnv] {
	t.Helper()
	d, err := Standard(newTestSet())
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	return d
}

func TestStandardOpcodeOrder(t *testing.T) {
	d := newStandard(t)
	if d.Len() != StandardSize || StandardSize != 11 {
		t.Fatalf("expected 11 instructions, got %d", d.Len())
	}
	want := []string{"nop-a", "nop-b", "nop-c", "nop-x", "mov-head", "if-label", "h-search", "nand", "input", "output", "repro"}
	got := d.Names()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d: got %s want %s", i, got[i], want[i])
		}
		if Opcode(i).String() != want[i] {
			t.Fatalf("opcode %d string: got %s", i, Opcode(i))
		}
		op, ok := d.Lookup(want[i])
		if !ok || op != Opcode(i) {
			t.Fatalf("lookup %s: got %d %v", want[i], op, ok)
		}
	}
}

func TestStandardModifierClassification(t *testing.T) {
	d := newStandard(t)
	for op := Opcode(0); op <= 3; op++ {
		if !d.IsModifier(op) {
			t.Fatalf("expected %s to be a modifier", op)
		}
	}
	for op := Opcode(4); op <= 10; op++ {
		if d.IsModifier(op) {
			t.Fatalf("expected %s not to be a modifier", op)
		}
	}
	if d.IsModifier(11) || d.IsModifier(-1) {
		t.Fatal("unknown opcode classified as modifier")
	}
}

func TestExecuteUnknownOpcode(t *testing.T) {
	d := newStandard(t)
	hw, org, env := &testHardware{}, &testOrganism{}, &testEnv{}
	for _, op := range []Opcode{11, 12, 1000, -1} {
		if _, err := d.Execute(op, hw, org, env); !errors.Is(err, ErrUnknownOpcode) {
			t.Fatalf("opcode %d: expected ErrUnknownOpcode, got %v", op, err)
		}
	}
	if _, err := d.Name(11); !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("expected ErrUnknownOpcode from name, got %v", err)
	}
}

func TestExecuteDispatchesToHandler(t *testing.T) {
	d := newStandard(t)
	hw, org, env := &testHardware{}, &testOrganism{}, &testEnv{inputs: []int{0b1100}}
	hw.regs[2] = 0b1010

	program := []Opcode{OpInput, OpNand, OpOutput, OpIfLabel, OpNopA, OpRepro}
	results := make([]bool, 0, len(program))
	for _, op := range program {
		ok, err := d.Execute(op, hw, org, env)
		if err != nil {
			t.Fatalf("execute %s: %v", op, err)
		}
		results = append(results, ok)
	}

	if len(org.outputs) != 1 || org.outputs[0] != ^(0b1100&0b1010) {
		t.Fatalf("unexpected outputs: %v", org.outputs)
	}
	if env.births != 1 {
		t.Fatalf("expected one birth, got %d", env.births)
	}
	if results[3] {
		t.Fatal("expected if-label handler result to pass through")
	}
	if !results[4] {
		t.Fatal("expected built-in nop to succeed")
	}
	if len(hw.trace) != 1 || hw.trace[0] != "if-label" {
		t.Fatalf("unexpected trace: %v", hw.trace)
	}
}

func TestStandardRequiresEveryHandler(t *testing.T) {
	set := newTestSet()
	set.Repro = nil
	if _, err := Standard(set); !errors.Is(err, ErrMissingHandler) {
		t.Fatalf("expected ErrMissingHandler, got %v", err)
	}
}

func TestAppendExtendsTable(t *testing.T) {
	d := newStandard(t)
	op, err := d.Append(Instruction[*testHardware, *testOrganism, *testEnv]{
		Name:    "inc",
		Handler: recordingHandler("inc", true),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if op != 11 {
		t.Fatalf("expected opcode 11, got %d", op)
	}
	if op.String() != "op(11)" {
		t.Fatalf("unexpected string for custom opcode: %s", op)
	}
	if _, err := d.Execute(op, &testHardware{}, &testOrganism{}, &testEnv{}); err != nil {
		t.Fatalf("execute appended: %v", err)
	}
	if _, err := d.Append(Instruction[*testHardware, *testOrganism, *testEnv]{
		Name:    "nand",
		Handler: recordingHandler("nand", true),
	}); !errors.Is(err, ErrDuplicateInstruction) {
		t.Fatalf("expected ErrDuplicateInstruction, got %v", err)
	}
	if _, err := d.Append(Instruction[*testHardware, *testOrganism, *testEnv]{Handler: recordingHandler("x", true)}); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestCustomInstructionSet(t *testing.T) {
	d, err := New(
		Instruction[int, int, int]{Name: "label", Modifier: true, Handler: func(int, int, int) bool { return true }},
		Instruction[int, int, int]{Name: "add", Handler: func(a, b, c int) bool { return a+b == c }},
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ok, err := d.Execute(1, 2, 3, 5)
	if err != nil || !ok {
		t.Fatalf("execute add: ok=%v err=%v", ok, err)
	}
	if !d.IsModifier(0) || d.IsModifier(1) {
		t.Fatal("unexpected modifier classification")
	}
}

func TestModifierRun(t *testing.T) {
	d := newStandard(t)
	program := []Opcode{OpHSearch, OpNopA, OpNopB, OpNopX, OpNand, OpNopC}
	if n := d.ModifierRun(program, 1); n != 3 {
		t.Fatalf("expected run of 3, got %d", n)
	}
	if n := d.ModifierRun(program, 0); n != 0 {
		t.Fatalf("expected no run at a non-modifier, got %d", n)
	}
	if n := d.ModifierRun(program, 5); n != 1 {
		t.Fatalf("expected run of 1 at program end, got %d", n)
	}
	if n := d.ModifierRun(program, 6); n != 0 {
		t.Fatalf("expected no run past program end, got %d", n)
	}
}
