package clvm

import (
	"math/big"
	"testing"
)

func mustPair(t *testing.T, a *Allocator, first, rest NodePtr) NodePtr {
	t.Helper()
	p, err := a.NewPair(first, rest)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	return p
}

func mustInt(t *testing.T, a *Allocator, n int64) NodePtr {
	t.Helper()
	h, err := a.NewIntAtom(big.NewInt(n))
	if err != nil {
		t.Fatalf("NewIntAtom: %v", err)
	}
	return h
}

// lit wraps v in (q . v) so it evaluates to itself rather than being
// read as an environment path, the way every literal operand in a
// program under test needs to be written.
func lit(t *testing.T, a *Allocator, v NodePtr) NodePtr {
	t.Helper()
	return mustPair(t, a, mustInt(t, a, int64(OpQuote)), v)
}

func litInt(t *testing.T, a *Allocator, n int64) NodePtr {
	t.Helper()
	return lit(t, a, mustInt(t, a, n))
}

// list builds a proper right-nested list of the given handles.
func list(t *testing.T, a *Allocator, items ...NodePtr) NodePtr {
	t.Helper()
	out := a.Nil()
	for i := len(items) - 1; i >= 0; i-- {
		out = mustPair(t, a, items[i], out)
	}
	return out
}

func opCall(t *testing.T, a *Allocator, op Opcode, args ...NodePtr) NodePtr {
	t.Helper()
	opAtom := mustInt(t, a, int64(op))
	return mustPair(t, a, opAtom, list(t, a, args...))
}

func runOrFatal(t *testing.T, a *Allocator, program, env NodePtr, maxCost Cost) (NodePtr, Cost) {
	t.Helper()
	d := NewDialect(0)
	result, cost, err := Run(a, d, program, env, maxCost)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result, cost
}

func TestRunQuote(t *testing.T) {
	a := NewAllocator()
	inner := mustInt(t, a, 42)
	program := lit(t, a, inner)

	result, cost := runOrFatal(t, a, program, a.Nil(), 0)
	if !a.AtomEq(result, inner) {
		t.Errorf("quote result = %v want %v", a.Atom(result), a.Atom(inner))
	}
	if cost != QuoteCost {
		t.Errorf("quote cost = %d want %d", cost, QuoteCost)
	}
}

func TestRunArithmetic(t *testing.T) {
	a := NewAllocator()
	program := opCall(t, a, OpAdd, litInt(t, a, 2), litInt(t, a, 3))

	result, _ := runOrFatal(t, a, program, a.Nil(), 0)
	got := a.AtomAsBigInt(result)
	if got.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("(+ 2 3) = %v want 5", got)
	}
}

func TestRunTraversePath(t *testing.T) {
	a := NewAllocator()
	// env = ((10 . 20) . 30); path 5 = rest(first(env)) = 20.
	inner := mustPair(t, a, mustInt(t, a, 10), mustInt(t, a, 20))
	env := mustPair(t, a, inner, mustInt(t, a, 30))
	path := mustInt(t, a, 5)

	result, _ := runOrFatal(t, a, path, env, 0)
	got := a.AtomAsBigInt(result)
	if got.Cmp(big.NewInt(20)) != 0 {
		t.Errorf("path 5 = %v want 20", got)
	}
}

func TestRunApply(t *testing.T) {
	a := NewAllocator()
	// (a (q . (+ (q . 1) (q . 1))) (q . 0))
	inner := opCall(t, a, OpAdd, litInt(t, a, 1), litInt(t, a, 1))
	quotedProgram := lit(t, a, inner)
	quotedEnv := litInt(t, a, 0)
	program := mustPair(t, a, mustInt(t, a, int64(OpApply)), list(t, a, quotedProgram, quotedEnv))

	result, _ := runOrFatal(t, a, program, a.Nil(), 0)
	got := a.AtomAsBigInt(result)
	if got.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("apply result = %v want 2", got)
	}
}

func TestRunCostExceeded(t *testing.T) {
	a := NewAllocator()
	program := lit(t, a, mustInt(t, a, 1))

	d := NewDialect(0)
	_, _, err := Run(a, d, program, a.Nil(), QuoteCost-1)
	if err == nil {
		t.Fatal("expected COST_EXCEEDED, got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindCostExceeded {
		t.Errorf("err = %v want COST_EXCEEDED", err)
	}
}

// softforkOperands builds the operand list a program writes for a
// softfork call: (cost-expr extension-expr program-expr env-expr),
// evaluated by the interpreter into the 4-element list evalSoftfork
// destructures as (cost extension program env).
func softforkOperands(t *testing.T, a *Allocator, cost, extension, program, env NodePtr) NodePtr {
	t.Helper()
	return list(t, a, cost, extension, program, env)
}

func TestSoftforkExactCostRequired(t *testing.T) {
	a := NewAllocator()
	// (q . 1), evaluated alone, costs exactly QuoteCost.
	innerProgram := lit(t, a, a.One())
	operands := softforkOperands(t, a, litInt(t, a, int64(QuoteCost)), litInt(t, a, 0), lit(t, a, innerProgram), litInt(t, a, 1))
	program := mustPair(t, a, mustInt(t, a, int64(OpSoftfork)), operands)

	result, _ := runOrFatal(t, a, program, a.Nil(), 0)
	if !a.AtomEq(result, a.Nil()) {
		t.Errorf("softfork result = %v want () regardless of the inner program's return value", a.Atom(result))
	}
}

func TestSoftforkInexactCostFails(t *testing.T) {
	a := NewAllocator()
	innerProgram := lit(t, a, a.One())
	// Declare a cost ceiling the inner quote can't exactly consume.
	operands := softforkOperands(t, a, litInt(t, a, int64(QuoteCost+1)), litInt(t, a, 0), lit(t, a, innerProgram), litInt(t, a, 1))
	program := mustPair(t, a, mustInt(t, a, int64(OpSoftfork)), operands)

	d := NewDialect(0)
	_, _, err := Run(a, d, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error for an inexact softfork cost, got nil")
	}
}
