package clvm

import "testing"

func runCall(t *testing.T, a *Allocator, op Opcode, args ...NodePtr) NodePtr {
	t.Helper()
	program := opCall(t, a, op, args...)
	result, _ := runOrFatal(t, a, program, a.Nil(), 0)
	return result
}

func TestCoreOps(t *testing.T) {
	a := NewAllocator()

	consOneTwo := opCall(t, a, OpCons, litInt(t, a, 1), litInt(t, a, 2))

	cases := []struct {
		name string
		got  NodePtr
		want NodePtr
	}{
		{"if-true", runCall(t, a, OpIf, lit(t, a, a.One()), litInt(t, a, 5), litInt(t, a, 6)), mustInt(t, a, 5)},
		{"if-false", runCall(t, a, OpIf, lit(t, a, a.Nil()), litInt(t, a, 5), litInt(t, a, 6)), mustInt(t, a, 6)},
		{"first", runCall(t, a, OpFirst, consOneTwo), mustInt(t, a, 1)},
		{"rest", runCall(t, a, OpRest, consOneTwo), mustInt(t, a, 2)},
		{"listp-atom", runCall(t, a, OpListp, litInt(t, a, 1)), a.Nil()},
		{"listp-pair", runCall(t, a, OpListp, consOneTwo), a.One()},
		{"eq-true", runCall(t, a, OpEq, litInt(t, a, 7), litInt(t, a, 7)), a.One()},
		{"eq-false", runCall(t, a, OpEq, litInt(t, a, 7), litInt(t, a, 8)), a.Nil()},
		{"not-true", runCall(t, a, OpNot, lit(t, a, a.One())), a.Nil()},
		{"not-false", runCall(t, a, OpNot, lit(t, a, a.Nil())), a.One()},
		{"any", runCall(t, a, OpAny, lit(t, a, a.Nil()), lit(t, a, a.Nil()), lit(t, a, a.One())), a.One()},
		{"all-false", runCall(t, a, OpAll, lit(t, a, a.One()), lit(t, a, a.Nil())), a.Nil()},
	}
	for _, c := range cases {
		if !a.AtomEq(c.got, c.want) {
			t.Errorf("%s: got %v want %v", c.name, a.Sexp(c.got), a.Sexp(c.want))
		}
	}
}

func TestOpRaise(t *testing.T) {
	a := NewAllocator()
	d := NewDialect(0)
	program := opCall(t, a, OpRaise, litInt(t, a, 1))
	_, _, err := Run(a, d, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error from (x 1), got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindClvmRaise {
		t.Errorf("err = %v want CLVM_RAISE", err)
	}
}

func TestOpConcatAndSubstr(t *testing.T) {
	a := NewAllocator()
	hello, err := a.NewAtom([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	world, err := a.NewAtom([]byte("world"))
	if err != nil {
		t.Fatal(err)
	}
	got := runCall(t, a, OpConcat, lit(t, a, hello), lit(t, a, world))
	if string(a.Atom(got)) != "helloworld" {
		t.Errorf("concat = %q want %q", a.Atom(got), "helloworld")
	}

	sub := runCall(t, a, OpSubstr, lit(t, a, hello), litInt(t, a, 1), litInt(t, a, 3))
	if string(a.Atom(sub)) != "el" {
		t.Errorf("substr = %q want %q", a.Atom(sub), "el")
	}
}

func TestOpFirstOnAtomFails(t *testing.T) {
	a := NewAllocator()
	d := NewDialect(0)
	program := opCall(t, a, OpFirst, litInt(t, a, 1))
	_, _, err := Run(a, d, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected ARG_TYPE from (f 1), got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindArgType {
		t.Errorf("err = %v want ARG_TYPE", err)
	}
}
