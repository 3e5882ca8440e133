package clvm

// argList walks a proper cons-list of evaluated operands, applying fn to
// each element in order. It fails ARG_TYPE if the list is improperly
// terminated.
func argList(a *Allocator, args NodePtr, fn func(NodePtr) error) error {
	for args != a.Nil() {
		if !a.IsPair(args) {
			return errArgType(args, "improperly terminated argument list")
		}
		first, rest := a.Pair(args)
		if err := fn(first); err != nil {
			return err
		}
		args = rest
	}
	return nil
}

func argCount(a *Allocator, args NodePtr) int {
	n := 0
	argList(a, args, func(NodePtr) error { n++; return nil })
	return n
}

func arg1(a *Allocator, args NodePtr, name string) (NodePtr, error) {
	x, rest, err := unpack1(a, args)
	if err != nil || rest != a.Nil() {
		return 0, errArgCount(args, name)
	}
	return x, nil
}

func arg2(a *Allocator, args NodePtr, name string) (x, y NodePtr, err error) {
	x, rest, err := unpack1(a, args)
	if err != nil {
		return 0, 0, errArgCount(args, name)
	}
	y, rest, err = unpack1(a, rest)
	if err != nil || rest != a.Nil() {
		return 0, 0, errArgCount(args, name)
	}
	return x, y, nil
}

func arg3(a *Allocator, args NodePtr, name string) (x, y, z NodePtr, err error) {
	x, rest, err := unpack1(a, args)
	if err != nil {
		return 0, 0, 0, errArgCount(args, name)
	}
	y, rest, err = unpack1(a, rest)
	if err != nil {
		return 0, 0, 0, errArgCount(args, name)
	}
	z, rest, err = unpack1(a, rest)
	if err != nil || rest != a.Nil() {
		return 0, 0, 0, errArgCount(args, name)
	}
	return x, y, z, nil
}

func requireAtom(a *Allocator, node NodePtr, name string) ([]byte, error) {
	if !a.IsAtom(node) {
		return nil, errArgType(node, name+": expected an atom")
	}
	return a.Atom(node), nil
}

func opIf(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(IfCost); err != nil {
		return 0, err
	}
	cond, then, els, err := arg3(a, args, "i")
	if err != nil {
		return 0, err
	}
	if isTruthy(a, cond) {
		return then, nil
	}
	return els, nil
}

func opCons(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(ConsCost); err != nil {
		return 0, err
	}
	first, rest, err := arg2(a, args, "c")
	if err != nil {
		return 0, err
	}
	return a.NewPair(first, rest)
}

func opFirst(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(FirstCost); err != nil {
		return 0, err
	}
	x, err := arg1(a, args, "f")
	if err != nil {
		return 0, err
	}
	if !a.IsPair(x) {
		return 0, errArgType(x, "f: expected a pair")
	}
	first, _ := a.Pair(x)
	return first, nil
}

func opRest(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(RestCost); err != nil {
		return 0, err
	}
	x, err := arg1(a, args, "r")
	if err != nil {
		return 0, err
	}
	if !a.IsPair(x) {
		return 0, errArgType(x, "r: expected a pair")
	}
	_, rest := a.Pair(x)
	return rest, nil
}

func opListp(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(ListpCost); err != nil {
		return 0, err
	}
	x, err := arg1(a, args, "l")
	if err != nil {
		return 0, err
	}
	if a.IsPair(x) {
		return a.One(), nil
	}
	return a.Nil(), nil
}

func opRaise(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(OpCost); err != nil {
		return 0, err
	}
	return 0, errRaise(args)
}

func opEq(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, y, err := arg2(a, args, "=")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "=")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "=")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(EqBaseCost + EqCostPerByte*Cost(len(xb)+len(yb))); err != nil {
		return 0, err
	}
	if bytesEqual(xb, yb) {
		return a.One(), nil
	}
	return a.Nil(), nil
}

func opGrBytes(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, y, err := arg2(a, args, ">s")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, ">s")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, ">s")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(GrsBaseCost + GrsCostPerByte*Cost(len(xb)+len(yb))); err != nil {
		return 0, err
	}
	if bytesGreater(xb, yb) {
		return a.One(), nil
	}
	return a.Nil(), nil
}

func opStrlen(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, err := arg1(a, args, "strlen")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "strlen")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(StrlenBaseCost + StrlenCostPerByte*Cost(len(xb))); err != nil {
		return 0, err
	}
	return a.NewSmallNumber(uint32(len(xb)))
}

func opSubstr(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(OpCost); err != nil {
		return 0, err
	}
	n := argCount(a, args)
	var s, start, end NodePtr
	var err error
	switch n {
	case 2:
		s, start, err = arg2(a, args, "substr")
	case 3:
		s, start, end, err = arg3(a, args, "substr")
	default:
		return 0, errArgCount(args, "substr")
	}
	if err != nil {
		return 0, err
	}
	sb, err := requireAtom(a, s, "substr")
	if err != nil {
		return 0, err
	}
	startN, err := AtomAsUnsigned(start, a.Atom(start), 4)
	if err != nil {
		return 0, err
	}
	endN := uint64(len(sb))
	if n == 3 {
		endN, err = AtomAsUnsigned(end, a.Atom(end), 4)
		if err != nil {
			return 0, err
		}
	}
	if startN > endN || endN > uint64(len(sb)) {
		return 0, errArgOutOfRange(args, "substr: index out of range")
	}
	return a.NewAtom(sb[startN:endN])
}

func opConcat(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(ConcatBaseCost); err != nil {
		return 0, err
	}
	var parts [][]byte
	totalLen := 0
	err := argList(a, args, func(n NodePtr) error {
		b, err := requireAtom(a, n, "concat")
		if err != nil {
			return err
		}
		if err := acct.charge(ConcatCostPerArg); err != nil {
			return err
		}
		if err := acct.charge(ConcatCostPerByte * Cost(len(b))); err != nil {
			return err
		}
		parts = append(parts, b)
		totalLen += len(b)
		return nil
	})
	if err != nil {
		return 0, err
	}
	out := make([]byte, 0, totalLen)
	for _, p := range parts {
		out = append(out, p...)
	}
	return a.NewAtom(out)
}

func opNot(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(BoolBaseCost); err != nil {
		return 0, err
	}
	x, err := arg1(a, args, "not")
	if err != nil {
		return 0, err
	}
	if isTruthy(a, x) {
		return a.Nil(), nil
	}
	return a.One(), nil
}

func opAny(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(BoolBaseCost); err != nil {
		return 0, err
	}
	found := false
	err := argList(a, args, func(n NodePtr) error {
		if isTruthy(a, n) {
			found = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if found {
		return a.One(), nil
	}
	return a.Nil(), nil
}

func opAll(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(BoolBaseCost); err != nil {
		return 0, err
	}
	all := true
	err := argList(a, args, func(n NodePtr) error {
		if !isTruthy(a, n) {
			all = false
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if all {
		return a.One(), nil
	}
	return a.Nil(), nil
}

// isTruthy mirrors the classic CLVM falseness convention: only the
// empty atom is false; every pair and every other atom (including [0])
// is true.
func isTruthy(a *Allocator, n NodePtr) bool {
	return !(a.IsAtom(n) && a.AtomLen(n) == 0)
}

func bytesEqual(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func bytesGreater(x, y []byte) bool {
	for i := 0; i < len(x) && i < len(y); i++ {
		if x[i] != y[i] {
			return x[i] > y[i]
		}
	}
	return len(x) > len(y)
}
