package clvm

import "math/big"

// numArgs walks a variadic operand list, decoding each element as a
// signed big integer and charging perArg+perByte as it goes, mirroring
// the reference virtual machine's pop-then-charge-then-compute shape
// generalized from fixed int64 operands to arbitrary-precision atoms.
func numArgs(a *Allocator, args NodePtr, acct *costAccount, base, perArg, perByte Cost) ([]*big.Int, error) {
	if err := acct.charge(base); err != nil {
		return nil, err
	}
	var nums []*big.Int
	err := argList(a, args, func(n NodePtr) error {
		b, err := requireAtom(a, n, "numeric operator")
		if err != nil {
			return err
		}
		if err := acct.charge(perArg); err != nil {
			return err
		}
		if err := acct.charge(perByte * Cost(len(b))); err != nil {
			return err
		}
		nums = append(nums, AtomAsInt(b))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nums, nil
}

func opAdd(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	nums, err := numArgs(a, args, acct, ArithBaseCost, ArithCostPerArg, ArithCostPerByte)
	if err != nil {
		return 0, err
	}
	sum := new(big.Int)
	for _, n := range nums {
		sum.Add(sum, n)
	}
	return a.NewIntAtom(sum)
}

func opSubtract(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	nums, err := numArgs(a, args, acct, ArithBaseCost, ArithCostPerArg, ArithCostPerByte)
	if err != nil {
		return 0, err
	}
	total := new(big.Int)
	for i, n := range nums {
		if i == 0 {
			total.Set(n)
		} else {
			total.Sub(total, n)
		}
	}
	return a.NewIntAtom(total)
}

func opMultiply(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(MulBaseCost); err != nil {
		return 0, err
	}
	acc := big.NewInt(1)
	accLen := 0
	first := true
	err := argList(a, args, func(n NodePtr) error {
		b, err := requireAtom(a, n, "*")
		if err != nil {
			return err
		}
		if first {
			acc = AtomAsInt(b)
			accLen = len(b)
			first = false
			return nil
		}
		if err := acct.charge(MulCostPerOp); err != nil {
			return err
		}
		if err := acct.charge(MulLinearCostPerByte * Cost(accLen+len(b))); err != nil {
			return err
		}
		if err := acct.charge(Cost(accLen*len(b)) / MulSquareCostPerByteDivider); err != nil {
			return err
		}
		acc.Mul(acc, AtomAsInt(b))
		accLen = len(IntAsAtom(acc))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.NewIntAtom(acc)
}

// divMod computes floor division and the matching remainder, the
// Python/Chialisp convention where the remainder takes the divisor's
// sign.
func divMod(x, y *big.Int) (q, r *big.Int) {
	q, r = new(big.Int), new(big.Int)
	q.DivMod(x, y, r) // big.Int.DivMod is Euclidean; adjust to floor convention below
	if r.Sign() != 0 && (r.Sign() < 0) != (y.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, y)
	}
	return q, r
}

func opDivmod(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return divmodImpl(a, args, acct, false)
}

func opDivmodLimit(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return divmodImpl(a, args, acct, true)
}

func divmodImpl(a *Allocator, args NodePtr, acct *costAccount, rejectNegDivisor bool) (NodePtr, error) {
	x, y, err := arg2(a, args, "divmod")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "divmod")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "divmod")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(DivmodBaseCost + DivmodCostPerByteDivider*Cost(len(yb))); err != nil {
		return 0, err
	}
	yi := AtomAsInt(yb)
	if yi.Sign() == 0 {
		return 0, errArgOutOfRange(y, "divmod: division by zero")
	}
	if rejectNegDivisor && yi.Sign() < 0 {
		return 0, errArgOutOfRange(y, "divmod: negative divisor")
	}
	q, r := divMod(AtomAsInt(xb), yi)
	qn, err := a.NewIntAtom(q)
	if err != nil {
		return 0, err
	}
	rn, err := a.NewIntAtom(r)
	if err != nil {
		return 0, err
	}
	return a.NewPair(qn, rn)
}

func opDiv(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return divImpl(a, args, acct, false)
}

func opDivLimit(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return divImpl(a, args, acct, true)
}

func divImpl(a *Allocator, args NodePtr, acct *costAccount, rejectNegDivisor bool) (NodePtr, error) {
	x, y, err := arg2(a, args, "/")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "/")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "/")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(DivBaseCost + DivCostPerByteDivider*Cost(len(yb))); err != nil {
		return 0, err
	}
	yi := AtomAsInt(yb)
	if yi.Sign() == 0 {
		return 0, errArgOutOfRange(y, "/: division by zero")
	}
	if rejectNegDivisor && yi.Sign() < 0 {
		return 0, errArgOutOfRange(y, "/: negative divisor")
	}
	q, _ := divMod(AtomAsInt(xb), yi)
	return a.NewIntAtom(q)
}

func opMod(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return modImpl(a, args, acct, false)
}

func opModLimit(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return modImpl(a, args, acct, true)
}

func modImpl(a *Allocator, args NodePtr, acct *costAccount, rejectNegDivisor bool) (NodePtr, error) {
	x, y, err := arg2(a, args, "mod")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "mod")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "mod")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(ModBaseCost + ModCostPerByteDivider*Cost(len(yb))); err != nil {
		return 0, err
	}
	yi := AtomAsInt(yb)
	if yi.Sign() == 0 {
		return 0, errArgOutOfRange(y, "mod: division by zero")
	}
	if rejectNegDivisor && yi.Sign() < 0 {
		return 0, errArgOutOfRange(y, "mod: negative divisor")
	}
	_, r := divMod(AtomAsInt(xb), yi)
	return a.NewIntAtom(r)
}

func opGr(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, y, err := arg2(a, args, ">")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, ">")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, ">")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(GrBaseCost + GrCostPerByte*Cost(len(xb)+len(yb))); err != nil {
		return 0, err
	}
	if AtomAsInt(xb).Cmp(AtomAsInt(yb)) > 0 {
		return a.One(), nil
	}
	return a.Nil(), nil
}

func shiftAmount(a *Allocator, n NodePtr) (int, error) {
	b, err := requireAtom(a, n, "shift amount")
	if err != nil {
		return 0, err
	}
	v, err := AtomAsUnsigned(n, b, 4)
	if err == nil {
		return int(v), nil
	}
	// negative shift: right-shift by the magnitude instead.
	bi := AtomAsInt(b)
	if bi.Sign() >= 0 || !bi.IsInt64() || bi.Int64() < -(1<<31) {
		return 0, errArgOutOfRange(n, "shift amount out of range")
	}
	return int(bi.Int64()), nil
}

func opAsh(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return shiftImpl(a, args, acct, AshiftBaseCost, AshiftCostPerByte)
}

func opLsh(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return shiftImpl(a, args, acct, LshiftBaseCost, LshiftCostPerByte)
}

func shiftImpl(a *Allocator, args NodePtr, acct *costAccount, base, perByte Cost) (NodePtr, error) {
	x, y, err := arg2(a, args, "shift")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "shift")
	if err != nil {
		return 0, err
	}
	shift, err := shiftAmount(a, y)
	if err != nil {
		return 0, err
	}
	if err := acct.charge(base + perByte*Cost(len(xb))); err != nil {
		return 0, err
	}
	v := AtomAsInt(xb)
	r := new(big.Int)
	if shift >= 0 {
		r.Lsh(v, uint(shift))
	} else {
		r.Rsh(v, uint(-shift))
	}
	if err := acct.charge(perByte * Cost(len(IntAsAtom(r)))); err != nil {
		return 0, err
	}
	return a.NewIntAtom(r)
}

func bitwiseFold(a *Allocator, args NodePtr, acct *costAccount, identity int64, fold func(acc, n *big.Int)) (NodePtr, error) {
	nums, err := numArgs(a, args, acct, LogBaseCost, LogCostPerArg, LogCostPerByte)
	if err != nil {
		return 0, err
	}
	acc := big.NewInt(identity)
	for _, n := range nums {
		fold(acc, n)
	}
	return a.NewIntAtom(acc)
}

func opLogand(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return bitwiseFold(a, args, acct, -1, func(acc, n *big.Int) { acc.And(acc, n) })
}

func opLogior(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return bitwiseFold(a, args, acct, 0, func(acc, n *big.Int) { acc.Or(acc, n) })
}

func opLogxor(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return bitwiseFold(a, args, acct, 0, func(acc, n *big.Int) { acc.Xor(acc, n) })
}

func opLognot(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, err := arg1(a, args, "lognot")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "lognot")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(LognotBaseCost + LognotCostPerByte*Cost(len(xb))); err != nil {
		return 0, err
	}
	r := new(big.Int).Not(AtomAsInt(xb))
	return a.NewIntAtom(r)
}

func opModpow(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	base, exp, mod, err := arg3(a, args, "modpow")
	if err != nil {
		return 0, err
	}
	baseb, err := requireAtom(a, base, "modpow")
	if err != nil {
		return 0, err
	}
	expb, err := requireAtom(a, exp, "modpow")
	if err != nil {
		return 0, err
	}
	modb, err := requireAtom(a, mod, "modpow")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(ModpowBaseCost + ModpowCostPerByte*Cost(len(baseb)+len(expb)+len(modb))); err != nil {
		return 0, err
	}
	expi := AtomAsInt(expb)
	if expi.Sign() < 0 {
		return 0, errArgOutOfRange(exp, "modpow: negative exponent")
	}
	modi := AtomAsInt(modb)
	if modi.Sign() == 0 {
		return 0, errArgOutOfRange(mod, "modpow: modulus is zero")
	}
	r := new(big.Int).Exp(AtomAsInt(baseb), expi, modi)
	// big.Int.Exp returns a result in [0, |modi|); fold back to modi's sign
	// convention to match divMod's floor-division remainder.
	if modi.Sign() < 0 && r.Sign() != 0 {
		r.Add(r, modi)
	}
	return a.NewIntAtom(r)
}
