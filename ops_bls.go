package clvm

import (
	"math/big"

	bls12381 "github.com/kilic/bls12-381"
)

// blsG1 and blsG2 are shared, stateless group-operation handles; the
// library's G1/G2 types carry no per-call state, so one instance each
// is reused across every operator invocation.
var (
	blsG1 = bls12381.NewG1()
	blsG2 = bls12381.NewG2()
)

func pointAddG1(a *Allocator, args NodePtr, acct *costAccount, baseCost Cost, negateFirst bool) (NodePtr, error) {
	x, y, err := arg2(a, args, "g1 point op")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "g1 point op")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "g1 point op")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(baseCost); err != nil {
		return 0, err
	}
	p1, err := blsG1.FromCompressed(xb)
	if err != nil {
		return 0, errArgOutOfRange(x, "invalid G1 point")
	}
	p2, err := blsG1.FromCompressed(yb)
	if err != nil {
		return 0, errArgOutOfRange(y, "invalid G1 point")
	}
	if negateFirst {
		blsG1.Neg(p2, p2)
	}
	r := bls12381.PointG1{}
	blsG1.Add(&r, p1, p2)
	return a.NewAtom(blsG1.ToCompressed(&r))
}

func opBlsG1Subtract(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return pointAddG1(a, args, acct, BlsG1SubtractBaseCost, true)
}

func opBlsG1Multiply(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	point, scalar, err := arg2(a, args, "g1_multiply")
	if err != nil {
		return 0, err
	}
	pb, err := requireAtom(a, point, "g1_multiply")
	if err != nil {
		return 0, err
	}
	sb, err := requireAtom(a, scalar, "g1_multiply")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsG1MultiplyBaseCost); err != nil {
		return 0, err
	}
	p, err := blsG1.FromCompressed(pb)
	if err != nil {
		return 0, errArgOutOfRange(point, "invalid G1 point")
	}
	r := bls12381.PointG1{}
	blsG1.MulScalarBig(&r, p, new(big.Int).SetBytes(sb))
	return a.NewAtom(blsG1.ToCompressed(&r))
}

func negateG1Impl(a *Allocator, args NodePtr, acct *costAccount, strict bool) (NodePtr, error) {
	x, err := arg1(a, args, "g1_negate")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "g1_negate")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsG1NegateBaseCost); err != nil {
		return 0, err
	}
	p, err := blsG1.FromCompressed(xb)
	if err != nil {
		if strict || len(xb) != 48 {
			return 0, errArgOutOfRange(x, "invalid G1 point")
		}
		// RelaxedBLS: accept the correctly-sized but invalid encoding
		// unchanged, leaving sign-flip semantics undefined for it.
		return a.NewAtom(xb)
	}
	r := bls12381.PointG1{}
	blsG1.Neg(&r, p)
	return a.NewAtom(blsG1.ToCompressed(&r))
}

func opBlsG1Negate(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return negateG1Impl(a, args, acct, false)
}

func opBlsG1NegateStrict(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return negateG1Impl(a, args, acct, true)
}

func pointAddG2(a *Allocator, args NodePtr, acct *costAccount, baseCost Cost, negateFirst bool) (NodePtr, error) {
	x, y, err := arg2(a, args, "g2 point op")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "g2 point op")
	if err != nil {
		return 0, err
	}
	yb, err := requireAtom(a, y, "g2 point op")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(baseCost); err != nil {
		return 0, err
	}
	p1, err := blsG2.FromCompressed(xb)
	if err != nil {
		return 0, errArgOutOfRange(x, "invalid G2 point")
	}
	p2, err := blsG2.FromCompressed(yb)
	if err != nil {
		return 0, errArgOutOfRange(y, "invalid G2 point")
	}
	if negateFirst {
		blsG2.Neg(p2, p2)
	}
	r := bls12381.PointG2{}
	blsG2.Add(&r, p1, p2)
	return a.NewAtom(blsG2.ToCompressed(&r))
}

func opBlsG2Add(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return pointAddG2(a, args, acct, BlsG2AddBaseCost, false)
}

func opBlsG2Subtract(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return pointAddG2(a, args, acct, BlsG2SubtractBaseCost, true)
}

func opBlsG2Multiply(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	point, scalar, err := arg2(a, args, "g2_multiply")
	if err != nil {
		return 0, err
	}
	pb, err := requireAtom(a, point, "g2_multiply")
	if err != nil {
		return 0, err
	}
	sb, err := requireAtom(a, scalar, "g2_multiply")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsG2MultiplyBaseCost); err != nil {
		return 0, err
	}
	p, err := blsG2.FromCompressed(pb)
	if err != nil {
		return 0, errArgOutOfRange(point, "invalid G2 point")
	}
	r := bls12381.PointG2{}
	blsG2.MulScalarBig(&r, p, new(big.Int).SetBytes(sb))
	return a.NewAtom(blsG2.ToCompressed(&r))
}

func negateG2Impl(a *Allocator, args NodePtr, acct *costAccount, strict bool) (NodePtr, error) {
	x, err := arg1(a, args, "g2_negate")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "g2_negate")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsG2NegateBaseCost); err != nil {
		return 0, err
	}
	p, err := blsG2.FromCompressed(xb)
	if err != nil {
		if strict || len(xb) != 96 {
			return 0, errArgOutOfRange(x, "invalid G2 point")
		}
		return a.NewAtom(xb)
	}
	r := bls12381.PointG2{}
	blsG2.Neg(&r, p)
	return a.NewAtom(blsG2.ToCompressed(&r))
}

func opBlsG2Negate(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return negateG2Impl(a, args, acct, false)
}

func opBlsG2NegateStrict(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	return negateG2Impl(a, args, acct, true)
}

func opBlsMapToG1(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, err := arg1(a, args, "map_to_g1")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "map_to_g1")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsMapG1BaseCost); err != nil {
		return 0, err
	}
	p, err := blsG1.MapToCurve(xb)
	if err != nil {
		return 0, errArgOutOfRange(x, "invalid map_to_g1 input")
	}
	return a.NewAtom(blsG1.ToCompressed(p))
}

func opBlsMapToG2(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, err := arg1(a, args, "map_to_g2")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "map_to_g2")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(BlsMapG2BaseCost); err != nil {
		return 0, err
	}
	p, err := blsG2.MapToCurve(xb)
	if err != nil {
		return 0, errArgOutOfRange(x, "invalid map_to_g2 input")
	}
	return a.NewAtom(blsG2.ToCompressed(p))
}

// opBlsPairingIdentity checks that the product of pairings
// e(g1_0, g2_0) * e(g1_1, g2_1) * ... is the identity in the target
// group — the core check behind BLS signature aggregation, taking
// (g1 g2 g1 g2 ...) evaluated operand pairs.
func opBlsPairingIdentity(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(BlsPairingBaseCost); err != nil {
		return 0, err
	}
	engine := bls12381.NewEngine()
	n := 0
	for args != a.Nil() {
		g1Node, rest1, err := unpack1(a, args)
		if err != nil {
			return 0, errArgCount(args, "pairing_identity")
		}
		g2Node, rest2, err := unpack1(a, rest1)
		if err != nil {
			return 0, errArgCount(args, "pairing_identity")
		}
		g1b, err := requireAtom(a, g1Node, "pairing_identity")
		if err != nil {
			return 0, err
		}
		g2b, err := requireAtom(a, g2Node, "pairing_identity")
		if err != nil {
			return 0, err
		}
		if n > 0 {
			if err := acct.charge(BlsPairingCostPerArg); err != nil {
				return 0, err
			}
		}
		g1p, err := blsG1.FromCompressed(g1b)
		if err != nil {
			return 0, errArgOutOfRange(g1Node, "invalid G1 point")
		}
		g2p, err := blsG2.FromCompressed(g2b)
		if err != nil {
			return 0, errArgOutOfRange(g2Node, "invalid G2 point")
		}
		engine.AddPair(g1p, g2p)
		args = rest2
		n++
	}
	if engine.Check() {
		return a.One(), nil
	}
	return a.Nil(), nil
}

// opBlsVerify checks a single BLS signature directly: (pubkey message
// signature), hashing message to a G2 point and pairing it against the
// fixed generator and the signature.
func opBlsVerify(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(BlsPairingBaseCost + BlsPairingCostPerArg); err != nil {
		return 0, err
	}
	pk, msg, sig, err := arg3(a, args, "bls_verify")
	if err != nil {
		return 0, err
	}
	pkb, err := requireAtom(a, pk, "bls_verify")
	if err != nil {
		return 0, err
	}
	msgb, err := requireAtom(a, msg, "bls_verify")
	if err != nil {
		return 0, err
	}
	sigb, err := requireAtom(a, sig, "bls_verify")
	if err != nil {
		return 0, err
	}
	pubPoint, err := blsG1.FromCompressed(pkb)
	if err != nil {
		return 0, errArgOutOfRange(pk, "invalid public key")
	}
	sigPoint, err := blsG2.FromCompressed(sigb)
	if err != nil {
		return 0, errArgOutOfRange(sig, "invalid signature")
	}
	hashPoint, err := blsG2.MapToCurve(msgb)
	if err != nil {
		return 0, errArgOutOfRange(msg, "invalid bls_verify message")
	}
	negG1 := bls12381.PointG1{}
	blsG1.Neg(&negG1, blsG1.One())

	engine := bls12381.NewEngine()
	engine.AddPair(pubPoint, hashPoint)
	engine.AddPair(&negG1, sigPoint)
	if engine.Check() {
		return a.One(), nil
	}
	return 0, errRaise(args)
}

// opPointAdd and opPubkeyForExp are the legacy BLS operators (G1 point
// addition and exponentiation of the fixed generator), kept under
// their historical opcodes for programs that predate the dedicated
// g1_* opcode range.
func opPointAdd(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(PointAddBaseCost); err != nil {
		return 0, err
	}
	acc := blsG1.Zero()
	n := 0
	err := argList(a, args, func(x NodePtr) error {
		xb, err := requireAtom(a, x, "point_add")
		if err != nil {
			return err
		}
		if n > 0 {
			if err := acct.charge(PointAddCostPerArg); err != nil {
				return err
			}
		}
		p, err := blsG1.FromCompressed(xb)
		if err != nil {
			return errArgOutOfRange(x, "invalid G1 point")
		}
		r := bls12381.PointG1{}
		blsG1.Add(&r, acc, p)
		acc = &r
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.NewAtom(blsG1.ToCompressed(acc))
}

func opPubkeyForExp(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	x, err := arg1(a, args, "pubkey_for_exp")
	if err != nil {
		return 0, err
	}
	xb, err := requireAtom(a, x, "pubkey_for_exp")
	if err != nil {
		return 0, err
	}
	if err := acct.charge(PubkeyBaseCost + PubkeyCostPerByte*Cost(len(xb))); err != nil {
		return 0, err
	}
	exp := AtomAsInt(xb)
	exp.Mod(exp, blsGroupOrder)
	r := bls12381.PointG1{}
	blsG1.MulScalarBig(&r, blsG1.One(), exp)
	return a.NewAtom(blsG1.ToCompressed(&r))
}

// blsGroupOrder is the BLS12-381 scalar field order, used to reduce
// exponents for pubkey_for_exp before scalar multiplication.
var blsGroupOrder = mustParseHexBig("73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001")

func mustParseHexBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex constant")
	}
	return n
}
