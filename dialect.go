package clvm

// Flags are the dialect activation bits. Bit positions are taken
// verbatim from the reference project's own registry rather than
// renumbered, since flag bits are a shared registry coordinated across
// conforming implementations; unknown bits are reserved and ignored.
type Flags uint32

const (
	// CanonicalInts is part of MempoolMode, but no operator reads it:
	// non-minimal integer encodings are accepted whatever the flags.
	CanonicalInts Flags = 0x0001

	// NoUnknownOps makes unknown opcodes an error instead of a
	// well-defined-cost no-op.
	NoUnknownOps Flags = 0x0002

	// LimitHeap is part of MempoolMode, but neither the dialect nor the
	// interpreter reads it: the allocator's atom-byte and pair caps are
	// fixed when it is built (NewAllocator, NewAllocatorLimits) and
	// apply whatever the flags.
	LimitHeap Flags = 0x0004

	// RelaxedBLS makes bls_g1_negate/bls_g2_negate accept invalid points
	// as long as they have the right byte length.
	RelaxedBLS Flags = 0x0008

	// EnableKeccakOpsOutsideGuard enables keccak256 as a default
	// operator instead of requiring the softfork guard.
	EnableKeccakOpsOutsideGuard Flags = 0x0100

	// DisableOp switches div/divmod/mod to their variants that reject a
	// negative divisor, and turns modpow into an unknown opcode.
	DisableOp Flags = 0x0200

	// EnableSha256Tree enables the sha256tree operator outside the
	// softfork guard.
	EnableSha256Tree Flags = 0x0400

	// EnableSecpOps enables the dedicated secp256k1_verify (64) and
	// secp256r1_verify (65) opcodes.
	EnableSecpOps Flags = 0x0800

	// NoNegDiv makes division by a negative divisor an error instead of
	// rounding toward negative infinity.
	NoNegDiv Flags = 0x1000
)

// MempoolMode is the stricter preset used when validating transactions
// for relay rather than for consensus.
const MempoolMode Flags = NoUnknownOps | LimitHeap | DisableOp | CanonicalInts

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// OperatorSet names the dispatch table a softfork extension unlocks.
type OperatorSet int

const (
	OperatorSetDefault OperatorSet = iota
	OperatorSetBls
	OperatorSetKeccak
)

// Opcode values for the default operator set.
const (
	OpQuote Opcode = 1
	OpApply Opcode = 2
	OpIf    Opcode = 3
	OpCons  Opcode = 4
	OpFirst Opcode = 5
	OpRest  Opcode = 6
	OpListp Opcode = 7
	OpRaise Opcode = 8
	OpEq    Opcode = 9
	OpGrBytes Opcode = 10
	OpSha256  Opcode = 11
	OpSubstr  Opcode = 12
	OpStrlen  Opcode = 13
	OpConcat  Opcode = 14

	OpAdd      Opcode = 16
	OpSubtract Opcode = 17
	OpMultiply Opcode = 18
	OpDiv      Opcode = 19
	OpDivmod   Opcode = 20
	OpGr       Opcode = 21
	OpAsh      Opcode = 22
	OpLsh      Opcode = 23
	OpLogand   Opcode = 24
	OpLogior   Opcode = 25
	OpLogxor   Opcode = 26
	OpLognot   Opcode = 27

	OpPointAdd      Opcode = 29
	OpPubkeyForExp  Opcode = 30

	OpNot Opcode = 32
	OpAny Opcode = 33
	OpAll Opcode = 34

	OpSoftfork Opcode = 36

	OpCoinid        Opcode = 48
	OpG1Subtract    Opcode = 49
	OpG1Multiply    Opcode = 50
	OpG1Negate      Opcode = 51
	OpG2Add         Opcode = 52
	OpG2Subtract    Opcode = 53
	OpG2Multiply    Opcode = 54
	OpG2Negate      Opcode = 55
	OpMapToG1       Opcode = 56
	OpMapToG2       Opcode = 57
	OpPairingIdentity Opcode = 58
	OpBlsVerify     Opcode = 59
	OpModpow        Opcode = 60
	OpMod           Opcode = 61
	OpKeccak256     Opcode = 62
	OpSha256Tree    Opcode = 63
	OpSecp256k1Verify Opcode = 64
	OpSecp256r1Verify Opcode = 65
)

// Opcode is the numeric value extracted from an operator atom.
type Opcode = uint32

// operatorFunc is the signature every primitive operator implements:
// charge cost before doing work, against the budget in acct, and return
// the result node.
type operatorFunc func(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error)

// Dialect resolves an operator atom plus the active flag/extension state
// to a concrete implementation. It is the CLVM analogue of the teacher's
// [256]opInfo dispatch table, generalized to softfork extensions.
type Dialect struct {
	Flags Flags
}

// NewDialect returns a Dialect with the given activation flags.
func NewDialect(flags Flags) *Dialect { return &Dialect{Flags: flags} }

// QuoteKeyword and ApplyKeyword are the two opcodes the interpreter
// special-cases before ever consulting the dispatch table.
func (d *Dialect) QuoteKeyword() Opcode { return OpQuote }
func (d *Dialect) ApplyKeyword() Opcode { return OpApply }
func (d *Dialect) SoftforkKeyword() Opcode { return OpSoftfork }

// SoftforkExtension interprets the extension argument passed to
// softfork, returning which operator set it unlocks.
func (d *Dialect) SoftforkExtension(ext uint32) OperatorSet {
	switch ext {
	case 0:
		return OperatorSetBls
	case 1:
		return OperatorSetKeccak
	default:
		return OperatorSetDefault
	}
}

// AllowUnknownOps reports whether an opcode outside the dispatch table is
// a costed no-op (true) or a hard error (false).
func (d *Dialect) AllowUnknownOps() bool { return !d.Flags.has(NoUnknownOps) }

// Op resolves the operator atom o (its bytes are the opcode) against the
// active flags and the operator set the current softfork extension (if
// any) unlocked, and invokes it.
func (d *Dialect) Op(a *Allocator, o, args NodePtr, acct *costAccount, extension OperatorSet) (NodePtr, error) {
	flags := d.Flags
	switch extension {
	case OperatorSetKeccak:
		flags |= EnableKeccakOpsOutsideGuard
	case OperatorSetBls:
		// BLS has been hardforked into the default set; no effect.
	}

	opLen := a.AtomLen(o)
	if opLen == 4 {
		b := a.Atom(o)
		opcode := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		switch opcode {
		case 0x13d61f00:
			return opSecp256k1Verify(a, args, acct)
		case 0x1c3a8f00:
			return opSecp256r1Verify(a, args, acct)
		default:
			return d.unknownOperator(a, o, args, acct, flags)
		}
	}
	if opLen != 1 {
		return d.unknownOperator(a, o, args, acct, flags)
	}
	op, ok := a.SmallNumber(o)
	if !ok {
		return d.unknownOperator(a, o, args, acct, flags)
	}
	fn, ok := d.lookup(Opcode(op), flags)
	if !ok {
		return d.unknownOperator(a, o, args, acct, flags)
	}
	return fn(a, args, acct)
}

func (d *Dialect) lookup(op Opcode, flags Flags) (operatorFunc, bool) {
	switch op {
	case OpIf:
		return opIf, true
	case OpCons:
		return opCons, true
	case OpFirst:
		return opFirst, true
	case OpRest:
		return opRest, true
	case OpListp:
		return opListp, true
	case OpRaise:
		return opRaise, true
	case OpEq:
		return opEq, true
	case OpGrBytes:
		return opGrBytes, true
	case OpSha256:
		return opSha256, true
	case OpSubstr:
		return opSubstr, true
	case OpStrlen:
		return opStrlen, true
	case OpConcat:
		return opConcat, true
	case OpAdd:
		return opAdd, true
	case OpSubtract:
		return opSubtract, true
	case OpMultiply:
		return opMultiply, true
	case OpDiv:
		if flags.has(DisableOp) || flags.has(NoNegDiv) {
			return opDivLimit, true
		}
		return opDiv, true
	case OpDivmod:
		if flags.has(DisableOp) || flags.has(NoNegDiv) {
			return opDivmodLimit, true
		}
		return opDivmod, true
	case OpGr:
		return opGr, true
	case OpAsh:
		return opAsh, true
	case OpLsh:
		return opLsh, true
	case OpLogand:
		return opLogand, true
	case OpLogior:
		return opLogior, true
	case OpLogxor:
		return opLogxor, true
	case OpLognot:
		return opLognot, true
	case OpPointAdd:
		return opPointAdd, true
	case OpPubkeyForExp:
		return opPubkeyForExp, true
	case OpNot:
		return opNot, true
	case OpAny:
		return opAny, true
	case OpAll:
		return opAll, true
	case OpCoinid:
		return opCoinid, true
	case OpG1Subtract:
		return opBlsG1Subtract, true
	case OpG1Multiply:
		return opBlsG1Multiply, true
	case OpG1Negate:
		if flags.has(RelaxedBLS) {
			return opBlsG1Negate, true
		}
		return opBlsG1NegateStrict, true
	case OpG2Add:
		return opBlsG2Add, true
	case OpG2Subtract:
		return opBlsG2Subtract, true
	case OpG2Multiply:
		return opBlsG2Multiply, true
	case OpG2Negate:
		if flags.has(RelaxedBLS) {
			return opBlsG2Negate, true
		}
		return opBlsG2NegateStrict, true
	case OpMapToG1:
		return opBlsMapToG1, true
	case OpMapToG2:
		return opBlsMapToG2, true
	case OpPairingIdentity:
		return opBlsPairingIdentity, true
	case OpBlsVerify:
		return opBlsVerify, true
	case OpModpow:
		if flags.has(DisableOp) {
			return nil, false
		}
		return opModpow, true
	case OpMod:
		if flags.has(DisableOp) || flags.has(NoNegDiv) {
			return opModLimit, true
		}
		return opMod, true
	case OpKeccak256:
		if flags.has(EnableKeccakOpsOutsideGuard) {
			return opKeccak256, true
		}
		return nil, false
	case OpSha256Tree:
		if flags.has(EnableSha256Tree) {
			return opSha256Tree, true
		}
		return nil, false
	case OpSecp256k1Verify:
		if flags.has(EnableSecpOps) {
			return opSecp256k1Verify, true
		}
		return nil, false
	case OpSecp256r1Verify:
		if flags.has(EnableSecpOps) {
			return opSecp256r1Verify, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func (d *Dialect) unknownOperator(a *Allocator, o, args NodePtr, acct *costAccount, flags Flags) (NodePtr, error) {
	if flags.has(NoUnknownOps) {
		return 0, newErr(KindArgType, o, "unimplemented operator")
	}
	return opUnknown(a, o, args, acct)
}
