package clvm

import "testing"

func runWithFlags(t *testing.T, a *Allocator, flags Flags, program, env NodePtr, maxCost Cost) (NodePtr, Cost, error) {
	t.Helper()
	d := NewDialect(flags)
	return Run(a, d, program, env, maxCost)
}

func bytesAtom(t *testing.T, a *Allocator, n int, fill byte) NodePtr {
	t.Helper()
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	h, err := a.NewAtom(b)
	if err != nil {
		t.Fatalf("NewAtom: %v", err)
	}
	return h
}

func TestSecp256k1VerifyWrongMessageLength(t *testing.T) {
	a := NewAllocator()
	pk := bytesAtom(t, a, 33, 0x02)
	msg := bytesAtom(t, a, 16, 0xAB) // wrong length: must be 32
	sig := bytesAtom(t, a, 64, 0xCD)
	program := opCall(t, a, OpSecp256k1Verify, lit(t, a, pk), lit(t, a, msg), lit(t, a, sig))

	_, _, err := runWithFlags(t, a, EnableSecpOps, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error for a non-32-byte message, got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindArgOutOfRange {
		t.Errorf("err = %v want ARG_OUT_OF_RANGE", err)
	}
}

func TestSecp256k1VerifyInvalidPubkey(t *testing.T) {
	a := NewAllocator()
	pk := bytesAtom(t, a, 33, 0xFF) // not a point on the curve
	msg := bytesAtom(t, a, 32, 0xAB)
	sig := bytesAtom(t, a, 64, 0xCD)
	program := opCall(t, a, OpSecp256k1Verify, lit(t, a, pk), lit(t, a, msg), lit(t, a, sig))

	_, _, err := runWithFlags(t, a, EnableSecpOps, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error for an invalid public key, got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindArgOutOfRange {
		t.Errorf("err = %v want ARG_OUT_OF_RANGE", err)
	}
}

func TestSecp256k1VerifyGatedByFlag(t *testing.T) {
	a := NewAllocator()
	pk := bytesAtom(t, a, 33, 0x02)
	msg := bytesAtom(t, a, 32, 0xAB)
	sig := bytesAtom(t, a, 64, 0xCD)
	program := opCall(t, a, OpSecp256k1Verify, lit(t, a, pk), lit(t, a, msg), lit(t, a, sig))

	// Without EnableSecpOps the opcode falls back to the generic
	// unknown-operator handler, succeeding with nil rather than
	// actually checking the signature.
	result, _, err := runWithFlags(t, a, 0, program, a.Nil(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !a.AtomEq(result, a.Nil()) {
		t.Errorf("ungated secp256k1_verify result = %v want ()", a.Atom(result))
	}
}

func TestSecp256r1VerifyRejectsUncompressedPubkey(t *testing.T) {
	a := NewAllocator()
	pk := bytesAtom(t, a, 65, 0x04) // uncompressed-style prefix, wrong length/format
	msg := bytesAtom(t, a, 32, 0xAB)
	sig := bytesAtom(t, a, 64, 0xCD)
	program := opCall(t, a, OpSecp256r1Verify, lit(t, a, pk), lit(t, a, msg), lit(t, a, sig))

	_, _, err := runWithFlags(t, a, EnableSecpOps, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error for an uncompressed public key, got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindArgOutOfRange {
		t.Errorf("err = %v want ARG_OUT_OF_RANGE", err)
	}
}

func TestSecp256r1VerifyWrongSignatureLength(t *testing.T) {
	a := NewAllocator()
	pk := bytesAtom(t, a, 33, 0x02)
	msg := bytesAtom(t, a, 32, 0xAB)
	sig := bytesAtom(t, a, 10, 0xCD) // must be 64 bytes

	program := opCall(t, a, OpSecp256r1Verify, lit(t, a, pk), lit(t, a, msg), lit(t, a, sig))
	_, _, err := runWithFlags(t, a, EnableSecpOps, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected an error for a wrong-length signature, got nil")
	}
}

func TestSecp256WrongArgCount(t *testing.T) {
	a := NewAllocator()
	program := opCall(t, a, OpSecp256k1Verify, litInt(t, a, 1), litInt(t, a, 2))
	_, _, err := runWithFlags(t, a, EnableSecpOps, program, a.Nil(), 0)
	if err == nil {
		t.Fatal("expected ARG_COUNT for secp256k1_verify with 2 args, got nil")
	}
	evalErr, ok := err.(*EvalError)
	if !ok || evalErr.Kind != KindArgCount {
		t.Errorf("err = %v want ARG_COUNT", err)
	}
}
