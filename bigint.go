package clvm

import "math/big"

// AtomAsInt decodes an atom's bytes as a signed two's-complement
// big-endian integer. Any byte length is accepted on input, including
// non-minimal (sign-extended) encodings; they decode to the same value
// as their minimal form.
func AtomAsInt(b []byte) *big.Int {
	n := new(big.Int)
	if len(b) == 0 {
		return n
	}
	n.SetBytes(b)
	if b[0]&0x80 != 0 {
		// Negative: n currently holds the unsigned magnitude of the
		// two's-complement bit pattern; subtract 2^(8*len(b)).
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		n.Sub(n, full)
	}
	return n
}

// IntAsAtom encodes n as the minimal two's-complement big-endian atom:
// the unique byte string with no redundant leading sign byte. Zero
// encodes to the empty slice.
func IntAsAtom(n *big.Int) []byte {
	if n.Sign() == 0 {
		return nil
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if len(b) > 0 && b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Negative: compute the two's-complement bit pattern at the smallest
	// byte length that keeps the sign bit set correctly.
	mag := new(big.Int).Neg(n) // positive magnitude
	nbytes := (mag.BitLen() + 8) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	full := new(big.Int).Lsh(big.NewInt(1), uint(nbytes)*8)
	twos := new(big.Int).Add(full, n) // full + n, n negative
	b := twos.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0}, b...)
	}
	// Strip a redundant leading 0xff byte, unless doing so would flip the
	// sign (i.e. unless the next byte's high bit is clear).
	for len(b) > 1 && b[0] == 0xff && b[1]&0x80 != 0 {
		b = b[1:]
	}
	return b
}

// AtomAsUnsigned decodes an atom as a non-negative integer bounded to
// maxBytes*8 bits after minimization, failing ARG_OUT_OF_RANGE otherwise.
func AtomAsUnsigned(node NodePtr, b []byte, maxBytes int) (uint64, error) {
	n := AtomAsInt(b)
	if n.Sign() < 0 {
		return 0, errArgOutOfRange(node, "expected non-negative integer")
	}
	min := IntAsAtom(n)
	if len(min) > maxBytes {
		return 0, errArgOutOfRange(node, "integer out of range")
	}
	if !n.IsUint64() {
		return 0, errArgOutOfRange(node, "integer out of range")
	}
	return n.Uint64(), nil
}

// NewIntAtom is a convenience wrapper allocating the minimal encoding of
// n directly.
func (a *Allocator) NewIntAtom(n *big.Int) (NodePtr, error) {
	return a.NewAtom(IntAsAtom(n))
}

// AtomAsBigInt decodes the atom at h.
func (a *Allocator) AtomAsBigInt(h NodePtr) *big.Int {
	return AtomAsInt(a.Atom(h))
}
