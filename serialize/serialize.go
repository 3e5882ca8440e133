package serialize

import clvm "github.com/chia-network/go-clvm"

// Serialize encodes h in the plain (uncompressed) wire form: a 0xFF
// byte followed by the two children for a pair, or a length-prefixed
// byte string for an atom. Traversal is iterative so that a long
// right-nested list does not consume native stack proportional to its
// length.
func Serialize(a *clvm.Allocator, h clvm.NodePtr) ([]byte, error) {
	var buf []byte
	stack := []clvm.NodePtr{h}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.IsPair(n) {
			first, rest := a.Pair(n)
			buf = append(buf, pairMarker)
			// Push rest first so first is processed (and appended)
			// before it, preserving the depth-first (first, then rest)
			// output order.
			stack = append(stack, rest, first)
			continue
		}
		b := a.Atom(n)
		if len(b) > MaxAtomLength {
			return nil, errTooLarge(n)
		}
		if len(b) == 1 && b[0] < 0x80 {
			buf = append(buf, b[0])
			continue
		}
		buf = appendAtomHeader(buf, len(b))
		buf = append(buf, b...)
	}
	return buf, nil
}

// SerializedLength returns len(Serialize(a, h)) without allocating the
// output buffer, used by the back-reference encoder to compare a
// candidate path substitution against the plain encoding's size.
func SerializedLength(a *clvm.Allocator, h clvm.NodePtr) int {
	total := 0
	stack := []clvm.NodePtr{h}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.IsPair(n) {
			first, rest := a.Pair(n)
			total++
			stack = append(stack, rest, first)
			continue
		}
		l := a.AtomLen(n)
		if l == 1 && a.Atom(n)[0] < 0x80 {
			total++
			continue
		}
		total += headerLength(l) + l
	}
	return total
}

type sizeError struct{ node clvm.NodePtr }

func (e sizeError) Error() string { return "serialize: atom exceeds maximum length" }

func errTooLarge(n clvm.NodePtr) error { return sizeError{n} }
