package serialize

import (
	"io"

	clvm "github.com/chia-network/go-clvm"
	clvmerrors "github.com/chia-network/go-clvm/errors"
)

// SerializeWithBackrefs encodes h the same way Serialize does, except
// that whenever a node recurs (the identical NodePtr was already
// written earlier), it is replaced by a 0xFE-marked path atom
// pointing back to that earlier occurrence, provided the path is
// strictly shorter than writing the node out again.
//
// The path is resolved the same way a program reads its environment:
// against the cons-list you would get by chaining every value still
// standing on the decoder's in-progress value stack, most recently
// completed value first. encodeNode simulates that same stack while
// it walks so the two sides agree on what position a path bit
// sequence names.
//
// A node only stays addressable while it sits on the stack as a
// whole element; once two siblings are consed into their parent, the
// simulated stack replaces them with the parent, so a backref can
// only reach a previously finished value or list, never into an
// already-collapsed ancestor's interior. That is a deliberate
// narrowing of the format, not the full reach of the reference
// compressor, but it catches the common case of an argument or
// sub-expression repeated at the same list level.
func SerializeWithBackrefs(a *clvm.Allocator, h clvm.NodePtr) ([]byte, error) {
	var buf []byte
	stack := []clvm.NodePtr{}
	seen := map[clvm.NodePtr]int{}
	if err := encodeNode(a, h, &buf, &stack, seen); err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeNode(a *clvm.Allocator, n clvm.NodePtr, buf *[]byte, stack *[]clvm.NodePtr, seen map[clvm.NodePtr]int) error {
	if idx, ok := seen[n]; ok {
		j := len(*stack) - 1 - idx
		bits := make([]bool, j+1)
		for i := 0; i < j; i++ {
			bits[i] = true
		}
		bits[j] = false
		pathAtom := buildPathAtom(bits)
		backref := appendBackref(nil, pathAtom)
		if len(backref) < SerializedLength(a, n) {
			*buf = append(*buf, backref...)
			pushSimulated(n, stack, seen)
			return nil
		}
	}

	if a.IsAtom(n) {
		b := a.Atom(n)
		if len(b) > MaxAtomLength {
			return errTooLarge(n)
		}
		encodeAtomPlain(b, buf)
		pushSimulated(n, stack, seen)
		return nil
	}

	first, rest := a.Pair(n)
	*buf = append(*buf, pairMarker)
	if err := encodeNode(a, first, buf, stack, seen); err != nil {
		return err
	}
	if err := encodeNode(a, rest, buf, stack, seen); err != nil {
		return err
	}
	delete(seen, first)
	delete(seen, rest)
	*stack = (*stack)[:len(*stack)-2]
	pushSimulated(n, stack, seen)
	return nil
}

func pushSimulated(n clvm.NodePtr, stack *[]clvm.NodePtr, seen map[clvm.NodePtr]int) {
	seen[n] = len(*stack)
	*stack = append(*stack, n)
}

func encodeAtomPlain(b []byte, buf *[]byte) {
	if len(b) == 1 && b[0] < 0x80 {
		*buf = append(*buf, b[0])
		return
	}
	*buf = appendAtomHeader(*buf, len(b))
	*buf = append(*buf, b...)
}

func appendBackref(buf []byte, pathAtom []byte) []byte {
	buf = append(buf, backrefMarker)
	if len(pathAtom) == 1 && pathAtom[0] < 0x80 {
		return append(buf, pathAtom[0])
	}
	buf = appendAtomHeader(buf, len(pathAtom))
	return append(buf, pathAtom...)
}

// buildPathAtom packs a root-to-target sequence of First(false)/
// Rest(true) direction bits into the minimal atom TraversePath would
// walk to reach the same target: bits are read most-significant-bit
// first, so bits[0] (the root's own decision) lands just below the
// terminator bit, each later bit one position lower, with bits[k-1]
// (the deepest decision) in the least significant bit of the last
// byte. The terminator itself occupies the one bit position above
// bits[0], matching the highest-set-bit convention TraversePath uses
// to find the end of a path without a separate length field.
func buildPathAtom(bits []bool) []byte {
	k := len(bits)
	totalBits := k + 1
	nbytes := (totalBits + 7) / 8
	buf := make([]byte, nbytes)
	setBit := func(pos int) {
		byteIdx := nbytes - 1 - pos/8
		buf[byteIdx] |= 1 << uint(pos%8)
	}
	for i, b := range bits {
		if b {
			setBit(k - 1 - i)
		}
	}
	setBit(k)
	return buf
}

// DeserializeWithBackrefs reads one value that may use the
// back-reference compressed form. It runs the same two-stack machine
// as Deserialize, except a 0xFE byte introduces a path atom (encoded
// exactly like any other atom) that is resolved against the current
// value stack, cons'd into a list most-recently-completed-first,
// using the same bit-walk the tree evaluator uses to read a program's
// environment.
func DeserializeWithBackrefs(a *clvm.Allocator, r io.Reader) (clvm.NodePtr, error) {
	sr := clvmerrors.NewReader(r)

	ops := []parseOp{opParse}
	var values []clvm.NodePtr

	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		switch op {
		case opCons:
			rest := values[len(values)-1]
			first := values[len(values)-2]
			values = values[:len(values)-2]
			p, err := a.NewPair(first, rest)
			if err != nil {
				return 0, err
			}
			values = append(values, p)

		case opParse:
			var hdr [1]byte
			if _, err := io.ReadFull(sr, hdr[:]); err != nil {
				return 0, wrapReadErr(err)
			}
			b0 := hdr[0]

			switch {
			case b0 == pairMarker:
				ops = append(ops, opCons, opParse, opParse)

			case b0 == backrefMarker:
				pathBytes, err := parseAtomBytes(sr)
				if err != nil {
					return 0, err
				}
				env := a.Nil()
				for i := len(values) - 1; i >= 0; i-- {
					np, err := a.NewPair(values[i], env)
					if err != nil {
						return 0, err
					}
					env = np
				}
				pathAtom, err := a.NewAtom(pathBytes)
				if err != nil {
					return 0, err
				}
				resolved, err := clvm.TraversePath(a, pathAtom, env)
				if err != nil {
					return 0, err
				}
				values = append(values, resolved)

			default:
				b, err := atomBodyFromHeader(sr, b0)
				if err != nil {
					return 0, err
				}
				n, err := a.NewAtom(b)
				if err != nil {
					return 0, err
				}
				values = append(values, n)
			}
		}
	}

	if len(values) != 1 {
		return 0, errBadEncoding("truncated input")
	}
	return values[0], nil
}

// parseAtomBytes reads one complete atom (header byte plus any
// payload); it is used to read the path atom that follows a 0xFE
// back-reference marker.
func parseAtomBytes(r io.Reader) ([]byte, error) {
	var hdr [1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, wrapReadErr(err)
	}
	return atomBodyFromHeader(r, hdr[0])
}

// atomBodyFromHeader decodes the payload of an atom whose header byte
// b0 has already been read, rejecting the pair and back-reference
// markers as invalid in this position.
func atomBodyFromHeader(r io.Reader, b0 byte) ([]byte, error) {
	switch {
	case b0 == nilByte:
		return nil, nil
	case b0 < 0x80:
		return []byte{b0}, nil
	case b0 == pairMarker || b0 == backrefMarker:
		return nil, errBadEncoding("expected atom, found marker")
	default:
		length, err := readLength(r, b0)
		if err != nil {
			return nil, err
		}
		if length > MaxAtomLength {
			return nil, errBadEncoding("atom exceeds maximum length")
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, wrapReadErr(err)
		}
		return data, nil
	}
}
