package serialize

import (
	"io"

	clvm "github.com/chia-network/go-clvm"
	clvmerrors "github.com/chia-network/go-clvm/errors"
)

type parseOp int

const (
	opParse parseOp = iota
	opCons
)

// Deserialize reads one value in the plain wire form from r. It uses
// an explicit two-stack machine (a pending-operations stack and a
// value stack) rather than recursive descent, so parsing a long list
// does not grow the Go call stack with it. r is wrapped in the
// sticky-error Reader; each read's error is checked and returned where
// the read happens.
func Deserialize(a *clvm.Allocator, r io.Reader) (clvm.NodePtr, error) {
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

			case b0 == nilByte:
				values = append(values, a.Nil())

			case b0 < 0x80:
				n, err := a.NewAtom([]byte{b0})
				if err != nil {
					return 0, err
				}
				values = append(values, n)

			default:
				length, err := readLength(sr, b0)
				if err != nil {
					return 0, err
				}
				if length > MaxAtomLength {
					return 0, errBadEncoding("atom exceeds maximum length")
				}
				data := make([]byte, length)
				if _, err := io.ReadFull(sr, data); err != nil {
					return 0, wrapReadErr(err)
				}
				n, err := a.NewAtom(data)
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

// readLength decodes the length that follows the header byte b0 for
// any of the plain-form multi-byte-length ranges. b0 must already be
// known not to be the pair marker, the nil byte, or a direct
// single-byte atom.
func readLength(r io.Reader, b0 byte) (int, error) {
	var extra int
	var high uint64
	switch {
	case b0 <= len1Hi:
		return int(b0 & 0x3f), nil
	case b0 <= len2Hi:
		extra, high = 1, uint64(b0&0x1f)
	case b0 <= len3Hi:
		extra, high = 2, uint64(b0&0x0f)
	case b0 <= len4Hi:
		extra, high = 3, uint64(b0&0x07)
	case b0 <= len5Hi:
		extra, high = 4, uint64(b0&0x03)
	default:
		return 0, errBadEncoding("reserved length prefix")
	}
	buf := make([]byte, extra)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, wrapReadErr(err)
	}
	n := high
	for _, c := range buf {
		n = n<<8 | uint64(c)
	}
	return int(n), nil
}

func wrapReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errBadEncoding("unexpected end of input")
	}
	return err
}

type encodingError string

func (e encodingError) Error() string { return "serialize: " + string(e) }

func errBadEncoding(msg string) error { return encodingError(msg) }
