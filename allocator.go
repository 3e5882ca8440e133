// Package clvm implements the CLVM core: an arena-backed allocator, a
// bit-exact serializer/deserializer, a cost-metered tree interpreter, and
// the primitive operator set that together define the on-chain execution
// environment of a cryptocurrency.
package clvm

import "fmt"

// NodePtr is an opaque handle into an Allocator. Negative values address
// atoms, non-negative values address pairs, mirroring the reference
// arena's encoding (atom index i is stored at handle -(i+1)).
type NodePtr int32

// NilPtr and OnePtr are the two handles reserved at construction time for
// the canonical empty atom and the canonical atom [1]. Keeping them fixed
// means atom_as_int of 0 and 1 never touches the general allocation path.
const (
	NilPtr NodePtr = -1
	OnePtr NodePtr = -2
)

// NodeShape distinguishes the two shapes a CLVM node can take.
type NodeShape int

const (
	ShapeAtom NodeShape = iota
	ShapePair
)

// SExp is the total view of a node: either an atom's bytes or a pair of
// child handles.
type SExp struct {
	Shape       NodeShape
	Atom        []byte
	Left, Right NodePtr
}

type atomBounds struct {
	start, end uint32
}

type pairNode struct {
	first, rest NodePtr
}

// DefaultAtomByteLimit and DefaultPairLimit are the resource ceilings
// applied when an Allocator is constructed with NewAllocator. They
// approximate the reference implementation's LIMIT_HEAP ceilings.
const (
	DefaultAtomByteLimit = 1 << 30
	DefaultPairLimit     = 1 << 26
)

// Allocator is a process-scoped arena owning every atom and pair created
// during one evaluation. It is not a garbage collector: memory is only
// reclaimed by Rollback or by discarding the Allocator itself.
type Allocator struct {
	buf   []byte
	atoms []atomBounds
	pairs []pairNode

	atomByteLimit int
	pairLimit     int
}

// Checkpoint is an opaque token returned by Allocator.Checkpoint, passed
// back to Allocator.Rollback to logically truncate the arena. Handles
// allocated after the checkpoint become invalid once rolled back; callers
// must not retain them.
type Checkpoint struct {
	bufLen   int
	atomsLen int
	pairsLen int
}

// NewAllocator returns an empty Allocator with the default resource
// ceilings, pre-seeding the two reserved handles NilPtr and OnePtr.
func NewAllocator() *Allocator {
	return NewAllocatorLimits(DefaultAtomByteLimit, DefaultPairLimit)
}

// NewAllocatorLimits is like NewAllocator but lets the caller dial the
// atom-byte and pair ceilings directly, the way LIMIT_HEAP does.
func NewAllocatorLimits(atomByteLimit, pairLimit int) *Allocator {
	a := &Allocator{
		atomByteLimit: atomByteLimit,
		pairLimit:     pairLimit,
	}
	// Reserved slot -1 (NilPtr): the empty atom.
	a.atoms = append(a.atoms, atomBounds{0, 0})
	// Reserved slot -2 (OnePtr): the atom [1].
	a.buf = append(a.buf, 1)
	a.atoms = append(a.atoms, atomBounds{0, 1})
	return a
}

// ErrOutOfMemory is returned whenever an allocation would exceed the
// Allocator's configured atom-byte or pair ceiling.
var ErrOutOfMemory = &EvalError{Kind: KindOutOfMemory, Msg: "out of memory"}

func atomIndex(h NodePtr) int { return int(-h - 1) }

// NewAtom copies bytes into the arena and returns a handle to them.
func (a *Allocator) NewAtom(b []byte) (NodePtr, error) {
	if len(a.buf)+len(b) > a.atomByteLimit {
		return 0, ErrOutOfMemory
	}
	if len(a.atoms) >= int(^uint32(0)>>1) {
		return 0, ErrOutOfMemory
	}
	start := uint32(len(a.buf))
	a.buf = append(a.buf, b...)
	end := uint32(len(a.buf))
	a.atoms = append(a.atoms, atomBounds{start, end})
	idx := len(a.atoms) - 1
	return NodePtr(-(idx + 1)), nil
}

// NewPair allocates a new pair node from two existing handles.
func (a *Allocator) NewPair(first, rest NodePtr) (NodePtr, error) {
	if len(a.pairs) >= a.pairLimit {
		return 0, ErrOutOfMemory
	}
	a.pairs = append(a.pairs, pairNode{first, rest})
	return NodePtr(len(a.pairs) - 1), nil
}

// NewSmallNumber is equivalent to NewAtom(minimalEncoding(n)).
func (a *Allocator) NewSmallNumber(n uint32) (NodePtr, error) {
	return a.NewAtom(minimalUint(n))
}

func minimalUint(n uint32) []byte {
	if n == 0 {
		return nil
	}
	var buf [5]byte
	i := 5
	for n > 0 {
		i--
		buf[i] = byte(n)
		n >>= 8
	}
	if buf[i]&0x80 != 0 {
		i--
		buf[i] = 0
	}
	return buf[i:]
}

// Nil returns the canonical handle for the empty atom.
func (a *Allocator) Nil() NodePtr { return NilPtr }

// One returns the canonical handle for the atom [1].
func (a *Allocator) One() NodePtr { return OnePtr }

// IsAtom reports whether h addresses an atom.
func (a *Allocator) IsAtom(h NodePtr) bool { return h < 0 }

// IsPair reports whether h addresses a pair.
func (a *Allocator) IsPair(h NodePtr) bool { return h >= 0 }

// Atom returns the byte contents of the atom at h. Calling it on a pair
// handle is a programming error and panics, mirroring Sexp's total-ness
// contract being enforced by callers checking IsAtom first.
func (a *Allocator) Atom(h NodePtr) []byte {
	b := a.atoms[atomIndex(h)]
	return a.buf[b.start:b.end]
}

// AtomLen returns len(Atom(h)) without slicing the backing buffer.
func (a *Allocator) AtomLen(h NodePtr) int {
	b := a.atoms[atomIndex(h)]
	return int(b.end - b.start)
}

// Pair returns the two children of the pair at h.
func (a *Allocator) Pair(h NodePtr) (first, rest NodePtr) {
	p := a.pairs[h]
	return p.first, p.rest
}

// Sexp returns the total view of the node at h.
func (a *Allocator) Sexp(h NodePtr) SExp {
	if a.IsAtom(h) {
		return SExp{Shape: ShapeAtom, Atom: a.Atom(h)}
	}
	l, r := a.Pair(h)
	return SExp{Shape: ShapePair, Left: l, Right: r}
}

// SmallNumber returns the value of h if it is a non-negative atom of at
// most 4 bytes, without allocating an intermediate big.Int. Used on the
// opcode-dispatch hot path.
func (a *Allocator) SmallNumber(h NodePtr) (uint32, bool) {
	if !a.IsAtom(h) {
		return 0, false
	}
	b := a.Atom(h)
	if len(b) == 0 {
		return 0, true
	}
	if b[0]&0x80 != 0 || len(b) > 4 {
		return 0, false
	}
	if len(b) > 1 && b[0] == 0 {
		return 0, false // not minimal
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, true
}

// AtomEq reports whether the atoms at a and b hold identical bytes.
func (al *Allocator) AtomEq(a, b NodePtr) bool {
	x, y := al.Atom(a), al.Atom(b)
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

// Checkpoint records the current arena extent for a later Rollback.
func (a *Allocator) Checkpoint() Checkpoint {
	return Checkpoint{len(a.buf), len(a.atoms), len(a.pairs)}
}

// Rollback truncates the arena back to the state recorded by cp. Any
// handle allocated since cp was taken becomes invalid.
func (a *Allocator) Rollback(cp Checkpoint) {
	a.buf = a.buf[:cp.bufLen]
	a.atoms = a.atoms[:cp.atomsLen]
	a.pairs = a.pairs[:cp.pairsLen]
}

// AtomCount and PairCount report the arena's current population, mainly
// for diagnostics and tests.
func (a *Allocator) AtomCount() int { return len(a.atoms) }
func (a *Allocator) PairCount() int { return len(a.pairs) }

func (a *Allocator) String() string {
	return fmt.Sprintf("Allocator{atoms=%d pairs=%d bytes=%d}", len(a.atoms), len(a.pairs), len(a.buf))
}
