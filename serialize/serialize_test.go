package serialize

import (
	"bytes"
	"testing"

	clvm "github.com/chia-network/go-clvm"
)

func mustAtom(t *testing.T, a *clvm.Allocator, b []byte) clvm.NodePtr {
	t.Helper()
	h, err := a.NewAtom(b)
	if err != nil {
		t.Fatalf("NewAtom: %v", err)
	}
	return h
}

func mustPairNode(t *testing.T, a *clvm.Allocator, first, rest clvm.NodePtr) clvm.NodePtr {
	t.Helper()
	h, err := a.NewPair(first, rest)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	return h
}

func roundTrip(t *testing.T, a *clvm.Allocator, h clvm.NodePtr) clvm.NodePtr {
	t.Helper()
	buf, err := Serialize(a, h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := SerializedLength(a, h); got != len(buf) {
		t.Errorf("SerializedLength = %d want %d", got, len(buf))
	}
	out, err := Deserialize(a, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return out
}

func TestSerializeRoundTripNil(t *testing.T) {
	a := clvm.NewAllocator()
	out := roundTrip(t, a, a.Nil())
	if !a.IsAtom(out) || a.AtomLen(out) != 0 {
		t.Errorf("round trip of nil produced %v", a.Atom(out))
	}
}

func TestSerializeRoundTripSmallAtom(t *testing.T) {
	a := clvm.NewAllocator()
	h := mustAtom(t, a, []byte{5})
	out := roundTrip(t, a, h)
	if !a.AtomEq(out, h) {
		t.Errorf("round trip of small atom = %v want %v", a.Atom(out), a.Atom(h))
	}
}

func TestSerializeRoundTripLongAtom(t *testing.T) {
	a := clvm.NewAllocator()
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}
	h := mustAtom(t, a, data)
	out := roundTrip(t, a, h)
	if !a.AtomEq(out, h) {
		t.Errorf("round trip of long atom mismatched")
	}
}

func TestSerializeRoundTripPair(t *testing.T) {
	a := clvm.NewAllocator()
	left := mustAtom(t, a, []byte("hello"))
	right := mustAtom(t, a, []byte{42})
	h := mustPairNode(t, a, left, right)

	out := roundTrip(t, a, h)
	if !a.IsPair(out) {
		t.Fatal("round trip of a pair produced an atom")
	}
	gotFirst, gotRest := a.Pair(out)
	if !a.AtomEq(gotFirst, left) || !a.AtomEq(gotRest, right) {
		t.Errorf("round trip of a pair mismatched: (%v . %v)", a.Atom(gotFirst), a.Atom(gotRest))
	}
}

func TestSerializeRoundTripNestedList(t *testing.T) {
	a := clvm.NewAllocator()
	tail := a.Nil()
	for i := 0; i < 20; i++ {
		tail = mustPairNode(t, a, mustAtom(t, a, []byte{byte(i)}), tail)
	}

	out := roundTrip(t, a, tail)
	node := out
	for i := 19; i >= 0; i-- {
		if !a.IsPair(node) {
			t.Fatalf("list unwound early at i=%d", i)
		}
		first, rest := a.Pair(node)
		if a.AtomLen(first) != 1 || a.Atom(first)[0] != byte(i) {
			t.Errorf("element %d = %v want [%d]", i, a.Atom(first), i)
		}
		node = rest
	}
	if !a.AtomEq(node, a.Nil()) {
		t.Error("list did not terminate in nil")
	}
}

func TestDeserializeRejectsBackrefMarkerInPlainForm(t *testing.T) {
	a := clvm.NewAllocator()
	_, err := Deserialize(a, bytes.NewReader([]byte{0xfe, 0x01}))
	if err == nil {
		t.Fatal("expected the plain-form deserializer to reject a 0xFE marker, got nil")
	}
}

func TestDeserializeRejectsTruncatedInput(t *testing.T) {
	a := clvm.NewAllocator()
	_, err := Deserialize(a, bytes.NewReader([]byte{pairMarker, 0x01}))
	if err == nil {
		t.Fatal("expected an error for a truncated pair, got nil")
	}
}
