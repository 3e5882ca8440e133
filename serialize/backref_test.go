package serialize

import (
	"bytes"
	"testing"

	clvm "github.com/chia-network/go-clvm"
)

func roundTripBackref(t *testing.T, a *clvm.Allocator, h clvm.NodePtr) (clvm.NodePtr, []byte) {
	t.Helper()
	buf, err := SerializeWithBackrefs(a, h)
	if err != nil {
		t.Fatalf("SerializeWithBackrefs: %v", err)
	}
	out, err := DeserializeWithBackrefs(a, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("DeserializeWithBackrefs: %v", err)
	}
	return out, buf
}

// assertDeepEqual walks two node trees structurally (NodePtr identity
// does not carry across a serialize/deserialize round trip through a
// fresh allocator region).
func assertDeepEqual(t *testing.T, a *clvm.Allocator, got, want clvm.NodePtr, path string) {
	t.Helper()
	if a.IsAtom(want) {
		if !a.IsAtom(got) {
			t.Errorf("%s: got a pair, want atom %v", path, a.Atom(want))
			return
		}
		if !a.AtomEq(got, want) {
			t.Errorf("%s: got atom %v want %v", path, a.Atom(got), a.Atom(want))
		}
		return
	}
	if !a.IsPair(got) {
		t.Errorf("%s: got an atom, want a pair", path)
		return
	}
	gf, gr := a.Pair(got)
	wf, wr := a.Pair(want)
	assertDeepEqual(t, a, gf, wf, path+".first")
	assertDeepEqual(t, a, gr, wr, path+".rest")
}

func TestBackrefRoundTripNoRepetition(t *testing.T) {
	a := clvm.NewAllocator()
	h := mustPairNode(t, a, mustAtom(t, a, []byte("abc")), mustAtom(t, a, []byte{9}))

	out, _ := roundTripBackref(t, a, h)
	assertDeepEqual(t, a, out, h, "root")
}

func TestBackrefRoundTripRepeatedSibling(t *testing.T) {
	a := clvm.NewAllocator()
	// A repeated atom big enough that a path backref is cheaper than
	// re-encoding it: (bigatom bigatom) as a 2-element list.
	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	shared := mustAtom(t, a, payload)
	h := mustPairNode(t, a, shared, mustPairNode(t, a, shared, a.Nil()))

	out, buf := roundTripBackref(t, a, h)
	assertDeepEqual(t, a, out, h, "root")

	plain, err := Serialize(a, h)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(buf) >= len(plain) {
		t.Errorf("backref encoding (%d bytes) was not smaller than the plain encoding (%d bytes)", len(buf), len(plain))
	}
}

func TestBackrefRoundTripRepeatedSublist(t *testing.T) {
	a := clvm.NewAllocator()
	big1 := mustAtom(t, a, bytesOf(40, 0x11))
	big2 := mustAtom(t, a, bytesOf(40, 0x22))
	sublist := mustPairNode(t, a, big1, mustPairNode(t, a, big2, a.Nil()))

	// (sublist sublist) at the top level, both occurrences whole list
	// values still sitting on the stack when the second is encoded.
	h := mustPairNode(t, a, sublist, mustPairNode(t, a, sublist, a.Nil()))

	out, _ := roundTripBackref(t, a, h)
	assertDeepEqual(t, a, out, h, "root")
}

func bytesOf(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestBuildPathAtomMatchesTraversePath(t *testing.T) {
	a := clvm.NewAllocator()
	// env = ((10 . 20) . 30); the root-to-first-child-to-rest path
	// (bits [false, true], i.e. First then Rest) should reach 20,
	// matching path atom 5 under TraversePath's own convention.
	inner := mustPairNode(t, a, mustAtom(t, a, []byte{10}), mustAtom(t, a, []byte{20}))
	env := mustPairNode(t, a, inner, mustAtom(t, a, []byte{30}))

	pathBytes := buildPathAtom([]bool{false, true})
	pathAtom := mustAtom(t, a, pathBytes)

	got, err := clvm.TraversePath(a, pathAtom, env)
	if err != nil {
		t.Fatalf("TraversePath: %v", err)
	}
	want := mustAtom(t, a, []byte{20})
	if !a.AtomEq(got, want) {
		t.Errorf("TraversePath(buildPathAtom([F,T])) = %v want %v", a.Atom(got), a.Atom(want))
	}
}
