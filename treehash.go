package clvm

import "github.com/btcsuite/fastsha256"

// TreeHash computes the canonical content hash of the node at h:
// SHA256(0x01 || atom-bytes) for atoms, SHA256(0x02 || hash(first) ||
// hash(rest)) for pairs. The result identifies a CLVM value
// independent of how it was serialized.
func TreeHash(a *Allocator, h NodePtr) [32]byte {
	if a.IsAtom(h) {
		return hashAtom(a.Atom(h))
	}
	first, rest := a.Pair(h)
	lh := TreeHash(a, first)
	rh := TreeHash(a, rest)
	buf := make([]byte, 0, 1+32+32)
	buf = append(buf, 0x02)
	buf = append(buf, lh[:]...)
	buf = append(buf, rh[:]...)
	return fastsha256.Sum256(buf)
}

func hashAtom(b []byte) [32]byte {
	buf := make([]byte, 0, 1+len(b))
	buf = append(buf, 0x01)
	buf = append(buf, b...)
	return fastsha256.Sum256(buf)
}

// treeHashCosted is TreeHash's costed variant, exposed to the
// sha256tree operator: it charges per atom byte and per pair visited
// rather than computing the hash for free, since tree-walking the
// whole value graph is itself billable work.
func treeHashCosted(a *Allocator, h NodePtr, acct *costAccount) ([32]byte, error) {
	if a.IsAtom(h) {
		if err := acct.charge(Sha256treeCostPerByte * Cost(a.AtomLen(h))); err != nil {
			return [32]byte{}, err
		}
		return hashAtom(a.Atom(h)), nil
	}
	if err := acct.charge(Sha256treeCostPerPair); err != nil {
		return [32]byte{}, err
	}
	first, rest := a.Pair(h)
	lh, err := treeHashCosted(a, first, acct)
	if err != nil {
		return [32]byte{}, err
	}
	rh, err := treeHashCosted(a, rest, acct)
	if err != nil {
		return [32]byte{}, err
	}
	buf := make([]byte, 0, 1+32+32)
	buf = append(buf, 0x02)
	buf = append(buf, lh[:]...)
	buf = append(buf, rh[:]...)
	return fastsha256.Sum256(buf), nil
}
