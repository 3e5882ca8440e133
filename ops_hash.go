package clvm

import (
	"github.com/btcsuite/fastsha256"
	"golang.org/x/crypto/sha3"
)

func opSha256(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(Sha256BaseCost); err != nil {
		return 0, err
	}
	h := fastsha256.New()
	err := argList(a, args, func(n NodePtr) error {
		b, err := requireAtom(a, n, "sha256")
		if err != nil {
			return err
		}
		if err := acct.charge(Sha256CostPerArg); err != nil {
			return err
		}
		if err := acct.charge(Sha256CostPerByte * Cost(len(b))); err != nil {
			return err
		}
		h.Write(b)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.NewAtom(h.Sum(nil))
}

func opKeccak256(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(Keccak256BaseCost); err != nil {
		return 0, err
	}
	h := sha3.NewLegacyKeccak256()
	err := argList(a, args, func(n NodePtr) error {
		b, err := requireAtom(a, n, "keccak256")
		if err != nil {
			return err
		}
		if err := acct.charge(Keccak256CostPerArg); err != nil {
			return err
		}
		if err := acct.charge(Keccak256CostPerByte * Cost(len(b))); err != nil {
			return err
		}
		h.Write(b)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return a.NewAtom(h.Sum(nil))
}

func opSha256Tree(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(Sha256treeBaseCost); err != nil {
		return 0, err
	}
	x, err := arg1(a, args, "sha256tree")
	if err != nil {
		return 0, err
	}
	h, err := treeHashCosted(a, x, acct)
	if err != nil {
		return 0, err
	}
	return a.NewAtom(h[:])
}

// opCoinid computes a coin's identity hash from its parent coin id, the
// hash of the puzzle that locks it, and its amount, the three values
// that uniquely determine a coin in the ledger.
func opCoinid(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(CoinidCost); err != nil {
		return 0, err
	}
	parent, puzzleHash, amount, err := arg3(a, args, "coinid")
	if err != nil {
		return 0, err
	}
	parentB, err := requireAtom(a, parent, "coinid")
	if err != nil {
		return 0, err
	}
	if len(parentB) != 32 {
		return 0, errArgOutOfRange(parent, "coinid: parent coin id must be 32 bytes")
	}
	puzzleB, err := requireAtom(a, puzzleHash, "coinid")
	if err != nil {
		return 0, err
	}
	if len(puzzleB) != 32 {
		return 0, errArgOutOfRange(puzzleHash, "coinid: puzzle hash must be 32 bytes")
	}
	amountB, err := requireAtom(a, amount, "coinid")
	if err != nil {
		return 0, err
	}
	if AtomAsInt(amountB).Sign() < 0 {
		return 0, errArgOutOfRange(amount, "coinid: amount must be non-negative")
	}
	h := fastsha256.New()
	h.Write(parentB)
	h.Write(puzzleB)
	h.Write(amountB)
	return a.NewAtom(h.Sum(nil))
}
