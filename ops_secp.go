package clvm

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2"
)

// opSecp256k1Verify checks a DER-encoded ECDSA signature over a
// pre-hashed 32-byte message against a 33-byte compressed secp256k1
// public key: (pubkey message signature). It fails with CLVM_RAISE,
// not a plain false, because an invalid signature here always means
// the enclosing puzzle's conditions were not met.
func opSecp256k1Verify(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(Secp256k1VerifyCost); err != nil {
		return 0, err
	}
	pk, msg, sig, err := arg3(a, args, "secp256k1_verify")
	if err != nil {
		return 0, err
	}
	pkb, err := requireAtom(a, pk, "secp256k1_verify")
	if err != nil {
		return 0, err
	}
	msgb, err := requireAtom(a, msg, "secp256k1_verify")
	if err != nil {
		return 0, err
	}
	sigb, err := requireAtom(a, sig, "secp256k1_verify")
	if err != nil {
		return 0, err
	}
	if len(msgb) != 32 {
		return 0, errArgOutOfRange(msg, "secp256k1_verify: message must be 32 bytes")
	}
	pub, err := btcec.ParsePubKey(pkb)
	if err != nil {
		return 0, errArgOutOfRange(pk, "secp256k1_verify: invalid public key")
	}
	signature, err := btcecdsa.ParseDERSignature(sigb)
	if err != nil {
		return 0, errRaise(args)
	}
	if !signature.Verify(msgb, pub) {
		return 0, errRaise(args)
	}
	return a.Nil(), nil
}

// opSecp256r1Verify is secp256k1_verify's NIST P-256 counterpart. There
// is no pack library offering secp256r1 ECDSA verification, so this
// falls back to crypto/ecdsa + crypto/elliptic, the ecosystem's own
// answer for that curve.
func opSecp256r1Verify(a *Allocator, args NodePtr, acct *costAccount) (NodePtr, error) {
	if err := acct.charge(Secp256r1VerifyCost); err != nil {
		return 0, err
	}
	pk, msg, sig, err := arg3(a, args, "secp256r1_verify")
	if err != nil {
		return 0, err
	}
	pkb, err := requireAtom(a, pk, "secp256r1_verify")
	if err != nil {
		return 0, err
	}
	msgb, err := requireAtom(a, msg, "secp256r1_verify")
	if err != nil {
		return 0, err
	}
	sigb, err := requireAtom(a, sig, "secp256r1_verify")
	if err != nil {
		return 0, err
	}
	if len(msgb) != 32 {
		return 0, errArgOutOfRange(msg, "secp256r1_verify: message must be 32 bytes")
	}
	curve := elliptic.P256()
	if len(pkb) != 33 || (pkb[0] != 0x02 && pkb[0] != 0x03) {
		return 0, errArgOutOfRange(pk, "secp256r1_verify: expected a compressed public key")
	}
	x, y := unmarshalCompressed(curve, pkb)
	if x == nil {
		return 0, errArgOutOfRange(pk, "secp256r1_verify: invalid public key")
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	if len(sigb) != 64 {
		return 0, errRaise(args)
	}
	r := new(big.Int).SetBytes(sigb[:32])
	s := new(big.Int).SetBytes(sigb[32:])
	if !ecdsa.Verify(pub, msgb, r, s) {
		return 0, errRaise(args)
	}
	return a.Nil(), nil
}

// unmarshalCompressed decodes a compressed SEC1 point, recovering the y
// coordinate via the curve equation. It is written here against the
// curve's own Params instead of calling elliptic.UnmarshalCompressed.
func unmarshalCompressed(curve elliptic.Curve, data []byte) (x, y *big.Int) {
	params := curve.Params()
	byteLen := (params.BitSize + 7) / 8
	if len(data) != 1+byteLen {
		return nil, nil
	}
	x = new(big.Int).SetBytes(data[1:])
	if x.Cmp(params.P) >= 0 {
		return nil, nil
	}
	// y^2 = x^3 - 3x + b (mod p)
	y2 := new(big.Int).Exp(x, big.NewInt(3), params.P)
	threeX := new(big.Int).Lsh(x, 1)
	threeX.Add(threeX, x)
	y2.Sub(y2, threeX)
	y2.Add(y2, params.B)
	y2.Mod(y2, params.P)
	y = new(big.Int).ModSqrt(y2, params.P)
	if y == nil {
		return nil, nil
	}
	if byte(y.Bit(0)) != data[0]&1 {
		y.Sub(params.P, y)
	}
	return x, y
}
