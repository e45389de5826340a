// Package signature signs escrow transactions and recovers the account that
// produced a signature.
package signature

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// escrowID is added to the recovery id so signatures produced for the escrow
// can't be confused with Ethereum (27) or other chains.
const escrowID = 31

// Set of error variables for signature checks.
var (
	ErrRecoveryID = errors.New("invalid recovery id")
	ErrValues     = errors.New("invalid signature values")
)

// =============================================================================

// Hash returns the keccak hash of the JSON encoding of value.
func Hash(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(crypto.Keccak256(data)), nil
}

// Sign uses the specified private key to sign the value.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	digest, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetUint64(uint64(sig[crypto.RecoveryIDOffset]) + escrowID)

	return v, r, s, nil
}

// Verify checks the signature values are well formed.
func Verify(v, r, s *big.Int) error {
	if v == nil || r == nil || s == nil {
		return ErrValues
	}

	id := v.Uint64() - escrowID
	if !v.IsUint64() || (id != 0 && id != 1) {
		return ErrRecoveryID
	}

	if !crypto.ValidateSignatureValues(byte(id), r, s, false) {
		return ErrValues
	}

	return nil
}

// FromAccount recovers the account that signed the value.
func FromAccount(value any, v, r, s *big.Int) (account.Account, error) {
	if err := Verify(v, r, s); err != nil {
		return "", err
	}

	digest, err := stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(digest, toBytes(v, r, s))
	if err != nil {
		return "", fmt.Errorf("recovering public key: %w", err)
	}

	return account.PublicKeyToAccount(*publicKey), nil
}

// String returns the signature as a hex string in [R|S|V] form.
func String(v, r, s *big.Int) string {
	sig := toBytes(v, r, s)
	sig[crypto.RecoveryIDOffset] = byte(v.Uint64())

	return hexutil.Encode(sig)
}

// FromString converts a hex signature produced by String back into its
// V, R and S parts.
func FromString(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, ErrValues
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetUint64(uint64(sig[crypto.RecoveryIDOffset]))

	return v, r, s, nil
}

// =============================================================================

// stamp returns the 32 byte digest that is signed for the value. The escrow
// prefix is embedded so a signature can't be replayed as an Ethereum message.
func stamp(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	prefix := []byte("\x19Escrow Signed Message:\n32")
	return crypto.Keccak256(prefix, crypto.Keccak256(data)), nil
}

// toBytes converts the V, R, S values into the 65 byte recoverable form.
func toBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[crypto.RecoveryIDOffset] = byte(v.Uint64() - escrowID)

	return sig
}
