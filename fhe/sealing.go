package fhe

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
)

// CleartextSize is the length of a cleartext before sealing.
const CleartextSize = 32

// SealValue encrypts value to the uncompressed secp256k1 public key with
// ECIES. The value is encoded as 32 bytes big endian.
func SealValue(publicKey []byte, value *big.Int) ([]byte, error) {
	if value.Sign() < 0 || value.BitLen() > 8*CleartextSize {
		return nil, fmt.Errorf("value out of range")
	}
	pub, err := ethcrypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(pub), value.FillBytes(make([]byte, CleartextSize)), nil, nil)
}

// OpenValue decrypts a sealed value with the ephemeral private key.
func OpenValue(ephemeral *ecdsa.PrivateKey, sealed []byte) (uint64, error) {
	plain, err := ecies.ImportECDSA(ephemeral).Decrypt(sealed, nil, nil)
	if err != nil {
		return 0, err
	}
	if len(plain) != CleartextSize {
		return 0, fmt.Errorf("unexpected cleartext length %d", len(plain))
	}
	v := new(big.Int).SetBytes(plain)
	if !v.IsUint64() {
		return 0, fmt.Errorf("cleartext overflows uint64")
	}
	return v.Uint64(), nil
}
