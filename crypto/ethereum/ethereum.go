// Package ethereum wraps the secp256k1 keys and the signing schemes used to
// identify accounts: EIP-191 personal messages and EIP-712 typed data.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	// SignatureLength is the size of an ECDSA signature in [R || S || V] form.
	SignatureLength = ethcrypto.SignatureLength
	// PubKeyLengthBytes is the size of a compressed public key.
	PubKeyLengthBytes = 33
	// PubKeyLengthBytesUncompressed is the size of an uncompressed public key.
	PubKeyLengthBytesUncompressed = 65
	// SigningPrefix is the prefix added when hashing personal messages.
	SigningPrefix = "\u0019Ethereum Signed Message:\n"
)

// SignKeys represents an ECDSA pair of keys for signing.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an ECDSA pair of keys for signing.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate generates new keys.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Public = key.PublicKey
	k.Private = *key
	return nil
}

// AddHexKey imports a private hex key.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privHex, "0x"))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the public compressed and private keys as hex strings.
func (k *SignKeys) HexString() (string, string) {
	pubHexComp := fmt.Sprintf("%x", ethcrypto.CompressPubkey(&k.Public))
	privHex := fmt.Sprintf("%x", ethcrypto.FromECDSA(&k.Private))
	return pubHexComp, privHex
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address of the keys.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed Ethereum address of the keys.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a personal message (EIP-191). The message is the raw
// payload, not a hash.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	return ethcrypto.Sign(Hash(message), &k.Private)
}

// SignTypedData signs an EIP-712 typed data payload.
func (k *SignKeys) SignTypedData(td apitypes.TypedData) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("cannot hash typed data: %w", err)
	}
	return ethcrypto.Sign(hash, &k.Private)
}

// Hash returns the keccak256 hash of data with the personal message prefix.
func Hash(data []byte) []byte {
	payload := []byte(fmt.Sprintf("%s%d%s", SigningPrefix, len(data), data))
	return HashRaw(payload)
}

// HashRaw returns the keccak256 hash of data, with no prefix.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPublicKey returns the address of a compressed or uncompressed
// public key.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var pubkey *ecdsa.PublicKey
	var err error
	switch len(pub) {
	case PubKeyLengthBytes:
		pubkey, err = ethcrypto.DecompressPubkey(pub)
	case PubKeyLengthBytesUncompressed:
		pubkey, err = ethcrypto.UnmarshalPubkey(pub)
	default:
		return common.Address{}, fmt.Errorf("invalid public key length: %d", len(pub))
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubkey), nil
}

// AddrFromSignature recovers the signer address of a personal message.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	return addrFromHashSignature(Hash(message), signature)
}

// AddrFromTypedDataSignature recovers the signer address of an EIP-712
// typed data signature.
func AddrFromTypedDataSignature(td apitypes.TypedData, signature []byte) (common.Address, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot hash typed data: %w", err)
	}
	return addrFromHashSignature(hash, signature)
}

func addrFromHashSignature(hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	// wallets produce v in {27, 28}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot recover public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// SignatureFromHex decodes a hex encoded signature.
func SignatureFromHex(s string) ([]byte, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	return sig, nil
}
