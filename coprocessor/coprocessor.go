// Package coprocessor is a local implementation of the confidential
// computation capabilities. Ciphertexts are exponential ElGamal encryptions
// over BN254 kept in storage and addressed by content derived handles.
// Inputs carry a proof that they encrypt the accepted value under the caller
// binding, and user decryption re-encrypts cleartexts to an ephemeral
// secp256k1 key with ECIES.
package coprocessor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/billat883/ArtSync/crypto/ecc"
	"github.com/billat883/ArtSync/crypto/ecc/bn254"
	"github.com/billat883/ArtSync/crypto/elgamal"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	// DefaultMaxValue bounds the cleartexts the decryption can recover.
	DefaultMaxValue = 1 << 20
	// DefaultAcceptedInput is the only cleartext accepted as an input.
	DefaultAcceptedInput = 1

	handleDomain = "artsync/ciphertext"
)

// Config configures a Coprocessor.
type Config struct {
	// ChainID is the chain inputs and decryption requests are bound to.
	ChainID uint64
	// KMSAddress is the verifying contract of user decryption signatures.
	KMSAddress common.Address
	// MaxValue bounds decryptable cleartexts. Defaults to DefaultMaxValue.
	MaxValue uint64
	// AcceptedInput is the value inputs must provably encrypt. Defaults to
	// DefaultAcceptedInput.
	AcceptedInput uint64
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Coprocessor holds the encryption keypair and serves fhe.Executor and
// fhe.DecryptionService.
type Coprocessor struct {
	stg        *storage.Storage
	publicKey  ecc.Point
	privateKey *big.Int
	conf       Config
	// serializes ciphertext writes with their grants
	mu sync.Mutex
}

var (
	_ fhe.Executor          = (*Coprocessor)(nil)
	_ fhe.DecryptionService = (*Coprocessor)(nil)
)

// New loads the encryption keys from storage, generating and persisting a
// new keypair on first run.
func New(stg *storage.Storage, conf Config) (*Coprocessor, error) {
	if stg == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	if conf.MaxValue == 0 {
		conf.MaxValue = DefaultMaxValue
	}
	if conf.AcceptedInput == 0 {
		conf.AcceptedInput = DefaultAcceptedInput
	}
	if conf.Now == nil {
		conf.Now = time.Now
	}
	cp := &Coprocessor{stg: stg, conf: conf}

	keys, err := stg.EncryptionKeys()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		pub, priv, err := elgamal.GenerateKey(bn254.New())
		if err != nil {
			return nil, fmt.Errorf("could not generate encryption keys: %w", err)
		}
		if err := stg.SetEncryptionKeys(&storage.EncryptionKeys{
			PublicKey:  pub.Marshal(),
			PrivateKey: priv,
		}); err != nil {
			return nil, fmt.Errorf("could not store encryption keys: %w", err)
		}
		cp.publicKey, cp.privateKey = pub, priv
		log.Infow("generated coprocessor encryption keys", "publicKey", pub.String())
	case err != nil:
		return nil, err
	default:
		pub := bn254.New()
		if err := pub.Unmarshal(keys.PublicKey); err != nil {
			return nil, fmt.Errorf("stored encryption key: %w", err)
		}
		cp.publicKey, cp.privateKey = pub, keys.PrivateKey
	}
	return cp, nil
}

// PublicKey returns the encryption public key clients encrypt inputs to.
func (cp *Coprocessor) PublicKey() ecc.Point {
	return cp.publicKey
}

// ChainID returns the chain the coprocessor binds inputs to.
func (cp *Coprocessor) ChainID() uint64 {
	return cp.conf.ChainID
}

// Domain returns the EIP-712 domain of user decryption signatures.
func (cp *Coprocessor) Domain() fhe.DecryptionDomain {
	return fhe.DecryptionDomain{ChainID: cp.conf.ChainID, VerifyingContract: cp.conf.KMSAddress}
}

// HandleOf returns the handle addressing the serialized ciphertext.
func HandleOf(serialized []byte) types.Handle {
	return types.Handle(ethcrypto.Keccak256Hash([]byte(handleDomain), serialized))
}

func (cp *Coprocessor) load(h types.Handle) (*elgamal.Ciphertext, error) {
	data, err := cp.stg.Ciphertext(h)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", fhe.ErrUnknownHandle, h)
	}
	if err != nil {
		return nil, err
	}
	ct := elgamal.NewCiphertext(cp.publicKey)
	if err := ct.Deserialize(data); err != nil {
		return nil, fmt.Errorf("corrupted ciphertext %s: %w", h, err)
	}
	return ct, nil
}

func (cp *Coprocessor) store(ct *elgamal.Ciphertext) (types.Handle, error) {
	data := ct.Serialize()
	h := HandleOf(data)
	b := cp.stg.NewBatch()
	if err := b.SetCiphertext(h, data); err != nil {
		b.Discard()
		return types.Handle{}, err
	}
	if err := b.Commit(); err != nil {
		return types.Handle{}, err
	}
	return h, nil
}

// Add returns a handle to the encryption of the sum of a and b.
func (cp *Coprocessor) Add(ctx context.Context, a, b types.Handle) (types.Handle, error) {
	if err := ctx.Err(); err != nil {
		return types.Handle{}, err
	}
	x, err := cp.load(a)
	if err != nil {
		return types.Handle{}, err
	}
	y, err := cp.load(b)
	if err != nil {
		return types.Handle{}, err
	}
	sum := elgamal.NewCiphertext(cp.publicKey).Add(x, y)
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.store(sum)
}

// TrivialZero returns a handle to the identity ciphertext, an encryption of
// zero.
func (cp *Coprocessor) TrivialZero(ctx context.Context) (types.Handle, error) {
	if err := ctx.Err(); err != nil {
		return types.Handle{}, err
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.store(elgamal.NewCiphertext(cp.publicKey))
}

// Allow grants account access to the handle.
func (cp *Coprocessor) Allow(ctx context.Context, h types.Handle, account common.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := cp.stg.Ciphertext(h); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", fhe.ErrUnknownHandle, h)
		}
		return err
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	b := cp.stg.NewBatch()
	if err := b.Allow(h, account); err != nil {
		b.Discard()
		return err
	}
	return b.Commit()
}

// IsAllowed reports whether account may use the handle.
func (cp *Coprocessor) IsAllowed(_ context.Context, h types.Handle, account common.Address) (bool, error) {
	return cp.stg.IsAllowed(h, account)
}
