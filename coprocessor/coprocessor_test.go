package coprocessor

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"
)

const testChainID = 31337

var (
	contract = common.HexToAddress("0x00000000000000000000000000000000000c0de1")
	kms      = common.HexToAddress("0x000000000000000000000000000000000000face")
	now      = time.Unix(1_700_000_000, 0)
)

func newTestCoprocessor(c *qt.C) (*Coprocessor, *storage.Storage) {
	stg := storage.New(metadb.NewTest(c))
	cp, err := New(stg, Config{
		ChainID:    testChainID,
		KMSAddress: kms,
		MaxValue:   1 << 10,
		Now:        func() time.Time { return now },
	})
	c.Assert(err, qt.IsNil)
	return cp, stg
}

func newSigner(c *qt.C) *ethereum.SignKeys {
	k := ethereum.NewSignKeys()
	c.Assert(k.Generate(), qt.IsNil)
	return k
}

func TestKeysArePersisted(t *testing.T) {
	c := qt.New(t)
	cp, stg := newTestCoprocessor(c)

	again, err := New(stg, Config{ChainID: testChainID})
	c.Assert(err, qt.IsNil)
	c.Assert(again.PublicKey().Equal(cp.PublicKey()), qt.IsTrue)
	c.Assert(again.privateKey.Cmp(cp.privateKey), qt.Equals, 0)

	_, err = New(nil, Config{})
	c.Assert(err, qt.IsNotNil)
}

func TestVerifyInput(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	cp, _ := newTestCoprocessor(c)
	user := newSigner(c).Address()
	enc := NewEncryptor(cp.PublicKey(), cp.ChainID())

	handle, proof, err := enc.EncryptInput(1, contract, user)
	c.Assert(err, qt.IsNil)
	c.Assert(proof, qt.HasLen, SizeInputProof)

	binding := fhe.Binding{Contract: contract, User: user, ChainID: testChainID}
	c.Assert(cp.VerifyInput(ctx, handle, proof, binding), qt.IsNil)

	// replayed by another user or for another contract
	other := newSigner(c).Address()
	err = cp.VerifyInput(ctx, handle, proof, fhe.Binding{Contract: contract, User: other, ChainID: testChainID})
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)
	err = cp.VerifyInput(ctx, handle, proof, fhe.Binding{Contract: other, User: user, ChainID: testChainID})
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)
	err = cp.VerifyInput(ctx, handle, proof, fhe.Binding{Contract: contract, User: user, ChainID: 1})
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)

	// handle not matching the ciphertext
	err = cp.VerifyInput(ctx, types.Handle{0x01}, proof, binding)
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)

	// truncated and tampered proofs
	err = cp.VerifyInput(ctx, handle, proof[:SizeInputProof-1], binding)
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)
	tampered := append([]byte{}, proof...)
	tampered[SizeInputProof-1] ^= 0x01
	err = cp.VerifyInput(ctx, handle, tampered, binding)
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)

	// inputs must encrypt exactly one
	h2, p2, err := enc.EncryptInput(2, contract, user)
	c.Assert(err, qt.IsNil)
	err = cp.VerifyInput(ctx, h2, p2, binding)
	c.Assert(err, qt.ErrorIs, fhe.ErrInvalidProof)
}

func TestAddAndAccessControl(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	cp, _ := newTestCoprocessor(c)
	user := newSigner(c).Address()
	enc := NewEncryptor(cp.PublicKey(), testChainID)
	binding := fhe.Binding{Contract: contract, User: user, ChainID: testChainID}

	zero, err := cp.TrivialZero(ctx)
	c.Assert(err, qt.IsNil)
	acc := zero
	for i := 0; i < 3; i++ {
		h, proof, err := enc.EncryptInput(1, contract, user)
		c.Assert(err, qt.IsNil)
		c.Assert(cp.VerifyInput(ctx, h, proof, binding), qt.IsNil)
		acc, err = cp.Add(ctx, acc, h)
		c.Assert(err, qt.IsNil)
	}
	v, err := cp.decrypt(acc)
	c.Assert(err, qt.IsNil)
	c.Assert(v.Uint64(), qt.Equals, uint64(3))

	_, err = cp.Add(ctx, acc, types.Handle{0x42})
	c.Assert(err, qt.ErrorIs, fhe.ErrUnknownHandle)
	c.Assert(cp.Allow(ctx, types.Handle{0x42}, user), qt.ErrorIs, fhe.ErrUnknownHandle)

	ok, err := cp.IsAllowed(ctx, acc, user)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(cp.Allow(ctx, acc, user), qt.IsNil)
	ok, err = cp.IsAllowed(ctx, acc, user)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = cp.Add(cancelled, acc, zero)
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

type decryptFixture struct {
	cp        *Coprocessor
	user      *ethereum.SignKeys
	handle    types.Handle
	ephemeral []byte
	req       *fhe.UserDecryptRequest
}

func (f *decryptFixture) sign(c *qt.C) {
	sig, err := f.user.SignTypedData(f.req.Authorization().TypedData(f.cp.Domain()))
	c.Assert(err, qt.IsNil)
	f.req.Signature = sig
}

func newDecryptFixture(c *qt.C, count int) (*decryptFixture, *ecdsa.PrivateKey) {
	ctx := context.Background()
	cp, _ := newTestCoprocessor(c)
	user := newSigner(c)
	enc := NewEncryptor(cp.PublicKey(), testChainID)
	binding := fhe.Binding{Contract: contract, User: user.Address(), ChainID: testChainID}

	acc, err := cp.TrivialZero(ctx)
	c.Assert(err, qt.IsNil)
	for i := 0; i < count; i++ {
		h, proof, err := enc.EncryptInput(1, contract, user.Address())
		c.Assert(err, qt.IsNil)
		c.Assert(cp.VerifyInput(ctx, h, proof, binding), qt.IsNil)
		acc, err = cp.Add(ctx, acc, h)
		c.Assert(err, qt.IsNil)
	}
	c.Assert(cp.Allow(ctx, acc, contract), qt.IsNil)
	c.Assert(cp.Allow(ctx, acc, user.Address()), qt.IsNil)

	ephemeral, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	f := &decryptFixture{
		cp:        cp,
		user:      user,
		handle:    acc,
		ephemeral: ethcrypto.FromECDSAPub(&ephemeral.PublicKey),
	}
	f.req = &fhe.UserDecryptRequest{
		RequestID:         "req-1",
		Pairs:             []fhe.HandleContractPair{{Handle: acc, ContractAddress: contract}},
		UserAddress:       user.Address(),
		ContractAddresses: []common.Address{contract},
		PublicKey:         f.ephemeral,
		StartTimestamp:    now.Unix(),
		DurationDays:      1,
	}
	f.sign(c)
	return f, ephemeral
}

func TestUserDecrypt(t *testing.T) {
	c := qt.New(t)
	f, ephemeral := newDecryptFixture(c, 2)

	resp, err := f.cp.UserDecrypt(context.Background(), f.req)
	c.Assert(err, qt.IsNil)
	c.Assert(resp.RequestID, qt.Equals, "req-1")
	c.Assert(resp.Values, qt.HasLen, 1)
	c.Assert(resp.Values[0].Handle, qt.Equals, f.handle)

	v, err := fhe.OpenValue(ephemeral, resp.Values[0].Ciphertext)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(2))
}

func TestUserDecryptDenied(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		f.req.StartTimestamp = now.Add(-24 * time.Hour).Unix()
		f.sign(c)
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
	})

	t.Run("duration too long", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		// the end timestamp in nanoseconds would wrap around
		f.req.DurationDays = 1 << 40
		f.sign(c)
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
		c.Assert(err.Error(), qt.Contains, "exceeds")

		f.req.DurationDays = fhe.MaxDurationDays
		f.sign(c)
		_, err = f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.IsNil)
	})

	t.Run("wrong signer", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		f.user = newSigner(c)
		f.sign(c)
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
	})

	t.Run("signature over other scope", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		f.req.DurationDays = 2
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
	})

	t.Run("contract not signed", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		f.req.ContractAddresses = []common.Address{kms}
		f.sign(c)
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
	})

	t.Run("user not allowed", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		f.user = newSigner(c)
		f.req.UserAddress = f.user.Address()
		f.sign(c)
		_, err := f.cp.UserDecrypt(ctx, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrDecryptionDenied)
	})

	t.Run("cancelled", func(t *testing.T) {
		c := qt.New(t)
		f, _ := newDecryptFixture(c, 1)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.cp.UserDecrypt(cancelled, f.req)
		c.Assert(err, qt.ErrorIs, fhe.ErrUnavailable)
	})
}
