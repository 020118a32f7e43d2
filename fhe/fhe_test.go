package fhe

import (
	"math/big"
	"testing"

	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
)

func TestSealValue(t *testing.T) {
	c := qt.New(t)
	key, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	pub := ethcrypto.FromECDSAPub(&key.PublicKey)

	sealed, err := SealValue(pub, big.NewInt(42))
	c.Assert(err, qt.IsNil)
	v, err := OpenValue(key, sealed)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(42))

	other, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	_, err = OpenValue(other, sealed)
	c.Assert(err, qt.IsNotNil)

	_, err = SealValue(pub, big.NewInt(-1))
	c.Assert(err, qt.ErrorMatches, "value out of range")
	_, err = SealValue([]byte{0x04, 0x01}, big.NewInt(1))
	c.Assert(err, qt.ErrorMatches, "invalid public key: .*")

	// values wider than uint64 are sealed but cannot be opened as counts
	sealed, err = SealValue(pub, new(big.Int).Lsh(big.NewInt(1), 64))
	c.Assert(err, qt.IsNil)
	_, err = OpenValue(key, sealed)
	c.Assert(err, qt.ErrorMatches, "cleartext overflows uint64")
}

func TestAuthorizationTypedData(t *testing.T) {
	c := qt.New(t)
	signer := ethereum.NewSignKeys()
	c.Assert(signer.Generate(), qt.IsNil)
	domain := DecryptionDomain{ChainID: 31337, VerifyingContract: common.HexToAddress("0xf1e")}
	req := &UserDecryptRequest{
		UserAddress:       signer.Address(),
		ContractAddresses: []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")},
		PublicKey:         []byte{0x04, 0xaa},
		StartTimestamp:    1_700_000_000,
		DurationDays:      365,
	}
	sig, err := signer.SignTypedData(req.Authorization().TypedData(domain))
	c.Assert(err, qt.IsNil)

	addr, err := ethereum.AddrFromTypedDataSignature(req.Authorization().TypedData(domain), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, signer.Address())

	// the signature does not carry over to another domain or scope
	other := domain
	other.ChainID = 1
	addr, err = ethereum.AddrFromTypedDataSignature(req.Authorization().TypedData(other), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Not(qt.Equals), signer.Address())

	req.ContractAddresses = req.ContractAddresses[:1]
	addr, err = ethereum.AddrFromTypedDataSignature(req.Authorization().TypedData(domain), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Not(qt.Equals), signer.Address())
}

func TestBindingBytes(t *testing.T) {
	c := qt.New(t)
	a := Binding{Contract: common.HexToAddress("0x01"), User: common.HexToAddress("0x02"), ChainID: 1}
	b := Binding{Contract: common.HexToAddress("0x02"), User: common.HexToAddress("0x01"), ChainID: 1}
	c.Assert(a.Bytes(), qt.HasLen, 2*common.AddressLength+8)
	c.Assert(a.Bytes(), qt.Not(qt.DeepEquals), b.Bytes())
	b = a
	b.ChainID = 2
	c.Assert(a.Bytes(), qt.Not(qt.DeepEquals), b.Bytes())
}
