package coprocessor

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/billat883/ArtSync/crypto/elgamal"
	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const secondsPerDay = 86400

func denied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", fhe.ErrDecryptionDenied, fmt.Sprintf(format, args...))
}

// UserDecrypt checks the signed authorization of the request and the access
// grants of every handle, then returns each cleartext encrypted to the
// ephemeral public key of the request.
func (cp *Coprocessor) UserDecrypt(ctx context.Context, req *fhe.UserDecryptRequest) (*fhe.UserDecryptResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", fhe.ErrUnavailable, err)
	}
	if req == nil || len(req.Pairs) == 0 {
		return nil, denied("empty request")
	}
	if err := cp.checkAuthorization(req); err != nil {
		return nil, err
	}
	if _, err := ethcrypto.UnmarshalPubkey(req.PublicKey); err != nil {
		return nil, denied("invalid ephemeral public key: %v", err)
	}

	resp := &fhe.UserDecryptResponse{RequestID: req.RequestID}
	for _, pair := range req.Pairs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", fhe.ErrUnavailable, err)
		}
		if !slices.Contains(req.ContractAddresses, pair.ContractAddress) {
			return nil, denied("contract %s not authorized", pair.ContractAddress.Hex())
		}
		if pair.ContractAddress == req.UserAddress {
			return nil, denied("user address equals contract address")
		}
		for _, account := range []common.Address{req.UserAddress, pair.ContractAddress} {
			ok, err := cp.stg.IsAllowed(pair.Handle, account)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, denied("%s not allowed on handle %s", account.Hex(), pair.Handle)
			}
		}
		value, err := cp.decrypt(pair.Handle)
		if err != nil {
			return nil, err
		}
		ct, err := fhe.SealValue(req.PublicKey, value)
		if err != nil {
			return nil, fmt.Errorf("could not re-encrypt value: %w", err)
		}
		resp.Values = append(resp.Values, fhe.DecryptedValue{Handle: pair.Handle, Ciphertext: ct})
	}
	log.Debugw("user decryption served",
		"requestId", req.RequestID,
		"user", req.UserAddress.Hex(),
		"values", len(resp.Values))
	return resp, nil
}

func (cp *Coprocessor) checkAuthorization(req *fhe.UserDecryptRequest) error {
	if req.DurationDays == 0 {
		return denied("zero duration")
	}
	if req.DurationDays > fhe.MaxDurationDays {
		return denied("duration of %d days exceeds %d", req.DurationDays, fhe.MaxDurationDays)
	}
	if len(req.ContractAddresses) == 0 {
		return denied("no contracts")
	}
	now := cp.conf.Now()
	start := time.Unix(req.StartTimestamp, 0)
	if now.Before(start) {
		return denied("authorization not yet valid")
	}
	end := start.Add(time.Duration(req.DurationDays) * secondsPerDay * time.Second)
	if !now.Before(end) {
		return denied("authorization expired at %s", end.UTC().Format(time.RFC3339))
	}
	td := req.Authorization().TypedData(cp.Domain())
	signer, err := ethereum.AddrFromTypedDataSignature(td, req.Signature)
	if err != nil {
		return denied("invalid signature: %v", err)
	}
	if signer != req.UserAddress {
		return denied("signature by %s, expected %s", signer.Hex(), req.UserAddress.Hex())
	}
	return nil
}

func (cp *Coprocessor) decrypt(h types.Handle) (*big.Int, error) {
	ct, err := cp.load(h)
	if err != nil {
		return nil, err
	}
	_, value, err := elgamal.Decrypt(cp.publicKey, cp.privateKey, ct.C1, ct.C2, cp.conf.MaxValue)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt %s: %w", h, err)
	}
	return value, nil
}
