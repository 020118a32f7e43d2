package decryption

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a request to the decryption service.
const DefaultTimeout = 30 * time.Second

// CounterSource exposes the encrypted attendance counters of a contract.
type CounterSource interface {
	Address() common.Address
	EncryptedAttendance(ctx context.Context, id types.ExhibitID) (types.Handle, error)
}

// Client reveals encrypted values to their requester.
type Client struct {
	auth    *Authorizer
	service fhe.DecryptionService
	timeout time.Duration
}

// NewClient returns a client using service. A zero timeout selects
// DefaultTimeout.
func NewClient(auth *Authorizer, service fhe.DecryptionService, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{auth: auth, service: service, timeout: timeout}
}

// RevealCount returns the attendance count of the exhibit as seen by the
// signer, who must have been granted access to the counter.
func (c *Client) RevealCount(ctx context.Context, source CounterSource, id types.ExhibitID, signer Signer) (uint64, error) {
	handle, err := source.EncryptedAttendance(ctx, id)
	if err != nil {
		return 0, err
	}
	contract := source.Address()
	auth, err := c.auth.LoadOrSign(ctx, []common.Address{contract}, signer)
	if err != nil {
		return 0, err
	}
	values, err := c.DecryptWith(ctx, auth, []fhe.HandleContractPair{{Handle: handle, ContractAddress: contract}})
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// UserDecrypt decrypts every pair with an authorization of the signer over
// the contracts of the pairs, in order of first appearance.
func (c *Client) UserDecrypt(ctx context.Context, pairs []fhe.HandleContractPair, signer Signer) ([]uint64, error) {
	contracts := []common.Address{}
	for _, p := range pairs {
		if !slices.Contains(contracts, p.ContractAddress) {
			contracts = append(contracts, p.ContractAddress)
		}
	}
	auth, err := c.auth.LoadOrSign(ctx, contracts, signer)
	if err != nil {
		return nil, err
	}
	return c.DecryptWith(ctx, auth, pairs)
}

// DecryptWith decrypts every pair using auth. An expired auth fails with
// ErrAuthorizationExpired and pairs outside its scope with ErrOutOfScope,
// before anything is sent.
func (c *Client) DecryptWith(ctx context.Context, auth *Authorization, pairs []fhe.HandleContractPair) ([]uint64, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no handles to decrypt")
	}
	if auth.Expired(c.auth.now()) {
		return nil, fmt.Errorf("%w: issued at %d for %d days", ErrAuthorizationExpired, auth.IssuedAt, auth.DurationDays)
	}
	for _, p := range pairs {
		if !auth.Allows(p.ContractAddress) {
			return nil, fmt.Errorf("%w: %s", ErrOutOfScope, p.ContractAddress.Hex())
		}
	}
	req := &fhe.UserDecryptRequest{
		RequestID:         uuid.NewString(),
		Pairs:             pairs,
		UserAddress:       auth.Requester,
		ContractAddresses: auth.ContractAddresses,
		PublicKey:         auth.PublicKey,
		Signature:         auth.Signature,
		StartTimestamp:    auth.IssuedAt,
		DurationDays:      auth.DurationDays,
	}
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.service.UserDecrypt(rctx, req)
	if err != nil {
		switch {
		case errors.Is(err, fhe.ErrDecryptionDenied), errors.Is(err, fhe.ErrUnavailable):
			return nil, err
		default:
			log.Debugw("decryption request failed", "requestId", req.RequestID, "error", err.Error())
			return nil, fmt.Errorf("%w: %v", fhe.ErrUnavailable, err)
		}
	}
	if len(resp.Values) != len(pairs) {
		return nil, fmt.Errorf("%w: %d values for %d handles", fhe.ErrUnavailable, len(resp.Values), len(pairs))
	}
	values := make([]uint64, len(pairs))
	for i, v := range resp.Values {
		if v.Handle != pairs[i].Handle {
			return nil, fmt.Errorf("%w: value %d is for handle %s", fhe.ErrUnavailable, i, v.Handle)
		}
		values[i], err = fhe.OpenValue(auth.PrivateKey, v.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("open value of %s: %w", v.Handle, err)
		}
	}
	return values, nil
}
