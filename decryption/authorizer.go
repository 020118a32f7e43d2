package decryption

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/singleflight"
)

// AuthorizerConfig configures an Authorizer.
type AuthorizerConfig struct {
	// Domain is the EIP-712 domain of the decryption service.
	Domain fhe.DecryptionDomain
	// DurationDays of new authorizations. Defaults to DefaultDurationDays and
	// is capped at fhe.MaxDurationDays.
	DurationDays uint64
	// Cache defaults to a MemoryCache.
	Cache Cache
	// Now defaults to time.Now.
	Now func() time.Time
}

// Authorizer hands out cached authorizations, asking the signer for a new
// one when none is valid.
type Authorizer struct {
	domain   fhe.DecryptionDomain
	duration uint64
	cache    Cache
	now      func() time.Time
	group    singleflight.Group

	mu        sync.Mutex
	requester common.Address
}

func NewAuthorizer(conf AuthorizerConfig) *Authorizer {
	if conf.DurationDays == 0 {
		conf.DurationDays = DefaultDurationDays
	}
	if conf.DurationDays > fhe.MaxDurationDays {
		log.Warnw("authorization duration capped", "durationDays", conf.DurationDays, "max", fhe.MaxDurationDays)
		conf.DurationDays = fhe.MaxDurationDays
	}
	if conf.Cache == nil {
		conf.Cache = NewMemoryCache()
	}
	if conf.Now == nil {
		conf.Now = time.Now
	}
	return &Authorizer{
		domain:   conf.Domain,
		duration: conf.DurationDays,
		cache:    conf.Cache,
		now:      conf.Now,
	}
}

// Domain returns the EIP-712 domain authorizations are signed under.
func (a *Authorizer) Domain() fhe.DecryptionDomain {
	return a.domain
}

// switchRequester drops the cached authorizations of the previous requester
// when another one shows up.
func (a *Authorizer) switchRequester(requester common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.requester != (common.Address{}) && a.requester != requester {
		log.Debugw("requester changed, dropping authorizations", "previous", a.requester.Hex())
		a.cache.DeleteRequester(a.requester)
	}
	a.requester = requester
}

// LoadOrSign returns a valid authorization of the signer over contracts,
// signing a new one if the cached one is missing or expired. Concurrent calls
// for the same key share one signature request.
func (a *Authorizer) LoadOrSign(ctx context.Context, contracts []common.Address, signer Signer) (*Authorization, error) {
	if len(contracts) == 0 {
		return nil, fmt.Errorf("no contracts to authorize")
	}
	requester := signer.Address()
	a.switchRequester(requester)
	key := CacheKey(requester, contracts)

	if auth, ok := a.cached(key); ok {
		return auth, nil
	}
	ch := a.group.DoChan(key, func() (any, error) {
		if auth, ok := a.cached(key); ok {
			return auth, nil
		}
		auth, err := a.sign(requester, contracts, signer)
		if err != nil {
			return nil, err
		}
		a.store(requester, key, auth)
		return auth, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Authorization), nil
	}
}

// store caches auth unless another requester took over while it was being
// signed.
func (a *Authorizer) store(requester common.Address, key string, auth *Authorization) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.requester != requester {
		log.Debugw("requester changed while signing, not caching", "requester", requester.Hex())
		return
	}
	a.cache.Put(key, auth)
}

func (a *Authorizer) cached(key string) (*Authorization, bool) {
	auth, ok := a.cache.Get(key)
	if !ok {
		return nil, false
	}
	if auth.Expired(a.now()) {
		a.cache.Delete(key)
		return nil, false
	}
	return auth, true
}

func (a *Authorizer) sign(requester common.Address, contracts []common.Address, signer Signer) (*Authorization, error) {
	ephemeral, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	auth := &Authorization{
		Requester:         requester,
		ContractAddresses: slices.Clone(contracts),
		PublicKey:         ethcrypto.FromECDSAPub(&ephemeral.PublicKey),
		PrivateKey:        ephemeral,
		IssuedAt:          a.now().Unix(),
		DurationDays:      a.duration,
	}
	sig, err := signer.SignTypedData(auth.TypedData(a.domain))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureDeclined, err)
	}
	auth.Signature = sig
	log.Debugw("decryption authorization signed",
		"requester", requester.Hex(),
		"contracts", len(contracts),
		"durationDays", a.duration)
	return auth, nil
}
