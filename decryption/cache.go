package decryption

import (
	"encoding/hex"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// CacheKey identifies the authorization of requester over contracts. The
// order of contracts is significant.
func CacheKey(requester common.Address, contracts []common.Address) string {
	data := make([]byte, 0, common.AddressLength*(len(contracts)+1))
	data = append(data, requester.Bytes()...)
	for _, c := range contracts {
		data = append(data, c.Bytes()...)
	}
	return hex.EncodeToString(ethcrypto.Keccak256(data))
}

// Cache stores authorizations by CacheKey.
type Cache interface {
	Get(key string) (*Authorization, bool)
	Put(key string, a *Authorization)
	Delete(key string)
	// DeleteRequester drops every authorization of requester.
	DeleteRequester(requester common.Address)
}

// MemoryCache is a process local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*Authorization
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Authorization)}
}

func (m *MemoryCache) Get(key string) (*Authorization, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.entries[key]
	return a, ok
}

func (m *MemoryCache) Put(key string, a *Authorization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = a
}

func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *MemoryCache) DeleteRequester(requester common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, a := range m.entries {
		if a.Requester == requester {
			delete(m.entries, k)
		}
	}
}

// Len returns the number of cached authorizations.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
