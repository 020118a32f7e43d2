package storage

import (
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Ciphertext returns the serialized ciphertext behind a handle, or
// ErrNotFound.
func (s *Storage) Ciphertext(h types.Handle) ([]byte, error) {
	return s.getRaw(ciphertextPrefix, h.Bytes())
}

// SetCiphertext stores a serialized ciphertext under its handle.
func (b *Batch) SetCiphertext(h types.Handle, data []byte) error {
	return b.setRaw(ciphertextPrefix, h.Bytes(), data)
}

// IsAllowed reports whether account was granted access to the handle.
func (s *Storage) IsAllowed(h types.Handle, account common.Address) (bool, error) {
	return s.has(aclPrefix, handleAccountKey(h, account))
}

// Allow grants account access to the handle.
func (b *Batch) Allow(h types.Handle, account common.Address) error {
	return b.setArtifact(aclPrefix, handleAccountKey(h, account), &AccessGrant{Handle: h, Account: account})
}

// AllowedAccounts lists the accounts granted access to the handle.
func (s *Storage) AllowedAccounts(h types.Handle) ([]common.Address, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, aclPrefix)
	var accounts []common.Address
	var decodeErr error
	if err := rd.Iterate(h.Bytes(), func(_, v []byte) bool {
		grant := &AccessGrant{}
		if err := decodeArtifact(v, grant); err != nil {
			decodeErr = fmt.Errorf("decode access grant: %w", err)
			return false
		}
		accounts = append(accounts, grant.Account)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate access grants: %w", err)
	}
	return accounts, decodeErr
}

// SetEncryptionKeys stores the coprocessor encryption keypair.
func (s *Storage) SetEncryptionKeys(keys *EncryptionKeys) error {
	if keys == nil || keys.PrivateKey == nil {
		return fmt.Errorf("nil encryption keys")
	}
	return s.setArtifact(metadataPrefix, encryptionKeysKey, keys)
}

// EncryptionKeys loads the coprocessor encryption keypair. Returns
// ErrNotFound if the keys do not exist.
func (s *Storage) EncryptionKeys() (*EncryptionKeys, error) {
	keys := &EncryptionKeys{}
	if err := s.getArtifact(metadataPrefix, encryptionKeysKey, keys); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not read encryption keys: %w", err)
	}
	return keys, nil
}
