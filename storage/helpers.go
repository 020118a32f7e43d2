package storage

import (
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encoding mode: %v", err))
	}
	return em
}()

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	return encMode.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact decodes the artifact stored under prefix/key into out. It
// returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	data, err := s.getRaw(prefix, key)
	if err != nil {
		return err
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

func (s *Storage) getRaw(prefix, key []byte) ([]byte, error) {
	rd := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rd.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) has(prefix, key []byte) (bool, error) {
	_, err := s.getRaw(prefix, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// setArtifact stores a single artifact in its own transaction.
func (s *Storage) setArtifact(prefix, key []byte, a any) error {
	b := s.NewBatch()
	if err := b.setArtifact(prefix, key, a); err != nil {
		b.Discard()
		return err
	}
	return b.Commit()
}

// accountKey builds the key of a relation between an exhibit and an account.
func accountKey(id types.ExhibitID, account common.Address) []byte {
	return append(id.Marshal(), account.Bytes()...)
}

// handleAccountKey builds the key of an access grant.
func handleAccountKey(h types.Handle, account common.Address) []byte {
	return append(h.Bytes(), account.Bytes()...)
}
