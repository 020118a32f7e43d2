package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// TokenSettings returns the pass token administration, or ErrNotFound if
// it was never initialized.
func (s *Storage) TokenSettings() (*TokenSettings, error) {
	ts := &TokenSettings{}
	if err := s.getArtifact(metadataPrefix, tokenSettingsKey, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// SetTokenSettings stores the pass token administration.
func (s *Storage) SetTokenSettings(ts *TokenSettings) error {
	return s.setArtifact(metadataPrefix, tokenSettingsKey, ts)
}

// Token returns a minted pass token, or ErrNotFound.
func (s *Storage) Token(id uint64) (*PassToken, error) {
	t := &PassToken{}
	if err := s.getArtifact(tokenPrefix, tokenKey(id), t); err != nil {
		return nil, err
	}
	return t, nil
}

// NextTokenID returns the id the next minted token will receive. Token ids
// start at 1.
func (s *Storage) NextTokenID() (uint64, error) {
	var next uint64
	err := s.getArtifact(metadataPrefix, nextTokenIDKey, &next)
	if errors.Is(err, ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read next token id: %w", err)
	}
	return next, nil
}

// Balance returns how many pass tokens the owner holds.
func (s *Storage) Balance(owner common.Address) (uint64, error) {
	var balance uint64
	err := s.getArtifact(balancePrefix, owner.Bytes(), &balance)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	return balance, err
}

// TokenFor returns the id of the token minted to owner for the exhibit, or
// ErrNotFound.
func (s *Storage) TokenFor(id types.ExhibitID, owner common.Address) (uint64, error) {
	var tokenID uint64
	if err := s.getArtifact(tokenIndexPrefix, accountKey(id, owner), &tokenID); err != nil {
		return 0, err
	}
	return tokenID, nil
}

// SetToken stores a minted token and advances the token id counter, the
// owner balance and the per exhibit index.
func (b *Batch) SetToken(t *PassToken, ownerBalance uint64) error {
	if err := b.setArtifact(tokenPrefix, tokenKey(t.ID), t); err != nil {
		return err
	}
	if err := b.setArtifact(tokenIndexPrefix, accountKey(t.ExhibitID, t.Owner), t.ID); err != nil {
		return err
	}
	if err := b.setArtifact(metadataPrefix, nextTokenIDKey, t.ID+1); err != nil {
		return err
	}
	return b.setArtifact(balancePrefix, t.Owner.Bytes(), ownerBalance)
}

func tokenKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}
