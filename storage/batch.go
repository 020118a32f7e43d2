package storage

import (
	"fmt"

	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Batch groups writes under several prefixes into one database transaction.
// Nothing is visible to readers until Commit returns; Discard drops every
// write.
type Batch struct {
	tx db.WriteTx
}

// NewBatch opens a write transaction.
func (s *Storage) NewBatch() *Batch {
	return &Batch{tx: s.db.WriteTx()}
}

func (b *Batch) setArtifact(prefix, key []byte, a any) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return b.setRaw(prefix, key, data)
}

func (b *Batch) setRaw(prefix, key, data []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(b.tx, prefix)
	return wTx.Set(key, data)
}

// Commit applies every write of the batch atomically.
func (b *Batch) Commit() error {
	return b.tx.Commit()
}

// Discard drops the batch. Call it instead of Commit when any write fails.
func (b *Batch) Discard() {
	b.tx.Discard()
}
