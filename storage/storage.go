// storage package keeps every artifact of the attendance ledger in a prefixed
// key-value store. The following prefixes are used:
//   - 'm/' for metadata (id counters, coprocessor keys, token settings)
//   - 'e/' for exhibits
//   - 'a/' for attendance records, keyed by exhibit id and attendee
//   - 'pp/' for pass records, keyed by exhibit id and attendee
//   - 'ct/' for ciphertexts, keyed by handle
//   - 'acl/' for ciphertext access grants, keyed by handle and account
//   - 'tk/' for pass tokens, keyed by token id
//   - 'tb/' for pass token balances, keyed by owner
//   - 'ti/' for the token minted per exhibit and owner
//   - 'sn/' for the schedule nonce of each organizer
//
// Writes that must land together go through a Batch, which commits a single
// database transaction across prefixes.
package storage

import (
	"errors"

	"github.com/billat883/ArtSync/log"
	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	metadataPrefix   = []byte("m/")
	exhibitPrefix    = []byte("e/")
	attendancePrefix = []byte("a/")
	passRecordPrefix = []byte("pp/")
	ciphertextPrefix = []byte("ct/")
	aclPrefix        = []byte("acl/")
	tokenPrefix      = []byte("tk/")
	balancePrefix    = []byte("tb/")
	tokenIndexPrefix = []byte("ti/")
	schedNoncePrefix = []byte("sn/")
)

var (
	// Keys under metadataPrefix.
	nextExhibitIDKey  = []byte("nextExhibitId")
	nextTokenIDKey    = []byte("nextTokenId")
	encryptionKeysKey = []byte("encryptionKeys")
	tokenSettingsKey  = []byte("tokenSettings")
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("not found")

// Storage wraps the database with typed accessors for every artifact.
type Storage struct {
	db db.Database
}

// New creates a new Storage instance.
func New(db db.Database) *Storage {
	return &Storage{db: db}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("failed to close storage", "error", err)
	}
}
