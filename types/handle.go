package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HandleSize is the byte length of a ciphertext handle.
const HandleSize = 32

// Handle is an opaque reference to a ciphertext held by the confidential
// computation layer. The cleartext is never recoverable from the handle.
type Handle [HandleSize]byte

// HandleFromBytes copies b into a Handle. It fails unless b has exactly
// HandleSize bytes.
func HandleFromBytes(b []byte) (Handle, error) {
	var h Handle
	if len(b) != HandleSize {
		return h, fmt.Errorf("invalid handle length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HandleFromHex parses a hex string, with or without 0x prefix.
func HandleFromHex(s string) (Handle, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Handle{}, fmt.Errorf("invalid handle: %w", err)
	}
	return HandleFromBytes(b)
}

func (h Handle) Bytes() []byte {
	return h[:]
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

func (h Handle) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Handle) UnmarshalText(data []byte) error {
	parsed, err := HandleFromHex(string(data))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
