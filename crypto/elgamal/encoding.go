package elgamal

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// MarshalJSON serializes the Ciphertext to JSON.
func (z *Ciphertext) MarshalJSON() ([]byte, error) {
	c1Bytes, err := json.Marshal(z.C1)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c1: %w", err)
	}
	c2Bytes, err := json.Marshal(z.C2)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal c2: %w", err)
	}
	tmp := struct {
		C1 json.RawMessage `json:"c1"`
		C2 json.RawMessage `json:"c2"`
	}{
		C1: c1Bytes,
		C2: c2Bytes,
	}
	return json.Marshal(tmp)
}

// UnmarshalJSON deserializes the Ciphertext from JSON. z.C1 and z.C2 must be
// allocated by the caller on the expected curve.
func (z *Ciphertext) UnmarshalJSON(data []byte) error {
	var tmp struct {
		C1 json.RawMessage `json:"c1"`
		C2 json.RawMessage `json:"c2"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	if err := json.Unmarshal(tmp.C1, z.C1); err != nil {
		return fmt.Errorf("failed to unmarshal c1: %w", err)
	}
	if err := json.Unmarshal(tmp.C2, z.C2); err != nil {
		return fmt.Errorf("failed to unmarshal c2: %w", err)
	}
	return nil
}

// MarshalCBOR serializes the Ciphertext to CBOR as its compact byte form.
func (z *Ciphertext) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(z.Serialize())
}

// UnmarshalCBOR deserializes the Ciphertext from CBOR. z.C1 and z.C2 must be
// allocated by the caller on the expected curve.
func (z *Ciphertext) UnmarshalCBOR(buf []byte) error {
	var data []byte
	if err := cbor.Unmarshal(buf, &data); err != nil {
		return fmt.Errorf("failed to unmarshal ciphertext container: %w", err)
	}
	return z.Deserialize(data)
}
