package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/billat883/ArtSync/crypto/ethereum"
	"gopkg.in/yaml.v3"
)

// KeysFile is the file, inside the data dir, holding the generated keys.
const KeysFile = "keys.yaml"

type keys struct {
	ExpoKey  string `yaml:"expoKey"`
	OwnerKey string `yaml:"ownerKey"`
}

// Keys returns the ledger contract and token owner keys. Keys missing from
// the configuration are read from the keys file of the data dir, or
// generated and stored there.
func (c *Config) Keys() (expoKey, ownerKey *ethereum.SignKeys, err error) {
	path := filepath.Join(c.DataDir, KeysFile)
	stored := keys{}
	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &stored); err != nil {
			return nil, nil, fmt.Errorf("error parsing keys file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, nil, fmt.Errorf("error reading keys file: %w", err)
	}

	dirty := false
	load := func(configured string, storedKey *string) (*ethereum.SignKeys, error) {
		k := ethereum.NewSignKeys()
		switch {
		case configured != "":
			return k, k.AddHexKey(configured)
		case *storedKey != "":
			return k, k.AddHexKey(*storedKey)
		}
		if err := k.Generate(); err != nil {
			return nil, err
		}
		_, *storedKey = k.HexString()
		dirty = true
		return k, nil
	}
	if expoKey, err = load(c.ExpoKey, &stored.ExpoKey); err != nil {
		return nil, nil, fmt.Errorf("invalid expo key: %w", err)
	}
	if ownerKey, err = load(c.OwnerKey, &stored.OwnerKey); err != nil {
		return nil, nil, fmt.Errorf("invalid owner key: %w", err)
	}
	if dirty {
		if err := os.MkdirAll(c.DataDir, 0o750); err != nil {
			return nil, nil, err
		}
		out, err := yaml.Marshal(&stored)
		if err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return nil, nil, fmt.Errorf("error writing keys file: %w", err)
		}
	}
	return expoKey, ownerKey, nil
}
