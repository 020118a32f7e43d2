package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billat883/ArtSync/fhe"
	qt "github.com/frankban/quicktest"
)

func writeFile(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "artsync.yaml")
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)
	return path
}

func TestDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, Default())
	c.Assert(cfg.Validate(), qt.IsNil)
}

func TestLayering(t *testing.T) {
	c := qt.New(t)
	path := writeFile(c, `
dataDir: /var/lib/artsync
apiPort: 8000
chainId: 11155111
decryptionTimeout: 5s
metrics: false
`)
	c.Setenv("ARTSYNC_API_PORT", "8100")
	c.Setenv("ARTSYNC_AUTHORIZATION_DAYS", "30")

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.DataDir, qt.Equals, "/var/lib/artsync")
	c.Assert(cfg.ChainID, qt.Equals, uint64(11155111))
	c.Assert(cfg.DecryptionTimeout, qt.Equals, 5*time.Second)
	c.Assert(cfg.Metrics, qt.IsFalse)
	c.Assert(cfg.APIPort, qt.Equals, 8100)
	c.Assert(cfg.AuthorizationDays, qt.Equals, uint32(30))
	c.Assert(cfg.APIHost, qt.Equals, DefaultAPIHost)

	fs := Flags("artsyncd")
	c.Assert(fs.Parse([]string{"--apiPort", "8200", "-l", "debug"}), qt.IsNil)
	c.Assert(cfg.ApplyFlags(fs), qt.IsNil)
	c.Assert(cfg.APIPort, qt.Equals, 8200)
	c.Assert(cfg.LogLevel, qt.Equals, "debug")
	// flags left unset keep the loaded values
	c.Assert(cfg.ChainID, qt.Equals, uint64(11155111))
	c.Assert(cfg.Validate(), qt.IsNil)
}

func TestLoadErrors(t *testing.T) {
	c := qt.New(t)
	_, err := Load(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.ErrorMatches, "error reading config file: .*")

	_, err = Load(writeFile(c, "apiPort: [1, 2]"))
	c.Assert(err, qt.ErrorMatches, "error parsing config file: .*")

	c.Setenv("ARTSYNC_CHAIN_ID", "not a number")
	_, err = Load("")
	c.Assert(err, qt.ErrorMatches, "error processing environment: .*")
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"data dir":           func(c *Config) { c.DataDir = "" },
		"db type":            func(c *Config) { c.DBType = "sqlite" },
		"port":               func(c *Config) { c.APIPort = 70000 },
		"chain id":           func(c *Config) { c.ChainID = 0 },
		"kms address":        func(c *Config) { c.KMSAddress = "0xnope" },
		"max value":          func(c *Config) { c.MaxValue = 0 },
		"authorization days": func(c *Config) { c.AuthorizationDays = 0 },
		"authorization cap":  func(c *Config) { c.AuthorizationDays = fhe.MaxDurationDays + 1 },
		"timeout":            func(c *Config) { c.DecryptionTimeout = 0 },
		"log level":          func(c *Config) { c.LogLevel = "trace" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			qt.New(t).Assert(cfg.Validate(), qt.ErrorIs, ErrInvalidConfig)
		})
	}
}

func TestKeys(t *testing.T) {
	c := qt.New(t)
	cfg := Default()
	cfg.DataDir = c.TempDir()

	expo, owner, err := cfg.Keys()
	c.Assert(err, qt.IsNil)
	c.Assert(expo.Address(), qt.Not(qt.Equals), owner.Address())
	_, err = os.Stat(filepath.Join(cfg.DataDir, KeysFile))
	c.Assert(err, qt.IsNil)

	// generated keys are stable across restarts
	expo2, owner2, err := cfg.Keys()
	c.Assert(err, qt.IsNil)
	c.Assert(expo2.Address(), qt.Equals, expo.Address())
	c.Assert(owner2.Address(), qt.Equals, owner.Address())

	// configured keys win over stored ones
	_, priv := owner.HexString()
	cfg.ExpoKey = priv
	expo3, _, err := cfg.Keys()
	c.Assert(err, qt.IsNil)
	c.Assert(expo3.Address(), qt.Equals, owner.Address())

	cfg.OwnerKey = "zz"
	_, _, err = cfg.Keys()
	c.Assert(err, qt.ErrorMatches, "invalid owner key: .*")
}
