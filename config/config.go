// Package config loads the daemon settings. Values are layered: defaults,
// then an optional YAML file, then ARTSYNC_* environment variables, then
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/db"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ARTSYNC"

const (
	DefaultDataDir           = ".artsync"
	DefaultAPIHost           = "0.0.0.0"
	DefaultAPIPort           = 9090
	DefaultChainID           = 31337
	DefaultAuthorizationDays = 365
	DefaultDecryptionTimeout = 30 * time.Second
	DefaultMaxValue          = 1 << 20
)

// DefaultKMSAddress is the verifying contract of decryption authorizations.
var DefaultKMSAddress = common.HexToAddress("0x0000000000000000000000000000000000000f1e")

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the daemon settings.
type Config struct {
	DataDir   string `yaml:"dataDir"   split_words:"true"`
	DBType    string `yaml:"dbType"    envconfig:"DB_TYPE"`
	LogLevel  string `yaml:"logLevel"  split_words:"true"`
	LogOutput string `yaml:"logOutput" split_words:"true"`

	APIHost string `yaml:"apiHost" envconfig:"API_HOST"`
	APIPort int    `yaml:"apiPort" envconfig:"API_PORT"`
	Metrics bool   `yaml:"metrics"`

	ChainID uint64 `yaml:"chainId" envconfig:"CHAIN_ID"`
	// ExpoKey and OwnerKey are hex secp256k1 keys. The ledger contract
	// address is the one of ExpoKey, the pass token owner the one of
	// OwnerKey. Empty keys are generated on first start and kept in the
	// data dir.
	ExpoKey    string `yaml:"expoKey"    split_words:"true"`
	OwnerKey   string `yaml:"ownerKey"   split_words:"true"`
	KMSAddress string `yaml:"kmsAddress" envconfig:"KMS_ADDRESS"`
	MaxValue   uint64 `yaml:"maxValue"   split_words:"true"`

	AuthorizationDays uint32        `yaml:"authorizationDays" split_words:"true"`
	DecryptionTimeout time.Duration `yaml:"decryptionTimeout" split_words:"true"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		DataDir:           DefaultDataDir,
		DBType:            db.TypePebble,
		LogLevel:          log.LogLevelInfo,
		LogOutput:         "stdout",
		APIHost:           DefaultAPIHost,
		APIPort:           DefaultAPIPort,
		Metrics:           true,
		ChainID:           DefaultChainID,
		KMSAddress:        DefaultKMSAddress.Hex(),
		MaxValue:          DefaultMaxValue,
		AuthorizationDays: DefaultAuthorizationDays,
		DecryptionTimeout: DefaultDecryptionTimeout,
	}
}

// Load returns the defaults overlaid with configFile, if not empty, and the
// environment.
func Load(configFile string) (*Config, error) {
	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return cfg, nil
}

// Flags returns a flag set with one flag per setting plus --config. The
// defaults shown are the ones of Default.
func Flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringP("config", "c", "", "YAML configuration file")
	Default().bindFlags(fs)
	return fs
}

// ApplyFlags overrides the settings with the flags explicitly set in fs.
func (c *Config) ApplyFlags(fs *flag.FlagSet) error {
	bound := flag.NewFlagSet("", flag.ContinueOnError)
	c.bindFlags(bound)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil || bound.Lookup(f.Name) == nil {
			return
		}
		err = bound.Set(f.Name, f.Value.String())
	})
	return err
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.DataDir, "datadir", "d", c.DataDir, "data directory")
	fs.StringVar(&c.DBType, "dbType", c.DBType, "storage engine (pebble, leveldb)")
	fs.StringVarP(&c.LogLevel, "logLevel", "l", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogOutput, "logOutput", c.LogOutput, "log output (stdout, stderr or a file path)")
	fs.StringVar(&c.APIHost, "apiHost", c.APIHost, "API host")
	fs.IntVarP(&c.APIPort, "apiPort", "p", c.APIPort, "API port")
	fs.BoolVar(&c.Metrics, "metrics", c.Metrics, "expose prometheus metrics")
	fs.Uint64Var(&c.ChainID, "chainId", c.ChainID, "chain id of the ledger contract")
	fs.StringVar(&c.ExpoKey, "expoKey", c.ExpoKey, "hex private key of the ledger contract")
	fs.StringVar(&c.OwnerKey, "ownerKey", c.OwnerKey, "hex private key of the pass token owner")
	fs.StringVar(&c.KMSAddress, "kmsAddress", c.KMSAddress, "verifying contract of decryption authorizations")
	fs.Uint64Var(&c.MaxValue, "maxValue", c.MaxValue, "largest counter value the coprocessor decrypts")
	fs.Uint32Var(&c.AuthorizationDays, "authorizationDays", c.AuthorizationDays, "validity of decryption authorizations in days")
	fs.DurationVar(&c.DecryptionTimeout, "decryptionTimeout", c.DecryptionTimeout, "timeout of decryption requests")
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: empty data dir", ErrInvalidConfig)
	case c.DBType != db.TypePebble && c.DBType != db.TypeLevelDB:
		return fmt.Errorf("%w: unsupported db type %q", ErrInvalidConfig, c.DBType)
	case c.APIPort < 0 || c.APIPort > 65535:
		return fmt.Errorf("%w: API port %d out of range", ErrInvalidConfig, c.APIPort)
	case c.ChainID == 0:
		return fmt.Errorf("%w: chain id must not be zero", ErrInvalidConfig)
	case !common.IsHexAddress(c.KMSAddress):
		return fmt.Errorf("%w: malformed kms address %q", ErrInvalidConfig, c.KMSAddress)
	case c.MaxValue == 0:
		return fmt.Errorf("%w: max value must not be zero", ErrInvalidConfig)
	case c.AuthorizationDays == 0:
		return fmt.Errorf("%w: authorization days must not be zero", ErrInvalidConfig)
	case c.AuthorizationDays > fhe.MaxDurationDays:
		return fmt.Errorf("%w: authorization days above %d", ErrInvalidConfig, fhe.MaxDurationDays)
	case c.DecryptionTimeout <= 0:
		return fmt.Errorf("%w: decryption timeout must be positive", ErrInvalidConfig)
	}
	switch c.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
