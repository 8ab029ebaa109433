package commands

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/host"
	"github.com/pelletier/go-toml"
)

// ConfigFile is the name of the configuration file under the home
// directory.
const ConfigFile = "config.toml"

// Config is the configuration of a local chain.
type Config struct {
	ChainID   int64            `toml:"chain_id"`
	LogLevel  string           `toml:"log_level"`
	Database  DatabaseConfig   `toml:"database"`
	Gas       host.GasSchedule `toml:"gas"`
	Contracts ContractsConfig  `toml:"contracts"`
}

// DatabaseConfig locates the chain state.
type DatabaseConfig struct {
	// Path is relative to the home directory unless absolute.
	Path string `toml:"path"`
}

// ContractsConfig holds the addresses of the contracts deployed by init.
type ContractsConfig struct {
	Deployer          string `toml:"deployer"`
	Singleton         string `toml:"singleton"`
	Factory           string `toml:"factory"`
	MultiSend         string `toml:"multisend"`
	MultiSendCallOnly string `toml:"multisend_call_only"`
	AllowlistGuard    string `toml:"allowlist_guard"`
	DelegateCallGuard string `toml:"delegate_call_guard"`
}

// DefaultConfig returns the configuration init starts from.
func DefaultConfig() Config {
	return Config{
		ChainID:  1337,
		LogLevel: "info",
		Database: DatabaseConfig{Path: "data"},
		Gas:      host.DefaultGasSchedule(),
		Contracts: ContractsConfig{
			Deployer: "0x00000000000000000000000000000000000000d0",
		},
	}
}

// Validate returns an error if the configuration cannot run a chain.
func (c Config) Validate() error {
	var errs error
	if c.ChainID <= 0 {
		errs = errors.AppendField(errs, "ChainID", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	if c.Database.Path == "" {
		errs = errors.AppendField(errs, "Database.Path", errors.Wrap(errors.ErrInput, "required"))
	}
	if c.Gas.MaxCallDepth <= 0 {
		errs = errors.AppendField(errs, "Gas.MaxCallDepth", errors.Wrap(errors.ErrInput, "must be positive"))
	}
	if !common.IsHexAddress(c.Contracts.Deployer) {
		errs = errors.AppendField(errs, "Contracts.Deployer", errors.Wrap(errors.ErrInput, "not an address"))
	}
	return errs
}

// DatabasePath returns the absolute location of the state.
func (c Config) DatabasePath(home string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(home, c.Database.Path)
}

// LoadConfig reads the configuration from the home directory.
func LoadConfig(home string) (Config, error) {
	var cfg Config
	raw, err := ioutil.ReadFile(filepath.Join(home, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrapf(errors.ErrNotFound, "no configuration in %s, run init first", home)
		}
		return cfg, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrInput, "parse config: %s", err)
	}
	return cfg, cfg.Validate()
}

// SaveConfig writes the configuration to the home directory.
func SaveConfig(home string, cfg Config) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(errors.ErrHuman, "marshal config: %s", err)
	}
	if err := ioutil.WriteFile(filepath.Join(home, ConfigFile), raw, 0644); err != nil {
		return errors.Wrapf(errors.ErrInput, "write config: %s", err)
	}
	return nil
}
