package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level node configuration: shared storage location, the
// owner account allowed to administer farms, and one section per farm
// instance.
type Config struct {
	DataDir string `toml:"DataDir"`
	Owner   string `toml:"Owner"`

	Farms   []FarmConfig   `toml:"farm"`
	NFTFarm *NFTFarmConfig `toml:"nftfarm"`
}

// FarmConfig describes one multi-slot farm instance. StakedToken and
// RewardToken may differ; the LP variant stakes the pair token and pays
// rewards in the primary token.
type FarmConfig struct {
	Name             string `toml:"Name"`
	StakedToken      string `toml:"StakedToken"`
	RewardToken      string `toml:"RewardToken"`
	APY              uint64 `toml:"APY"`
	PauseBlocksClaim bool   `toml:"PauseBlocksClaim"`
}

// NFTFarmConfig describes the single-slot compounding farm and its booster
// whitelist.
type NFTFarmConfig struct {
	Name        string          `toml:"Name"`
	StakedToken string          `toml:"StakedToken"`
	RewardToken string          `toml:"RewardToken"`
	APY         uint64          `toml:"APY"`
	Boosters    []BoosterConfig `toml:"Boosters"`
}

// BoosterConfig whitelists one NFT type with its additive per-unit APY.
type BoosterConfig struct {
	TokenID uint64 `toml:"TokenID"`
	APY     uint64 `toml:"APY"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %s", path, undecoded[0])
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./farm-data"
	}
	for i := range cfg.Farms {
		if cfg.Farms[i].APY == 0 {
			cfg.Farms[i].APY = defaultAPY
		}
	}
	if cfg.NFTFarm != nil && cfg.NFTFarm.APY == 0 {
		cfg.NFTFarm.APY = defaultAPY
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		DataDir: "./farm-data",
		Farms: []FarmConfig{
			{Name: "farm", APY: defaultAPY},
		},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
