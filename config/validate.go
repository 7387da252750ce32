package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const defaultAPY uint64 = 12

// Validate rejects configurations a node could not start from: duplicate or
// empty farm names, malformed addresses, zero-rate boosters.
func (c *Config) Validate() error {
	if c.Owner != "" && !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("config: Owner %q is not a hex address", c.Owner)
	}

	names := make(map[string]struct{})
	claim := func(name string) error {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("config: farm with empty Name")
		}
		if _, dup := names[trimmed]; dup {
			return fmt.Errorf("config: duplicate farm name %q", trimmed)
		}
		names[trimmed] = struct{}{}
		return nil
	}

	for _, farm := range c.Farms {
		if err := claim(farm.Name); err != nil {
			return err
		}
		if err := validateToken(farm.Name, "StakedToken", farm.StakedToken); err != nil {
			return err
		}
		if err := validateToken(farm.Name, "RewardToken", farm.RewardToken); err != nil {
			return err
		}
	}

	if c.NFTFarm != nil {
		if err := claim(c.NFTFarm.Name); err != nil {
			return err
		}
		if err := validateToken(c.NFTFarm.Name, "StakedToken", c.NFTFarm.StakedToken); err != nil {
			return err
		}
		if err := validateToken(c.NFTFarm.Name, "RewardToken", c.NFTFarm.RewardToken); err != nil {
			return err
		}
		seen := make(map[uint64]struct{})
		for _, booster := range c.NFTFarm.Boosters {
			if booster.TokenID == 0 {
				return fmt.Errorf("config: farm %q booster with zero TokenID", c.NFTFarm.Name)
			}
			if booster.APY == 0 {
				return fmt.Errorf("config: farm %q booster %d with zero APY", c.NFTFarm.Name, booster.TokenID)
			}
			if _, dup := seen[booster.TokenID]; dup {
				return fmt.Errorf("config: farm %q duplicate booster %d", c.NFTFarm.Name, booster.TokenID)
			}
			seen[booster.TokenID] = struct{}{}
		}
	}
	return nil
}

func validateToken(farm, field, value string) error {
	if value == "" {
		return nil
	}
	if !common.IsHexAddress(value) {
		return fmt.Errorf("config: farm %q %s %q is not a hex address", farm, field, value)
	}
	return nil
}
