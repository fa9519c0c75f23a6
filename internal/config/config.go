// Package config resolves process settings from the environment (and a .env
// file when present) plus the optional planner policy file.
package config

import (
	"fmt"
	"os"
	"strings"

	"warehouse-slotting/internal/core"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds every setting the binaries read.
type Config struct {
	DatabaseURL       string
	ServerPort        string
	AllowedOrigins    string
	JWTSecret         string
	RedisURL          string
	LogLevel          string
	PlannerPolicyFile string
}

// Load reads .env (if any) and the environment. SERVER_PORT defaults to 8080.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		AllowedOrigins:    os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisURL:          os.Getenv("REDIS_URL"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		PlannerPolicyFile: os.Getenv("PLANNER_POLICY_FILE"),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	return cfg
}

type policyFile struct {
	Planner struct {
		ExclusiveCells             *bool `toml:"exclusive_cells"`
		ExclusiveWhenUnconstrained *bool `toml:"exclusive_when_unconstrained"`
	} `toml:"planner"`
}

// PlannerPolicy returns the policy from PlannerPolicyFile. Keys missing from
// the file, or a missing file setting, keep core.DefaultPlannerPolicy values.
func (c Config) PlannerPolicy() (core.PlannerPolicy, error) {
	policy := core.DefaultPlannerPolicy()
	if strings.TrimSpace(c.PlannerPolicyFile) == "" {
		return policy, nil
	}

	data, err := os.ReadFile(c.PlannerPolicyFile)
	if err != nil {
		return policy, fmt.Errorf("failed to read planner policy: %w", err)
	}
	return ParsePlannerPolicy(data)
}

// ParsePlannerPolicy decodes a TOML planner policy over the defaults.
func ParsePlannerPolicy(data []byte) (core.PlannerPolicy, error) {
	policy := core.DefaultPlannerPolicy()
	var f policyFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return policy, fmt.Errorf("failed to parse planner policy: %w", err)
	}
	if f.Planner.ExclusiveCells != nil {
		policy.ExclusiveCells = *f.Planner.ExclusiveCells
	}
	if f.Planner.ExclusiveWhenUnconstrained != nil {
		policy.ExclusiveWhenUnconstrained = *f.Planner.ExclusiveWhenUnconstrained
	}
	return policy, nil
}
