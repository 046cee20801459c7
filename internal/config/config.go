// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/ledger"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "agora.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
	DefaultDatabasePath   = ".agora"
	DefaultQuorum         = 1
	DefaultVotingPeriod   = "72h"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

type tempConfig struct {
	Config   yaml.Node                 `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// GenesisConfig seeds an empty database. Once a database has been
// initialized, its stored parameters take precedence.
type GenesisConfig struct {
	Quorum       uint64            `yaml:"quorum"`
	VotingPeriod string            `yaml:"votingPeriod" split_words:"true"`
	VotingPower  map[string]uint64 `yaml:"votingPower"  split_words:"true"`
}

type Config struct {
	DatabasePath   string        `yaml:"databasePath"   split_words:"true"`
	BlobPlugin     string        `yaml:"blobPlugin"     envconfig:"AGORA_DATABASE_BLOB_PLUGIN"`
	MetadataPlugin string        `yaml:"metadataPlugin" envconfig:"AGORA_DATABASE_METADATA_PLUGIN"`
	Tracing        bool          `yaml:"tracing"`
	TracingStdout  bool          `yaml:"tracingStdout"  split_words:"true"`
	Genesis        GenesisConfig `yaml:"genesis"`
}

// LedgerGenesis converts the genesis section into ledger form
func (c *Config) LedgerGenesis() (ledger.Genesis, error) {
	period, err := time.ParseDuration(c.Genesis.VotingPeriod)
	if err != nil {
		return ledger.Genesis{}, fmt.Errorf("invalid voting period: %w", err)
	}
	if period < 0 {
		return ledger.Genesis{}, fmt.Errorf(
			"invalid voting period: %s is negative",
			c.Genesis.VotingPeriod,
		)
	}
	if c.Genesis.Quorum > governance.MaxAmount {
		return ledger.Genesis{}, fmt.Errorf(
			"invalid quorum: %d exceeds %d",
			c.Genesis.Quorum,
			governance.MaxAmount,
		)
	}
	powers := make(map[governance.Principal]uint64, len(c.Genesis.VotingPower))
	for principal, power := range c.Genesis.VotingPower {
		if principal == "" {
			return ledger.Genesis{}, errors.New("genesis voting power has an empty principal")
		}
		powers[governance.Principal(principal)] = power
	}
	return ledger.Genesis{
		Params: governance.Params{
			Quorum:       c.Genesis.Quorum,
			VotingPeriod: period,
		},
		VotingPower: powers,
	}, nil
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:   DefaultDatabasePath,
		BlobPlugin:     DefaultBlobPlugin,
		MetadataPlugin: DefaultMetadataPlugin,
		Genesis: GenesisConfig{
			Quorum:       DefaultQuorum,
			VotingPeriod: DefaultVotingPeriod,
		},
	}
}

var globalConfig = defaultConfig()

// pluginSection flattens a database.blob or database.metadata section into
// per-plugin option maps. A "plugin" key selects the plugin by name.
func pluginSection(section map[string]any, kind string) (string, map[string]map[string]any) {
	var pluginName string
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			pluginName = name
			delete(section, "plugin")
		}
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", kind, k, v)
		}
	}
	return pluginName, ret
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.agora/agora.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".agora", "agora.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/agora/agora.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/agora/agora.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// First unmarshal into temp config to handle plugin sections
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		if tempCfg.Config.Kind != 0 {
			// Overlay only the keys present in the section onto the defaults
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}

		pluginConfig := make(map[string]map[string]map[string]any)
		if tempCfg.Blob != nil {
			pluginConfig["blob"] = tempCfg.Blob
		}
		if tempCfg.Metadata != nil {
			pluginConfig["metadata"] = tempCfg.Metadata
		}
		if tempCfg.Database != nil {
			if tempCfg.Database.Blob != nil {
				name, blobConfig := pluginSection(tempCfg.Database.Blob, "blob")
				if name != "" {
					globalConfig.BlobPlugin = name
				}
				if pluginConfig["blob"] == nil {
					pluginConfig["blob"] = blobConfig
				} else {
					maps.Copy(pluginConfig["blob"], blobConfig)
				}
			}
			if tempCfg.Database.Metadata != nil {
				name, metadataConfig := pluginSection(tempCfg.Database.Metadata, "metadata")
				if name != "" {
					globalConfig.MetadataPlugin = name
				}
				if pluginConfig["metadata"] == nil {
					pluginConfig["metadata"] = metadataConfig
				} else {
					maps.Copy(pluginConfig["metadata"], metadataConfig)
				}
			}
		}
		if len(pluginConfig) > 0 {
			if err := plugin.ProcessConfig(pluginConfig); err != nil {
				return nil, fmt.Errorf(
					"error processing plugin config: %w",
					err,
				)
			}
		}
	}
	// Process environment variables
	if err := envconfig.Process("agora", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	// Catch a bad genesis section early, before any command touches the database
	if _, err := globalConfig.LedgerGenesis(); err != nil {
		return nil, fmt.Errorf("error in genesis config: %w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
