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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to plugin option environment variables
const EnvPrefix = "AGORA"

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	Name         string
	Type         PluginOptionType
	Description  string
	DefaultValue any
	Dest         any
}

func (o PluginOption) flagName(pluginType PluginType, pluginName string) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginType),
		pluginName,
		o.Name,
	)
}

func (o PluginOption) envName(pluginType PluginType, pluginName string) string {
	name := strings.ToUpper(o.flagName(pluginType, pluginName))
	return EnvPrefix + "_" + strings.ReplaceAll(name, "-", "_")
}

// assign performs a type-checked assignment of value into the option's
// destination. Strings are parsed for non-string options.
func (o PluginOption) assign(value any) error {
	if o.Dest == nil {
		return fmt.Errorf("nil destination for option %s", o.Name)
	}
	switch o.Type {
	case PluginOptionTypeString:
		dest, ok := o.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *string",
				o.Name,
			)
		}
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected string", o.Name)
		}
		*dest = v
	case PluginOptionTypeBool:
		dest, ok := o.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *bool",
				o.Name,
			)
		}
		switch v := value.(type) {
		case bool:
			*dest = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", o.Name, err)
			}
			*dest = b
		default:
			return fmt.Errorf("invalid type for option %s: expected bool", o.Name)
		}
	case PluginOptionTypeInt:
		dest, ok := o.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *int",
				o.Name,
			)
		}
		switch v := value.(type) {
		case int:
			*dest = v
		case string:
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", o.Name, err)
			}
			*dest = i
		default:
			return fmt.Errorf("invalid type for option %s: expected int", o.Name)
		}
	case PluginOptionTypeUint:
		dest, ok := o.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf(
				"invalid destination type for option %s: expected *uint64",
				o.Name,
			)
		}
		switch v := value.(type) {
		case uint64:
			*dest = v
		case int:
			if v < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", o.Name)
			}
			*dest = uint64(v)
		case string:
			u, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", o.Name, err)
			}
			*dest = u
		default:
			return fmt.Errorf(
				"invalid type for option %s: expected uint64 or int",
				o.Name,
			)
		}
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			o.Type,
			o.Name,
		)
	}
	return nil
}

// SetPluginOption sets the value of a named option for a plugin entry. This
// is used by callers that need to override plugin defaults programmatically,
// for example to set data-dir before starting a plugin. Unknown option names
// are ignored so callers can set options that only some implementations
// have.
// NOTE: this writes directly to option destinations and must be called
// before any plugin is instantiated.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		if entry.Type != pluginType || entry.Name != pluginName {
			continue
		}
		for _, opt := range entry.Options {
			if opt.Name == optionName {
				return opt.assign(value)
			}
		}
		return nil
	}
	return fmt.Errorf(
		"plugin %s of type %s not found",
		pluginName,
		PluginTypeName(pluginType),
	)
}

// PopulateCmdlineOptions adds a flag for every registered plugin option,
// named <type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			name := opt.flagName(entry.Type, entry.Name)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, _ := opt.Dest.(*string)
				def, _ := opt.DefaultValue.(string)
				if dest == nil {
					return fmt.Errorf("invalid destination for flag %s", name)
				}
				fs.StringVar(dest, name, def, opt.Description)
			case PluginOptionTypeBool:
				dest, _ := opt.Dest.(*bool)
				def, _ := opt.DefaultValue.(bool)
				if dest == nil {
					return fmt.Errorf("invalid destination for flag %s", name)
				}
				fs.BoolVar(dest, name, def, opt.Description)
			case PluginOptionTypeInt:
				dest, _ := opt.Dest.(*int)
				def, _ := opt.DefaultValue.(int)
				if dest == nil {
					return fmt.Errorf("invalid destination for flag %s", name)
				}
				fs.IntVar(dest, name, def, opt.Description)
			case PluginOptionTypeUint:
				dest, _ := opt.Dest.(*uint64)
				def, _ := opt.DefaultValue.(uint64)
				if dest == nil {
					return fmt.Errorf("invalid destination for flag %s", name)
				}
				fs.Uint64Var(dest, name, def, opt.Description)
			default:
				return fmt.Errorf("unknown option type %d for flag %s", opt.Type, name)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from environment variables named
// AGORA_<TYPE>_<PLUGIN>_<OPTION>
func ProcessEnvVars() error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			val, ok := os.LookupEnv(opt.envName(entry.Type, entry.Name))
			if !ok {
				continue
			}
			if err := opt.assign(val); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, entry := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(entry.Type)]
		if !ok {
			continue
		}
		optValues, ok := typeConfig[entry.Name]
		if !ok {
			continue
		}
		for _, opt := range entry.Options {
			val, ok := optValues[opt.Name]
			if !ok {
				continue
			}
			if err := opt.assign(val); err != nil {
				return fmt.Errorf(
					"%s plugin %s: %w",
					PluginTypeName(entry.Type),
					entry.Name,
					err,
				)
			}
		}
	}
	return nil
}
