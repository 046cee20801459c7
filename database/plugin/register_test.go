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

package plugin_test

import (
	"testing"

	"github.com/blinklabs-io/agora/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	started bool
}

func (m *mockPlugin) Start() error { m.started = true; return nil }
func (m *mockPlugin) Stop() error  { return nil }

func TestRegister(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: pluginName,
		NewFromOptionsFunc: func(plugin.RuntimeOptions) plugin.Plugin {
			return &mockPlugin{}
		},
	})

	p := plugin.GetPlugin(plugin.PluginTypeBlob, pluginName, plugin.RuntimeOptions{})
	require.NotNil(t, p)
	assert.IsType(t, &mockPlugin{}, p)

	found := false
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if entry.Name == pluginName {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
		assert.NotEqual(t, pluginName, entry.Name)
	}

	assert.Nil(
		t,
		plugin.GetPlugin(plugin.PluginTypeBlob, "non-existent-"+t.Name(), plugin.RuntimeOptions{}),
	)
}

func TestStartPlugin(t *testing.T) {
	pluginName := "test-start-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeMetadata,
		Name: pluginName,
		NewFromOptionsFunc: func(plugin.RuntimeOptions) plugin.Plugin {
			return &mockPlugin{}
		},
	})
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, plugin.RuntimeOptions{})
	require.NoError(t, err)
	mp, ok := p.(*mockPlugin)
	require.True(t, ok)
	assert.True(t, mp.started)

	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, "missing-"+t.Name(), plugin.RuntimeOptions{})
	require.Error(t, err)
}

func TestStartPluginDeferredError(t *testing.T) {
	pluginName := "test-error-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: pluginName,
		NewFromOptionsFunc: func(plugin.RuntimeOptions) plugin.Plugin {
			return plugin.NewErrorPlugin(assert.AnError)
		},
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName, plugin.RuntimeOptions{})
	require.ErrorIs(t, err, assert.AnError)
}
