package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesearch/internal/config"
	"homesearch/internal/tools"
)

func testConfig() *config.Config {
	return &config.Config{
		OpenAI: config.OpenAIConfig{Model: "gpt-test", APIBase: "http://127.0.0.1:1"},
		RentCast: config.RentCastConfig{
			BaseURL:  "http://127.0.0.1:1/listings",
			PageSize: 5,
			Timeout:  1,
		},
		Agent: config.AgentConfig{
			ToolCallLimit:     2,
			DroppedCallPolicy: config.DropOmit,
			Fields:            config.FieldsConfig{ZipCode: true, Price: true},
		},
		Cache: config.CacheConfig{Backend: config.CacheMemory, MaxEntries: 8},
	}
}

func TestNew_WiresComponents(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Repo)
	assert.False(t, a.Model.IsEnabled())
	assert.Equal(t, tools.ListingsToolName, a.Descriptor.Name)
	assert.Len(t, a.Descriptor.Parameters.Properties, 3)
	assert.Equal(t, []tools.ToolDescriptor{a.Descriptor}, a.Driver.Tools())

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}

func TestNew_NoCache(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = config.CacheNone

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestNew_InvalidCacheSize(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.MaxEntries = 0

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "memory cache")
}
