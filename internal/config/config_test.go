package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TOOL_CALL_LIMIT", "")
	t.Setenv("AGENT_PROFILE_FILE", "")
	t.Setenv("CACHE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.OpenAI.Enabled)
	assert.Equal(t, 1, cfg.Agent.ToolCallLimit)
	assert.Equal(t, 500, cfg.RentCast.PageSize)
	assert.True(t, cfg.RentCast.CallAPI)
	assert.Equal(t, DropOmit, cfg.Agent.DroppedCallPolicy)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.True(t, cfg.Agent.Fields.ZipCode)
	assert.True(t, cfg.Agent.Fields.PropertyType)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_BASE", "http://localhost:9999/v1/")
	t.Setenv("TOOL_CALL_LIMIT", "3")
	t.Setenv("RENT_CAST_CALL_API", "false")
	t.Setenv("CACHE_BACKEND", "Memory")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("TOOL_FIELD_BEDROOMS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.OpenAI.Enabled)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.APIBase)
	assert.Equal(t, 3, cfg.Agent.ToolCallLimit)
	assert.False(t, cfg.RentCast.CallAPI)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Agent.Fields.Bedrooms)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RentCast: RentCastConfig{PageSize: 10},
			Agent:    AgentConfig{ToolCallLimit: 1, DroppedCallPolicy: DropOmit},
			Cache:    CacheConfig{Backend: CacheNone},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Agent.ToolCallLimit = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RentCast.PageSize = -1
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Agent.DroppedCallPolicy = "ignore"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Cache.Backend = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://u:p@db/d"
	assert.Equal(t, "postgres://u:p@db/d", cfg.GetPostgreSQLDSN())
}

func TestProfileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: gpt-test
tool_call_limit: 2
strict_schema: true
answer_phase: false
dropped_call_policy: reject
fields:
  zip_code: true
  price: true
tool_instructions: "find homes"
`), 0o644))

	t.Setenv("AGENT_PROFILE_FILE", path)
	t.Setenv("TOOL_CALL_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-test", cfg.OpenAI.Model)
	assert.Equal(t, 2, cfg.Agent.ToolCallLimit)
	assert.True(t, cfg.Agent.StrictSchema)
	assert.False(t, cfg.Agent.AnswerPhase)
	assert.Equal(t, DropReject, cfg.Agent.DroppedCallPolicy)
	assert.Equal(t, FieldsConfig{ZipCode: true, Price: true}, cfg.Agent.Fields)
	assert.Equal(t, "find homes", cfg.Agent.ToolInstructions)
	assert.Empty(t, cfg.Agent.AnswerInstructions)
}

func TestLoadProfile_Missing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
