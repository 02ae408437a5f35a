package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the developer's shell cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, f := range Fields {
		t.Setenv(f.EnvVar(), "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), "writing config file")
}

func readRawFile(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw), "file is not valid JSON")
	return raw
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	s := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	assert.Equal(t, Configuration{}, s.Load())
}

func TestLoad_CorruptFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, "{not json")

	assert.Equal(t, Configuration{}, NewStore(path).Load())
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
  "gatewayUrl": "http://gw.local:8080",
  "agentName": "bot-1",
  "agentAddress": "bot-1@gw.local",
  "apiKey": "key-123",
  "adminKey": "admin-456"
}`)

	assert.Equal(t, Configuration{
		GatewayURL:   "http://gw.local:8080",
		AgentName:    "bot-1",
		AgentAddress: "bot-1@gw.local",
		APIKey:       "key-123",
		AdminKey:     "admin-456",
	}, NewStore(path).Load())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
  "gatewayUrl": "http://file",
  "agentName": "file-name",
  "agentAddress": "file@addr",
  "apiKey": "file-key",
  "adminKey": "file-admin"
}`)

	for _, f := range Fields {
		t.Run(string(f), func(t *testing.T) {
			clearEnv(t)
			t.Setenv(f.EnvVar(), "from-env")

			cfg := NewStore(path).Load()
			assert.Equal(t, "from-env", cfg.Get(f))
			for _, other := range Fields {
				if other == f {
					continue
				}
				assert.True(t, strings.HasPrefix(cfg.Get(other), "file"), "%s = %q, want file value", other, cfg.Get(other))
			}
		})
	}
}

func TestLoad_EmptyEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"gatewayUrl": "http://file"}`)

	t.Setenv("AMTP_GATEWAY_URL", "")
	assert.Equal(t, "http://file", NewStore(path).Load().GatewayURL)
}

func TestSave_MergesWithExisting(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"adminKey": "admin-1", "apiKey": "old-key", "custom": 42}`)
	s := NewStore(path)

	merged, err := s.Save(Configuration{GatewayURL: "http://gw", APIKey: "new-key"})
	require.NoError(t, err)

	want := Configuration{GatewayURL: "http://gw", APIKey: "new-key", AdminKey: "admin-1"}
	assert.Equal(t, want, merged)
	assert.Equal(t, want, s.Load())

	// Keys unknown to this version survive the rewrite.
	assert.Equal(t, float64(42), readRawFile(t, path)["custom"])
}

func TestSave_ExactFieldsReplacedAsAUnit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"agentName": "old", "agentAddress": "old@gw", "apiKey": "old-key", "adminKey": "admin"}`)
	s := NewStore(path)

	merged, err := s.Save(
		Configuration{AgentName: "new", APIKey: "new-key"},
		FieldAgentName, FieldAgentAddress, FieldAPIKey,
	)
	require.NoError(t, err)

	want := Configuration{AgentName: "new", APIKey: "new-key", AdminKey: "admin"}
	assert.Equal(t, want, merged)
	assert.Equal(t, want, s.Load())
	assert.NotContains(t, readRawFile(t, path), "agentAddress")
}

func TestSave_ExactEmptyFieldClearsIt(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path)

	_, err := s.Save(Configuration{APIKey: "key", AgentName: "bot"})
	require.NoError(t, err)
	_, err = s.Save(Configuration{}, FieldAPIKey)
	require.NoError(t, err)

	cfg := s.Load()
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "bot", cfg.AgentName)
	assert.NotContains(t, readRawFile(t, path), "apiKey")
}

func TestSave_CorruptFileStartsFresh(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, "garbage")

	merged, err := NewStore(path).Save(Configuration{AgentName: "bot"})
	require.NoError(t, err)
	assert.Equal(t, Configuration{AgentName: "bot"}, merged)
}

func TestSave_FileFormat(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := NewStore(path).Save(Configuration{AgentName: "bot"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"agentName\": \"bot\"\n}\n", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestSave_TightensLoosePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not supported on windows")
	}
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"agentName":"bot"}`), 0644))

	_, err := NewStore(path).Save(Configuration{APIKey: "key"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigurationWith(t *testing.T) {
	base := Configuration{AgentName: "bot"}
	changed := base.With(FieldAPIKey, "key")

	assert.Equal(t, Configuration{AgentName: "bot", APIKey: "key"}, changed)
	assert.Empty(t, base.APIKey, "With must not modify the receiver")
}

func TestParseField(t *testing.T) {
	f, err := ParseField("agentAddress")
	require.NoError(t, err)
	assert.Equal(t, FieldAgentAddress, f)

	_, err = ParseField("nope")
	assert.Error(t, err)
}

func TestRedactValue(t *testing.T) {
	tests := []struct {
		field    Field
		value    string
		expected string
	}{
		{FieldAPIKey, "sk-1234567890", "sk-12345..."},
		{FieldAdminKey, "short", "short..."},
		{FieldAdminKey, "", ""},
		{FieldGatewayURL, "http://gw", "http://gw"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactValue(tt.field, tt.value))
		})
	}
}
