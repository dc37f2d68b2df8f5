package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, DefaultDimensions, cfg.Dimensions)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:11434"),
		WithModel("embeddinggemma"),
		WithToken("none"),
		WithDimensions(768),
	)
	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "embeddinggemma", cfg.Model)
	assert.Equal(t, "none", cfg.Token)
	assert.Equal(t, 768, cfg.Dimensions)
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig(WithToken("sk-test"))
	require.NoError(t, cfg.Validate())

	missingToken := NewConfig()
	assert.Error(t, missingToken.Validate())

	missingModel := NewConfig(WithToken("sk-test"), WithModel(""))
	assert.Error(t, missingModel.Validate())

	badDim := NewConfig(WithToken("sk-test"), WithDimensions(0))
	assert.Error(t, badDim.Validate())
}
