package main

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func contextWithLogLevel(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", level, "")
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"DEBUG", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := setupLogger(contextWithLogLevel(t, tt.level))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupLogger_SetsLevel(t *testing.T) {
	require.NoError(t, setupLogger(contextWithLogLevel(t, "error")))
	assert.False(t, slog.Default().Enabled(nil, slog.LevelInfo))

	require.NoError(t, setupLogger(contextWithLogLevel(t, "debug")))
	assert.True(t, slog.Default().Enabled(nil, slog.LevelDebug))
}

func TestStoreFlags(t *testing.T) {
	flags := storeFlags()

	var dbFlag *cli.StringFlag
	var dimFlag *cli.IntFlag
	for _, f := range flags {
		switch typed := f.(type) {
		case *cli.StringFlag:
			if typed.Name == "db" {
				dbFlag = typed
			}
		case *cli.IntFlag:
			if typed.Name == "dim" {
				dimFlag = typed
			}
		}
	}

	require.NotNil(t, dbFlag)
	assert.True(t, dbFlag.Required)
	assert.Contains(t, dbFlag.EnvVars, "MAILVEC_DATABASE_URL")

	require.NotNil(t, dimFlag)
	assert.Equal(t, 1536, dimFlag.Value)
}

func TestEmbeddingFlags(t *testing.T) {
	flags := embeddingFlags()

	var tokenFlag *cli.StringFlag
	for _, f := range flags {
		if typed, ok := f.(*cli.StringFlag); ok && typed.Name == "embedding-token" {
			tokenFlag = typed
		}
	}

	require.NotNil(t, tokenFlag)
	assert.Contains(t, tokenFlag.EnvVars, "OPENAI_API_KEY")
}
