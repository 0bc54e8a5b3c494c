package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviefinder/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "stdio", "history", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "moviefinder version dev")
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := config.NewAppConfig()

	got := applyServeOverrides(cfg, "127.0.0.1", 9000)
	assert.Equal(t, "127.0.0.1:9000", got.Addr())

	unchanged := applyServeOverrides(cfg, "", 0)
	assert.Equal(t, cfg.Addr(), unchanged.Addr())
}

func TestClientOptions_Count(t *testing.T) {
	cfg := config.NewAppConfig()

	opts := clientOptions(cfg, nil)

	// storage, text provider, catalog, format, max tokens, temperature,
	// parallelism and logger
	assert.Len(t, opts, 8)
}
