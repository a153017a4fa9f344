package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mulligan/feature/catalog/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySyncFlags(t *testing.T) {
	flags := syncCardsCmd.Flags()
	require.NoError(t, flags.Parse([]string{"--batch-size", "7", "--format", "wild", "--verify-images"}))
	t.Cleanup(func() {
		for _, name := range []string{"batch-size", "format", "verify-images"} {
			flags.Lookup(name).Changed = false
		}
		syncBatchSize, syncFormat, verifyImages = 20, "standard", false
	})

	cfg := pipeline.Config{Locale: "frFR", Format: "standard", BatchSize: 20, Workers: 4}
	applySyncFlags(flags, &cfg)

	assert.Equal(t, "frFR", cfg.Locale, "unset flags keep configured values")
	assert.Equal(t, "wild", cfg.Format)
	assert.Equal(t, 7, cfg.BatchSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.VerifyImages)
}

func TestAllowlistCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"2026.3\"\nsets: [EVENT, CORE]\n"), 0o644))
	t.Cleanup(func() { allowlistFile = "" })

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"allowlist", "--allowlist", path})
	require.NoError(t, RootCmd.Execute())

	assert.Contains(t, out.String(), "version: 2026.3")
	assert.Contains(t, out.String(), "sets:    CORE, EVENT")
}
