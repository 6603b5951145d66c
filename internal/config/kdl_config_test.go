package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Empty(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Only what the file states is set; defaults come from the validator
	assert.Equal(t, 1, cfg.Version)
	assert.Zero(t, cfg.Heap.MaxSymbolBytes)
	assert.Empty(t, cfg.Heap.Tiers)
	assert.Zero(t, cfg.Table.Shards)
	assert.Empty(t, cfg.Output.Format)
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
version 1
heap {
    max_symbol_bytes 4096
    tiers 8 16 32
}
table {
    shards 32
    workers 3
}
output {
    format "decimal"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Heap.MaxSymbolBytes)
	assert.Equal(t, []int{8, 16, 32}, cfg.Heap.Tiers)
	assert.Equal(t, 32, cfg.Table.Shards)
	assert.Equal(t, 3, cfg.Table.Workers)
	assert.Equal(t, OutputDecimal, cfg.Output.Format)
}

func TestParseKDL_SizeStrings(t *testing.T) {
	cfg, err := parseKDL("heap {\n    max_symbol_bytes \"64KB\"\n}\n")
	require.NoError(t, err)
	assert.Equal(t, 64*1024, cfg.Heap.MaxSymbolBytes)

	_, err = parseKDL("heap {\n    max_symbol_bytes \"lots\"\n}\n")
	assert.Error(t, err)
}

func TestParseKDL_UnknownNodesIgnored(t *testing.T) {
	cfg, err := parseKDL(`
something_else "value"
table {
    shards 4
    colour "blue"
}
`)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Table.Shards)
}

func TestParseKDL_Invalid(t *testing.T) {
	_, err := parseKDL(`table { shards 4`)
	assert.Error(t, err)
}

func TestLoadKDL_MissingFile(t *testing.T) {
	cfg, err := LoadKDL(filepath.Join(t.TempDir(), DefaultKDLFile))
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDL_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultKDLFile)
	require.NoError(t, os.WriteFile(path, []byte("table {\n    shards 2\n}\n"), 0644))

	cfg, err := LoadKDL(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 2, cfg.Table.Shards)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{"100B", 100},
		{"2KB", 2048},
		{"3mb", 3 * 1024 * 1024},
		{" 1GB ", 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("KB")
	assert.Error(t, err)
}
