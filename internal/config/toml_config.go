package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tomlFile mirrors the KDL layout:
//
//	version = 1
//	[heap]
//	max_symbol_bytes = "64KB"   # or an integer
//	tiers = [16, 32, 64]
//	[table]
//	shards = 32
//	workers = 4
//	[output]
//	format = "hex"
type tomlFile struct {
	Version int `toml:"version"`
	Heap    struct {
		MaxSymbolBytes any   `toml:"max_symbol_bytes"`
		Tiers          []int `toml:"tiers"`
	} `toml:"heap"`
	Table struct {
		Shards  int `toml:"shards"`
		Workers int `toml:"workers"`
	} `toml:"table"`
	Output struct {
		Format string `toml:"format"`
	} `toml:"output"`
}

// LoadTOML loads configuration from a TOML file. A missing file yields (nil, nil).
func LoadTOML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseTOML(data)
}

func parseTOML(data []byte) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := &Config{
		Version: f.Version,
		Heap:    Heap{Tiers: f.Heap.Tiers},
		Table:   Table{Shards: f.Table.Shards, Workers: f.Table.Workers},
		Output:  Output{Format: f.Output.Format},
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	switch v := f.Heap.MaxSymbolBytes.(type) {
	case nil:
	case int64:
		cfg.Heap.MaxSymbolBytes = int(v)
	case string:
		sz, err := parseSize(v)
		if err != nil {
			return nil, fmt.Errorf("invalid heap.max_symbol_bytes %q: %w", v, err)
		}
		cfg.Heap.MaxSymbolBytes = int(sz)
	default:
		return nil, fmt.Errorf("invalid heap.max_symbol_bytes type %T", v)
	}

	return cfg, nil
}
