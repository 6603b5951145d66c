package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/standardbeagle/fiosym/internal/alloc"
)

// Default file names searched for configuration
const (
	DefaultKDLFile  = ".fiosym.kdl"
	DefaultTOMLFile = ".fiosym.toml"
)

// Output formats for printed fingerprints
const (
	OutputHex     = "hex"
	OutputDecimal = "decimal"
)

// DefaultShards is the interning table shard count used when none is configured
const DefaultShards = 16

type Config struct {
	Version int
	Heap    Heap
	Table   Table
	Output  Output
}

type Heap struct {
	MaxSymbolBytes int   // 0 = unlimited
	Tiers          []int // pool tier capacities in bytes, terminator included
}

type Table struct {
	Shards  int // rounded up to a power of two by the table
	Workers int // 0 = auto-detect (NumCPU-1)
}

type Output struct {
	Format string // "hex" or "decimal"
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Version: 1,
		Heap: Heap{
			MaxSymbolBytes: 0,
			Tiers:          defaultTiers(),
		},
		Table: Table{
			Shards:  DefaultShards,
			Workers: max(1, runtime.NumCPU()-1),
		},
		Output: Output{
			Format: OutputHex,
		},
	}
}

func defaultTiers() []int {
	tiers := make([]int, len(alloc.SymbolTierConfigs))
	for i, tc := range alloc.SymbolTierConfigs {
		tiers[i] = tc.Capacity
	}
	return tiers
}

// AllocatorOptions converts the heap section into allocator options
func (h Heap) AllocatorOptions() alloc.Options {
	opts := alloc.Options{MaxObjectSize: h.MaxSymbolBytes}
	for _, capacity := range h.Tiers {
		opts.Tiers = append(opts.Tiers, alloc.SlabTierConfig{Capacity: capacity, Weight: 1})
	}
	return opts
}

// Load reads configuration from path. A .toml extension selects TOML;
// anything else is read as KDL, falling back to a .toml file of the same
// name when the KDL file does not exist. A global ~/.fiosym.kdl, when
// present, provides base values that the project file overrides.
// The result is validated and completed with defaults.
func Load(path string) (*Config, error) {
	home, _ := os.UserHomeDir()
	return LoadWithHome(path, home)
}

// LoadWithHome is Load with an explicit home directory ("" skips the global file)
func LoadWithHome(path, home string) (*Config, error) {
	var base *Config
	if home != "" {
		globalPath := filepath.Join(home, DefaultKDLFile)
		if abs, err := filepath.Abs(path); err != nil || abs != globalPath {
			cfg, err := LoadKDL(globalPath)
			if err != nil {
				return nil, err
			}
			base = cfg
		}
	}

	project, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case base != nil && project != nil:
		cfg = mergeConfigs(base, project)
	case project != nil:
		cfg = project
	case base != nil:
		cfg = base
	default:
		cfg = Default()
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	ext := filepath.Ext(path)
	if ext == ".toml" {
		return LoadTOML(path)
	}

	cfg, err := LoadKDL(path)
	if err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(strings.TrimSuffix(path, ext) + ".toml")
}

// mergeConfigs overlays every non-zero project value onto base
func mergeConfigs(base, project *Config) *Config {
	merged := *base
	merged.Heap.Tiers = append([]int(nil), base.Heap.Tiers...)

	if project.Version != 0 {
		merged.Version = project.Version
	}
	if project.Heap.MaxSymbolBytes != 0 {
		merged.Heap.MaxSymbolBytes = project.Heap.MaxSymbolBytes
	}
	if len(project.Heap.Tiers) > 0 {
		merged.Heap.Tiers = append([]int(nil), project.Heap.Tiers...)
	}
	if project.Table.Shards != 0 {
		merged.Table.Shards = project.Table.Shards
	}
	if project.Table.Workers != 0 {
		merged.Table.Workers = project.Table.Workers
	}
	if project.Output.Format != "" {
		merged.Output.Format = project.Output.Format
	}
	return &merged
}
