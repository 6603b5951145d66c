package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateHeapConfig(&cfg.Heap); err != nil {
		return err
	}

	if err := v.validateTableConfig(&cfg.Table); err != nil {
		return err
	}

	if err := v.validateOutputConfig(&cfg.Output); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateHeapConfig validates heap configuration
func (v *Validator) validateHeapConfig(heap *Heap) error {
	if heap.MaxSymbolBytes < 0 {
		return fioerrors.NewConfigError("heap.max_symbol_bytes", strconv.Itoa(heap.MaxSymbolBytes),
			errors.New("cannot be negative"))
	}

	prev := 0
	for _, capacity := range heap.Tiers {
		if capacity <= prev {
			return fioerrors.NewConfigError("heap.tiers", fmt.Sprint(heap.Tiers),
				errors.New("tier capacities must be positive and strictly increasing"))
		}
		prev = capacity
	}

	return nil
}

// validateTableConfig validates table configuration
func (v *Validator) validateTableConfig(table *Table) error {
	// Shards: 0 means default (will be set by smart defaults)
	if table.Shards < 0 {
		return fioerrors.NewConfigError("table.shards", strconv.Itoa(table.Shards),
			errors.New("cannot be negative"))
	}
	if table.Shards > 1<<16 {
		return fioerrors.NewConfigError("table.shards", strconv.Itoa(table.Shards),
			fmt.Errorf("should not exceed %d", 1<<16))
	}

	// Workers: 0 means auto-detect (will be set by smart defaults)
	if table.Workers < 0 {
		return fioerrors.NewConfigError("table.workers", strconv.Itoa(table.Workers),
			errors.New("cannot be negative"))
	}

	return nil
}

// validateOutputConfig validates output configuration
func (v *Validator) validateOutputConfig(output *Output) error {
	switch output.Format {
	case "", OutputHex, OutputDecimal:
		return nil
	default:
		return fioerrors.NewConfigError("output.format", output.Format,
			fmt.Errorf("must be %q or %q", OutputHex, OutputDecimal))
	}
}

// setSmartDefaults fills every unset value
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Heap.Tiers) == 0 {
		cfg.Heap.Tiers = defaultTiers()
	}

	if cfg.Table.Shards == 0 {
		cfg.Table.Shards = DefaultShards
	}

	// Leave one core free for the rest of the system, minimum of 1
	if cfg.Table.Workers == 0 {
		cfg.Table.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputHex
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
