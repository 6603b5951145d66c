package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads configuration from a KDL file. A missing file yields (nil, nil).
func LoadKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

// parseKDL reads only the values present in content; the validator fills the rest.
//
//	heap {
//	    max_symbol_bytes "64KB"
//	    tiers 16 32 64 128 256
//	}
//	table {
//	    shards 32
//	    workers 4
//	}
//	output {
//	    format "decimal"
//	}
func parseKDL(content string) (*Config, error) {
	cfg := &Config{Version: 1}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "heap":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_symbol_bytes":
					if v, ok := firstIntArg(cn); ok {
						cfg.Heap.MaxSymbolBytes = v
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return nil, fmt.Errorf("invalid heap.max_symbol_bytes %q: %w", s, err)
						}
						cfg.Heap.MaxSymbolBytes = int(sz)
					}
				case "tiers":
					cfg.Heap.Tiers = collectIntArgs(cn)
				}
			}
		case "table":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "shards":
					if v, ok := firstIntArg(cn); ok {
						cfg.Table.Shards = v
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Table.Workers = v
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
			}
		}
	}

	return cfg, nil
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func collectIntArgs(n *document.Node) []int {
	out := make([]int, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		switch v := a.Value.(type) {
		case int64:
			out = append(out, int(v))
		case float64:
			out = append(out, int(v))
		default:
			log.Printf("WARNING: ignoring non-integer value %v for '%s' in KDL config", a.Value, nodeName(n))
		}
	}
	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
