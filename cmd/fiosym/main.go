package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/fiosym/internal/alloc"
	"github.com/standardbeagle/fiosym/internal/config"
	"github.com/standardbeagle/fiosym/internal/debug"
	"github.com/standardbeagle/fiosym/internal/version"
	"github.com/standardbeagle/fiosym/pkg/fiobj"

	"github.com/urfave/cli/v2"
)

// session holds what the Before hook prepares for every command
type session struct {
	cfg  *config.Config
	heap *fiobj.Heap
	in   io.Reader
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if c.Bool("decimal") {
		cfg.Output.Format = config.OutputDecimal
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Table.Workers = workers
	}

	return cfg, nil
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	s := &session{in: stdin}

	return &cli.App{
		Name:                   "fiosym",
		Usage:                  "Fingerprinted symbols: hashing, formatting and interning",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		// Exit codes are handled by main so that tests can run the app in-process
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.DefaultKDLFile,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Silence all logging, even with --debug or DEBUG=1 (for piped output)",
			},
			&cli.StringFlag{
				Name:  "debug-log",
				Usage: "Write debug logging to a temporary log file",
			},
			&cli.BoolFlag{
				Name:  "decimal",
				Usage: "Print fingerprints in decimal (overrides output.format)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Parallel workers for hashing and interning (0=config)",
			},
		},
		Before: func(c *cli.Context) error {
			debug.SetQuietMode(c.Bool("quiet"))
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			if c.IsSet("debug-log") {
				debug.EnableDebug = "true"
				logPath, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", logPath)
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return debug.Fatal("%v\n", err)
			}
			s.cfg = cfg
			s.heap = fiobj.NewHeap(alloc.NewBufferAllocator(cfg.Heap.AllocatorOptions()))
			debug.Printf("config: shards=%d workers=%d format=%s\n",
				cfg.Table.Shards, cfg.Table.Workers, cfg.Output.Format)
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "hash",
				Usage:     "Print the fingerprint of each TEXT argument or matched file",
				ArgsUsage: "[TEXT]...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Hash files matching glob patterns (e.g., --file 'testdata/**/*.txt')",
					},
				},
				Action: s.hashCommand,
			},
			{
				Name:      "format",
				Aliases:   []string{"fmt"},
				Usage:     "Build a symbol from a printf-style template",
				ArgsUsage: "TEMPLATE [ARG]...",
				Action:    s.formatCommand,
			},
			{
				Name:      "eq",
				Usage:     "Exit 0 when A and B are equal symbols, 1 otherwise",
				ArgsUsage: "A B",
				Action:    s.eqCommand,
			},
			{
				Name:      "intern",
				Aliases:   []string{"i"},
				Usage:     "Intern every line of FILE (or stdin) and print table statistics",
				ArgsUsage: "[FILE]",
				Action:    s.internCommand,
			},
			{
				Name:  "version",
				Usage: "Print version and build information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					fmt.Fprintf(c.App.Writer, "build: %s\n", version.BuildID())
					return nil
				},
			},
		},
	}
}

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
