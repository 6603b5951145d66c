package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/fiosym/internal/config"
	"github.com/standardbeagle/fiosym/internal/debug"
	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
	"github.com/standardbeagle/fiosym/internal/format"
	"github.com/standardbeagle/fiosym/internal/symtab"
	"github.com/standardbeagle/fiosym/pkg/fiobj"
)

func (s *session) formatFingerprint(fp uint64) string {
	if s.cfg.Output.Format == config.OutputDecimal {
		return strconv.FormatUint(fp, 10)
	}
	return fmt.Sprintf("%016x", fp)
}

// hashCommand prints "<fingerprint>  <name>" per TEXT argument, then per matched file
func (s *session) hashCommand(c *cli.Context) error {
	w := c.App.Writer

	for _, text := range c.Args().Slice() {
		sym, err := s.heap.NewSymbolString(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", s.formatFingerprint(sym.Fingerprint()), text)
		s.heap.Free(sym)
	}

	files, err := expandGlobs(c.StringSlice("file"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if c.NArg() == 0 && !c.IsSet("file") {
			return cli.Exit("nothing to hash: pass TEXT arguments or --file patterns", 2)
		}
		return nil
	}

	sums, err := s.hashFiles(c, files)
	if err != nil {
		return err
	}
	for i, path := range files {
		fmt.Fprintf(w, "%s  %s\n", s.formatFingerprint(sums[i]), path)
	}
	return nil
}

// expandGlobs resolves every pattern and returns the sorted, de-duplicated file list
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			debug.Printf("pattern %q matched no files\n", pattern)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func (s *session) hashFiles(c *cli.Context, files []string) ([]uint64, error) {
	sums := make([]uint64, len(files))

	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(s.cfg.Table.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			sym, err := s.heap.NewSymbol(data)
			if err != nil {
				return fmt.Errorf("failed to hash %s: %w", path, err)
			}
			sums[i] = sym.Fingerprint()
			s.heap.Free(sym)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sums, nil
}

// formatArgs turns command-line words into format arguments, parsing each
// word as the type its verb formats. Words that do not parse stay strings so
// that the formatter reports the mismatch.
func formatArgs(template string, words []string) fiobj.Args {
	// A malformed template is reported by the formatter itself
	verbs, _ := format.Verbs(template)

	args := make(fiobj.Args, len(words))
	for i, word := range words {
		verb := byte('s')
		if i < len(verbs) {
			verb = verbs[i]
		}
		args[i] = parseWord(verb, word)
	}
	return args
}

func parseWord(verb byte, word string) any {
	switch {
	case verb == '*' || strings.IndexByte("bcdoOxXU", verb) >= 0:
		if n, err := strconv.ParseInt(word, 10, 64); err == nil {
			return n
		}
		// 0x1f, 0o17, 0b101
		if n, err := strconv.ParseInt(word, 0, 64); err == nil {
			return n
		}
	case strings.IndexByte("eEfFgG", verb) >= 0:
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return f
		}
	case verb == 't':
		if b, err := strconv.ParseBool(word); err == nil {
			return b
		}
	case verb == 'v':
		if n, err := strconv.ParseInt(word, 10, 64); err == nil {
			return n
		}
	}
	return word
}

func (s *session) formatCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: fiosym format TEMPLATE [ARG]...", 2)
	}

	sym, err := s.heap.SymbolfArgs(c.Args().First(), formatArgs(c.Args().First(), c.Args().Tail()))
	if err != nil {
		return err
	}
	defer s.heap.Free(sym)

	fmt.Fprintf(c.App.Writer, "%s  %s\n", s.formatFingerprint(sym.Fingerprint()), sym.String())
	return nil
}

func (s *session) eqCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: fiosym eq A B", 2)
	}

	a, err := s.heap.NewSymbolString(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer s.heap.Free(a)
	b, err := s.heap.NewSymbolString(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer s.heap.Free(b)

	if !fiobj.SymbolsEqual(a, b) {
		fmt.Fprintln(c.App.Writer, "not equal")
		return cli.Exit("", 1)
	}
	fmt.Fprintln(c.App.Writer, "equal")
	return nil
}

func readLines(r io.Reader) ([][]byte, error) {
	var lines [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, slices.Clone(scanner.Bytes()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

func (s *session) internCommand(c *cli.Context) error {
	in := s.in
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		return err
	}

	table := symtab.New(symtab.Options{Shards: s.cfg.Table.Shards, Heap: s.heap})
	_, err = table.InternAll(c.Context, lines, s.cfg.Table.Workers)

	var multi *fioerrors.MultiError
	switch {
	case errors.As(err, &multi):
		for _, e := range multi.Errors {
			fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", e)
		}
	case err != nil:
		return err
	}

	stats := table.Stats()
	w := c.App.Writer
	fmt.Fprintf(w, "lines:      %d\n", len(lines))
	fmt.Fprintf(w, "symbols:    %d\n", stats.Symbols)
	fmt.Fprintf(w, "shards:     %d\n", stats.Shards)
	fmt.Fprintf(w, "max shard:  %d\n", stats.MaxShard)
	fmt.Fprintf(w, "collisions: %d\n", stats.Collisions)
	return nil
}
