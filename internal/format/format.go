// Package format is the printf-style formatting engine used for formatted
// symbol construction. It exposes the two passes a caller needs to build an
// exactly-sized buffer: Measure computes the output length without keeping
// any output, Write renders into a caller-owned buffer.
//
// Templates use the fmt verb syntax minus explicit argument indexes. A
// template is malformed when it has a dangling '%', an unknown verb, an
// explicit index, a verb count that does not match the argument count, or
// an argument whose kind its verb cannot format; Measure reports these as a
// negative length instead of rendering fmt's %!verb(...) markers.
package format

import (
	"fmt"
	"slices"
	"strings"

	fioerrors "github.com/standardbeagle/fiosym/internal/errors"
)

// Args is an argument list for one template expansion. Each pass should get
// its own copy; see Clone.
type Args []any

// Clone returns an independent copy of the list.
func (a Args) Clone() Args {
	return slices.Clone(a)
}

const (
	flagChars = "+-# 0"
	verbChars = "vTtbcdoOqxXUeEfFgGsp"
)

// Measure is the dry-run pass. It returns the number of bytes the expansion
// occupies, or -1 and a *errors.FormatError when the template is malformed.
func Measure(template string, args Args) (int, error) {
	if err := Validate(template, args); err != nil {
		return -1, err
	}
	var c countingWriter
	fmt.Fprintf(&c, template, args...)
	return c.n, nil
}

// Write is the real pass. It renders the expansion into dst, stopping
// silently at len(dst), and returns the number of bytes written. The
// template must already have passed Measure.
func Write(dst []byte, template string, args Args) int {
	w := fixedWriter{buf: dst}
	fmt.Fprintf(&w, template, args...)
	return w.n
}

// directive is one argument-consuming position in a template
type directive struct {
	offset int  // index of the '%'
	verb   byte // '*' for a width or precision read from the argument list
}

// Verbs returns, for each argument the template consumes, the verb that
// formats it ('*' for a width or precision).
func Verbs(template string) ([]byte, error) {
	ds, err := parse(template)
	if err != nil {
		return nil, err
	}
	verbs := make([]byte, len(ds))
	for i, d := range ds {
		verbs[i] = d.verb
	}
	return verbs, nil
}

// Validate checks template against args without rendering: the syntax,
// the argument count, and that every argument has a kind its verb formats.
func Validate(template string, args Args) error {
	ds, err := parse(template)
	if err != nil {
		return err
	}
	if len(ds) != len(args) {
		return fioerrors.NewFormatError(template, -1,
			fmt.Errorf("%w: %d verbs for %d arguments", fioerrors.ErrMalformedTemplate, len(ds), len(args)))
	}

	for i, d := range ds {
		if d.verb == '*' {
			if !isInteger(args[i]) {
				return malformed(template, d.offset, fmt.Sprintf("width or precision from %T", args[i]))
			}
			continue
		}
		if !accepts(d.verb, args[i]) {
			return malformed(template, d.offset, fmt.Sprintf("%%%c cannot format %T", d.verb, args[i]))
		}
	}
	return nil
}

func parse(template string) ([]directive, error) {
	var ds []directive
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		start := i
		i++
		if i < len(template) && template[i] == '%' {
			continue
		}

		for i < len(template) && strings.IndexByte(flagChars, template[i]) >= 0 {
			i++
		}
		i, ds = scanWidth(template, i, start, ds)
		if i < len(template) && template[i] == '.' {
			i, ds = scanWidth(template, i+1, start, ds)
		}

		if i >= len(template) {
			return nil, malformed(template, start, "dangling verb")
		}
		if template[i] == '[' {
			return nil, malformed(template, start, "explicit argument index")
		}
		if strings.IndexByte(verbChars, template[i]) < 0 {
			return nil, malformed(template, start, fmt.Sprintf("unknown verb %q", template[i]))
		}
		ds = append(ds, directive{offset: start, verb: template[i]})
	}
	return ds, nil
}

// scanWidth skips a width or precision: digits, or '*' which takes an argument.
func scanWidth(template string, i, start int, ds []directive) (int, []directive) {
	if i < len(template) && template[i] == '*' {
		return i + 1, append(ds, directive{offset: start, verb: '*'})
	}
	for i < len(template) && template[i] >= '0' && template[i] <= '9' {
		i++
	}
	return i, ds
}

func malformed(template string, offset int, detail string) error {
	return fioerrors.NewFormatError(template, offset,
		fmt.Errorf("%w: %s", fioerrors.ErrMalformedTemplate, detail))
}

// countingWriter discards output and counts it.
type countingWriter struct {
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}

// fixedWriter fills a preallocated buffer and drops the overflow.
type fixedWriter struct {
	buf []byte
	n   int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	w.n += copy(w.buf[w.n:], p)
	return len(p), nil
}
