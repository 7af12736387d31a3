// Package template parses the fixed-size ASCII screen template.
//
// The first HeaderLines lines are copied verbatim. The body that follows is
// split into blocks by "= NAME =" marker lines, and every "name:000" token
// inside a block declares a wire whose hex digits are drawn over the run of
// zeros. Parsing stops at the first empty line.
package template

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/robert-at-pretension-io/vgadbg/internal/diag"
)

const maxLineBytes = 1 << 20

// Options bounds the template grid.
type Options struct {
	HeaderLines int
	Width       int
	Height      int
}

// Wire is a placeholder token found in the template body.
type Wire struct {
	Name   string
	LenHex int

	// Line is the 1-indexed line of the file, header included.
	Line int
	// Column is the 0-indexed offset of the first placeholder digit.
	Column int

	// Start and End are the inclusive linear positions of the placeholder
	// digits in the row-major grid.
	Start int
	End   int
}

// Block is a named group of wires introduced by a marker line.
type Block struct {
	Name  string
	Line  int
	Wires []Wire
}

// Template is the parsed screen.
type Template struct {
	// Lines holds the header lines followed by the body lines, in file order.
	Lines       []string
	HeaderLines int
	Blocks      []Block
	MaxWidth    int
}

// ParseFile opens path and parses it.
func ParseFile(path string, opts Options) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.KindIO, err, "opening template file '"+path+"'")
	}
	defer func() { _ = f.Close() }()
	return Parse(f, opts)
}

// Parse reads a template. Size overflows are collected and returned
// together as a diag.List; no Template is returned alongside them.
func Parse(r io.Reader, opts Options) (*Template, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSuffix(sc.Text(), "\r"), true
	}

	t := &Template{HeaderLines: opts.HeaderLines}
	var errs diag.List

	for i := 0; i < opts.HeaderLines; i++ {
		line, _ := next()
		t.Lines = append(t.Lines, line)
		t.MaxWidth = max(t.MaxWidth, len(line))
	}

	cur := Block{Line: opts.HeaderLines + 1}
	lineNo := opts.HeaderLines
	// lines consumed since cur was opened; a block is only closed if one was
	consumed := 0
	// header lines count against the height even when no body follows
	overHeight := opts.HeaderLines > opts.Height
	if overHeight {
		errs.Addf(diag.KindTemplateFormat, "height of template file is larger than the limit %d", opts.Height)
	}
	for !overHeight {
		line, ok := next()
		if !ok || line == "" {
			break
		}
		lineNo++
		t.MaxWidth = max(t.MaxWidth, len(line))
		if lineNo > opts.Height {
			errs.Addf(diag.KindTemplateFormat, "height of template file is larger than the limit %d", opts.Height)
			break
		}
		t.Lines = append(t.Lines, line)

		if name, ok := matchBlockHeader(line); ok {
			if consumed > 0 {
				t.Blocks = append(t.Blocks, cur)
			}
			cur = Block{Name: name, Line: lineNo}
			consumed = 0
			continue
		}
		consumed++
		cur.Wires = append(cur.Wires, scanWires(line, lineNo, opts.Width)...)
	}
	if err := sc.Err(); err != nil {
		return nil, diag.Wrap(diag.KindIO, err, "reading template file")
	}

	if len(cur.Wires) > 0 {
		t.Blocks = append(t.Blocks, cur)
	}

	if t.MaxWidth > opts.Width {
		errs.Addf(diag.KindTemplateFormat, "width of template file is larger than the limit %d", opts.Width)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// WireCount returns the number of wires in all blocks.
func (t *Template) WireCount() int {
	n := 0
	for _, b := range t.Blocks {
		n += len(b.Wires)
	}
	return n
}
