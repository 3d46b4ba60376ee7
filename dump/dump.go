/*
Package dump prints sequences of style runs to a terminal, for debugging and
for inspecting stored fields.

A dump shows the text of a sequence with every run in a different color,
followed by a ruler marking the start of each run, and a table listing all
runs with their offsets, ids and styles:

	Hello World
	^ ^  ^
	#0  [0,2)   seg-4  "He"      [default]
	#1  [2,5)   seg-5  "llo"     [bold=true]
	#2  [5,11)  seg-6  " World"  [default]

The ruler is aligned by display width, as East Asian wide characters occupy
two cells of a terminal.

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

For details please refer to the LICENSE file.
*/
package dump

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/npillmayer/richtext"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"golang.org/x/term"
)

// tracer writes to trace with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}

// Options control the output of a dump.
type Options struct {
	Colors  bool           // use terminal colors for runs
	Ruler   bool           // print a ruler marking run starts
	Table   bool           // print a table of runs
	Context *uax11.Context // context for character widths; nil selects a Latin context
}

// OptionsFor creates options suitable for output to w: colors are used only if w
// is a terminal, and character widths follow the user's environment.
func OptionsFor(w io.Writer) *Options {
	opts := &Options{Ruler: true, Table: true, Context: uax11.LatinContext}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts.Colors = true
		opts.Context = uax11.ContextFromEnvironment()
	}
	return opts
}

var palette = []color.Attribute{color.FgBlue, color.FgRed, color.FgGreen, color.FgMagenta}

var setupGraphemes sync.Once

// Dump prints seq to w, with offsets counted by engine.
// If engine is nil, a default engine is used; if opts is nil, OptionsFor(w)
// is used.
func Dump(w io.Writer, engine *richtext.Engine, seq richtext.Sequence, opts *Options) error {
	if w == nil {
		return richtext.ErrIllegalArguments
	}
	if engine == nil {
		engine = richtext.New()
	}
	if opts == nil {
		opts = OptionsFor(w)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = uax11.LatinContext
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	var ruler strings.Builder
	i := 0
	for _, run := range engine.RangeRuns(seq) {
		text := visible(run.Text)
		c := runColor(i, run.Style)
		if !opts.Colors {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		if _, err := c.Fprint(w, text); err != nil {
			return err
		}
		width := uax11.StringWidth(grapheme.StringFromString(text), ctx)
		ruler.WriteByte('^')
		if width > 1 {
			ruler.WriteString(strings.Repeat(" ", width-1))
		}
		i++
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if opts.Ruler {
		if _, err := fmt.Fprintln(w, strings.TrimRight(ruler.String(), " ")); err != nil {
			return err
		}
	}
	if !opts.Table {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	i = 0
	for pos, run := range engine.RangeRuns(seq) {
		rng := richtext.Range{Start: pos, End: pos + engine.Unit().Count(run.Text)}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%q\t%s\n", i, rng, run.ID, run.Text, run.Style)
		i++
	}
	tracer().Debugf("dumped %d runs", i)
	return tw.Flush()
}

// runColor selects a color for run #i, with attributes reflecting the run's
// bold and italic flags.
func runColor(i int, sty richtext.Style) *color.Color {
	c := color.New(palette[i%len(palette)])
	if b, _ := sty.Bold(); b {
		c.Add(color.Bold)
	}
	if it, _ := sty.Italic(); it {
		c.Add(color.Italic)
	}
	if code, _ := sty.Code(); code {
		c.Add(color.BgHiBlack)
	}
	return c
}

// visible replaces control characters which would break the alignment of the
// ruler.
func visible(s string) string {
	return strings.NewReplacer("\n", "↵", "\t", "→", "\r", "␍").Replace(s)
}
