/*
Command richtext applies style operations to a text field and prints the
result.

	richtext -text "Hello World" -range 2:5 -set bold=true -dump
	richtext -in field.json -range 0:5 -set fontSize=14 -set color=#d73a49 > out.json
	richtext -html paste.html -save profile.summary

A field is read from a JSON record (-in, "-" for stdin), from an HTML fragment
(-html), from the configured store (-load), or created from plain text (-text).
Style changes given by -set and -unset are applied to the range given by
-range, in the order given. The resulting field is printed as JSON, and
optionally as a colored dump of its runs (-dump) or as a Graphviz graph
(-dot).

Configuration is read from the file given by -config and from RICHTEXT_*
environment variables.
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/richtext"
	"github.com/npillmayer/richtext/dump"
	"github.com/npillmayer/richtext/htmlin"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// tracer traces with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}

type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	config  string
	in      string
	html    string
	text    string
	load    string
	save    string
	rng     string
	sets    listFlag
	unsets  listFlag
	replace *string
	align   string
	block   string
	dump    bool
	dot     bool
	quiet   bool
	verbose bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("richtext", flag.ContinueOnError)
	fs.StringVar(&opts.config, "config", "", "path to config file")
	fs.StringVar(&opts.in, "in", "", "read field from JSON file (- for stdin)")
	fs.StringVar(&opts.html, "html", "", "read field text from HTML fragment file")
	fs.StringVar(&opts.text, "text", "", "create field from plain text")
	fs.StringVar(&opts.load, "load", "", "load field from store")
	fs.StringVar(&opts.save, "save", "", "save field to store")
	fs.StringVar(&opts.rng, "range", "", "range start:end for style changes")
	fs.Var(&opts.sets, "set", "style change facet=value (repeatable)")
	fs.Var(&opts.unsets, "unset", "facet to unset (repeatable)")
	replace := fs.String("replace", "", "replace the complete text")
	fs.StringVar(&opts.align, "align", "", "paragraph alignment: left, center, right, justify")
	fs.StringVar(&opts.block, "block", "", "block type: text, bullet-list, numbered-list")
	fs.BoolVar(&opts.dump, "dump", false, "print a dump of the runs")
	fs.BoolVar(&opts.dot, "dot", false, "print the runs in Graphviz DOT format")
	fs.BoolVar(&opts.quiet, "q", false, "do not print JSON")
	fs.BoolVar(&opts.verbose, "v", false, "verbose tracing")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "replace" {
			opts.replace = replace
		}
	})
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		os.Exit(2)
	}
	gtrace.CoreTracer = gologadapter.New()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	if opts.verbose {
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	}
	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "richtext: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	engine, err := cfg.engine()
	if err != nil {
		return err
	}
	st, closeStore, err := cfg.store(engine)
	if err != nil {
		return err
	}
	defer closeStore()
	field, err := readField(ctx, opts, engine, st, stdin)
	if err != nil {
		return err
	}
	if opts.replace != nil {
		field.ReplaceAll(*opts.replace)
	}
	if err := applyChanges(field, opts); err != nil {
		return err
	}
	if opts.align != "" {
		a, err := richtext.ParseAlignment(opts.align)
		if err != nil {
			return err
		}
		field.SetAlign(a)
	}
	if opts.block != "" {
		b, err := richtext.ParseBlockType(opts.block)
		if err != nil {
			return err
		}
		field.SetBlockType(b)
	}
	if opts.save != "" {
		if err := st.Save(ctx, opts.save, field); err != nil {
			return err
		}
	}
	if !opts.quiet {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(field); err != nil {
			return err
		}
	}
	if opts.dump {
		if err := dump.Dump(stdout, engine, field.Sequence(), dump.OptionsFor(stdout)); err != nil {
			return err
		}
	}
	if opts.dot {
		return dump.Dot(stdout, engine, field.Sequence())
	}
	return nil
}

type loader interface {
	Load(ctx context.Context, key string) (*richtext.Field, error)
}

func readField(ctx context.Context, opts *options, engine *richtext.Engine, st loader, stdin io.Reader) (*richtext.Field, error) {
	switch {
	case opts.load != "":
		return st.Load(ctx, opts.load)
	case opts.html != "":
		f, err := os.Open(opts.html)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		seq, err := htmlin.FromHTML(engine, f)
		if err != nil {
			return nil, err
		}
		return richtext.NewField("field", seq, engine), nil
	case opts.in != "":
		r := stdin
		if opts.in != "-" {
			f, err := os.Open(opts.in)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		field := richtext.NewField("", richtext.Sequence{}, engine)
		if err := json.NewDecoder(r).Decode(field); err != nil {
			return nil, fmt.Errorf("reading field: %w", err)
		}
		return field, nil
	}
	field := richtext.NewField("field", engine.NewSequence(), engine)
	field.ReplaceAll(opts.text)
	return field, nil
}

func applyChanges(field *richtext.Field, opts *options) error {
	if len(opts.sets) == 0 && len(opts.unsets) == 0 {
		return nil
	}
	rng, err := parseRange(opts.rng)
	if err != nil {
		return err
	}
	changes := make([]richtext.Change, 0, len(opts.sets)+len(opts.unsets))
	for _, s := range opts.sets {
		facet, value, ok := strings.Cut(s, "=")
		if !ok || value == "" {
			return fmt.Errorf("%w: style change %q is not of form facet=value", richtext.ErrIllegalArguments, s)
		}
		c, err := richtext.ParseChange(facet, value)
		if err != nil {
			return err
		}
		changes = append(changes, c)
	}
	for _, u := range opts.unsets {
		c, err := richtext.ParseChange(u, "")
		if err != nil {
			return err
		}
		changes = append(changes, c)
	}
	for _, c := range changes {
		if err := field.ApplyStyle(rng, c); err != nil {
			return err
		}
	}
	return nil
}

// parseRange parses "start:end". Boundaries may come in either order.
func parseRange(s string) (richtext.Range, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return richtext.Range{}, fmt.Errorf("%w: range %q is not of form start:end", richtext.ErrIllegalArguments, s)
	}
	start, err := strconv.ParseUint(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return richtext.Range{}, fmt.Errorf("%w: range start: %v", richtext.ErrIllegalArguments, err)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(b), 10, 64)
	if err != nil {
		return richtext.Range{}, fmt.Errorf("%w: range end: %v", richtext.ErrIllegalArguments, err)
	}
	return richtext.Selection(start, end), nil
}
