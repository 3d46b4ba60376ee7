/*
Package htmlin creates styled text from fragments of HTML, as produced by
contenteditable elements of a browser-based editor or by pasting from the
clipboard.

Styles are taken from inline elements (b, strong, i, em, code) and from
inline CSS declarations of the style attribute (font-weight, font-style,
font-size, font-family, color). Everything else is reduced to its text.
Line breaks and block elements become newline characters. Whitespace is
collapsed the way a browser renders it: runs of white space become a single
space, and white space at the start or end of a line is dropped. Content of
pre elements is kept as is.

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

For details please refer to the LICENSE file.
*/
package htmlin

import (
	"io"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/richtext"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer writes to trace with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}

// InnerText returns the textual content of an HTML element and all its
// descendents, resembling
//
//	document.getElementById("myNode").innerText
//
// in JavaScript (except that InnerText cannot respect CSS styling suppressing
// the visibility of the node's descendents).
func InnerText(n *html.Node) (string, error) {
	if n == nil {
		return "", richtext.ErrIllegalArguments
	}
	c := collector{b: richtext.NewBuilder(nil, true)}
	c.collect(n, richtext.Style{})
	return c.b.Sequence().Text(), c.err
}

// FromHTML creates a sequence of style runs from an HTML fragment. Run ids are
// drawn from engine; if engine is nil, a default engine is used.
// Adjacent pieces of text with equal style are merged into a single run.
func FromHTML(engine *richtext.Engine, input io.Reader) (richtext.Sequence, error) {
	if engine == nil {
		engine = richtext.New()
	}
	nodes, err := html.ParseFragment(input, nil)
	if err != nil {
		return richtext.Sequence{}, err
	}
	c := collector{b: richtext.NewBuilder(engine.IDs(), true)}
	for _, n := range nodes {
		c.collect(n, richtext.Style{})
	}
	if c.err != nil {
		return richtext.Sequence{}, c.err
	}
	return c.b.Sequence(), nil
}

type collector struct {
	b          *richtext.Builder
	err        error
	started    bool // has text been emitted?
	newline    bool // was the last character emitted a newline?
	pending    bool // line break before next text
	space      bool // collapsed white space before next text
	spaceStyle richtext.Style
	pre        int // nesting depth of pre elements
}

// text collapses white space in s and emits the result. Leading and trailing
// white space is deferred until more text follows on the same line.
func (c *collector) text(s string, sty richtext.Style) {
	if c.pre > 0 {
		c.flushSpace()
		c.emit(s, sty)
		return
	}
	words := strings.FieldsFunc(s, isSpace)
	if len(words) == 0 {
		if s != "" {
			c.deferSpace(sty)
		}
		return
	}
	if isSpace(rune(s[0])) {
		c.deferSpace(sty)
	}
	c.flushSpace()
	c.emit(strings.Join(words, " "), sty)
	if isSpace(rune(s[len(s)-1])) {
		c.deferSpace(sty)
	}
}

func (c *collector) deferSpace(sty richtext.Style) {
	if c.space || !c.started || c.newline || c.pending {
		return
	}
	c.space, c.spaceStyle = true, sty
}

func (c *collector) flushSpace() {
	if c.space {
		c.space = false
		c.emit(" ", c.spaceStyle)
	}
}

func (c *collector) emit(s string, sty richtext.Style) {
	if s == "" || c.err != nil {
		return
	}
	if c.pending && !strings.HasPrefix(s, "\n") {
		s = "\n" + s
	}
	c.pending = false
	c.err = c.b.Append(s, sty)
	c.started = true
	c.newline = strings.HasSuffix(s, "\n")
}

// breakLine starts a new line before the next text, if not at the start of
// the text or of a line.
func (c *collector) breakLine() {
	c.space = false
	if c.started && !c.newline {
		c.pending = true
	}
}

func (c *collector) collect(n *html.Node, sty richtext.Style) {
	switch n.Type {
	case html.TextNode:
		c.text(n.Data, sty)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.Br:
			c.space = false
			c.emit("\n", sty)
			return
		case atom.B, atom.Strong:
			sty = sty.With(richtext.Bold(true))
		case atom.I, atom.Em:
			sty = sty.With(richtext.Italic(true))
		case atom.Code:
			sty = sty.With(richtext.Code(true))
		case atom.Pre:
			c.pre++
			defer func() { c.pre-- }()
		}
		if isBlock(n.DataAtom) {
			c.breakLine()
		}
		for _, a := range n.Attr {
			if a.Key == "style" {
				sty = inlineStyle(a.Val, sty)
			}
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.collect(ch, sty)
	}
	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		c.breakLine()
	}
}

// isSpace reports HTML white space, which excludes non-breaking spaces.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.H1, atom.H2, atom.H3,
		atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Tr:
		return true
	}
	return false
}

// inlineStyle applies the declarations of a style attribute to sty.
// Declarations which cannot be interpreted are ignored.
func inlineStyle(attr string, sty richtext.Style) richtext.Style {
	decls, err := parser.ParseDeclarations(attr)
	if err != nil {
		tracer().Infof("htmlin: ignoring style attribute %q: %v", attr, err)
		return sty
	}
	for _, d := range decls {
		value := strings.TrimSpace(d.Value)
		switch strings.ToLower(d.Property) {
		case "font-weight":
			if b, ok := fontWeight(value); ok {
				sty = sty.With(richtext.Bold(b))
			}
		case "font-style":
			switch strings.ToLower(value) {
			case "italic", "oblique":
				sty = sty.With(richtext.Italic(true))
			case "normal":
				sty = sty.With(richtext.Italic(false))
			}
		case "font-size":
			if pt, ok := fontSize(value); ok {
				sty = sty.With(richtext.FontSize(pt))
			}
		case "font-family":
			family := strings.Split(value, ",")[0]
			sty = sty.With(richtext.FontFamily(strings.Trim(strings.TrimSpace(family), `"'`)))
		case "color":
			sty = sty.With(richtext.Color(value))
		default:
			tracer().Debugf("htmlin: ignoring CSS property %q", d.Property)
		}
	}
	return sty
}

func fontWeight(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "bold", "bolder":
		return true, true
	case "normal", "lighter":
		return false, true
	}
	if w, err := strconv.Atoi(v); err == nil {
		return w >= 600, true
	}
	return false, false
}

// fontSize converts a CSS font size to points. Only absolute sizes in pt or px
// are supported.
func fontSize(v string) (float64, bool) {
	v = strings.ToLower(v)
	factor := 1.0
	switch {
	case strings.HasSuffix(v, "pt"):
		v = strings.TrimSuffix(v, "pt")
	case strings.HasSuffix(v, "px"):
		v = strings.TrimSuffix(v, "px")
		factor = 0.75
	default:
		return 0, false
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size * factor, true
}
