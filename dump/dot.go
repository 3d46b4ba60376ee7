package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/richtext"
)

// Dot outputs the runs of seq in Graphviz DOT format (for debugging purposes).
// Every run is a record node labelled with its range, id, text and style;
// edges follow text order. Restyled runs are filled.
func Dot(w io.Writer, engine *richtext.Engine, seq richtext.Sequence) error {
	if engine == nil {
		engine = richtext.New()
	}
	var nodelist, edgelist strings.Builder
	nodelist.WriteString("strict digraph {\n")
	nodelist.WriteString("\trankdir=LR;\n")
	nodelist.WriteString("\tnode [fontname=Arial,fontsize=12,shape=record];\n")
	var prev richtext.ID
	for pos, run := range engine.RangeRuns(seq) {
		rng := richtext.Range{Start: pos, End: pos + engine.Unit().Count(run.Text)}
		label := fmt.Sprintf("{%s|%s|“%s”|%s}", rng, dotEscape(string(run.ID)),
			dotEscape(strstart(run.Text)), dotEscape(run.Style.String()))
		fmt.Fprintf(&nodelist, "\t\"%s\" [label=\"%s\" %s];\n", dotEscape(string(run.ID)), label, dotStyles(run.Style))
		if prev != "" {
			fmt.Fprintf(&edgelist, "\t\"%s\" -> \"%s\";\n", dotEscape(string(prev)), dotEscape(string(run.ID)))
		}
		prev = run.ID
	}
	if _, err := io.WriteString(w, nodelist.String()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, edgelist.String()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func dotStyles(sty richtext.Style) string {
	if sty.IsDefault() {
		return ",color=black"
	}
	return ",style=filled,fillcolor=\"#c7dbee\""
}

// strstart returns the start of s, at most 10 runes.
func strstart(s string) string {
	r := []rune(visible(s))
	if len(r) > 10 {
		return string(r[:10]) + "…"
	}
	return string(r)
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `{`, `\{`, `}`, `\}`,
	`|`, `\|`, `<`, `\<`, `>`, `\>`)

func dotEscape(s string) string {
	return dotEscaper.Replace(s)
}
