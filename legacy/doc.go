/*
Package legacy migrates résumé modules stored in the old plain-text format
to modules made of rows of styled text fields.

Old modules hold a title, an optional subtitle and time range, and the module
content as a single string. Migration creates a header row with three columns
from subtitle and time range, and a one-column row for every non-blank line of
content. Lines starting with a bullet ("•" or "-") become items of a bullet
list, lines starting with a number followed by a period become items of a
numbered list. List markers are removed from the text.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

For details please refer to the LICENSE file.
*/
package legacy

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}
