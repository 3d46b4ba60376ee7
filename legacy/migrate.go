package legacy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/npillmayer/richtext"
)

// TimeRangeColor is the text color for the time range of a module header.
const TimeRangeColor = "#0066cc"

// LegacyModule is a résumé module in the old plain-text format.
type LegacyModule struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	TimeRange string `json:"timeRange,omitempty"`
	Content   string `json:"content"`
	Icon      string `json:"icon,omitempty"`
	Order     int    `json:"order"`
}

// Module is a résumé module made of rows of text fields.
type Module struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
	Rows  []Row  `json:"rows"`
}

// Row is a row of a module, laid out in a number of columns.
type Row struct {
	ID       string    `json:"id"`
	Columns  int       `json:"columns"`
	Elements []Element `json:"elements"`
	Order    int       `json:"order"`
}

// Element places a text field into a column of a row.
type Element struct {
	Field       *richtext.Field
	ColumnIndex int
}

type elementRecord struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Align       string            `json:"align,omitempty"`
	Segments    richtext.Sequence `json:"segments"`
	ColumnIndex int               `json:"columnIndex"`
}

// MarshalJSON is part of interface json.Marshaler.
func (el Element) MarshalJSON() ([]byte, error) {
	if el.Field == nil {
		return nil, fmt.Errorf("%w: element without field", richtext.ErrIllegalArguments)
	}
	return json.Marshal(elementRecord{
		ID:          el.Field.ID,
		Type:        el.Field.BlockType().String(),
		Align:       el.Field.Align().String(),
		Segments:    el.Field.Sequence(),
		ColumnIndex: el.ColumnIndex,
	})
}

// UnmarshalJSON is part of interface json.Unmarshaler.
func (el *Element) UnmarshalJSON(data []byte) error {
	f := &richtext.Field{}
	if err := json.Unmarshal(data, f); err != nil {
		return err
	}
	var col struct {
		ColumnIndex int `json:"columnIndex"`
	}
	if err := json.Unmarshal(data, &col); err != nil {
		return err
	}
	el.Field, el.ColumnIndex = f, col.ColumnIndex
	return nil
}

// --- Migration -------------------------------------------------------------

// Migrator converts legacy modules. The zero value is not usable, clients
// should use NewMigrator.
type Migrator struct {
	engine *richtext.Engine
	ids    richtext.IDSource // ids for rows and elements
}

// NewMigrator creates a migrator. Text runs are created with engine, ids for
// rows and fields are drawn from ids. Either may be nil, selecting defaults.
func NewMigrator(engine *richtext.Engine, ids richtext.IDSource) *Migrator {
	if engine == nil {
		engine = richtext.New()
	}
	if ids == nil {
		ids = &richtext.Counter{Prefix: "id-"}
	}
	return &Migrator{engine: engine, ids: ids}
}

var numbered = regexp.MustCompile(`^\d+\.`)
var bulletMarker = regexp.MustCompile(`^[•\-]\s*`)
var numberMarker = regexp.MustCompile(`^\d+\.\s*`)

// Migrate converts a legacy module.
func (m *Migrator) Migrate(legacy LegacyModule) (Module, error) {
	mod := Module{
		ID:    legacy.ID,
		Title: legacy.Title,
		Icon:  legacy.Icon,
		Order: legacy.Order,
		Rows:  []Row{},
	}
	if legacy.Subtitle != "" || legacy.TimeRange != "" {
		var timeStyle richtext.Style
		timeStyle = timeStyle.With(richtext.Color(TimeRangeColor))
		elements := make([]Element, 0, 3)
		for col, cell := range []struct {
			text  string
			style richtext.Style
			align richtext.Alignment
		}{
			{legacy.Subtitle, richtext.Style{}, richtext.AlignLeft},
			{"", richtext.Style{}, richtext.AlignCenter},
			{legacy.TimeRange, timeStyle, richtext.AlignRight},
		} {
			f, err := m.field(cell.text, cell.style, richtext.PlainText)
			if err != nil {
				return mod, err
			}
			f.SetAlign(cell.align)
			elements = append(elements, Element{Field: f, ColumnIndex: col})
		}
		mod.Rows = append(mod.Rows, m.row(3, len(mod.Rows), elements...))
	}
	for _, line := range strings.Split(legacy.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		block := richtext.PlainText
		if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") {
			block = richtext.BulletList
		} else if numbered.MatchString(line) {
			block = richtext.NumberedList
		}
		text := bulletMarker.ReplaceAllString(line, "")
		text = strings.TrimSpace(numberMarker.ReplaceAllString(text, ""))
		f, err := m.field(text, richtext.Style{}, block)
		if err != nil {
			return mod, err
		}
		mod.Rows = append(mod.Rows, m.row(1, len(mod.Rows), Element{Field: f}))
	}
	tracer().Debugf("migrated legacy module %q to %d rows", legacy.ID, len(mod.Rows))
	return mod, nil
}

func (m *Migrator) field(text string, style richtext.Style, block richtext.BlockType) (*richtext.Field, error) {
	b := m.engine.NewBuilder()
	if err := b.Append(text, style); err != nil {
		return nil, err
	}
	seq := b.Sequence()
	if text == "" && !style.IsDefault() {
		// an empty field still carries its style for text typed later
		runs := seq.Runs()
		runs[0].Style = style
		var err error
		if seq, err = richtext.FromRuns(runs); err != nil {
			return nil, err
		}
	}
	f := richtext.NewField(string(m.ids.NextID()), seq, m.engine)
	f.SetBlockType(block)
	return f, nil
}

func (m *Migrator) row(columns, order int, elements ...Element) Row {
	return Row{
		ID:       string(m.ids.NextID()),
		Columns:  columns,
		Elements: elements,
		Order:    order,
	}
}

// Migrate converts a legacy module using default settings.
func Migrate(legacy LegacyModule) (Module, error) {
	return NewMigrator(nil, nil).Migrate(legacy)
}

// IsLegacy reports whether a JSON record holds a module in the old format,
// i.e. it has content but no rows.
func IsLegacy(record json.RawMessage) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(record, &keys); err != nil {
		return false
	}
	_, hasContent := keys["content"]
	_, hasRows := keys["rows"]
	return hasContent && !hasRows
}

// MigrateModules converts a list of JSON module records, which may be a mix of
// old and new formats. Records already in the new format are decoded unchanged.
func (m *Migrator) MigrateModules(records []json.RawMessage) ([]Module, error) {
	modules := make([]Module, 0, len(records))
	for i, rec := range records {
		var mod Module
		if IsLegacy(rec) {
			var old LegacyModule
			if err := json.Unmarshal(rec, &old); err != nil {
				return nil, fmt.Errorf("legacy module #%d: %w", i, err)
			}
			var err error
			if mod, err = m.Migrate(old); err != nil {
				return nil, fmt.Errorf("legacy module #%d: %w", i, err)
			}
		} else if err := json.Unmarshal(rec, &mod); err != nil {
			return nil, fmt.Errorf("module #%d: %w", i, err)
		}
		modules = append(modules, mod)
	}
	return modules, nil
}
