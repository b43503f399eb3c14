package workspace

import (
	"strconv"
	"time"
)

// PropertyType is the kind of a record property.
type PropertyType string

const (
	PropertyTitle    PropertyType = "title"
	PropertyRichText PropertyType = "rich_text"
	PropertyNumber   PropertyType = "number"
	PropertySelect   PropertyType = "select"
	PropertyStatus   PropertyType = "status"
	PropertyURL      PropertyType = "url"
	PropertyFiles    PropertyType = "files"
	PropertyDate     PropertyType = "date"
	PropertyRelation PropertyType = "relation"
	PropertyCheckbox PropertyType = "checkbox"
)

// MaxTextLength caps every text value written to the store.
const MaxTextLength = 1024

// DateRange is a date property value. End is optional.
type DateRange struct {
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

// Property is a single typed property value.
type Property struct {
	Type     PropertyType `json:"type"`
	Text     string       `json:"text,omitempty"`
	Number   *float64     `json:"number,omitempty"`
	Date     *DateRange   `json:"date,omitempty"`
	Relation []string     `json:"relation,omitempty"`
	Checkbox bool         `json:"checkbox,omitempty"`
}

// Properties maps property names to values.
type Properties map[string]Property

// Text returns the text of a title, rich text, select, status, url or files property.
func (p Properties) Text(name string) string {
	return p[name].Text
}

// Number returns the number value of a property and whether it was set.
func (p Properties) Number(name string) (float64, bool) {
	prop, ok := p[name]
	if !ok || prop.Number == nil {
		return 0, false
	}
	return *prop.Number, true
}

// Int returns the number value truncated to int64, or 0 when unset.
func (p Properties) Int(name string) int64 {
	n, _ := p.Number(name)
	return int64(n)
}

// Bool returns the value of a checkbox property.
func (p Properties) Bool(name string) bool {
	return p[name].Checkbox
}

// Has reports whether the property is set to a non-empty value.
func (p Properties) Has(name string) bool {
	prop, ok := p[name]
	if !ok {
		return false
	}
	switch prop.Type {
	case PropertyNumber:
		return prop.Number != nil
	case PropertyDate:
		return prop.Date != nil
	case PropertyRelation:
		return len(prop.Relation) > 0
	case PropertyCheckbox:
		return true
	default:
		return prop.Text != ""
	}
}

// Merge copies every property of other into p.
func (p Properties) Merge(other Properties) Properties {
	for k, v := range other {
		p[k] = v
	}
	return p
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTextLength {
		return s
	}
	return string(r[:MaxTextLength])
}

// Title builds a title property.
func Title(s string) Property {
	return Property{Type: PropertyTitle, Text: truncate(s)}
}

// RichText builds a rich text property.
func RichText(s string) Property {
	return Property{Type: PropertyRichText, Text: truncate(s)}
}

// Number builds a number property.
func Number[T int | int64 | float64](n T) Property {
	v := float64(n)
	return Property{Type: PropertyNumber, Number: &v}
}

// Select builds a select property.
func Select(name string) Property {
	return Property{Type: PropertySelect, Text: name}
}

// Status builds a status property.
func Status(name string) Property {
	return Property{Type: PropertyStatus, Text: name}
}

// URL builds a url property.
func URL(u string) Property {
	return Property{Type: PropertyURL, Text: u}
}

// File builds a files property holding a single external file.
func File(u string) Property {
	return Property{Type: PropertyFiles, Text: u}
}

// Date builds a date property. end may be empty.
func Date(start, end, tz string) Property {
	return Property{Type: PropertyDate, Date: &DateRange{Start: start, End: end, TimeZone: tz}}
}

// Relation builds a relation property.
func Relation(ids ...string) Property {
	return Property{Type: PropertyRelation, Relation: ids}
}

// Checkbox builds a checkbox property.
func Checkbox(v bool) Property {
	return Property{Type: PropertyCheckbox, Checkbox: v}
}

// Record is one row of a collection.
type Record struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
	// Icon is an external icon URL.
	Icon string `json:"icon,omitempty"`
	// Cover is an external cover URL.
	Cover string `json:"cover,omitempty"`
	// CreatedTime is set by the store.
	CreatedTime time.Time `json:"created_time,omitempty"`
}

// Page is one page of a collection query.
type Page struct {
	Records    []Record
	NextCursor string
	HasMore    bool
}

// BlockType is the kind of a content node.
type BlockType string

const (
	BlockParagraph       BlockType = "paragraph"
	BlockCallout         BlockType = "callout"
	BlockQuote           BlockType = "quote"
	BlockHeading1        BlockType = "heading_1"
	BlockHeading2        BlockType = "heading_2"
	BlockHeading3        BlockType = "heading_3"
	BlockBulletedList    BlockType = "bulleted_list_item"
	BlockNumberedList    BlockType = "numbered_list_item"
	BlockTableOfContents BlockType = "table_of_contents"
	BlockEmbed           BlockType = "embed"
	BlockChildDatabase   BlockType = "child_database"
)

// Block is a content node in a record's content tree.
type Block struct {
	ID    string    `json:"id,omitempty"`
	Type  BlockType `json:"type"`
	Text  string    `json:"text,omitempty"`
	Color string    `json:"color,omitempty"`
	Emoji string    `json:"emoji,omitempty"`
	URL   string    `json:"url,omitempty"`
	// Title is set on child database blocks.
	Title string `json:"title,omitempty"`

	// ParentID is the id of the record or block owning this node.
	ParentID string `json:"parent_id,omitempty"`
	// ParentIsBlock is true when the parent is another block rather than a record.
	ParentIsBlock bool `json:"parent_is_block,omitempty"`
	HasChildren   bool `json:"has_children,omitempty"`
}

// Heading returns a heading block for a nesting level (1-3, deeper levels use 3).
func Heading(level int, text string) Block {
	t := BlockHeading3
	switch level {
	case 1:
		t = BlockHeading1
	case 2:
		t = BlockHeading2
	}
	return Block{Type: t, Text: truncate(text), Color: "default"}
}

// Quote returns a quote block.
func Quote(text string) Block {
	return Block{Type: BlockQuote, Text: truncate(text), Color: "default"}
}

// TableOfContents returns a table of contents marker block.
func TableOfContents() Block {
	return Block{Type: BlockTableOfContents, Color: "default"}
}

// Embed returns an embed block.
func Embed(url string) Block {
	return Block{Type: BlockEmbed, URL: url}
}

// Text returns a text block of the given type.
func Text(t BlockType, text, color, emoji string) Block {
	if color == "" {
		color = "default"
	}
	b := Block{Type: t, Text: truncate(text), Color: color}
	if t == BlockCallout {
		b.Emoji = emoji
	}
	return b
}

// FormatKey renders a numeric natural key the way it is stored in key indices.
func FormatKey(n int64) string {
	return strconv.FormatInt(n, 10)
}
