package notion

import (
	"strings"
	"time"

	"weread-sync/core/workspace"

	"github.com/segmentio/encoding/json"
)

type richTextItem struct {
	PlainText string `json:"plain_text"`
}

type namedOption struct {
	Name string `json:"name"`
}

type fileItem struct {
	Type     string `json:"type"`
	External *struct {
		URL string `json:"url"`
	} `json:"external"`
	File *struct {
		URL string `json:"url"`
	} `json:"file"`
}

type idRef struct {
	ID string `json:"id"`
}

// propertyValue is a page property as returned by the API.
type propertyValue struct {
	Type     string               `json:"type"`
	Title    []richTextItem       `json:"title"`
	RichText []richTextItem       `json:"rich_text"`
	Number   *float64             `json:"number"`
	Select   *namedOption         `json:"select"`
	Status   *namedOption         `json:"status"`
	URL      *string              `json:"url"`
	Files    []fileItem           `json:"files"`
	Date     *workspace.DateRange `json:"date"`
	Relation []idRef              `json:"relation"`
	Checkbox bool                 `json:"checkbox"`
}

type iconObject struct {
	Type     string `json:"type"`
	External *struct {
		URL string `json:"url"`
	} `json:"external"`
}

type pageObject struct {
	ID          string                   `json:"id"`
	CreatedTime time.Time                `json:"created_time"`
	Icon        *iconObject              `json:"icon"`
	Cover       *iconObject              `json:"cover"`
	Properties  map[string]propertyValue `json:"properties"`
}

func joinPlain(items []richTextItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.PlainText)
	}
	return b.String()
}

func (p pageObject) record() workspace.Record {
	rec := workspace.Record{
		ID:          p.ID,
		CreatedTime: p.CreatedTime,
		Properties:  make(workspace.Properties, len(p.Properties)),
	}
	if p.Icon != nil && p.Icon.External != nil {
		rec.Icon = p.Icon.External.URL
	}
	if p.Cover != nil && p.Cover.External != nil {
		rec.Cover = p.Cover.External.URL
	}

	for name, v := range p.Properties {
		prop := workspace.Property{Type: workspace.PropertyType(v.Type)}
		switch prop.Type {
		case workspace.PropertyTitle:
			prop.Text = joinPlain(v.Title)
		case workspace.PropertyRichText:
			prop.Text = joinPlain(v.RichText)
		case workspace.PropertyNumber:
			prop.Number = v.Number
		case workspace.PropertySelect:
			if v.Select != nil {
				prop.Text = v.Select.Name
			}
		case workspace.PropertyStatus:
			if v.Status != nil {
				prop.Text = v.Status.Name
			}
		case workspace.PropertyURL:
			if v.URL != nil {
				prop.Text = *v.URL
			}
		case workspace.PropertyFiles:
			if len(v.Files) > 0 {
				if f := v.Files[0]; f.External != nil {
					prop.Text = f.External.URL
				} else if f.File != nil {
					prop.Text = f.File.URL
				}
			}
		case workspace.PropertyDate:
			prop.Date = v.Date
		case workspace.PropertyRelation:
			for _, r := range v.Relation {
				prop.Relation = append(prop.Relation, r.ID)
			}
		case workspace.PropertyCheckbox:
			prop.Checkbox = v.Checkbox
		default:
			continue
		}
		rec.Properties[name] = prop
	}
	return rec
}

type blockObject struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
	Archived    bool   `json:"archived"`
	InTrash     bool   `json:"in_trash"`
	Parent      struct {
		Type    string `json:"type"`
		PageID  string `json:"page_id"`
		BlockID string `json:"block_id"`
	} `json:"parent"`
	// Content is the type-specific payload, read by block().
	Content map[string]json.RawMessage `json:"-"`
}

type blockContent struct {
	RichText []richTextItem `json:"rich_text"`
	Color    string         `json:"color"`
	Icon     *struct {
		Emoji string `json:"emoji"`
	} `json:"icon"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (b *blockObject) UnmarshalJSON(data []byte) error {
	type plain blockObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = blockObject(p)
	b.Content = raw
	return nil
}

func (b blockObject) block() workspace.Block {
	out := workspace.Block{
		ID:          b.ID,
		Type:        workspace.BlockType(b.Type),
		HasChildren: b.HasChildren,
	}
	switch b.Parent.Type {
	case "block_id":
		out.ParentID = b.Parent.BlockID
		out.ParentIsBlock = true
	case "page_id":
		out.ParentID = b.Parent.PageID
	}

	var content blockContent
	if raw, ok := b.Content[b.Type]; ok {
		_ = json.Unmarshal(raw, &content)
	}
	out.Text = joinPlain(content.RichText)
	out.Color = content.Color
	out.URL = content.URL
	out.Title = content.Title
	if content.Icon != nil {
		out.Emoji = content.Icon.Emoji
	}
	return out
}

func richText(s string) []map[string]any {
	return []map[string]any{{"type": "text", "text": map[string]any{"content": s}}}
}

func external(u string) map[string]any {
	return map[string]any{"type": "external", "external": map[string]any{"url": u}}
}

func encodeProperties(props workspace.Properties) map[string]any {
	out := make(map[string]any, len(props))
	for name, p := range props {
		switch p.Type {
		case workspace.PropertyTitle:
			out[name] = map[string]any{"title": richText(p.Text)}
		case workspace.PropertyRichText:
			out[name] = map[string]any{"rich_text": richText(p.Text)}
		case workspace.PropertyNumber:
			out[name] = map[string]any{"number": p.Number}
		case workspace.PropertySelect:
			out[name] = map[string]any{"select": map[string]any{"name": p.Text}}
		case workspace.PropertyStatus:
			out[name] = map[string]any{"status": map[string]any{"name": p.Text}}
		case workspace.PropertyURL:
			out[name] = map[string]any{"url": p.Text}
		case workspace.PropertyFiles:
			out[name] = map[string]any{"files": []map[string]any{{
				"type": "external", "name": "Cover", "external": map[string]any{"url": p.Text},
			}}}
		case workspace.PropertyDate:
			out[name] = map[string]any{"date": p.Date}
		case workspace.PropertyRelation:
			refs := make([]map[string]any, len(p.Relation))
			for i, id := range p.Relation {
				refs[i] = map[string]any{"id": id}
			}
			out[name] = map[string]any{"relation": refs}
		case workspace.PropertyCheckbox:
			out[name] = map[string]any{"checkbox": p.Checkbox}
		}
	}
	return out
}

func encodeFilter(f workspace.Filter) map[string]any {
	if len(f.And) > 0 {
		and := make([]map[string]any, len(f.And))
		for i, sub := range f.And {
			and[i] = encodeFilter(sub)
		}
		return map[string]any{"and": and}
	}

	switch f.Condition {
	case workspace.ConditionRelationContains:
		return map[string]any{"property": f.Property, "relation": map[string]any{"contains": f.Value}}
	case workspace.ConditionRichTextNotEmpty:
		return map[string]any{"property": f.Property, "rich_text": map[string]any{"is_not_empty": true}}
	case workspace.ConditionTitleEquals:
		return map[string]any{"property": f.Property, "title": map[string]any{"equals": f.Value}}
	case workspace.ConditionNumberEquals:
		return map[string]any{"property": f.Property, "number": map[string]any{"equals": f.Number}}
	default:
		return map[string]any{}
	}
}

func encodeBlock(b workspace.Block) map[string]any {
	t := string(b.Type)
	content := map[string]any{}

	switch b.Type {
	case workspace.BlockEmbed:
		content["url"] = b.URL
	case workspace.BlockTableOfContents:
		content["color"] = orDefault(b.Color)
	default:
		content["rich_text"] = richText(b.Text)
		content["color"] = orDefault(b.Color)
		if b.Type == workspace.BlockCallout && b.Emoji != "" {
			content["icon"] = map[string]any{"emoji": b.Emoji}
		}
	}

	return map[string]any{"object": "block", "type": t, t: content}
}

func orDefault(color string) string {
	if color == "" {
		return "default"
	}
	return color
}

func encodeSchema(schema map[string]workspace.SchemaProperty) map[string]any {
	out := make(map[string]any, len(schema))
	for name, p := range schema {
		config := map[string]any{}
		switch p.Type {
		case workspace.PropertySelect, workspace.PropertyStatus:
			if len(p.Options) > 0 {
				opts := make([]map[string]any, len(p.Options))
				for i, o := range p.Options {
					opts[i] = map[string]any{"name": o}
				}
				config["options"] = opts
			}
		case workspace.PropertyNumber:
			if p.Format != "" {
				config["format"] = p.Format
			}
		case workspace.PropertyRelation:
			config["database_id"] = p.RelationTo
			config["single_property"] = map[string]any{}
		}
		out[name] = map[string]any{string(p.Type): config}
	}
	return out
}
