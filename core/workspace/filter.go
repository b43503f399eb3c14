package workspace

// Condition is the comparison a Filter applies to a property.
type Condition string

const (
	// ConditionRelationContains matches records whose relation includes Value.
	ConditionRelationContains Condition = "relation_contains"
	// ConditionRichTextNotEmpty matches records whose rich text property is set.
	ConditionRichTextNotEmpty Condition = "rich_text_is_not_empty"
	// ConditionTitleEquals matches records whose title equals Value.
	ConditionTitleEquals Condition = "title_equals"
	// ConditionNumberEquals matches records whose number equals Number.
	ConditionNumberEquals Condition = "number_equals"
)

// Filter selects records of a collection. A filter either combines And
// sub-filters or tests a single property.
type Filter struct {
	And []Filter

	Property  string
	Condition Condition
	Value     string
	Number    float64
}

// All combines filters with a logical and.
func All(filters ...Filter) *Filter {
	return &Filter{And: filters}
}

// RelationContains matches records related to id through property.
func RelationContains(property, id string) Filter {
	return Filter{Property: property, Condition: ConditionRelationContains, Value: id}
}

// RichTextNotEmpty matches records with a non-empty rich text property.
func RichTextNotEmpty(property string) Filter {
	return Filter{Property: property, Condition: ConditionRichTextNotEmpty}
}

// TitleEquals matches records whose title property equals value.
func TitleEquals(property, value string) Filter {
	return Filter{Property: property, Condition: ConditionTitleEquals, Value: value}
}

// NumberEquals matches records whose number property equals n.
func NumberEquals(property string, n float64) Filter {
	return Filter{Property: property, Condition: ConditionNumberEquals, Number: n}
}

// Match evaluates the filter against a record's properties.
// Stores without server-side filtering use it to answer queries.
func (f *Filter) Match(props Properties) bool {
	if f == nil {
		return true
	}
	if len(f.And) > 0 {
		for i := range f.And {
			if !f.And[i].Match(props) {
				return false
			}
		}
		return true
	}

	prop := props[f.Property]
	switch f.Condition {
	case ConditionRelationContains:
		for _, id := range prop.Relation {
			if id == f.Value {
				return true
			}
		}
		return false
	case ConditionRichTextNotEmpty:
		return prop.Text != ""
	case ConditionTitleEquals:
		return prop.Text == f.Value
	case ConditionNumberEquals:
		return prop.Number != nil && *prop.Number == f.Number
	default:
		return false
	}
}
