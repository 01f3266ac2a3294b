package models

import "fmt"

// Field is one editable tag as presented by a form host
type Field struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Category string `json:"category"`
	TagID    uint16 `json:"tag_id"`
	TagName  string `json:"tag_name"`
	Type     string `json:"type,omitempty"`
	Value    string `json:"value"`
}

// NewField creates a field. The label combines the tag name and the key,
// e.g. "Make (0th_271)".
func NewField(key, category string, tagID uint16, tagName, typeName, value string) Field {
	return Field{
		Key:      key,
		Label:    fmt.Sprintf("%s (%s)", tagName, key),
		Category: category,
		TagID:    tagID,
		TagName:  tagName,
		Type:     typeName,
		Value:    value,
	}
}

// FieldGroup is the fields of one IFD category in display order
type FieldGroup struct {
	Category string  `json:"category"`
	Fields   []Field `json:"fields"`
}

// GroupFields splits fields into consecutive groups by category
func GroupFields(fields []Field) []FieldGroup {
	var groups []FieldGroup
	for _, f := range fields {
		if n := len(groups); n > 0 && groups[n-1].Category == f.Category {
			groups[n-1].Fields = append(groups[n-1].Fields, f)
			continue
		}
		groups = append(groups, FieldGroup{Category: f.Category, Fields: []Field{f}})
	}
	return groups
}
