package journal

import "fmt"

// Section groups related fields under a collapsible header. Sections are
// fully user-editable: title, expansion state and field list all change at
// runtime.
type Section struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	IsExpanded bool    `json:"isExpanded"`
	Fields     []Field `json:"fields"`
}

// NewSection creates an expanded section with no fields and a fresh id.
func NewSection(title string) Section {
	return Section{ID: newID(), Title: title, IsExpanded: true, Fields: []Field{}}
}

// ToggleExpanded flips the collapsed/expanded state.
func (s *Section) ToggleExpanded() {
	s.IsExpanded = !s.IsExpanded
}

// Rename commits a new title in a single assignment. There is no partial
// state: callers buffer in-progress edits themselves.
func (s *Section) Rename(title string) {
	s.Title = title
}

// Field returns the field with the given id, or nil.
func (s *Section) Field(fieldID string) *Field {
	for i := range s.Fields {
		if s.Fields[i].ID == fieldID {
			return &s.Fields[i]
		}
	}
	return nil
}

// AddField appends a new field of the given type with its defaults: the label
// "Novo Campo (<type>)", an empty value, and for enumerable types two starter
// options labeled "Opção 1" and "Opção 2".
func (s *Section) AddField(t FieldType) (*Field, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("journal: cannot add field of unknown type %q", t)
	}
	f := Field{
		ID:    newID(),
		Label: fmt.Sprintf("Novo Campo (%s)", t),
		Type:  t,
	}
	if t.HasOptions() {
		f.Options = []Option{
			{ID: newID(), Label: "Opção 1"},
			{ID: newID(), Label: "Opção 2"},
		}
	}
	s.Fields = append(s.Fields, f)
	return &s.Fields[len(s.Fields)-1], nil
}

// RemoveField deletes the field with the given id; unknown ids are a no-op.
func (s *Section) RemoveField(fieldID string) bool {
	for i := range s.Fields {
		if s.Fields[i].ID == fieldID {
			s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
			return true
		}
	}
	return false
}
