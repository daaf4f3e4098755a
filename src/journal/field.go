// Package journal implements the flexible trade-journal document: an ordered
// list of sections, each holding typed fields (text, select, checklist, radio,
// boolean, image) whose structure the user can edit at will. The wire format
// is byte-compatible with the JournalSection[] structures stored by the
// frontend, including the polymorphic "value" key.
package journal

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// FieldType identifies the control rendered for a field. It is fixed at field
// creation time and never changes afterwards.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldSelect    FieldType = "select"
	FieldChecklist FieldType = "checklist"
	FieldRadio     FieldType = "radio"
	FieldBoolean   FieldType = "boolean"
	FieldImage     FieldType = "image"
)

// Valid reports whether t is one of the six known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldSelect, FieldChecklist, FieldRadio, FieldBoolean, FieldImage:
		return true
	}
	return false
}

// HasOptions reports whether fields of this type carry an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldChecklist || t == FieldRadio
}

// Option is one selectable choice of a select/checklist/radio field.
// Checked is only meaningful for checklists.
type Option struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked,omitempty"`
}

// Field is one questionnaire item. Exactly one of the value members (Text,
// Flag, Images) is meaningful for a given Type; Marshal/Unmarshal fold them
// into the single polymorphic "value" key the frontend stores.
//
// Select and radio values reference an option by its label, not its id.
// Removing or renaming an option therefore leaves any value that pointed at
// it dangling; that matches the shipped frontend and is pinned by tests.
type Field struct {
	ID          string
	Label       string
	Type        FieldType
	Placeholder string

	Text   string   // text, select, radio
	Flag   *bool    // boolean; nil means unanswered
	Images []string // image

	Options []Option // select, checklist, radio only
}

type fieldJSON struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        FieldType       `json:"type"`
	Value       json.RawMessage `json:"value"`
	Options     []Option        `json:"options,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
}

// MarshalJSON emits the type-dependent "value" payload: a string for
// text/select/radio, true/false/null for boolean, an array of encoded image
// payloads for image, and null for checklist (checklist state lives in the
// options).
func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{
		ID:          f.ID,
		Label:       f.Label,
		Type:        f.Type,
		Options:     f.Options,
		Placeholder: f.Placeholder,
	}

	var err error
	switch f.Type {
	case FieldText, FieldSelect, FieldRadio:
		out.Value, err = json.Marshal(f.Text)
	case FieldBoolean:
		out.Value, err = json.Marshal(f.Flag)
	case FieldImage:
		imgs := f.Images
		if imgs == nil {
			imgs = []string{}
		}
		out.Value, err = json.Marshal(imgs)
	case FieldChecklist:
		out.Value = json.RawMessage("null")
	default:
		return nil, fmt.Errorf("journal: cannot marshal field %q: unknown type %q", f.ID, f.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the polymorphic "value" key according to the field
// type. Image fields accept either a list of payloads or a single bare string
// (the legacy single-image representation), which is normalized to a
// one-element list.
func (f *Field) UnmarshalJSON(data []byte) error {
	var in fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("journal: field %q has unknown type %q", in.ID, in.Type)
	}

	f.ID = in.ID
	f.Label = in.Label
	f.Type = in.Type
	f.Placeholder = in.Placeholder
	f.Options = in.Options
	f.Text = ""
	f.Flag = nil
	f.Images = nil

	raw := in.Value
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch in.Type {
	case FieldText, FieldSelect, FieldRadio:
		if err := json.Unmarshal(raw, &f.Text); err != nil {
			return fmt.Errorf("journal: field %q: value is not a string: %w", in.ID, err)
		}
	case FieldBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("journal: field %q: value is not a boolean: %w", in.ID, err)
		}
		f.Flag = &b
	case FieldImage:
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			f.Images = list
			return nil
		}
		// Legacy documents store a single payload as a bare string.
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return fmt.Errorf("journal: field %q: image value is neither list nor string: %w", in.ID, err)
		}
		if single != "" {
			f.Images = []string{single}
		}
	case FieldChecklist:
		// Checklist values are ignored; state lives in Options[].Checked.
	}
	return nil
}

// SetText replaces the value of a text, select or radio field. No validation
// is performed against the option set; the caller owns that policy.
func (f *Field) SetText(v string) {
	f.Text = v
}

// SetFlag answers a boolean field.
func (f *Field) SetFlag(v bool) {
	f.Flag = &v
}

// ClearFlag returns a boolean field to the unanswered state.
func (f *Field) ClearFlag() {
	f.Flag = nil
}

// Option returns the option with the given id, or nil.
func (f *Field) Option(optionID string) *Option {
	for i := range f.Options {
		if f.Options[i].ID == optionID {
			return &f.Options[i]
		}
	}
	return nil
}

// ToggleOption flips the checked state of one checklist option. It reports
// whether anything changed: fields of other types, fields without options and
// unknown ids are all no-ops.
func (f *Field) ToggleOption(optionID string) bool {
	if f.Type != FieldChecklist || len(f.Options) == 0 {
		return false
	}
	opt := f.Option(optionID)
	if opt == nil {
		return false
	}
	opt.Checked = !opt.Checked
	return true
}

// AddOption appends a new unchecked option with a fresh id. The label is
// stored as given; empty labels are allowed. Fields without option support
// are left untouched.
func (f *Field) AddOption(label string) (Option, bool) {
	if !f.Type.HasOptions() {
		return Option{}, false
	}
	opt := Option{ID: newID(), Label: label}
	f.Options = append(f.Options, opt)
	return opt, true
}

// RemoveOption deletes the option with the given id. A select/radio value
// that referenced the removed option's label is intentionally left in place.
func (f *Field) RemoveOption(optionID string) bool {
	for i := range f.Options {
		if f.Options[i].ID == optionID {
			f.Options = append(f.Options[:i], f.Options[i+1:]...)
			return true
		}
	}
	return false
}

// RenameOption updates an option's label in place. Select/radio values that
// referenced the old label are not rewritten.
func (f *Field) RenameOption(optionID, newLabel string) bool {
	opt := f.Option(optionID)
	if opt == nil {
		return false
	}
	opt.Label = newLabel
	return true
}

func newID() string {
	return uuid.NewString()
}
