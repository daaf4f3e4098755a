package journal

import (
	"errors"
	"fmt"
)

// Op is one named structural edit, mirroring the editor's handler set. The
// action decides which of the remaining members matter; unused ones are
// ignored.
type Op struct {
	Action    string    `json:"action"`
	SectionID string    `json:"sectionId,omitempty"`
	FieldID   string    `json:"fieldId,omitempty"`
	OptionID  string    `json:"optionId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Label     string    `json:"label,omitempty"`
	FieldType FieldType `json:"fieldType,omitempty"`
	Value     *OpValue  `json:"value,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	From      int       `json:"from,omitempty"`
	To        int       `json:"to,omitempty"`
	Index     int       `json:"index,omitempty"`
}

// OpValue carries a set_value payload for either value kind; exactly one
// member is set depending on the target field's type.
type OpValue struct {
	Text *string `json:"text,omitempty"`
	Flag *bool   `json:"flag,omitempty"`
}

// The action vocabulary. Unknown actions are rejected, not ignored.
const (
	OpAddSection    = "add_section"
	OpRenameSection = "rename_section"
	OpRemoveSection = "remove_section"
	OpMoveSection   = "move_section"
	OpToggleSection = "toggle_section"
	OpAddField      = "add_field"
	OpRenameField   = "rename_field"
	OpRemoveField   = "remove_field"
	OpSetValue      = "set_value"
	OpToggleOption  = "toggle_option"
	OpAddOption     = "add_option"
	OpRemoveOption  = "remove_option"
	OpRenameOption  = "rename_option"
	OpAddImage      = "add_image"
	OpRemoveImage   = "remove_image"
)

var (
	errSectionNotFound = errors.New("journal: section not found")
	errFieldNotFound   = errors.New("journal: field not found")
	errOptionNotFound  = errors.New("journal: option not found")
)

// Apply executes one edit against the document. Lookup failures and invalid
// payloads return errors; the document is only modified on success.
// Reordering with out-of-range indices follows the editor and is a silent
// no-op rather than an error.
func (d *Document) Apply(op Op) error {
	switch op.Action {
	case OpAddSection:
		d.AddSection(op.Title)
		return nil

	case OpRenameSection:
		s := d.SectionByID(op.SectionID)
		if s == nil {
			return errSectionNotFound
		}
		s.Rename(op.Title)
		return nil

	case OpRemoveSection:
		if !d.RemoveSection(op.SectionID) {
			return errSectionNotFound
		}
		return nil

	case OpMoveSection:
		d.MoveSection(op.From, op.To)
		return nil

	case OpToggleSection:
		s := d.SectionByID(op.SectionID)
		if s == nil {
			return errSectionNotFound
		}
		s.ToggleExpanded()
		return nil

	case OpAddField:
		s := d.SectionByID(op.SectionID)
		if s == nil {
			return errSectionNotFound
		}
		_, err := s.AddField(op.FieldType)
		return err

	case OpRenameField:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		f.Label = op.Label
		return nil

	case OpRemoveField:
		s := d.SectionByID(op.SectionID)
		if s == nil {
			return errSectionNotFound
		}
		if !s.RemoveField(op.FieldID) {
			return errFieldNotFound
		}
		return nil

	case OpSetValue:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		return applyValue(f, op.Value)

	case OpToggleOption:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		if !f.ToggleOption(op.OptionID) {
			return errOptionNotFound
		}
		return nil

	case OpAddOption:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		label := op.Label
		if label == "" {
			label = "Nova Opção"
		}
		if _, ok := f.AddOption(label); !ok {
			return fmt.Errorf("journal: field type %q has no options", f.Type)
		}
		return nil

	case OpRemoveOption:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		if !f.RemoveOption(op.OptionID) {
			return errOptionNotFound
		}
		return nil

	case OpRenameOption:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		if !f.RenameOption(op.OptionID, op.Label) {
			return errOptionNotFound
		}
		return nil

	case OpAddImage:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		return f.AddImage(op.Payload)

	case OpRemoveImage:
		f := d.FieldByID(op.SectionID, op.FieldID)
		if f == nil {
			return errFieldNotFound
		}
		f.RemoveImage(op.Index)
		return nil

	default:
		return fmt.Errorf("journal: unknown action %q", op.Action)
	}
}

func applyValue(f *Field, v *OpValue) error {
	switch f.Type {
	case FieldText, FieldSelect, FieldRadio:
		if v == nil || v.Text == nil {
			return fmt.Errorf("journal: set_value on %q field needs a text value", f.Type)
		}
		f.SetText(*v.Text)
	case FieldBoolean:
		if v == nil || v.Flag == nil {
			f.ClearFlag()
			return nil
		}
		f.SetFlag(*v.Flag)
	default:
		return fmt.Errorf("journal: set_value not supported on %q fields", f.Type)
	}
	return nil
}
