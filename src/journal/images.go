package journal

import "errors"

// MaxFieldImages caps the attachments of a single image field.
const MaxFieldImages = 4

// ErrImageLimit is returned when an image field already holds MaxFieldImages
// attachments. The payload is rejected outright, never truncated.
var ErrImageLimit = errors.New("Máximo de 4 imagens permitido.")

// AddImage appends one encoded payload (data URI or URL) to an image field,
// preserving insertion order. It fails on non-image fields and when the cap
// is reached.
func (f *Field) AddImage(payload string) error {
	if f.Type != FieldImage {
		return errors.New("journal: field does not hold images")
	}
	if len(f.Images) >= MaxFieldImages {
		return ErrImageLimit
	}
	f.Images = append(f.Images, payload)
	return nil
}

// RemoveImage deletes the attachment at index, shifting the rest left.
// Out-of-range indices are a no-op.
func (f *Field) RemoveImage(index int) bool {
	if f.Type != FieldImage || index < 0 || index >= len(f.Images) {
		return false
	}
	f.Images = append(f.Images[:index], f.Images[index+1:]...)
	return true
}
