package journal

import "encoding/json"

// Document is the whole journal of one trade: an ordered list of sections.
// Order is user-controlled and must survive every edit and round-trip.
type Document []Section

// Parse decodes a stored journal document.
func Parse(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Encode serializes the document in the frontend's wire format.
func (d Document) Encode() ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	return json.Marshal(d)
}

// SectionByID returns the section with the given id, or nil.
func (d Document) SectionByID(sectionID string) *Section {
	for i := range d {
		if d[i].ID == sectionID {
			return &d[i]
		}
	}
	return nil
}

// FieldByID locates a field inside a specific section, or returns nil.
func (d Document) FieldByID(sectionID, fieldID string) *Field {
	s := d.SectionByID(sectionID)
	if s == nil {
		return nil
	}
	return s.Field(fieldID)
}

// AddSection appends a new expanded, empty section and returns it.
func (d *Document) AddSection(title string) *Section {
	*d = append(*d, NewSection(title))
	return &(*d)[len(*d)-1]
}

// RemoveSection deletes a whole section and everything in it.
func (d *Document) RemoveSection(sectionID string) bool {
	for i := range *d {
		if (*d)[i].ID == sectionID {
			*d = append((*d)[:i], (*d)[i+1:]...)
			return true
		}
	}
	return false
}

// MoveSection reorders sections: the section at index from ends up at index
// to, with everything between shifting by one. Out-of-range indices and
// from == to leave the document untouched.
func (d Document) MoveSection(from, to int) {
	moveItem(d, from, to)
}

// moveItem is the reorder primitive behind drag-and-drop: remove the item at
// from, reinsert it at to. It mutates items in place and is a no-op for
// invalid indices.
func moveItem[T any](items []T, from, to int) {
	if from == to || from < 0 || to < 0 || from >= len(items) || to >= len(items) {
		return
	}
	moved := items[from]
	if from < to {
		copy(items[from:to], items[from+1:to+1])
	} else {
		copy(items[to+1:from+1], items[to:from])
	}
	items[to] = moved
}

// Clone returns a deep copy; mutations on the copy never leak back.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, s := range d {
		cs := s
		cs.Fields = make([]Field, len(s.Fields))
		for j, f := range s.Fields {
			cf := f
			if f.Flag != nil {
				v := *f.Flag
				cf.Flag = &v
			}
			if f.Images != nil {
				cf.Images = append([]string(nil), f.Images...)
			}
			if f.Options != nil {
				cf.Options = append([]Option(nil), f.Options...)
			}
			cs.Fields[j] = cf
		}
		out[i] = cs
	}
	return out
}
