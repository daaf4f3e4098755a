package journal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionIDs(d Document) []string {
	ids := make([]string, len(d))
	for i, s := range d {
		ids[i] = s.ID
	}
	return ids
}

func TestAddSection(t *testing.T) {
	d := Document{}
	s := d.AddSection("Nova Categoria")

	require.Len(t, d, 1)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Nova Categoria", s.Title)
	assert.True(t, s.IsExpanded)
	assert.Empty(t, s.Fields)
}

func TestRemoveSection(t *testing.T) {
	d := DefaultTemplate()
	require.True(t, d.RemoveSection("indicators"))
	assert.Nil(t, d.SectionByID("indicators"))
	assert.False(t, d.RemoveSection("indicators"))
	assert.Equal(t, []string{"timeframes", "strategy", "risk", "psychology", "review", "media"}, sectionIDs(d))
}

func TestMoveSection(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"same index", 2, 2, []string{"a", "b", "c", "d"}},
		{"from out of range", 9, 1, []string{"a", "b", "c", "d"}},
		{"to out of range", 1, 9, []string{"a", "b", "c", "d"}},
		{"negative", -1, 2, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Document{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
			d.MoveSection(tt.from, tt.to)
			assert.Equal(t, tt.want, sectionIDs(d))
		})
	}
}

func TestMoveSectionPreservesIDSet(t *testing.T) {
	d := DefaultTemplate()
	before := map[string]bool{}
	for _, id := range sectionIDs(d) {
		before[id] = true
	}

	d.MoveSection(6, 0)
	d.MoveSection(2, 5)
	d.MoveSection(4, 1)

	after := map[string]bool{}
	for _, id := range sectionIDs(d) {
		after[id] = true
	}
	assert.Equal(t, before, after, "reordering must never create or drop sections")
	assert.Len(t, d, 7)
}

func TestFieldByID(t *testing.T) {
	d := DefaultTemplate()

	f := d.FieldByID("risk", "followed_system")
	require.NotNil(t, f)
	assert.Equal(t, FieldBoolean, f.Type)

	assert.Nil(t, d.FieldByID("risk", "missing"))
	assert.Nil(t, d.FieldByID("missing", "followed_system"))
	// field lookup is scoped to the named section
	assert.Nil(t, d.FieldByID("review", "followed_system"))
}

func TestSectionAddField(t *testing.T) {
	s := NewSection("Checklist Pessoal")

	f, err := s.AddField(FieldChecklist)
	require.NoError(t, err)
	assert.Equal(t, "Novo Campo (checklist)", f.Label)
	require.Len(t, f.Options, 2)
	assert.Equal(t, "Opção 1", f.Options[0].Label)
	assert.Equal(t, "Opção 2", f.Options[1].Label)
	assert.NotEqual(t, f.Options[0].ID, f.Options[1].ID)

	txt, err := s.AddField(FieldText)
	require.NoError(t, err)
	assert.Equal(t, "Novo Campo (text)", txt.Label)
	assert.Nil(t, txt.Options, "text fields carry no options")

	_, err = s.AddField(FieldType("slider"))
	assert.Error(t, err)
	assert.Len(t, s.Fields, 2)
}

func TestSectionRemoveField(t *testing.T) {
	d := DefaultTemplate()
	s := d.SectionByID("risk")
	require.NotNil(t, s)

	require.True(t, s.RemoveField("target"))
	assert.Nil(t, s.Field("target"))
	assert.False(t, s.RemoveField("target"))
	assert.Len(t, s.Fields, 2)
}

func TestDocumentRoundTrip(t *testing.T) {
	d := DefaultTemplate()
	d.SectionByID("risk").Field("target").SetText("125.500")
	d.FieldByID("strategy", "strategies_check").ToggleOption("4")
	d.SectionByID("indicators").ToggleExpanded()

	data, err := d.Encode()
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, sectionIDs(d), sectionIDs(got))
	assert.Equal(t, "125.500", got.FieldByID("risk", "target").Text)
	assert.True(t, got.FieldByID("strategy", "strategies_check").Option("4").Checked)
	assert.True(t, got.SectionByID("indicators").IsExpanded)

	// a second pass produces identical bytes
	again, err := got.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte(`[{"id":"s","title":"S","isExpanded":true,"fields":[{"id":"f","label":"F","type":"video","value":null}]}]`))
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	d := DefaultTemplate()
	c := d.Clone()

	c.FieldByID("strategy", "strategies_check").ToggleOption("1")
	c.SectionByID("risk").Field("target").SetText("mudado")
	c.SectionByID("media").Field("chart_img").Images[0] = "outro"
	*c.FieldByID("risk", "followed_system").Flag = false

	assert.False(t, d.FieldByID("strategy", "strategies_check").Option("1").Checked)
	assert.Empty(t, d.SectionByID("risk").Field("target").Text)
	assert.Equal(t, "https://picsum.photos/600/400?grayscale", d.SectionByID("media").Field("chart_img").Images[0])
	assert.True(t, *d.FieldByID("risk", "followed_system").Flag)
}

func TestDocumentEncodeEmpty(t *testing.T) {
	var d Document
	data, err := d.Encode()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	var decoded []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, decoded)
}
