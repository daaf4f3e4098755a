package journal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldJSONRoundTrip(t *testing.T) {
	flag := true
	tests := []struct {
		name  string
		field Field
	}{
		{"text", Field{ID: "target", Label: "Preço Alvo", Type: FieldText, Text: "125.500", Placeholder: "Ex: 125.500"}},
		{"select", Field{ID: "tf", Label: "Time Frame", Type: FieldSelect, Text: "5m", Options: []Option{{ID: "1", Label: "5m"}, {ID: "2", Label: "15m"}}}},
		{"radio", Field{ID: "ma200", Label: "Médias", Type: FieldRadio, Text: "Neutral", Options: []Option{{ID: "1", Label: "A favor da tendência"}}}},
		{"boolean set", Field{ID: "fs", Label: "Seguiu?", Type: FieldBoolean, Flag: &flag}},
		{"boolean unset", Field{ID: "fs", Label: "Seguiu?", Type: FieldBoolean}},
		{"checklist", Field{ID: "st", Label: "Setups", Type: FieldChecklist, Options: []Option{{ID: "1", Label: "Pullback", Checked: true}, {ID: "2", Label: "Elliott"}}}},
		{"image list", Field{ID: "img", Label: "Print", Type: FieldImage, Images: []string{"data:image/png;base64,AAAA", "https://example.com/a.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.field)
			require.NoError(t, err)

			var got Field
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.field.ID, got.ID)
			assert.Equal(t, tt.field.Label, got.Label)
			assert.Equal(t, tt.field.Type, got.Type)
			assert.Equal(t, tt.field.Text, got.Text)
			assert.Equal(t, tt.field.Flag, got.Flag)
			assert.Equal(t, tt.field.Options, got.Options)
			if tt.field.Type == FieldImage {
				assert.Equal(t, tt.field.Images, got.Images)
			}
		})
	}
}

func TestFieldUnmarshalPolymorphicValue(t *testing.T) {
	t.Run("boolean null stays unset", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`{"id":"b","label":"B","type":"boolean","value":null}`), &f))
		assert.Nil(t, f.Flag)
	})

	t.Run("legacy single image string becomes one-element list", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`{"id":"img","label":"Print","type":"image","value":"https://picsum.photos/600/400"}`), &f))
		assert.Equal(t, []string{"https://picsum.photos/600/400"}, f.Images)
	})

	t.Run("empty legacy image string means no attachments", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`{"id":"img","label":"Print","type":"image","value":""}`), &f))
		assert.Empty(t, f.Images)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		var f Field
		err := json.Unmarshal([]byte(`{"id":"x","label":"X","type":"slider","value":3}`), &f)
		assert.Error(t, err)
	})

	t.Run("wrong value kind is rejected", func(t *testing.T) {
		var f Field
		err := json.Unmarshal([]byte(`{"id":"t","label":"T","type":"text","value":42}`), &f)
		assert.Error(t, err)
	})
}

func TestFieldMarshalValueShapes(t *testing.T) {
	raw := func(f Field) map[string]json.RawMessage {
		data, err := json.Marshal(f)
		require.NoError(t, err)
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	assert.Equal(t, `"ok"`, string(raw(Field{ID: "t", Type: FieldText, Text: "ok"})["value"]))
	assert.Equal(t, `null`, string(raw(Field{ID: "b", Type: FieldBoolean})["value"]))
	assert.Equal(t, `null`, string(raw(Field{ID: "c", Type: FieldChecklist})["value"]))
	assert.Equal(t, `[]`, string(raw(Field{ID: "i", Type: FieldImage})["value"]))
}

func TestToggleOption(t *testing.T) {
	f := Field{ID: "st", Type: FieldChecklist, Options: []Option{
		{ID: "1", Label: "Pullback nas Médias"},
		{ID: "2", Label: "Ondas de Elliott"},
	}}

	assert.True(t, f.ToggleOption("1"))
	assert.True(t, f.Options[0].Checked)
	assert.False(t, f.Options[1].Checked)

	// double toggle restores the original state
	assert.True(t, f.ToggleOption("1"))
	assert.False(t, f.Options[0].Checked)

	assert.False(t, f.ToggleOption("missing"))

	sel := Field{ID: "tf", Type: FieldSelect, Options: []Option{{ID: "1", Label: "5m"}}}
	assert.False(t, sel.ToggleOption("1"), "toggling must be checklist-only")
}

func TestAddOption(t *testing.T) {
	f := Field{ID: "st", Type: FieldChecklist, Options: []Option{{ID: "1", Label: "Opção 1"}}}
	opt, ok := f.AddOption("Rompimento")
	require.True(t, ok)
	assert.NotEmpty(t, opt.ID)
	assert.NotEqual(t, "1", opt.ID)
	assert.False(t, opt.Checked)
	assert.Equal(t, "Rompimento", f.Options[1].Label)

	txt := Field{ID: "t", Type: FieldText}
	_, ok = txt.AddOption("x")
	assert.False(t, ok)
	assert.Nil(t, txt.Options)
}

func TestRemoveOptionKeepsDanglingValue(t *testing.T) {
	f := Field{ID: "tf", Type: FieldSelect, Text: "5m", Options: []Option{
		{ID: "1", Label: "5m"},
		{ID: "2", Label: "15m"},
	}}

	require.True(t, f.RemoveOption("1"))
	assert.Len(t, f.Options, 1)
	assert.Equal(t, "5m", f.Text, "value must keep pointing at the removed label")

	assert.False(t, f.RemoveOption("1"))
}

func TestRenameOptionKeepsStaleValue(t *testing.T) {
	f := Field{ID: "ma", Type: FieldRadio, Text: "Flat", Options: []Option{{ID: "1", Label: "Flat"}}}

	require.True(t, f.RenameOption("1", "Flat / Lateral"))
	assert.Equal(t, "Flat / Lateral", f.Options[0].Label)
	assert.Equal(t, "Flat", f.Text, "stored value is not rewritten on rename")
}
