package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySectionOps(t *testing.T) {
	d := DefaultTemplate()

	require.NoError(t, d.Apply(Op{Action: OpAddSection, Title: "Notas da Corretora"}))
	require.Len(t, d, 8)
	added := d[7]
	assert.Equal(t, "Notas da Corretora", added.Title)
	assert.True(t, added.IsExpanded)

	require.NoError(t, d.Apply(Op{Action: OpRenameSection, SectionID: added.ID, Title: "Custos"}))
	assert.Equal(t, "Custos", d.SectionByID(added.ID).Title)

	require.NoError(t, d.Apply(Op{Action: OpToggleSection, SectionID: "risk"}))
	assert.True(t, d.SectionByID("risk").IsExpanded)

	require.NoError(t, d.Apply(Op{Action: OpMoveSection, From: 7, To: 0}))
	assert.Equal(t, added.ID, d[0].ID)
	assert.Equal(t, "timeframes", d[1].ID)

	require.NoError(t, d.Apply(Op{Action: OpRemoveSection, SectionID: added.ID}))
	assert.Len(t, d, 7)

	assert.Error(t, d.Apply(Op{Action: OpRemoveSection, SectionID: added.ID}))
	assert.Error(t, d.Apply(Op{Action: OpRenameSection, SectionID: "nope", Title: "X"}))
}

func TestApplyFieldOps(t *testing.T) {
	d := DefaultTemplate()

	require.NoError(t, d.Apply(Op{Action: OpAddField, SectionID: "review", FieldType: FieldRadio}))
	review := d.SectionByID("review")
	require.Len(t, review.Fields, 3)
	newField := review.Fields[2]
	assert.Equal(t, "Novo Campo (radio)", newField.Label)
	assert.Len(t, newField.Options, 2)

	require.NoError(t, d.Apply(Op{Action: OpRenameField, SectionID: "review", FieldID: newField.ID, Label: "Qualidade da Execução"}))
	assert.Equal(t, "Qualidade da Execução", review.Field(newField.ID).Label)

	require.NoError(t, d.Apply(Op{Action: OpRemoveField, SectionID: "review", FieldID: newField.ID}))
	assert.Len(t, d.SectionByID("review").Fields, 2)

	assert.Error(t, d.Apply(Op{Action: OpAddField, SectionID: "missing", FieldType: FieldText}))
	assert.Error(t, d.Apply(Op{Action: OpAddField, SectionID: "review", FieldType: FieldType("slider")}))
	assert.Error(t, d.Apply(Op{Action: OpRemoveField, SectionID: "review", FieldID: "nope"}))
}

func TestApplySetValue(t *testing.T) {
	d := DefaultTemplate()

	text := "130.000"
	require.NoError(t, d.Apply(Op{Action: OpSetValue, SectionID: "risk", FieldID: "target", Value: &OpValue{Text: &text}}))
	assert.Equal(t, "130.000", d.FieldByID("risk", "target").Text)

	flag := false
	require.NoError(t, d.Apply(Op{Action: OpSetValue, SectionID: "risk", FieldID: "followed_system", Value: &OpValue{Flag: &flag}}))
	assert.False(t, *d.FieldByID("risk", "followed_system").Flag)

	// a boolean set_value without a flag clears the answer
	require.NoError(t, d.Apply(Op{Action: OpSetValue, SectionID: "risk", FieldID: "followed_system"}))
	assert.Nil(t, d.FieldByID("risk", "followed_system").Flag)

	assert.Error(t, d.Apply(Op{Action: OpSetValue, SectionID: "risk", FieldID: "target"}),
		"text fields require a text payload")
	assert.Error(t, d.Apply(Op{Action: OpSetValue, SectionID: "strategy", FieldID: "strategies_check", Value: &OpValue{Text: &text}}),
		"checklists have no direct value")
	assert.Error(t, d.Apply(Op{Action: OpSetValue, SectionID: "risk", FieldID: "nope", Value: &OpValue{Text: &text}}))
}

func TestApplyOptionOps(t *testing.T) {
	d := DefaultTemplate()

	require.NoError(t, d.Apply(Op{Action: OpToggleOption, SectionID: "strategy", FieldID: "strategies_check", OptionID: "2"}))
	assert.True(t, d.FieldByID("strategy", "strategies_check").Option("2").Checked)

	require.NoError(t, d.Apply(Op{Action: OpAddOption, SectionID: "strategy", FieldID: "strategies_check", Label: "Abertura em Gap"}))
	f := d.FieldByID("strategy", "strategies_check")
	require.Len(t, f.Options, 6)
	assert.Equal(t, "Abertura em Gap", f.Options[5].Label)

	// an omitted label falls back to the editor's default
	require.NoError(t, d.Apply(Op{Action: OpAddOption, SectionID: "strategy", FieldID: "strategies_check"}))
	assert.Equal(t, "Nova Opção", d.FieldByID("strategy", "strategies_check").Options[6].Label)

	require.NoError(t, d.Apply(Op{Action: OpRenameOption, SectionID: "strategy", FieldID: "strategies_check", OptionID: "1", Label: "Pullback"}))
	assert.Equal(t, "Pullback", d.FieldByID("strategy", "strategies_check").Option("1").Label)

	require.NoError(t, d.Apply(Op{Action: OpRemoveOption, SectionID: "strategy", FieldID: "strategies_check", OptionID: "5"}))
	assert.Nil(t, d.FieldByID("strategy", "strategies_check").Option("5"))

	assert.Error(t, d.Apply(Op{Action: OpToggleOption, SectionID: "risk", FieldID: "rr", OptionID: "1"}),
		"select options cannot be toggled")
	assert.Error(t, d.Apply(Op{Action: OpAddOption, SectionID: "risk", FieldID: "target", Label: "x"}))
	assert.Error(t, d.Apply(Op{Action: OpRemoveOption, SectionID: "strategy", FieldID: "strategies_check", OptionID: "nope"}))
}

func TestApplyImageOps(t *testing.T) {
	d := Document{{ID: "media", Fields: []Field{{ID: "chart_img", Type: FieldImage}}}}

	for i := 0; i < MaxFieldImages; i++ {
		require.NoError(t, d.Apply(Op{Action: OpAddImage, SectionID: "media", FieldID: "chart_img", Payload: "data:image/png;base64,AAAA"}))
	}
	err := d.Apply(Op{Action: OpAddImage, SectionID: "media", FieldID: "chart_img", Payload: "data:image/png;base64,BBBB"})
	assert.ErrorIs(t, err, ErrImageLimit)

	require.NoError(t, d.Apply(Op{Action: OpRemoveImage, SectionID: "media", FieldID: "chart_img", Index: 0}))
	assert.Len(t, d.FieldByID("media", "chart_img").Images, 3)

	// out-of-range removal mirrors the editor: nothing happens
	require.NoError(t, d.Apply(Op{Action: OpRemoveImage, SectionID: "media", FieldID: "chart_img", Index: 42}))
	assert.Len(t, d.FieldByID("media", "chart_img").Images, 3)
}

func TestApplyUnknownAction(t *testing.T) {
	d := DefaultTemplate()
	err := d.Apply(Op{Action: "explode"})
	assert.Error(t, err)
	assert.Len(t, d, 7)
}
