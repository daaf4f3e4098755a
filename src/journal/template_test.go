package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplateLayout(t *testing.T) {
	d := DefaultTemplate()

	assert.Equal(t,
		[]string{"timeframes", "indicators", "strategy", "risk", "psychology", "review", "media"},
		sectionIDs(d))

	expanded := map[string]bool{}
	for _, s := range d {
		expanded[s.ID] = s.IsExpanded
	}
	assert.True(t, expanded["timeframes"])
	assert.True(t, expanded["strategy"])
	assert.True(t, expanded["media"])
	assert.False(t, expanded["indicators"])
	assert.False(t, expanded["risk"])
}

func TestDefaultTemplateStrategyField(t *testing.T) {
	d := DefaultTemplate()

	f := d.FieldByID(StrategySectionID, StrategyFieldID)
	require.NotNil(t, f)
	assert.Equal(t, FieldChecklist, f.Type)
	require.Len(t, f.Options, 5)
	for _, opt := range f.Options {
		assert.False(t, opt.Checked, "fresh template starts with nothing checked")
	}

	// an untouched template derives the placeholder, not an empty string
	assert.Equal(t, NoStrategyLabel, DeriveStrategy(d, ""))
}

func TestDefaultTemplateFieldDefaults(t *testing.T) {
	d := DefaultTemplate()

	tf := d.FieldByID("timeframes", "tf_entry")
	require.NotNil(t, tf)
	assert.Equal(t, FieldSelect, tf.Type)
	assert.Equal(t, "5m", tf.Text)
	assert.Len(t, tf.Options, 5)

	fs := d.FieldByID("risk", "followed_system")
	require.NotNil(t, fs)
	require.NotNil(t, fs.Flag)
	assert.True(t, *fs.Flag)

	target := d.FieldByID("risk", "target")
	require.NotNil(t, target)
	assert.Empty(t, target.Text)
	assert.Equal(t, "Ex: 125.500", target.Placeholder)

	img := d.FieldByID("media", "chart_img")
	require.NotNil(t, img)
	assert.Equal(t, FieldImage, img.Type)
	assert.Len(t, img.Images, 1)
}

func TestDefaultTemplateIsIndependentPerCall(t *testing.T) {
	a := DefaultTemplate()
	b := DefaultTemplate()

	a.FieldByID(StrategySectionID, StrategyFieldID).ToggleOption("2")
	a.RemoveSection("review")

	assert.False(t, b.FieldByID(StrategySectionID, StrategyFieldID).Option("2").Checked)
	assert.NotNil(t, b.SectionByID("review"))
}
