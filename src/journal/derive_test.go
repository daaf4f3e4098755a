package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strategyDoc(f Field) Document {
	return Document{{ID: StrategySectionID, Title: "Estratégia Utilizada", Fields: []Field{f}}}
}

func TestDeriveStrategyChecklist(t *testing.T) {
	tests := []struct {
		name    string
		checked []string
		want    string
	}{
		{"none checked", nil, "---"},
		{"one checked", []string{"3"}, "Retração de Fibonacci"},
		{"two checked joined in order", []string{"1", "3"}, "Pullback nas Médias, Retração de Fibonacci"},
		{"all checked", []string{"1", "2", "3"}, "Pullback nas Médias, Ondas de Elliott, Retração de Fibonacci"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Field{ID: StrategyFieldID, Type: FieldChecklist, Options: []Option{
				{ID: "1", Label: "Pullback nas Médias"},
				{ID: "2", Label: "Ondas de Elliott"},
				{ID: "3", Label: "Retração de Fibonacci"},
			}}
			for _, id := range tt.checked {
				require.True(t, f.ToggleOption(id))
			}
			assert.Equal(t, tt.want, DeriveStrategy(strategyDoc(f), "Manual"))
		})
	}
}

func TestDeriveStrategyTextAndSelect(t *testing.T) {
	assert.Equal(t, "Breakout",
		DeriveStrategy(strategyDoc(Field{ID: StrategyFieldID, Type: FieldText, Text: "Breakout"}), "Antiga"))
	assert.Equal(t, "Pullback M5",
		DeriveStrategy(strategyDoc(Field{ID: StrategyFieldID, Type: FieldSelect, Text: "Pullback M5"}), "Antiga"))

	// empty values never clobber the current strategy
	assert.Equal(t, "Antiga",
		DeriveStrategy(strategyDoc(Field{ID: StrategyFieldID, Type: FieldText}), "Antiga"))
	assert.Equal(t, "Antiga",
		DeriveStrategy(strategyDoc(Field{ID: StrategyFieldID, Type: FieldSelect}), "Antiga"))
}

func TestDeriveStrategyKeepsCurrent(t *testing.T) {
	t.Run("no strategy section", func(t *testing.T) {
		d := Document{{ID: "review", Fields: []Field{{ID: "mistakes", Type: FieldText, Text: "x"}}}}
		assert.Equal(t, "Swing Trade", DeriveStrategy(d, "Swing Trade"))
	})

	t.Run("section without the well-known field", func(t *testing.T) {
		d := Document{{ID: StrategySectionID, Fields: []Field{{ID: "other", Type: FieldText, Text: "x"}}}}
		assert.Equal(t, "Swing Trade", DeriveStrategy(d, "Swing Trade"))
	})

	t.Run("field of a non-deriving type", func(t *testing.T) {
		flag := true
		d := strategyDoc(Field{ID: StrategyFieldID, Type: FieldBoolean, Flag: &flag})
		assert.Equal(t, "Swing Trade", DeriveStrategy(d, "Swing Trade"))
	})
}

func TestDeriveStrategyAfterToggleCycle(t *testing.T) {
	d := DefaultTemplate()
	f := d.FieldByID(StrategySectionID, StrategyFieldID)
	require.NotNil(t, f)

	f.ToggleOption("1")
	f.ToggleOption("5")
	assert.Equal(t, "Pullback nas Médias, Suporte e Resistência", DeriveStrategy(d, ""))

	f.ToggleOption("1")
	f.ToggleOption("5")
	assert.Equal(t, "---", DeriveStrategy(d, "qualquer"))
}
