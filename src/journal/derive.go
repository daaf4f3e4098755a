package journal

import "strings"

// Well-known ids the strategy derivation keys on. Documents created from the
// default template carry both; hand-built documents may not, in which case
// derivation leaves the trade's strategy alone.
const (
	StrategySectionID = "strategy"
	StrategyFieldID   = "strategies_check"
)

// NoStrategyLabel is the placeholder written when the strategy checklist
// exists but nothing is checked.
const NoStrategyLabel = "---"

// DeriveStrategy computes the trade's strategy column from the journal. It
// runs only on explicit save, never on intermediate edits.
//
// Rules, in order: if the strategy field is a checklist, the result is the
// checked labels joined with ", " (document order), or NoStrategyLabel when
// none are checked. If it is a text or select field with a non-empty value,
// the result is that value. In every other case current is returned
// unchanged, so a journal without the well-known ids never clobbers a
// manually set strategy.
func DeriveStrategy(d Document, current string) string {
	f := d.FieldByID(StrategySectionID, StrategyFieldID)
	if f == nil {
		return current
	}

	switch f.Type {
	case FieldChecklist:
		if f.Options == nil {
			return current
		}
		var checked []string
		for _, opt := range f.Options {
			if opt.Checked {
				checked = append(checked, opt.Label)
			}
		}
		if len(checked) == 0 {
			return NoStrategyLabel
		}
		return strings.Join(checked, ", ")
	case FieldText, FieldSelect:
		if f.Text != "" {
			return f.Text
		}
	}
	return current
}
