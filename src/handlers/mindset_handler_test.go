package handlers

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/protrade/backend/src/models"
)

func TestDecodeStringList(t *testing.T) {
	var list []string

	decodeStringList(sql.NullString{String: `["leitura","meditação"]`, Valid: true}, &list)
	assert.Equal(t, []string{"leitura", "meditação"}, list)

	list = nil
	decodeStringList(sql.NullString{}, &list)
	assert.Equal(t, []string{}, list, "NULL column decodes to an empty list, not nil")

	list = nil
	decodeStringList(sql.NullString{String: "not json", Valid: true}, &list)
	assert.Equal(t, []string{}, list, "corrupt column is tolerated as empty")
}

func TestEncodeStringList(t *testing.T) {
	assert.Equal(t, "[]", encodeStringList(nil))
	assert.Equal(t, `["a","b"]`, encodeStringList([]string{"a", "b"}))
}

func TestValidateMindsetEntry(t *testing.T) {
	valid := func() models.MindsetEntry {
		return models.MindsetEntry{
			Date:            "2025-03-10",
			ClarityLevel:    7,
			StressLevel:     4,
			DisciplineScore: 92,
			PlannedTrades:   3,
			ExecutedTrades:  3,
			GoodHabits:      []string{"plano definido"},
			Observations:    "Dia calmo.",
		}
	}

	t.Run("valid entry passes", func(t *testing.T) {
		entry := valid()
		require.NoError(t, validateMindsetEntry(&entry))
	})

	t.Run("habit lists are sanitized", func(t *testing.T) {
		entry := valid()
		entry.BadHabits = []string{"<b>revenge trading</b>"}
		require.NoError(t, validateMindsetEntry(&entry))
		assert.Equal(t, []string{"revenge trading"}, entry.BadHabits)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		entry := valid()
		entry.Date = "10-03-2025"
		assert.Error(t, validateMindsetEntry(&entry))
	})

	t.Run("rejects clarity above scale", func(t *testing.T) {
		entry := valid()
		entry.ClarityLevel = 11
		assert.Error(t, validateMindsetEntry(&entry))
	})

	t.Run("rejects discipline above 100", func(t *testing.T) {
		entry := valid()
		entry.DisciplineScore = 101
		assert.Error(t, validateMindsetEntry(&entry))
	})

	t.Run("rejects negative trade counts", func(t *testing.T) {
		entry := valid()
		entry.ImpulsiveTrades = -1
		assert.Error(t, validateMindsetEntry(&entry))
	})
}
