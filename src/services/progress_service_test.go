// backend/src/services/progress_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func disciplinedDay(date string) dayRecord {
	return dayRecord{
		Date:            date,
		DisciplineScore: 95,
		ImpulsiveTrades: 0,
		PlannedTrades:   3,
		ExecutedTrades:  3,
	}
}

func TestComputeStreakCountsRecentDisciplinedDays(t *testing.T) {
	records := []dayRecord{
		disciplinedDay("2026-08-27"),
		disciplinedDay("2026-08-28"),
		disciplinedDay("2026-08-29"),
	}
	assert.Equal(t, 3, computeStreak(records))
}

func TestComputeStreakBreaksOnFirstUndisciplinedDay(t *testing.T) {
	broken := disciplinedDay("2026-08-27")
	broken.ImpulsiveTrades = 2

	records := []dayRecord{
		disciplinedDay("2026-08-25"), // behind the break, must not count
		disciplinedDay("2026-08-26"),
		broken,
		disciplinedDay("2026-08-28"),
		disciplinedDay("2026-08-29"),
	}
	assert.Equal(t, 2, computeStreak(records))
}

func TestComputeStreakOrderIndependent(t *testing.T) {
	records := []dayRecord{
		disciplinedDay("2026-08-29"),
		disciplinedDay("2026-08-27"),
		disciplinedDay("2026-08-28"),
	}
	assert.Equal(t, 3, computeStreak(records))
}

func TestDisciplinedRule(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dayRecord)
		want   bool
	}{
		{"baseline", func(r *dayRecord) {}, true},
		{"discipline exactly 90", func(r *dayRecord) { r.DisciplineScore = 90 }, true},
		{"discipline below 90", func(r *dayRecord) { r.DisciplineScore = 89 }, false},
		{"impulsive trade", func(r *dayRecord) { r.ImpulsiveTrades = 1 }, false},
		{"bad habit logged", func(r *dayRecord) { r.BadHabits = []string{"Overtrading"} }, false},
		{"executed over plan", func(r *dayRecord) { r.ExecutedTrades = r.PlannedTrades + 1 }, false},
		{"executed under plan", func(r *dayRecord) { r.ExecutedTrades = r.PlannedTrades - 1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := disciplinedDay("2026-08-29")
			tc.mutate(&rec)
			assert.Equal(t, tc.want, rec.disciplined())
		})
	}
}

func TestLevelForStreak(t *testing.T) {
	tests := []struct {
		streak      int
		wantCurrent string
		wantNext    string
		wantDays    int
	}{
		{0, "INICIANTE", "FOCO", 7},
		{6, "INICIANTE", "FOCO", 1},
		{7, "FOCO", "DISCIPLINA", 7},
		{14, "DISCIPLINA", "PRECISÃO", 7},
		{21, "PRECISÃO", "ELITE", 6},
		{27, "ELITE", "CONSISTÊNCIA ABSOLUTA", 3},
		{30, "CONSISTÊNCIA ABSOLUTA", "", 0},
		{45, "CONSISTÊNCIA ABSOLUTA", "", 0},
	}

	for _, tc := range tests {
		current, next, days := levelForStreak(tc.streak)
		assert.Equal(t, tc.wantCurrent, current, "streak %d", tc.streak)
		assert.Equal(t, tc.wantNext, next, "streak %d", tc.streak)
		assert.Equal(t, tc.wantDays, days, "streak %d", tc.streak)
	}
}
