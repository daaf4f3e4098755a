// backend/src/services/progress_service.go
package services

import (
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/model"
	"github.com/username/protrade/backend/src/models"
)

// consistencyLevels are ordered by the streak length they require.
var consistencyLevels = []struct {
	Name         string
	DaysRequired int
}{
	{"FOCO", 7},
	{"DISCIPLINA", 14},
	{"PRECISÃO", 21},
	{"ELITE", 27},
	{"CONSISTÊNCIA ABSOLUTA", 30},
}

// StarterLevelName is shown before the first level is reached.
const StarterLevelName = "INICIANTE"

// dayRecord is the slice of a mindset entry the streak rule looks at.
type dayRecord struct {
	Date            string
	DisciplineScore int
	ImpulsiveTrades int
	PlannedTrades   int
	ExecutedTrades  int
	BadHabits       []string
}

// disciplined reports whether the day counts toward the streak: discipline at
// least 90, no impulsive trades, no bad habits logged, and execution within
// the plan.
func (d dayRecord) disciplined() bool {
	return d.DisciplineScore >= 90 &&
		d.ImpulsiveTrades == 0 &&
		len(d.BadHabits) == 0 &&
		d.ExecutedTrades <= d.PlannedTrades
}

// computeStreak counts consecutive disciplined days starting from the most
// recent entry. The first undisciplined day breaks the streak; gaps between
// entry dates do not (a day without an entry simply is not counted).
func computeStreak(records []dayRecord) int {
	sorted := make([]dayRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	streak := 0
	for _, rec := range sorted {
		if !rec.disciplined() {
			break
		}
		streak++
	}
	return streak
}

// levelForStreak maps a streak to the highest consistency level reached plus
// the next target.
func levelForStreak(streak int) (current string, next string, daysToNext int) {
	current = StarterLevelName
	for _, lvl := range consistencyLevels {
		if streak >= lvl.DaysRequired {
			current = lvl.Name
			continue
		}
		return current, lvl.Name, lvl.DaysRequired - streak
	}
	return current, "", 0
}

type progressServiceImpl struct{}

func NewProgressService() ProgressService {
	return &progressServiceImpl{}
}

func (s *progressServiceImpl) loadRecords(userID int64) ([]dayRecord, float64, error) {
	rows, err := database.DB.Query(`
		SELECT date, discipline_score, impulsive_trades, planned_trades, executed_trades, bad_habits
		FROM mindset_entries
		WHERE user_id = ?
		ORDER BY date DESC`, userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []dayRecord
	var disciplineTotal int
	for rows.Next() {
		var rec dayRecord
		var badHabitsJSON sql.NullString
		if err := rows.Scan(&rec.Date, &rec.DisciplineScore, &rec.ImpulsiveTrades,
			&rec.PlannedTrades, &rec.ExecutedTrades, &badHabitsJSON); err != nil {
			return nil, 0, err
		}
		if badHabitsJSON.Valid && badHabitsJSON.String != "" {
			if err := json.Unmarshal([]byte(badHabitsJSON.String), &rec.BadHabits); err != nil {
				logger.L.Warn("Could not parse bad_habits column, treating as empty", "userID", userID, "date", rec.Date, "error", err)
			}
		}
		disciplineTotal += rec.DisciplineScore
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var avg float64
	if len(records) > 0 {
		avg = float64(disciplineTotal) / float64(len(records))
	}
	return records, avg, nil
}

func (s *progressServiceImpl) GetProgress(userID int64) (*models.UserProgress, error) {
	records, avg, err := s.loadRecords(userID)
	if err != nil {
		return nil, err
	}

	streak := computeStreak(records)
	current, next, daysToNext := levelForStreak(streak)

	return &models.UserProgress{
		Streak:           streak,
		AvgDiscipline:    avg,
		ConsistencyLevel: current,
		NextLevel:        next,
		DaysToNextLevel:  daysToNext,
	}, nil
}

// RefreshUserMetrics recomputes the snapshot and writes it back to the user
// row so listings (and the admin panel) read it without re-aggregating.
func (s *progressServiceImpl) RefreshUserMetrics(userID int64) (*models.UserProgress, error) {
	progress, err := s.GetProgress(userID)
	if err != nil {
		return nil, err
	}

	user := &model.User{ID: userID}
	if err := user.UpdateProgressMetrics(database.DB, progress.Streak, progress.AvgDiscipline, progress.ConsistencyLevel); err != nil {
		return nil, err
	}

	logger.L.Info("User progress metrics refreshed",
		"userID", userID, "streak", progress.Streak, "level", progress.ConsistencyLevel)
	return progress, nil
}
