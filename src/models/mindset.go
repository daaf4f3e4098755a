package models

// MindsetEntry is the daily emotional/discipline check-in. One entry per user
// per date; writes upsert on (user, date).
type MindsetEntry struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Date   string `json:"date"` // YYYY-MM-DD

	// Emoções
	EmotionPre      string `json:"emotionPre"`
	EmotionDuring   string `json:"emotionDuring"`
	EmotionPost     string `json:"emotionPost"`
	DominantEmotion string `json:"dominantEmotion"`
	ClarityLevel    int    `json:"clarityLevel"` // 0-10
	StressLevel     int    `json:"stressLevel"`  // 0-10
	SleptWell       bool   `json:"sleptWell"`
	Observations    string `json:"observations"`

	// Hábitos
	GoodHabits      []string `json:"goodHabits"`
	BadHabits       []string `json:"badHabits"`
	DisciplineScore int      `json:"disciplineScore"` // 0-100

	// Overtrading
	PlannedTrades   int    `json:"plannedTrades"`
	ExecutedTrades  int    `json:"executedTrades"`
	ImpulsiveTrades int    `json:"impulsiveTrades"`
	LossControlTime string `json:"lossControlTime,omitempty"` // "10:42"

	// Sabotagem
	SabotagePatterns     []string `json:"sabotagePatterns"`
	ReflectionError      string   `json:"reflectionError"`
	ReflectionCorrection string   `json:"reflectionCorrection"`
}

// MindsetSummary aggregates a period of entries for the dashboard widgets.
type MindsetSummary struct {
	Entries         int     `json:"entries"`
	AvgDiscipline   float64 `json:"avgDiscipline"`
	AvgClarity      float64 `json:"avgClarity"`
	AvgStress       float64 `json:"avgStress"`
	OvertradingDays int     `json:"overtradingDays"`
	ImpulsiveTrades int     `json:"impulsiveTrades"`
}

// UserProgress is the gamification snapshot shown on the trader map.
type UserProgress struct {
	Streak           int     `json:"streak"`
	AvgDiscipline    float64 `json:"avgDiscipline"`
	ConsistencyLevel string  `json:"consistencyLevel"`
	NextLevel        string  `json:"nextLevel,omitempty"`
	DaysToNextLevel  int     `json:"daysToNextLevel,omitempty"`
}
