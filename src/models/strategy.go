package models

// StrategyFolder groups strategies in the library sidebar.
type StrategyFolder struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Name   string `json:"name"`
}

// CustomField is one user-defined label/value pair on a strategy (author,
// source course, key indicator...).
type CustomField struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Strategy is one documented setup. Timeframes, criteria and custom fields
// are stored as JSON columns; FolderID nil means unfiled.
type Strategy struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"-"`
	FolderID      *int64        `json:"folderId,omitempty"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Timeframes    []string      `json:"timeframes"`
	EntryCriteria []string      `json:"entryCriteria"`
	ExitCriteria  []string      `json:"exitCriteria"`
	ImageURL      string        `json:"imageUrl"`
	WinRate       *float64      `json:"winRate,omitempty"`
	CustomFields  []CustomField `json:"customFields,omitempty"`
}
