// backend/src/services/interfaces.go
package services

import (
	"errors"

	"github.com/username/protrade/backend/src/journal"
	"github.com/username/protrade/backend/src/models"
)

// Define common service errors
var (
	ErrTradeNotFound          = errors.New("trade not found")
	ErrInvalidDocument        = errors.New("invalid journal document")
	ErrInvalidCalculatorInput = errors.New("invalid calculator input")
)

// JournalService owns loading, editing and saving the per-trade journal
// document.
type JournalService interface {
	// GetJournal returns the trade's journal, handing out the default
	// template when the trade has none yet (without persisting it).
	GetJournal(userID, tradeID int64) (journal.Document, error)

	// SaveJournal is the explicit save: sanitizes text values, validates
	// image payloads, enforces the per-field image cap, derives the trade's
	// strategy column and persists document + strategy atomically. It
	// returns the persisted document and the derived strategy.
	SaveJournal(userID, tradeID int64, doc journal.Document) (journal.Document, string, error)

	// ApplyJournalOps applies named structural edits and persists the
	// result without touching the strategy column.
	ApplyJournalOps(userID, tradeID int64, ops []journal.Op) (journal.Document, error)

	InvalidateUserCache(userID int64)
}

// ProgressService computes the discipline streak and consistency level from
// mindset entries and refreshes the snapshot stored on the user row.
type ProgressService interface {
	GetProgress(userID int64) (*models.UserProgress, error)
	RefreshUserMetrics(userID int64) (*models.UserProgress, error)
}

// EmailService sends the account lifecycle emails.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
