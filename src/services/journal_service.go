// backend/src/services/journal_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/protrade/backend/src/config"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/journal"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/security/validation"
)

const (
	ckJournalDoc           = "journal_doc_user_%d_trade_%d"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type journalServiceImpl struct {
	template journal.TemplateFunc
	docCache *cache.Cache
}

func NewJournalService(template journal.TemplateFunc, docCache *cache.Cache) JournalService {
	return &journalServiceImpl{
		template: template,
		docCache: docCache,
	}
}

// loadTradeJournal reads the raw journal column and the current strategy for
// an owned trade.
func (s *journalServiceImpl) loadTradeJournal(userID, tradeID int64) (raw []byte, strategy string, err error) {
	var rawNull sql.NullString
	row := database.DB.QueryRow(
		`SELECT journal, strategy FROM trades WHERE id = ? AND user_id = ?`, tradeID, userID)
	if err := row.Scan(&rawNull, &strategy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrTradeNotFound
		}
		return nil, "", err
	}
	if rawNull.Valid {
		raw = []byte(rawNull.String)
	}
	return raw, strategy, nil
}

func (s *journalServiceImpl) GetJournal(userID, tradeID int64) (journal.Document, error) {
	cacheKey := fmt.Sprintf(ckJournalDoc, userID, tradeID)
	if cached, found := s.docCache.Get(cacheKey); found {
		return cached.(journal.Document).Clone(), nil
	}

	raw, _, err := s.loadTradeJournal(userID, tradeID)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		// A trade created without a journal gets the stock template. The
		// read never persists it; the document only hits the database on an
		// explicit save.
		logger.L.Debug("Trade has no journal yet, serving default template", "tradeID", tradeID)
		return s.template(), nil
	}

	doc, err := journal.Parse(raw)
	if err != nil {
		logger.L.Error("Stored journal document failed to parse", "tradeID", tradeID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	s.docCache.Set(cacheKey, doc.Clone(), cache.DefaultExpiration)
	return doc, nil
}

func (s *journalServiceImpl) SaveJournal(userID, tradeID int64, doc journal.Document) (journal.Document, string, error) {
	_, currentStrategy, err := s.loadTradeJournal(userID, tradeID)
	if err != nil {
		return nil, "", err
	}

	if err := validateDocument(doc); err != nil {
		return nil, "", err
	}
	sanitizeDocument(doc)

	derived := journal.DeriveStrategy(doc, currentStrategy)

	encoded, err := doc.Encode()
	if err != nil {
		return nil, "", err
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE trades SET journal = ?, strategy = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		string(encoded), derived, tradeID, userID)
	if err != nil {
		return nil, "", err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, "", ErrTradeNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, "", err
	}

	s.docCache.Set(fmt.Sprintf(ckJournalDoc, userID, tradeID), doc.Clone(), cache.DefaultExpiration)
	logger.L.Info("Journal saved", "tradeID", tradeID, "strategy", derived)
	return doc, derived, nil
}

func (s *journalServiceImpl) ApplyJournalOps(userID, tradeID int64, ops []journal.Op) (journal.Document, error) {
	doc, err := s.GetJournal(userID, tradeID)
	if err != nil {
		return nil, err
	}

	for i, op := range ops {
		if op.Action == journal.OpAddImage {
			if err := validation.ValidateImagePayload(op.Payload, config.Cfg.MaxImageSizeBytes, config.Cfg.MaxImageURLLength); err != nil {
				return nil, fmt.Errorf("operation %d (%s): %w", i, op.Action, err)
			}
		}
		if err := doc.Apply(op); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Action, err)
		}
	}

	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}

	// Structural edits persist the document only; strategy derivation is
	// reserved for explicit saves.
	res, err := database.DB.Exec(
		`UPDATE trades SET journal = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		string(encoded), tradeID, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrTradeNotFound
	}

	s.docCache.Set(fmt.Sprintf(ckJournalDoc, userID, tradeID), doc.Clone(), cache.DefaultExpiration)
	return doc, nil
}

func (s *journalServiceImpl) InvalidateUserCache(userID int64) {
	prefix := fmt.Sprintf("journal_doc_user_%d_", userID)
	for key := range s.docCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.docCache.Delete(key)
		}
	}
}

// validateDocument enforces the structural limits a PUT payload must respect
// before anything is persisted: valid field shapes, the image cap, and
// acceptable image payloads. Violations reject the whole save.
func validateDocument(doc journal.Document) error {
	for _, section := range doc {
		if err := validation.ValidateStringMaxLength(section.Title, validation.MaxTitleLength, "Título da categoria"); err != nil {
			return err
		}
		for _, field := range section.Fields {
			if !field.Type.Valid() {
				return fmt.Errorf("%w: campo %q tem tipo desconhecido", ErrInvalidDocument, field.ID)
			}
			if err := validation.ValidateStringMaxLength(field.Label, validation.MaxLabelLength, "Nome do campo"); err != nil {
				return err
			}
			if err := validation.ValidateStringMaxLength(field.Text, validation.MaxTextValueLength, "Valor do campo"); err != nil {
				return err
			}
			if field.Type == journal.FieldImage {
				if len(field.Images) > journal.MaxFieldImages {
					return journal.ErrImageLimit
				}
				for _, payload := range field.Images {
					if err := validation.ValidateImagePayload(payload, config.Cfg.MaxImageSizeBytes, config.Cfg.MaxImageURLLength); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// sanitizeDocument strips HTML from every user-authored string in place.
// Image payloads are excluded: they are validated, not rewritten.
func sanitizeDocument(doc journal.Document) {
	for i := range doc {
		doc[i].Title = validation.SanitizeText(doc[i].Title)
		for j := range doc[i].Fields {
			f := &doc[i].Fields[j]
			f.Label = validation.SanitizeText(f.Label)
			f.Placeholder = validation.SanitizeText(f.Placeholder)
			f.Text = validation.SanitizeText(f.Text)
			for k := range f.Options {
				f.Options[k].Label = validation.SanitizeText(f.Options[k].Label)
			}
		}
	}
}
