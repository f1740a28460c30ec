package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
)

// QuestionStore implements store.QuestionStore on SQLite.
type QuestionStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Ensure QuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*QuestionStore)(nil)

// NewQuestionStore creates a question store on a database opened with Open.
func NewQuestionStore(db *sqlx.DB, logger *slog.Logger) *QuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_question_store")),
	}
}

type questionRow struct {
	UserID   string         `db:"user_id"`
	Word     string         `db:"word"`
	Source   string         `db:"source"`
	Question sql.NullString `db:"question"`
	DueAt    int64          `db:"due_at"`
	Total    int            `db:"total"`
}

const selectBatch = `SELECT word, source, question, COUNT(*) OVER () AS total FROM questions WHERE user_id = ?`

var batchOrder = ` ORDER BY ` + store.SourceOrderSQL + `, due_at, word LIMIT ?`

// FetchBatch implements store.QuestionStore.FetchBatch.
func (s *QuestionStore) FetchBatch(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	exclude []string,
) ([]domain.QuestionRecord, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectBatch + batchOrder
	args := []any{userID.String(), limit}
	if len(exclude) > 0 {
		// sqlx.In rejects empty slices, so the clause is only added when needed.
		var err error
		query, args, err = sqlx.In(selectBatch+` AND word NOT IN (?)`+batchOrder, userID.String(), exclude, limit)
		if err != nil {
			return nil, 0, store.NewStoreError("question", "fetch_batch", "failed to expand exclusion list", err)
		}
	}

	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		log.Error("failed to query question batch",
			"user_id", userID,
			"limit", limit,
			"error", err)
		return nil, 0, store.NewStoreError("question", "fetch_batch", "query failed", err)
	}

	records := make([]domain.QuestionRecord, 0, len(rows))
	total := 0
	for _, row := range rows {
		record := domain.QuestionRecord{Word: row.Word, Source: domain.Source(row.Source)}
		if row.Question.Valid && row.Question.String != "" {
			record.Question = json.RawMessage(row.Question.String)
		}
		records = append(records, record)
		total = row.Total
	}

	log.Debug("fetched question batch",
		"user_id", userID,
		"excluded", len(exclude),
		"returned", len(records),
		"total", total)
	return records, total, nil
}

const upsertQuestion = `
	INSERT INTO questions (user_id, word, source, question, due_at)
	VALUES (:user_id, :word, :source, :question, :due_at)
	ON CONFLICT (user_id, word) DO UPDATE
	SET source = excluded.source,
		question = excluded.question,
		due_at = excluded.due_at,
		updated_at = CURRENT_TIMESTAMP`

// Upsert implements store.QuestionStore.Upsert.
func (s *QuestionStore) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	questions []domain.ScheduledQuestion,
) (int, error) {
	if err := store.ValidateQuestions(questions); err != nil {
		return 0, err
	}
	if len(questions) == 0 {
		return 0, nil
	}

	written := 0
	err := store.RunInTransaction(ctx, s.db.DB, func(ctx context.Context, tx *sql.Tx) error {
		for _, q := range questions {
			row := questionRow{
				UserID: userID.String(),
				Word:   q.Word,
				Source: string(q.Source),
				DueAt:  q.DueAt.UTC().UnixMilli(),
			}
			if len(q.Question) > 0 {
				row.Question = sql.NullString{String: string(q.Question), Valid: true}
			}

			query, args, err := sqlx.Named(upsertQuestion, row)
			if err != nil {
				return fmt.Errorf("failed to bind upsert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to upsert %q: %w", q.Word, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to upsert questions", "user_id", userID, "error", err)
		return 0, store.NewStoreError("question", "upsert", "write failed", err)
	}

	s.logger.Info("upserted questions", "user_id", userID, "count", written)
	return written, nil
}

// Count implements store.QuestionStore.Count.
func (s *QuestionStore) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM questions WHERE user_id = ?`, userID.String()); err != nil {
		return 0, store.NewStoreError("question", "count", "query failed", err)
	}
	return n, nil
}
