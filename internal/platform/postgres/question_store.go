package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/platform/logger"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
)

// PostgresQuestionStore implements store.QuestionStore on PostgreSQL.
type PostgresQuestionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure PostgresQuestionStore implements store.QuestionStore interface
var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// NewPostgresQuestionStore creates a question store on db, which is owned by
// the caller. If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db *sql.DB, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var fetchBatchQuery = `
	SELECT word, source, question, COUNT(*) OVER () AS total
	FROM questions
	WHERE user_id = $1 AND word <> ALL($2)
	ORDER BY ` + store.SourceOrderSQL + `, due_at, word
	LIMIT $3`

// FetchBatch implements store.QuestionStore.FetchBatch.
func (s *PostgresQuestionStore) FetchBatch(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	exclude []string,
) ([]domain.QuestionRecord, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if exclude == nil {
		// ALL over a NULL array matches nothing.
		exclude = []string{}
	}

	rows, err := s.db.QueryContext(ctx, fetchBatchQuery, userID, exclude, limit)
	if err != nil {
		log.Error("failed to query question batch",
			"user_id", userID,
			"limit", limit,
			"error", err)
		return nil, 0, store.NewStoreError("question", "fetch_batch", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.QuestionRecord, 0, limit)
	total := 0
	for rows.Next() {
		var (
			record  domain.QuestionRecord
			source  string
			payload []byte
		)
		if err := rows.Scan(&record.Word, &source, &payload, &total); err != nil {
			return nil, 0, store.NewStoreError("question", "fetch_batch", "scan failed", err)
		}
		record.Source = domain.Source(source)
		if len(payload) > 0 {
			record.Question = json.RawMessage(payload)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, store.NewStoreError("question", "fetch_batch", "row iteration failed", MapError(err))
	}

	if len(records) == 0 {
		// The window count is only visible on returned rows.
		total = 0
	}

	log.Debug("fetched question batch",
		"user_id", userID,
		"limit", limit,
		"excluded", len(exclude),
		"returned", len(records),
		"total", total)
	return records, total, nil
}

const upsertQuery = `
	INSERT INTO questions (user_id, word, source, question, due_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	ON CONFLICT (user_id, word) DO UPDATE
	SET source = EXCLUDED.source,
		question = EXCLUDED.question,
		due_at = EXCLUDED.due_at,
		updated_at = NOW()`

// Upsert implements store.QuestionStore.Upsert. All rows are written in one
// transaction.
func (s *PostgresQuestionStore) Upsert(
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
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, q := range questions {
			_, err := stmt.ExecContext(ctx, userID, q.Word, string(q.Source), payloadArg(q.Question), q.DueAt.UTC())
			if err != nil {
				return fmt.Errorf("failed to upsert %q: %w", q.Word, MapError(err))
			}
			written++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to upsert questions",
			"user_id", userID,
			"count", len(questions),
			"error", err)
		return 0, store.NewStoreError("question", "upsert", "write failed", err)
	}

	s.logger.Info("upserted questions", "user_id", userID, "count", written)
	return written, nil
}

// Count implements store.QuestionStore.Count.
func (s *PostgresQuestionStore) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("question", "count", "query failed", MapError(err))
	}
	return n, nil
}

// payloadArg maps an empty payload to SQL NULL.
func payloadArg(payload json.RawMessage) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}
