// Package importer loads scheduled review questions from spreadsheets.
//
// The first row of the sheet is a header naming the columns; order does not
// matter and names are case-insensitive:
//
//	word | source | question | due_at
//
// word and source are required. question is a JSON payload, or plain text
// which is stored as {"prompt": "<text>"}. due_at is RFC 3339 or YYYY-MM-DD
// and defaults to the import time when blank.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/store"
	"github.com/xuri/excelize/v2"
)

// Column names recognised in the header row.
const (
	ColumnWord     = "word"
	ColumnSource   = "source"
	ColumnQuestion = "question"
	ColumnDueAt    = "due_at"
)

const dateLayout = "2006-01-02"

var (
	// ErrMissingColumn indicates the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptySheet indicates the sheet has no header row.
	ErrEmptySheet = errors.New("sheet is empty")

	// ErrInvalidDueAt indicates a due_at cell in neither accepted format.
	ErrInvalidDueAt = errors.New("due_at must be RFC 3339 or YYYY-MM-DD")

	// ErrDuplicateWord indicates a word repeated within one import.
	ErrDuplicateWord = errors.New("duplicate word")
)

// RowError reports why a spreadsheet row was rejected. Row is 1-based as
// shown in spreadsheet applications.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result summarises an import.
type Result struct {
	Sheet          string
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []RowError
}

// Importer writes parsed rows to a question store.
type Importer struct {
	questions store.QuestionStore
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Importer writing to questions.
func New(questions store.QuestionStore, logger *slog.Logger) *Importer {
	if questions == nil {
		panic("questions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		questions: questions,
		logger:    logger.With(slog.String("component", "importer")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ImportFile imports the named sheet of the workbook at path. An empty sheet
// name selects the first sheet.
func (i *Importer) ImportFile(ctx context.Context, userID uuid.UUID, path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return i.importWorkbook(ctx, userID, f, sheet)
}

// Import is ImportFile for a workbook read from r.
func (i *Importer) Import(ctx context.Context, userID uuid.UUID, r io.Reader, sheet string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return i.importWorkbook(ctx, userID, f, sheet)
}

func (i *Importer) importWorkbook(
	ctx context.Context,
	userID uuid.UUID,
	f *excelize.File,
	sheet string,
) (*Result, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	questions, rowErrs, processed, err := ParseRows(rows, i.now())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Sheet:          sheet,
		TotalProcessed: processed,
		Skipped:        len(rowErrs),
		Errors:         rowErrs,
	}
	for _, rowErr := range rowErrs {
		i.logger.Warn("skipping row", slog.Int("row", rowErr.Row), slog.String("error", rowErr.Err.Error()))
	}

	if len(questions) > 0 {
		written, err := i.questions.Upsert(ctx, userID, questions)
		if err != nil {
			return nil, fmt.Errorf("failed to store questions: %w", err)
		}
		result.Imported = written
	}

	i.logger.Info("import finished",
		slog.String("user_id", userID.String()),
		slog.String("sheet", sheet),
		slog.Int("processed", result.TotalProcessed),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// ParseRows converts sheet rows, header first, into questions. Blank rows are
// ignored; every other row is either returned as a question or reported as a
// RowError. processed counts the non-blank data rows.
func ParseRows(rows [][]string, now time.Time) (questions []domain.ScheduledQuestion, rowErrs []RowError, processed int, err error) {
	if len(rows) == 0 {
		return nil, nil, 0, ErrEmptySheet
	}

	columns := make(map[string]int)
	for idx, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[key]; key != "" && !dup {
			columns[key] = idx
		}
	}
	for _, required := range []string{ColumnWord, ColumnSource} {
		if _, ok := columns[required]; !ok {
			return nil, nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	firstRow := make(map[string]int)
	for idx, row := range rows[1:] {
		rowNum := idx + 2
		if isBlank(row) {
			continue
		}
		processed++

		q, parseErr := parseRow(row, columns, now)
		if parseErr != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Err: parseErr})
			continue
		}
		if prev, dup := firstRow[q.Word]; dup {
			rowErrs = append(rowErrs, RowError{
				Row: rowNum,
				Err: fmt.Errorf("%w %q, first seen on row %d", ErrDuplicateWord, q.Word, prev),
			})
			continue
		}
		firstRow[q.Word] = rowNum
		questions = append(questions, q)
	}
	return questions, rowErrs, processed, nil
}

func parseRow(row []string, columns map[string]int, now time.Time) (domain.ScheduledQuestion, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	source, err := domain.ParseSource(cell(ColumnSource))
	if err != nil {
		return domain.ScheduledQuestion{}, err
	}

	dueAt := now
	if raw := cell(ColumnDueAt); raw != "" {
		dueAt, err = parseDueAt(raw)
		if err != nil {
			return domain.ScheduledQuestion{}, err
		}
	}

	q := domain.ScheduledQuestion{
		QuestionRecord: domain.QuestionRecord{
			Word:     cell(ColumnWord),
			Source:   source,
			Question: questionPayload(cell(ColumnQuestion)),
		},
		DueAt: dueAt,
	}
	if err := q.Validate(); err != nil {
		return domain.ScheduledQuestion{}, err
	}
	return q, nil
}

func parseDueAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueAt, raw)
}

// questionPayload keeps JSON objects and arrays as they are and wraps any
// other text as a prompt.
func questionPayload(raw string) json.RawMessage {
	if raw == "" {
		return nil
	}
	if (strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[")) && json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]string{"prompt": raw})
	return json.RawMessage(bytes.TrimSpace(buf.Bytes()))
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
