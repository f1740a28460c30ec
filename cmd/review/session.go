package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
)

// Commands read after each question.
const (
	cmdQuit    = "q"
	cmdRefresh = "r"
)

// session drives one interactive review run: show a question, wait for the
// user, repeat.
type session struct {
	queue  *prefetch.Queue
	source prefetch.QuestionSource
	in     *bufio.Scanner
	out    io.Writer
	shown  int
}

func newSession(queue *prefetch.Queue, source prefetch.QuestionSource, in io.Reader, out io.Writer) *session {
	return &session{
		queue:  queue,
		source: source,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run force-refreshes the queue, then shows questions until the user quits,
// input ends, or no questions remain.
func (s *session) Run(ctx context.Context) error {
	s.queue.ForceRefresh(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		record, ok, err := s.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(s.out, "No more questions. Reviewed %d.\n", s.shown)
			return nil
		}

		s.show(record)

		fmt.Fprint(s.out, "[Enter] next  [r] refresh  [q] quit > ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
		case cmdQuit:
			fmt.Fprintf(s.out, "Reviewed %d.\n", s.shown)
			return nil
		case cmdRefresh:
			s.queue.ForceRefresh(ctx)
		}
	}
}

// next pops the queue, falling back to a direct single-question fetch when
// the buffer is empty but the source may still have questions.
func (s *session) next(ctx context.Context) (domain.QuestionRecord, bool, error) {
	if record, ok := s.queue.Pop(ctx); ok {
		return record, true, nil
	}
	if !s.queue.HasMore() {
		return domain.QuestionRecord{}, false, nil
	}

	resp, err := s.source.FetchBatch(ctx, 1, nil)
	if err != nil {
		return domain.QuestionRecord{}, false, fmt.Errorf("failed to fetch question: %w", err)
	}
	if resp == nil || len(resp.Questions) == 0 {
		return domain.QuestionRecord{}, false, nil
	}
	return resp.Questions[0], true, nil
}

func (s *session) show(record domain.QuestionRecord) {
	s.shown++
	fmt.Fprintf(s.out, "\n#%d  %s  (%s)\n", s.shown, record.Word, record.Source)

	if prompt := promptOf(record.Question); prompt != "" {
		fmt.Fprintf(s.out, "    %s\n", prompt)
	}

	st := s.queue.Status()
	fmt.Fprintf(s.out, "    queued=%d fetching=%t remaining~%d\n", st.QueueCount, st.IsFetching, st.TotalAvailable)
	if st.LastError != "" {
		fmt.Fprintf(s.out, "    last fetch error: %s\n", st.LastError)
	}
}

// promptOf extracts a "prompt" field from a question payload, falling back to
// the raw JSON.
func promptOf(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var withPrompt struct {
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(payload, &withPrompt); err == nil && withPrompt.Prompt != "" {
		return withPrompt.Prompt
	}
	if !json.Valid(payload) {
		return ""
	}
	return string(payload)
}
