package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tianzhicdev/dogetionary-sub002/internal/domain"
	"github.com/tianzhicdev/dogetionary-sub002/internal/prefetch"
	"github.com/tianzhicdev/dogetionary-sub002/internal/task"
)

// inlineSubmitter runs tasks on the calling goroutine so sessions are
// deterministic.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(ctx context.Context, t task.Task) error {
	return t.Execute(ctx)
}

// wordSource serves a fixed word list honouring exclusions. The first
// failures calls return an error.
type wordSource struct {
	mu       sync.Mutex
	words    []string
	failures int
	calls    int
}

func (s *wordSource) FetchBatch(_ context.Context, count int, exclude []string) (*domain.BatchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection refused")
	}

	skip := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		skip[w] = true
	}
	resp := &domain.BatchResponse{}
	for _, w := range s.words {
		if skip[w] {
			continue
		}
		resp.TotalAvailable++
		if len(resp.Questions) < count {
			resp.Questions = append(resp.Questions, domain.QuestionRecord{
				Word:     w,
				Source:   domain.SourceNew,
				Question: []byte(fmt.Sprintf(`{"prompt":"define %s"}`, w)),
			})
		}
	}
	resp.HasMore = resp.TotalAvailable > len(resp.Questions)
	return resp, nil
}

func runSession(t *testing.T, src *wordSource, input string) string {
	t.Helper()

	queue := prefetch.NewQueue(src, prefetch.WithSubmitter(inlineSubmitter{}))
	var out bytes.Buffer
	require.NoError(t, newSession(queue, src, strings.NewReader(input), &out).Run(context.Background()))
	return out.String()
}

func TestSessionQuit(t *testing.T) {
	out := runSession(t, &wordSource{words: []string{"w0", "w1", "w2", "w3"}}, "\n\nq\n")

	assert.Contains(t, out, "#1  w0  (new)")
	assert.Contains(t, out, "define w0")
	assert.Contains(t, out, "#3  w2  (new)")
	assert.NotContains(t, out, "#4")
	assert.Contains(t, out, "Reviewed 3.")
}

func TestSessionRunsOutOfQuestions(t *testing.T) {
	out := runSession(t, &wordSource{words: []string{"w0", "w1", "w2", "w3"}}, strings.Repeat("\n", 10))

	assert.Contains(t, out, "#4  w3  (new)")
	assert.Contains(t, out, "No more questions. Reviewed 4.")
}

func TestSessionEndOfInput(t *testing.T) {
	out := runSession(t, &wordSource{words: []string{"w0", "w1"}}, "")

	assert.Contains(t, out, "#1  w0")
	assert.NotContains(t, out, "#2")
}

func TestSessionRefresh(t *testing.T) {
	out := runSession(t, &wordSource{words: []string{"w0", "w1", "w2"}}, "r\nq\n")

	assert.Contains(t, out, "#1  w0")
	assert.Contains(t, out, "#2  w0")
}

func TestSessionFallsBackToDirectFetch(t *testing.T) {
	src := &wordSource{words: []string{"w0"}, failures: 1}
	out := runSession(t, src, "q\n")

	assert.Contains(t, out, "#1  w0")
	assert.Contains(t, out, "last fetch error: connection refused")
	assert.Equal(t, 2, src.calls)
}

func TestPromptOf(t *testing.T) {
	assert.Equal(t, "", promptOf(nil))
	assert.Equal(t, "define w0", promptOf([]byte(`{"prompt":"define w0"}`)))
	assert.Equal(t, `{"choices":["a"]}`, promptOf([]byte(`{"choices":["a"]}`)))
	assert.Equal(t, "", promptOf([]byte(`{"broken`)))
}
