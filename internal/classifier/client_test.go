package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-analysis-service/internal/domain"
)

// fakeService mimics the topic classification service. Question sets whose
// first question text is listed in fail get a 500.
type fakeService struct {
	probeStatus int
	fail        map[string]bool
	reply       func(records []domain.QuestionRecord) string
	delay       time.Duration

	probes atomic.Int32
	mu     sync.Mutex
	posted [][]domain.QuestionRecord
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		f.probes.Add(1)
		status := f.probeStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	case r.Method == http.MethodPost && r.URL.Path == analysePath:
		body, _ := io.ReadAll(r.Body)
		var records []domain.QuestionRecord
		if err := json.Unmarshal(body, &records); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.posted = append(f.posted, records)
		f.mu.Unlock()
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		if len(records) > 0 && f.fail[records[0].Question] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.reply(records))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeService) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posted)
}

func topicsReply(topic string) func([]domain.QuestionRecord) string {
	return func(records []domain.QuestionRecord) string {
		out, _ := json.Marshal(map[string]any{
			"success":  true,
			"analysis": map[string]any{"topics": [][]any{{topic, len(records)}}},
		})
		return string(out)
	}
}

var (
	correctSet   = []domain.QuestionRecord{{ID: "q1", Question: "right one", Answer: "A"}, {ID: "q2", Question: "right two", Answer: "B"}}
	incorrectSet = []domain.QuestionRecord{{ID: "q3", Question: "wrong one", Answer: "C"}}
)

func newTestClient(t *testing.T, f *fakeService, cache LivenessCache) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, ProbeTimeout: time.Second, LivenessTTL: time.Minute}, cache)
}

func TestClassifyBothSides(t *testing.T) {
	f := &fakeService{reply: func(records []domain.QuestionRecord) string {
		if records[0].Question == "right one" {
			return `{"success":true,"analysis":{"topics":[["Math",2]]}}`
		}
		return `{"success":true,"analysis":{"topics":[["History",1]]}}`
	}}
	client := newTestClient(t, f, nil)

	analysis, err := client.Classify(context.Background(), correctSet, incorrectSet)
	require.NoError(t, err)
	assert.False(t, analysis.Partial)
	assert.Equal(t, []domain.TopicCount{{Topic: "Math", Count: 2}}, analysis.Correct)
	assert.Equal(t, []domain.TopicCount{{Topic: "History", Count: 1}}, analysis.Incorrect)
	assert.Equal(t, int32(1), f.probes.Load())
	assert.Equal(t, 2, f.postCount())
}

func TestClassifyOneSideFails(t *testing.T) {
	f := &fakeService{fail: map[string]bool{"wrong one": true}, reply: topicsReply("Math")}
	client := newTestClient(t, f, nil)

	analysis, err := client.Classify(context.Background(), correctSet, incorrectSet)
	require.NoError(t, err)
	assert.True(t, analysis.Partial)
	assert.Equal(t, []domain.TopicCount{{Topic: "Math", Count: 2}}, analysis.Correct)
	assert.NotNil(t, analysis.Incorrect)
	assert.Empty(t, analysis.Incorrect)
}

func TestClassifyBothSidesFail(t *testing.T) {
	f := &fakeService{fail: map[string]bool{"wrong one": true, "right one": true}, reply: topicsReply("Math")}
	client := newTestClient(t, f, nil)

	_, err := client.Classify(context.Background(), correctSet, incorrectSet)
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
}

func TestClassifyProbeFailureSkipsAnalysis(t *testing.T) {
	f := &fakeService{probeStatus: http.StatusServiceUnavailable, reply: topicsReply("Math")}
	client := newTestClient(t, f, nil)

	_, err := client.Classify(context.Background(), correctSet, incorrectSet)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "status 503")
	assert.Zero(t, f.postCount())
}

func TestClassifyUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url, ProbeTimeout: 500 * time.Millisecond}, nil)
	_, err := client.Classify(context.Background(), correctSet, incorrectSet)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestClassifyWithoutBaseURL(t *testing.T) {
	client := NewClient(Config{}, nil)
	_, err := client.Classify(context.Background(), correctSet, incorrectSet)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestClassifySkipsEmptySets(t *testing.T) {
	f := &fakeService{reply: topicsReply("Math")}
	client := newTestClient(t, f, nil)

	analysis, err := client.Classify(context.Background(), correctSet, []domain.QuestionRecord{})
	require.NoError(t, err)
	assert.False(t, analysis.Partial)
	assert.Empty(t, analysis.Incorrect)
	assert.Equal(t, 1, f.postCount())
}

func TestClassifyInvalidResponseCountsAsFailure(t *testing.T) {
	f := &fakeService{reply: func(records []domain.QuestionRecord) string {
		if records[0].Question == "right one" {
			return `{"success":true,"analysis":{"topics":[["Math","two"]]}}`
		}
		return `{"success":true,"analysis":{"topics":[["History",1]]}}`
	}}
	client := newTestClient(t, f, nil)

	analysis, err := client.Classify(context.Background(), correctSet, incorrectSet)
	require.NoError(t, err)
	assert.True(t, analysis.Partial)
	assert.Empty(t, analysis.Correct)
	assert.Equal(t, []domain.TopicCount{{Topic: "History", Count: 1}}, analysis.Incorrect)
}

func TestClassifyHonoursContext(t *testing.T) {
	f := &fakeService{reply: topicsReply("Math"), delay: time.Second}
	client := newTestClient(t, f, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := client.Classify(ctx, correctSet, incorrectSet)
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

type fakeLiveness struct {
	alive  bool
	marked time.Duration
}

func (l *fakeLiveness) Alive(context.Context) bool { return l.alive }

func (l *fakeLiveness) MarkAlive(_ context.Context, ttl time.Duration) {
	l.alive = true
	l.marked = ttl
}

func TestProbeUsesLivenessCache(t *testing.T) {
	f := &fakeService{reply: topicsReply("Math")}
	cache := &fakeLiveness{}
	client := newTestClient(t, f, cache)

	require.NoError(t, client.Probe(context.Background()))
	require.NoError(t, client.Probe(context.Background()))
	assert.Equal(t, int32(1), f.probes.Load())
	assert.Equal(t, time.Minute, cache.marked)
}

func TestProbeFailureIsNotCached(t *testing.T) {
	f := &fakeService{probeStatus: http.StatusInternalServerError}
	cache := &fakeLiveness{}
	client := newTestClient(t, f, cache)

	assert.ErrorIs(t, client.Probe(context.Background()), domain.ErrServiceUnavailable)
	assert.ErrorIs(t, client.Probe(context.Background()), domain.ErrServiceUnavailable)
	assert.Equal(t, int32(2), f.probes.Load())
	assert.False(t, cache.alive)
}

func TestClassifyPostsOnlyQuestionFields(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		_, _ = io.WriteString(w, `{"success":true,"analysis":{"topics":[]}}`)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, ProbeTimeout: time.Second}, nil)

	correct := []domain.QuestionRecord{{ID: "q1", QuizID: "quiz-1", Question: "right one", Answer: "A"}}
	_, err := client.Classify(context.Background(), correct, []domain.QuestionRecord{})
	require.NoError(t, err)

	require.Len(t, bodies, 1)
	assert.JSONEq(t, `[{"id":"q1","question":"right one","answer":"A"}]`, bodies[0])
}
