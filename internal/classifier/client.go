package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"

	"quiz-analysis-service/internal/domain"
)

const analysePath = "/api/quiz/analyse-answers"

// LivenessCache remembers a successful probe for a while so that busy
// servers do not probe the classifier on every submission.
type LivenessCache interface {
	Alive(ctx context.Context) bool
	MarkAlive(ctx context.Context, ttl time.Duration)
}

// Config controls the outbound calls to the topic classification service.
type Config struct {
	BaseURL      string
	Timeout      time.Duration // per classification call
	ProbeTimeout time.Duration
	LivenessTTL  time.Duration // only used with a LivenessCache
}

// Client talks to the external topic classification service. It never
// retries; callers decide what to do with failures.
type Client struct {
	base         string
	http         *fasthttp.Client
	timeout      time.Duration
	probeTimeout time.Duration
	livenessTTL  time.Duration
	cache        LivenessCache
}

// NewClient builds a client. cache may be nil.
func NewClient(cfg Config, cache LivenessCache) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	return &Client{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		http:         &fasthttp.Client{Name: "quiz-analysis-service"},
		timeout:      cfg.Timeout,
		probeTimeout: cfg.ProbeTimeout,
		livenessTTL:  cfg.LivenessTTL,
		cache:        cache,
	}
}

// Probe checks that the classifier answers GET {base}/ with a 2xx status.
func (c *Client) Probe(ctx context.Context) error {
	if c.base == "" {
		return fmt.Errorf("%w: classifier url not configured", domain.ErrServiceUnavailable)
	}
	if c.cache != nil && c.cache.Alive(ctx) {
		return nil
	}

	status, _, err := c.do(ctx, fasthttp.MethodGet, c.base+"/", nil, c.probeTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}
	if !isSuccess(status) {
		return fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, &ErrUnexpectedStatus{Status: status})
	}
	if c.cache != nil && c.livenessTTL > 0 {
		c.cache.MarkAlive(ctx, c.livenessTTL)
	}
	return nil
}

// Classify probes the service, then classifies both sets concurrently.
// One failing side yields an empty, partial analysis; both failing is
// domain.ErrAnalysisFailed.
func (c *Client) Classify(ctx context.Context, correct, incorrect []domain.QuestionRecord) (domain.TopicAnalysis, error) {
	if err := c.Probe(ctx); err != nil {
		return domain.TopicAnalysis{}, err
	}

	var (
		g                              errgroup.Group
		correctTopics, incorrectTopics []domain.TopicCount
		correctErr, incorrectErr       error
	)
	g.Go(func() error {
		correctTopics, correctErr = c.classifySet(ctx, correct)
		return nil
	})
	g.Go(func() error {
		incorrectTopics, incorrectErr = c.classifySet(ctx, incorrect)
		return nil
	})
	_ = g.Wait()

	switch {
	case correctErr != nil && incorrectErr != nil:
		return domain.TopicAnalysis{}, fmt.Errorf("%w: correct set: %v; incorrect set: %v", domain.ErrAnalysisFailed, correctErr, incorrectErr)
	case correctErr != nil:
		return domain.TopicAnalysis{Correct: []domain.TopicCount{}, Incorrect: incorrectTopics, Partial: true}, nil
	case incorrectErr != nil:
		return domain.TopicAnalysis{Correct: correctTopics, Incorrect: []domain.TopicCount{}, Partial: true}, nil
	}
	return domain.TopicAnalysis{Correct: correctTopics, Incorrect: incorrectTopics}, nil
}

// questionItem is one element of the analyse-answers request body.
type questionItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// classifySet posts one question set. An empty set is not sent.
func (c *Client) classifySet(ctx context.Context, records []domain.QuestionRecord) ([]domain.TopicCount, error) {
	if len(records) == 0 {
		return []domain.TopicCount{}, nil
	}
	items := make([]questionItem, len(records))
	for i, r := range records {
		items[i] = questionItem{ID: r.ID, Question: r.Question, Answer: r.Answer}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal question set: %w", err)
	}

	status, respBody, err := c.do(ctx, fasthttp.MethodPost, c.base+analysePath, body, c.timeout)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &ErrUnexpectedStatus{Status: status}
	}
	return decodeAnalysis(respBody)
}

type reply struct {
	status int
	body   []byte
	err    error
}

// do performs one request bounded by timeout and the context deadline. If the
// context ends first the request is abandoned and finishes in the background.
func (c *Client) do(ctx context.Context, method, url string, body []byte, timeout time.Duration) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	done := make(chan reply, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(method)
		if body != nil {
			req.Header.SetContentType("application/json")
			req.SetBody(body)
		}
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			done <- reply{err: err}
			return
		}
		done <- reply{
			status: resp.StatusCode(),
			body:   append([]byte(nil), resp.Body()...),
		}
	}()

	select {
	case r := <-done:
		return r.status, r.body, r.err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
