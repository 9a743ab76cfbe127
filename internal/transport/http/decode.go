package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"quiz-analysis-service/internal/domain"
)

type submitRequest struct {
	Username    string          `json:"username"`
	NumberID    flexString      `json:"numberId"`
	QuizID      string          `json:"quizId"`
	Answers     json.RawMessage `json:"answers"`
	TimeSpent   int             `json:"timeSpent"`
	CompletedAt string          `json:"completedAt"`
}

func (r submitRequest) submission(now time.Time) (domain.Submission, error) {
	answers, err := decodeAnswers(r.Answers)
	if err != nil {
		return domain.Submission{}, err
	}
	completedAt := now
	if r.CompletedAt != "" {
		completedAt, err = time.Parse(time.RFC3339, r.CompletedAt)
		if err != nil {
			return domain.Submission{}, fmt.Errorf("%w: completedAt: %v", domain.ErrMalformedSubmission, err)
		}
	}
	return domain.Submission{
		UserName:    r.Username,
		UserID:      string(r.NumberID),
		QuizID:      r.QuizID,
		Answers:     answers,
		TimeSpent:   r.TimeSpent,
		CompletedAt: completedAt.UTC(),
	}, nil
}

// decodeAnswers reads the {questionId: optionIndex} object keeping key order,
// which grading depends on.
func decodeAnswers(raw json.RawMessage) (domain.Answers, error) {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: answers: %s", domain.ErrMalformedSubmission, fmt.Sprintf(format, args...))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, malformed("missing")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed("%v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, malformed("expected an object")
	}

	answers := domain.Answers{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, malformed("%v", err)
		}
		key := keyTok.(string)

		valueTok, err := dec.Token()
		if err != nil {
			return nil, malformed("question %q: %v", key, err)
		}
		value, ok := valueTok.(json.Number)
		if !ok {
			return nil, malformed("question %q: option index must be a number, got %v", key, valueTok)
		}
		idx, err := strconv.Atoi(value.String())
		if err != nil {
			return nil, malformed("question %q: option index %q is not an integer", key, value)
		}
		answers = append(answers, domain.AnswerEntry{QuestionID: key, OptionIndex: idx})
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed("%v", err)
	}
	return answers, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = flexString(num.String())
	return nil
}
