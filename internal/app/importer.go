package app

import (
	"fmt"
	"strconv"
	"strings"

	"quiz-analysis-service/internal/domain"
)

// Uploaded sheets arrive with several spellings for the same column.
var (
	questionKeys = []string{"question", "Question"}
	answerKeys   = []string{"answer", "Answer"}
	optionKeys   = [domain.OptionCount][]string{
		{"optionA", "Option A", "option A", "OptionA"},
		{"optionB", "Option B", "option B", "OptionB"},
		{"optionC", "Option C", "option C", "OptionC"},
		{"optionD", "Option D", "option D", "OptionD"},
	}
	optionFields = [domain.OptionCount]string{"optionA", "optionB", "optionC", "optionD"}
)

// NormalizeRows converts uploaded rows into canonical questions. Every bad
// row is reported; nothing is returned unless all rows are valid.
func NormalizeRows(rows []map[string]any) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(rows))
	var rowErrs []domain.RowError

	for i, row := range rows {
		q, errs := normalizeRow(i+1, row)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		questions = append(questions, q)
	}
	if len(rowErrs) > 0 {
		return nil, &domain.ImportError{Rows: rowErrs}
	}
	return questions, nil
}

func normalizeRow(n int, row map[string]any) (domain.Question, []domain.RowError) {
	var (
		q    domain.Question
		errs []domain.RowError
	)
	fail := func(field, reason string) {
		errs = append(errs, domain.RowError{Row: n, Field: field, Reason: reason})
	}

	text, err := lookupText(row, questionKeys)
	if err != nil {
		fail("question", err.Error())
	}
	q.Question = text

	for i, keys := range optionKeys {
		opt, err := lookupText(row, keys)
		if err != nil {
			fail(optionFields[i], err.Error())
		}
		q.Options[i] = opt
	}

	raw, err := lookupText(row, answerKeys)
	if err != nil {
		fail("answer", err.Error())
	} else if letter, ok := answerLetter(raw); ok {
		q.Answer = letter
	} else {
		fail("answer", fmt.Sprintf("%q is not one of A, B, C, D", raw))
	}
	return q, errs
}

// lookupText returns the first non-blank value stored under any of keys.
func lookupText(row map[string]any, keys []string) (string, error) {
	for _, key := range keys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		text, err := cellText(v)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("missing or blank")
}

func cellText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// answerLetter accepts "b", " B ", "Option B" and "optionB".
func answerLetter(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "OPTION"))
	if _, ok := domain.LetterIndex(s); ok {
		return s, true
	}
	return "", false
}
