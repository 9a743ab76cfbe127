package domain

import "fmt"

// answerLetterIndex maps an answer letter to its option index.
var answerLetterIndex = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}

// LetterIndex returns the option index for an answer letter.
func LetterIndex(letter string) (int, bool) {
	idx, ok := answerLetterIndex[letter]
	return idx, ok
}

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Validate checks the submission's answers before grading.
func (a Answers) Validate() error {
	seen := make(map[string]struct{}, len(a))
	for _, entry := range a {
		if entry.QuestionID == "" {
			return fmt.Errorf("%w: empty question id", ErrMalformedSubmission)
		}
		if _, dup := seen[entry.QuestionID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrMalformedSubmission, entry.QuestionID)
		}
		seen[entry.QuestionID] = struct{}{}
		if entry.OptionIndex < 0 || entry.OptionIndex >= OptionCount {
			return fmt.Errorf("%w: option index %d out of range for question %q", ErrMalformedSubmission, entry.OptionIndex, entry.QuestionID)
		}
	}
	return nil
}
