package app

import "quiz-analysis-service/internal/domain"

// StrongThreshold is the percentage at or above which a category is strong.
const StrongThreshold = 70.0

type topicTally struct {
	correct   int
	incorrect int
}

// MergeCategories folds the classifier's topic counts for the correct and
// incorrect sets into per-category statistics. Categories appear in order of
// first sighting, correct list first.
func MergeCategories(correct, incorrect []domain.TopicCount) []domain.CategoryStat {
	order := make([]string, 0, len(correct)+len(incorrect))
	tallies := make(map[string]*topicTally)

	tally := func(topic string) *topicTally {
		t, ok := tallies[topic]
		if !ok {
			t = &topicTally{}
			tallies[topic] = t
			order = append(order, topic)
		}
		return t
	}
	for _, tc := range correct {
		tally(tc.Topic).correct += tc.Count
	}
	for _, tc := range incorrect {
		tally(tc.Topic).incorrect += tc.Count
	}

	stats := make([]domain.CategoryStat, 0, len(order))
	for _, topic := range order {
		t := tallies[topic]
		total := t.correct + t.incorrect
		pct := percentOf(t.correct, total)
		stats = append(stats, domain.CategoryStat{
			Category:   topic,
			Correct:    t.correct,
			Total:      total,
			Percentage: pct,
			IsStrong:   pct >= StrongThreshold,
		})
	}
	return stats
}

// percentOf returns 100*part/whole, or 0 for an empty whole.
func percentOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
