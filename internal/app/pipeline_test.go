package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

func answers(pairs ...any) domain.Answers {
	out := make(domain.Answers, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.AnswerEntry{QuestionID: pairs[i].(string), OptionIndex: pairs[i+1].(int)})
	}
	return out
}

func TestScoreComparesByPosition(t *testing.T) {
	records := []domain.QuestionRecord{
		{ID: "q1", Question: "first", Answer: "A"},
		{ID: "q2", Question: "second", Answer: "B"},
		{ID: "q3", Question: "third", Answer: "D"},
	}
	scored, err := app.Score(answers("q1", 0, "q2", 1, "q3", 2), records)
	require.NoError(t, err)

	assert.Equal(t, 2, scored.Score)
	assert.Equal(t, []domain.QuestionRecord{records[0], records[1]}, scored.Correct)
	assert.Equal(t, []domain.QuestionRecord{records[2]}, scored.Incorrect)
	assert.Equal(t, 3, scored.Graded())
}

func TestScoreEmptySubmission(t *testing.T) {
	scored, err := app.Score(domain.Answers{}, nil)
	require.NoError(t, err)
	assert.Zero(t, scored.Score)
	assert.NotNil(t, scored.Correct)
	assert.NotNil(t, scored.Incorrect)
	assert.Empty(t, scored.Correct)
	assert.Empty(t, scored.Incorrect)
}

func TestScoreUnknownAnswerLetterIsIncorrect(t *testing.T) {
	records := []domain.QuestionRecord{{ID: "q1", Answer: "E"}}
	scored, err := app.Score(answers("q1", 0), records)
	require.NoError(t, err)
	assert.Zero(t, scored.Score)
	assert.Len(t, scored.Incorrect, 1)
}

func TestScoreRejectsMissingRecords(t *testing.T) {
	_, err := app.Score(answers("q1", 0, "q2", 1), []domain.QuestionRecord{{ID: "q1", Answer: "A"}})
	assert.ErrorIs(t, err, domain.ErrMalformedSubmission)
}

func TestMergeCategories(t *testing.T) {
	stats := app.MergeCategories(
		[]domain.TopicCount{{Topic: "Math", Count: 3}, {Topic: "History", Count: 1}},
		[]domain.TopicCount{{Topic: "Math", Count: 1}, {Topic: "Art", Count: 2}},
	)

	require.Len(t, stats, 3)
	assert.Equal(t, domain.CategoryStat{Category: "Math", Correct: 3, Total: 4, Percentage: 75, IsStrong: true}, stats[0])
	assert.Equal(t, domain.CategoryStat{Category: "History", Correct: 1, Total: 1, Percentage: 100, IsStrong: true}, stats[1])
	assert.Equal(t, domain.CategoryStat{Category: "Art", Correct: 0, Total: 2, Percentage: 0, IsStrong: false}, stats[2])
}

func TestMergeCategoriesThresholdAndFractions(t *testing.T) {
	stats := app.MergeCategories(
		[]domain.TopicCount{{Topic: "Edge", Count: 7}, {Topic: "Third", Count: 1}},
		[]domain.TopicCount{{Topic: "Edge", Count: 3}, {Topic: "Third", Count: 2}},
	)

	require.Len(t, stats, 2)
	assert.Equal(t, 70.0, stats[0].Percentage)
	assert.True(t, stats[0].IsStrong)
	assert.InDelta(t, 33.333, stats[1].Percentage, 0.001)
	assert.False(t, stats[1].IsStrong)
}

func TestMergeCategoriesSumsRepeatedTopics(t *testing.T) {
	stats := app.MergeCategories(
		[]domain.TopicCount{{Topic: "Math", Count: 1}, {Topic: "Math", Count: 2}},
		nil,
	)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].Correct)
	assert.Equal(t, 3, stats[0].Total)
}

func TestMergeCategoriesZeroCounts(t *testing.T) {
	stats := app.MergeCategories([]domain.TopicCount{{Topic: "Empty", Count: 0}}, nil)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].Percentage)
	assert.False(t, stats[0].IsStrong)

	assert.Empty(t, app.MergeCategories(nil, nil))
}

func TestMergeCategoriesOrderAndSides(t *testing.T) {
	tc := func(topic string, n int) domain.TopicCount { return domain.TopicCount{Topic: topic, Count: n} }

	cases := []struct {
		name      string
		correct   []domain.TopicCount
		incorrect []domain.TopicCount
		want      []domain.CategoryStat
	}{
		{
			name:      "arrays",
			correct:   []domain.TopicCount{tc("Arrays", 3)},
			incorrect: []domain.TopicCount{tc("Arrays", 1)},
			want:      []domain.CategoryStat{{Category: "Arrays", Correct: 3, Total: 4, Percentage: 75, IsStrong: true}},
		},
		{
			name:      "loops",
			correct:   []domain.TopicCount{tc("Loops", 2)},
			incorrect: []domain.TopicCount{tc("Loops", 3)},
			want:      []domain.CategoryStat{{Category: "Loops", Correct: 2, Total: 5, Percentage: 40, IsStrong: false}},
		},
		{
			name:      "both topics",
			correct:   []domain.TopicCount{tc("Arrays", 3), tc("Loops", 2)},
			incorrect: []domain.TopicCount{tc("Loops", 3), tc("Arrays", 1)},
			want: []domain.CategoryStat{
				{Category: "Arrays", Correct: 3, Total: 4, Percentage: 75, IsStrong: true},
				{Category: "Loops", Correct: 2, Total: 5, Percentage: 40, IsStrong: false},
			},
		},
		{
			name:      "both topics permuted",
			correct:   []domain.TopicCount{tc("Loops", 2), tc("Arrays", 3)},
			incorrect: []domain.TopicCount{tc("Arrays", 1), tc("Loops", 3)},
			want: []domain.CategoryStat{
				{Category: "Arrays", Correct: 3, Total: 4, Percentage: 75, IsStrong: true},
				{Category: "Loops", Correct: 2, Total: 5, Percentage: 40, IsStrong: false},
			},
		},
		{
			name:      "sides swapped",
			correct:   []domain.TopicCount{tc("Arrays", 1), tc("Loops", 3)},
			incorrect: []domain.TopicCount{tc("Arrays", 3), tc("Loops", 2)},
			want: []domain.CategoryStat{
				{Category: "Arrays", Correct: 1, Total: 4, Percentage: 25, IsStrong: false},
				{Category: "Loops", Correct: 3, Total: 5, Percentage: 60, IsStrong: false},
			},
		},
		{
			name:      "sides swapped flips strong",
			correct:   []domain.TopicCount{tc("Sorting", 1)},
			incorrect: []domain.TopicCount{tc("Sorting", 4)},
			want:      []domain.CategoryStat{{Category: "Sorting", Correct: 1, Total: 5, Percentage: 20, IsStrong: false}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := app.MergeCategories(c.correct, c.incorrect)
			assert.ElementsMatch(t, c.want, got)

			swapped := app.MergeCategories(c.incorrect, c.correct)
			require.Len(t, swapped, len(got))
			byName := make(map[string]domain.CategoryStat, len(swapped))
			for _, s := range swapped {
				byName[s.Category] = s
			}
			for _, s := range got {
				inv := byName[s.Category]
				assert.Equal(t, s.Total, inv.Total, s.Category)
				assert.Equal(t, s.Total-s.Correct, inv.Correct, s.Category)
				if s.IsStrong || inv.IsStrong {
					assert.NotEqual(t, s.IsStrong, inv.IsStrong, s.Category)
				}
			}
		})
	}
}

func TestResultPercentage(t *testing.T) {
	assert.Equal(t, 67.0, app.ResultPercentage(2, 3))
	assert.Equal(t, 100.0, app.ResultPercentage(5, 5))
	assert.Equal(t, 0.0, app.ResultPercentage(0, 0))
	assert.Equal(t, 0.0, app.ResultPercentage(3, -1))
}

type orderedBank struct {
	records []domain.QuestionRecord
	err     error
}

func (b orderedBank) Resolve(_ context.Context, ids []string) ([]domain.QuestionRecord, error) {
	if b.err != nil {
		return nil, b.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.QuestionRecord
	for _, r := range b.records {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestResolverAlignsWithSubmissionOrder(t *testing.T) {
	bank := orderedBank{records: []domain.QuestionRecord{
		{ID: "q1", QuizID: "quiz-1", Answer: "A"},
		{ID: "q2", QuizID: "quiz-1", Answer: "B"},
		{ID: "q3", QuizID: "quiz-1", Answer: "C"},
	}}
	resolver := app.NewAnswerResolver(bank)

	records, err := resolver.Resolve(context.Background(), "quiz-1", answers("q3", 0, "q1", 0, "q2", 0))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "q3", records[0].ID)
	assert.Equal(t, "q1", records[1].ID)
	assert.Equal(t, "q2", records[2].ID)
}

func TestResolverUnknownQuestion(t *testing.T) {
	resolver := app.NewAnswerResolver(orderedBank{records: []domain.QuestionRecord{{ID: "q1", QuizID: "quiz-1", Answer: "A"}}})
	_, err := resolver.Resolve(context.Background(), "quiz-1", answers("q1", 0, "nope", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolverRejectsQuestionsFromOtherQuizzes(t *testing.T) {
	resolver := app.NewAnswerResolver(orderedBank{records: []domain.QuestionRecord{
		{ID: "q1", QuizID: "quiz-1", Answer: "A"},
		{ID: "x1", QuizID: "quiz-2", Answer: "B"},
	}})

	_, err := resolver.Resolve(context.Background(), "quiz-1", answers("q1", 0, "x1", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	records, err := resolver.Resolve(context.Background(), "quiz-2", answers("x1", 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"x1"}, []string{records[0].ID})
}

func TestResolverPropagatesBankErrors(t *testing.T) {
	boom := errors.New("bank down")
	resolver := app.NewAnswerResolver(orderedBank{err: boom})
	_, err := resolver.Resolve(context.Background(), "quiz-1", answers("q1", 0))
	assert.ErrorIs(t, err, boom)
}

func TestResolverEmptySubmission(t *testing.T) {
	resolver := app.NewAnswerResolver(orderedBank{err: errors.New("must not be called")})
	records, err := resolver.Resolve(context.Background(), "quiz-1", domain.Answers{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

type failingResults struct{ app.ResultStore }

func (failingResults) CreateResult(context.Context, domain.ResultRecord) error {
	return errors.New("disk full")
}

func TestAssemblerWrapsStoreFailures(t *testing.T) {
	assembler := app.NewResultAssembler(failingResults{})
	_, err := assembler.Assemble(context.Background(), app.ResultInput{QuizID: "quiz-1", Score: 1, TotalScore: 2})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestAssemblerRejectsScoreAboveTotal(t *testing.T) {
	assembler := app.NewResultAssembler(failingResults{})
	_, err := assembler.Assemble(context.Background(), app.ResultInput{QuizID: "quiz-1", Score: 3, TotalScore: 2})
	assert.ErrorIs(t, err, domain.ErrMalformedSubmission)
}
