package domain

import "time"

// Quiz holds the metadata an administrator authors for a quiz.
type Quiz struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	TimeLimit     int       `json:"timelimit"` // minutes
	QuestionCount int       `json:"questionCount"`
	Score         int       `json:"score"`
	ImagePath     string    `json:"imagePath"`
	Difficulty    int       `json:"difficulty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Question is a four-option MCQ owned by a quiz.
type Question struct {
	ID       string    `json:"id"`
	QuizID   string    `json:"quizId"`
	Question string    `json:"question"`
	Options  [4]string `json:"options"`
	Answer   string    `json:"answer"` // A-D
}

// Record projects the question onto the fields grading needs.
func (q Question) Record() QuestionRecord {
	return QuestionRecord{ID: q.ID, QuizID: q.QuizID, Question: q.Question, Answer: q.Answer}
}

// View hides the answer so the question can be served to quiz takers.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Question: q.Question, Options: q.Options[:]}
}

// QuestionRecord is the canonical grading view of a question.
type QuestionRecord struct {
	ID       string `json:"id"`
	QuizID   string `json:"quizId,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionView is what a quiz taker sees.
type QuestionView struct {
	ID       string   `json:"_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizData is the payload served when a user starts a quiz.
type QuizData struct {
	Title          string         `json:"title"`
	TotalQuestions int            `json:"totalQuestions"`
	Duration       int            `json:"duration"` // minutes
	Score          int            `json:"score"`
	Questions      []QuestionView `json:"questions"`
}

// AnswerEntry is one submitted answer. Entries keep the order in which
// question ids appeared in the submission.
type AnswerEntry struct {
	QuestionID  string
	OptionIndex int
}

// Answers is the ordered submission answer map.
type Answers []AnswerEntry

// IDs returns the question ids in submission order.
func (a Answers) IDs() []string {
	ids := make([]string, len(a))
	for i, entry := range a {
		ids[i] = entry.QuestionID
	}
	return ids
}

// Submission is one user's completed attempt at a quiz.
type Submission struct {
	UserName    string
	UserID      string
	QuizID      string
	Answers     Answers
	TimeSpent   int // seconds
	CompletedAt time.Time
}

// TopicCount is a (topic, count) pair produced by the classifier.
type TopicCount struct {
	Topic string
	Count int
}

// CategoryStat is the per-topic strength summary stored with a result.
type CategoryStat struct {
	Category   string  `json:"category"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	IsStrong   bool    `json:"isStrong"`
}

// AnalysisStatus records how much of the topic analysis succeeded.
type AnalysisStatus string

const (
	AnalysisComplete    AnalysisStatus = "complete"
	AnalysisPartial     AnalysisStatus = "partial"
	AnalysisFailed      AnalysisStatus = "failed"
	AnalysisUnavailable AnalysisStatus = "unavailable"
)

// ResultRecord is the persisted outcome of a submission.
type ResultRecord struct {
	ID                string         `json:"id"`
	QuizID            string         `json:"quizId"`
	UserID            string         `json:"userId"`
	UserName          string         `json:"username"`
	Score             int            `json:"score"`
	TotalScore        int            `json:"totalScore"`
	Percentage        float64        `json:"percentage"`
	CompletedAt       time.Time      `json:"completedAt"`
	TimeSpent         int            `json:"timeSpent"`
	AnalysisStatus    AnalysisStatus `json:"analysisStatus"`
	CategoryBreakdown []CategoryStat `json:"categoryBreakdown"`
}

// ResultSummary is a row of the per-quiz results listing.
type ResultSummary struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Score       int       `json:"score"`
	TotalScore  int       `json:"totalScore"`
	CompletedAt time.Time `json:"completedAt"`
	QuizTitle   string    `json:"quizTitle"`
}

// LeaderboardEntry is a snapshot-friendly view of one result on the board.
type LeaderboardEntry struct {
	ResultID    string    `json:"resultId"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Score       int       `json:"score"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completedAt"`
}

// Leaderboard captures the ordered standings for a quiz.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// TopicAnalysis is the classifier's view of the correct and incorrect sets.
// Partial is set when one side failed and contributes no topics.
type TopicAnalysis struct {
	Correct   []TopicCount
	Incorrect []TopicCount
	Partial   bool
}
