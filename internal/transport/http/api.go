package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"quiz-analysis-service/internal/app"
	"quiz-analysis-service/internal/domain"
)

// API exposes quiz authoring, quiz taking and results over JSON.
type API struct {
	quizzes     *app.QuizService
	submissions *app.SubmissionService
	now         func() time.Time
}

func NewAPI(quizzes *app.QuizService, submissions *app.SubmissionService) *API {
	return &API{quizzes: quizzes, submissions: submissions, now: time.Now}
}

// Register mounts the API routes on r.
func (a *API) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quizzes", a.createQuiz).Methods(http.MethodPost)
	api.HandleFunc("/quizzes", a.listQuizzes).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{quizId}/questions", a.fetchQuestions).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{quizId}/results", a.listResults).Methods(http.MethodGet)
	api.HandleFunc("/submissions", a.submit).Methods(http.MethodPost)
	api.HandleFunc("/results/{resultId}", a.getResult).Methods(http.MethodGet)
}

func (a *API) createQuiz(w http.ResponseWriter, r *http.Request) {
	var draft app.QuizDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	quizID, err := a.quizzes.CreateQuiz(r.Context(), draft)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Quiz created", "quizId": quizID})
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quizzes": quizzes})
}

func (a *API) fetchQuestions(w http.ResponseWriter, r *http.Request) {
	data, err := a.quizzes.FetchQuestions(r.Context(), mux.Vars(r)["quizId"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quizData": data})
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.quizzes.ListResults(r.Context(), mux.Vars(r)["quizId"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quizResults": results})
}

func (a *API) getResult(w http.ResponseWriter, r *http.Request) {
	result, err := a.quizzes.GetResult(r.Context(), mux.Vars(r)["resultId"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "quizResult": result})
}

func (a *API) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission payload")
		return
	}
	sub, err := req.submission(a.now())
	if err != nil {
		writeFailure(w, err)
		return
	}
	outcome, err := a.submissions.Submit(r.Context(), sub)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"resultId":   outcome.ResultID,
		"score":      outcome.Score,
		"percentage": outcome.Percentage,
		"analysis":   outcome.Analysis,
	})
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	ErrMsg  string `json:"errMsg"`
}

// writeFailure maps domain errors onto status codes. Server-side failures
// keep their details in the log.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMalformedSubmission), errors.Is(err, domain.ErrInvalidQuestion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Classification service unavailable")
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Unknown server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, ErrMsg: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
