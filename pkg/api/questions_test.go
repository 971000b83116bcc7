package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dskvich/study-bot-api/pkg/domain"
)

// fakeRepository is an in-memory QuestionRepository.
type fakeRepository struct {
	questions []domain.Question
	nextID    int64
	err       error
	keywords  []string
}

func (f *fakeRepository) GetAll(ctx context.Context) ([]domain.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Question{}, f.questions...), nil
}

func (f *fakeRepository) Search(ctx context.Context, keyword string) ([]domain.Question, error) {
	f.keywords = append(f.keywords, keyword)
	if f.err != nil {
		return nil, f.err
	}
	found := []domain.Question{}
	for _, q := range f.questions {
		if strings.Contains(q.QuestionText, keyword) || strings.Contains(q.AnswerText, keyword) {
			found = append(found, q)
		}
	}
	return found, nil
}

func (f *fakeRepository) Create(ctx context.Context, questionText, answerText string) (*domain.Question, error) {
	q := domain.NewQuestion(questionText, answerText)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	q.ID = f.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	f.questions = append(f.questions, *q)
	return q, nil
}

func (f *fakeRepository) Update(ctx context.Context, id int64, questionText, answerText string) (bool, error) {
	if err := domain.NewQuestion(questionText, answerText).Validate(); err != nil {
		return false, err
	}
	if f.err != nil {
		return false, f.err
	}
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions[i].QuestionText = questionText
			f.questions[i].AnswerText = answerText
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func seedRepository(t *testing.T) *fakeRepository {
	t.Helper()
	repo := &fakeRepository{}
	for _, qa := range [][2]string{{"What is 2+2?", "4"}, {"Capital of France?", "Paris"}} {
		if _, err := repo.Create(context.Background(), qa[0], qa[1]); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return repo
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body messageResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode message body: %v", err)
	}
	return body.Message
}

func TestHandleGetAllQuestions(t *testing.T) {
	repo := seedRepository(t)

	w := httptest.NewRecorder()
	GetAllQuestions(repo)(w, httptest.NewRequest("GET", "/api/questions/all", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var questions []questionResponse
	if err := json.NewDecoder(w.Body).Decode(&questions); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].QuestionText != "What is 2+2?" || questions[0].AnswerText != "4" {
		t.Errorf("unexpected first question %+v", questions[0])
	}
}

func TestHandleGetAllQuestionsEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	GetAllQuestions(&fakeRepository{})(w, httptest.NewRequest("GET", "/api/questions/all", nil))

	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %q", w.Body.String())
	}
}

func TestHandleGetAllQuestionsStorageError(t *testing.T) {
	repo := &fakeRepository{err: errors.New("connection refused to 10.0.0.5")}

	w := httptest.NewRecorder()
	GetAllQuestions(repo)(w, httptest.NewRequest("GET", "/api/questions/all", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeMessage(t, w); msg != msgInternalError {
		t.Errorf("expected fixed message, got %q", msg)
	}
}

func TestHandleSearchQuestions(t *testing.T) {
	repo := seedRepository(t)

	w := httptest.NewRecorder()
	SearchQuestions(repo)(w, httptest.NewRequest("GET", "/api/questions?keyword=2%2B2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var questions []questionResponse
	json.NewDecoder(w.Body).Decode(&questions)
	if len(questions) != 1 || questions[0].QuestionText != "What is 2+2?" {
		t.Errorf("expected the 2+2 question, got %+v", questions)
	}
	if len(repo.keywords) != 1 || repo.keywords[0] != "2+2" {
		t.Errorf("expected keyword '2+2' passed through, got %v", repo.keywords)
	}
}

func TestHandleSearchQuestionsNoMatch(t *testing.T) {
	repo := seedRepository(t)

	w := httptest.NewRecorder()
	SearchQuestions(repo)(w, httptest.NewRequest("GET", "/api/questions?keyword=nonexistent-xyz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %q", w.Body.String())
	}
}

func TestHandleSearchQuestionsRequiresKeyword(t *testing.T) {
	for _, target := range []string{"/api/questions", "/api/questions?keyword=", "/api/questions?keyword=%20%20"} {
		repo := seedRepository(t)

		w := httptest.NewRecorder()
		SearchQuestions(repo)(w, httptest.NewRequest("GET", target, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
		if len(repo.keywords) != 0 {
			t.Errorf("%s: repository should not be queried", target)
		}
	}
}

func TestHandleSearchQuestionsStorageError(t *testing.T) {
	w := httptest.NewRecorder()
	SearchQuestions(&fakeRepository{err: errors.New("boom")})(w, httptest.NewRequest("GET", "/api/questions?keyword=x", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandleCreateQuestion(t *testing.T) {
	repo := &fakeRepository{}

	body := strings.NewReader(`{"questionText":"What is 2+2?","answerText":"4"}`)
	w := httptest.NewRecorder()
	CreateQuestion(repo)(w, httptest.NewRequest("POST", "/api/questions", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created questionResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("expected positive id, got %d", created.ID)
	}
	if created.QuestionText != "What is 2+2?" || created.AnswerText != "4" {
		t.Errorf("expected fields echoed, got %+v", created)
	}
	if len(repo.questions) != 1 {
		t.Errorf("expected 1 stored question, got %d", len(repo.questions))
	}
}

func TestHandleCreateQuestionValidation(t *testing.T) {
	for _, raw := range []string{
		`{"questionText":"","answerText":"4"}`,
		`{"questionText":"What is 2+2?"}`,
		`{}`,
	} {
		repo := &fakeRepository{}

		w := httptest.NewRecorder()
		CreateQuestion(repo)(w, httptest.NewRequest("POST", "/api/questions", strings.NewReader(raw)))

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", raw, w.Code)
		}
		if msg := decodeMessage(t, w); !strings.Contains(msg, "cannot be empty") {
			t.Errorf("%s: expected validation message, got %q", raw, msg)
		}
		if len(repo.questions) != 0 {
			t.Errorf("%s: expected nothing stored", raw)
		}
	}
}

func TestHandleCreateQuestionInvalidJSON(t *testing.T) {
	for _, raw := range []string{`not json`, `{"questionText":"a","answerText":"b"} {}`} {
		w := httptest.NewRecorder()
		CreateQuestion(&fakeRepository{})(w, httptest.NewRequest("POST", "/api/questions", strings.NewReader(raw)))

		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", raw, w.Code)
		}
	}
}

func TestHandleCreateQuestionStorageError(t *testing.T) {
	repo := &fakeRepository{err: errors.New("pq: relation does not exist")}

	body := strings.NewReader(`{"questionText":"q","answerText":"a"}`)
	w := httptest.NewRecorder()
	CreateQuestion(repo)(w, httptest.NewRequest("POST", "/api/questions", body))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "relation") {
		t.Error("storage error leaked to client")
	}
}

func TestHandleUpdateQuestion(t *testing.T) {
	repo := seedRepository(t)

	body := strings.NewReader(`{"questionText":"What is 3+3?","answerText":"6"}`)
	req := httptest.NewRequest("PUT", "/api/questions/1", body)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	UpdateQuestion(repo)(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if repo.questions[0].ID != 1 || repo.questions[0].AnswerText != "6" {
		t.Errorf("expected question 1 updated in place, got %+v", repo.questions[0])
	}
}

func TestHandleUpdateQuestionNotFound(t *testing.T) {
	repo := seedRepository(t)

	for i := 0; i < 2; i++ {
		body := strings.NewReader(`{"questionText":"q","answerText":"a"}`)
		req := httptest.NewRequest("PUT", "/api/questions/999", body)
		req.SetPathValue("id", "999")
		w := httptest.NewRecorder()
		UpdateQuestion(repo)(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if msg := decodeMessage(t, w); msg != msgQuestionNotFound {
			t.Errorf("expected not found message, got %q", msg)
		}
	}
	if repo.questions[0].QuestionText != "What is 2+2?" {
		t.Error("expected no side effects on existing rows")
	}
}

func TestHandleUpdateQuestionValidation(t *testing.T) {
	repo := seedRepository(t)

	req := httptest.NewRequest("PUT", "/api/questions/1", strings.NewReader(`{"questionText":"q","answerText":""}`))
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	UpdateQuestion(repo)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleUpdateQuestionInvalidID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest("PUT", "/api/questions/"+id, strings.NewReader(`{"questionText":"q","answerText":"a"}`))
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		UpdateQuestion(seedRepository(t))(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400, got %d", id, w.Code)
		}
	}
}

func TestHandleUpdateQuestionStorageError(t *testing.T) {
	req := httptest.NewRequest("PUT", "/api/questions/1", strings.NewReader(`{"questionText":"q","answerText":"a"}`))
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	UpdateQuestion(&fakeRepository{err: errors.New("boom")})(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandleDeleteQuestion(t *testing.T) {
	repo := seedRepository(t)

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("DELETE", "/api/questions/2", nil)
		req.SetPathValue("id", "2")
		w := httptest.NewRecorder()
		DeleteQuestion(repo)(w, req)
		codes = append(codes, w.Code)
	}

	if fmt.Sprint(codes) != fmt.Sprint([]int{http.StatusNoContent, http.StatusNotFound}) {
		t.Errorf("expected [204 404], got %v", codes)
	}
	if len(repo.questions) != 1 || repo.questions[0].ID != 1 {
		t.Errorf("expected only question 1 to remain, got %+v", repo.questions)
	}
}

func TestHandleDeleteQuestionInvalidID(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/questions/xyz", nil)
	req.SetPathValue("id", "xyz")
	w := httptest.NewRecorder()
	DeleteQuestion(seedRepository(t))(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleDeleteQuestionStorageError(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/questions/1", nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	DeleteQuestion(&fakeRepository{err: errors.New("boom")})(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
