package api

import (
	"context"
	"net/http"

	"github.com/dskvich/study-bot-api/pkg/api/middleware"
)

type QuestionRepository interface {
	QuestionLister
	QuestionSearcher
	QuestionCreator
	QuestionUpdater
	QuestionDeleter
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// NewRouter mounts the question API under /api. docs, when non-nil, is
// mounted at /api-docs.
func NewRouter(questions QuestionRepository, db Pinger, docs http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", Health(db))
	mux.HandleFunc("GET /api/questions/all", GetAllQuestions(questions))
	mux.HandleFunc("GET /api/questions", SearchQuestions(questions))
	mux.HandleFunc("POST /api/questions", CreateQuestion(questions))
	mux.HandleFunc("PUT /api/questions/{id}", UpdateQuestion(questions))
	mux.HandleFunc("DELETE /api/questions/{id}", DeleteQuestion(questions))

	if docs != nil {
		mux.Handle("/api-docs", docs)
		mux.Handle("/api-docs/", docs)
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recover,
	)
}
