package relay

import (
	"context"

	"github.com/comigor/jargone-go/internal/dispatcher"
	"github.com/comigor/jargone-go/internal/history"
	"github.com/comigor/jargone-go/internal/logger"
)

// ProfileReader supplies defaults for fields a payload leaves empty.
type ProfileReader interface {
	Get(ctx context.Context) (history.Profile, error)
}

// Worker is the background side of a port: it turns a payload into a query,
// dispatches it once and encodes the outcome.
type Worker struct {
	explainer dispatcher.Explainer
	profiles  ProfileReader
}

// NewWorker returns a worker; profiles may be nil.
func NewWorker(explainer dispatcher.Explainer, profiles ProfileReader) *Worker {
	return &Worker{explainer: explainer, profiles: profiles}
}

func (w *Worker) Handle(ctx context.Context, p Payload) string {
	q := w.Query(ctx, p)
	body, err := w.explainer.Explain(ctx, q)
	if err != nil {
		logger.L.Warn("dispatch failed", "error", err)
	}
	return Encode(body, err)
}

// Query builds the dispatcher query for p, filling empty fields from the
// stored profile.
func (w *Worker) Query(ctx context.Context, p Payload) dispatcher.Query {
	q := dispatcher.Query{
		Text:              p.Question,
		ExplanationLevel:  p.ExplanationLevel,
		Department:        p.Department,
		UserRole:          p.UserRole,
		AdditionalContext: p.AdditionalContext,
	}
	if w.profiles == nil {
		return q
	}
	prof, err := w.profiles.Get(ctx)
	if err != nil {
		logger.L.Warn("profile unavailable; sending query without defaults", "error", err)
		return q
	}
	if q.ExplanationLevel == "" {
		q.ExplanationLevel = string(prof.ExplanationLevel)
	}
	if q.UserRole == "" {
		q.UserRole = prof.UserRole
	}
	if q.AdditionalContext == "" {
		q.AdditionalContext = prof.DefaultContext
	}
	return q
}
