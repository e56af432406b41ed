package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	ErrorCodeSafetyViolation = "output_safety_violation"
	ErrorCodeEmergency       = "emergency_detected"

	OutcomeAnswered         = "answered"
	OutcomeRefused          = "refused"
	OutcomeEmergency        = "emergency"
	OutcomeGenerationFailed = "generation_failed"

	defaultTopK = 3
)

type Options struct {
	MaxTurns         int
	MaxContextTokens int
	TopK             int
}

type Result struct {
	SessionID string                 `json:"session_id"`
	Response  string                 `json:"response"`
	Error     string                 `json:"error,omitempty"`
	Sources   []Document             `json:"sources"`
	Metadata  map[string]interface{} `json:"metadata"`
	Verdict   safety.Verdict         `json:"verdict"`
}

// Responder runs one consultation turn: retrieve, generate, validate, and
// record. A candidate response is only ever returned after it passed
// validation.
type Responder struct {
	logger    *logrus.Logger
	validator appSafety.Validator
	generator Generator
	retriever Retriever
	sessions  conversation.Repository
	locks     *sessionLocks
	opts      Options
}

func NewResponder(
	logger *logrus.Logger,
	validator appSafety.Validator,
	generator Generator,
	retriever Retriever,
	sessions conversation.Repository,
	opts Options,
) *Responder {
	if retriever == nil {
		retriever = NewNoopRetriever()
	}
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	return &Responder{
		logger:    logger,
		validator: validator,
		generator: generator,
		retriever: retriever,
		sessions:  sessions,
		locks:     newSessionLocks(),
		opts:      opts,
	}
}

// Consult holds the session's lock from load to save, so concurrent turns on
// one session are applied one after another.
func (r *Responder) Consult(ctx context.Context, sessionID, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if sessionID != "" {
		unlock := r.locks.Lock(sessionID)
		defer unlock()
	}

	history, err := r.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	docs, err := r.retriever.Retrieve(ctx, query, r.opts.TopK)
	if err != nil {
		r.logger.WithError(err).WithField("session_id", history.SessionID).Warn("retrieval failed, answering without sources")
		docs = []Document{}
	}

	candidate, err := r.generator.Generate(ctx, GenerateRequest{
		Query:     query,
		History:   history.ContextMessages(0),
		Documents: docs,
	})
	if err != nil {
		prometheus.ConsultationsTotal.WithLabelValues(OutcomeGenerationFailed).Inc()
		r.logger.WithError(err).WithField("session_id", history.SessionID).Error("response generation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	verdict := r.validator.Validate(ctx, query, candidate)
	result := r.buildResult(history.SessionID, candidate, docs, verdict)

	history.AddTurn(conversation.RoleUser, query, nil)
	history.AddTurn(conversation.RoleAssistant, result.Response, map[string]interface{}{
		"safety_level": verdict.Level.String(),
	})
	if err := r.sessions.Save(ctx, history); err != nil {
		r.logger.WithError(err).WithField("session_id", history.SessionID).Warn("failed to persist session")
	}

	return result, nil
}

// Session returns the stored history for sessionID.
func (r *Responder) Session(ctx context.Context, sessionID string) (*conversation.History, error) {
	return r.sessions.Get(ctx, sessionID)
}

func (r *Responder) EndSession(ctx context.Context, sessionID string) error {
	unlock := r.locks.Lock(sessionID)
	defer unlock()
	if _, err := r.sessions.Get(ctx, sessionID); err != nil {
		return err
	}
	return r.sessions.Delete(ctx, sessionID)
}

func (r *Responder) session(ctx context.Context, sessionID string) (*conversation.History, error) {
	if sessionID != "" {
		h, err := r.sessions.Get(ctx, sessionID)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}
	h := conversation.NewHistory(sessionID, r.opts.MaxTurns, r.opts.MaxContextTokens)
	r.logger.WithField("session_id", h.SessionID).Info("created conversation session")
	return h, nil
}

func (r *Responder) buildResult(sessionID, candidate string, docs []Document, verdict safety.Verdict) *Result {
	metadata := map[string]interface{}{
		"model":        r.generator.Model(),
		"safety_level": verdict.Level.String(),
	}

	switch {
	case verdict.Level == safety.Emergency:
		prometheus.ConsultationsTotal.WithLabelValues(OutcomeEmergency).Inc()
		return &Result{
			SessionID: sessionID,
			Response:  verdict.Message,
			Error:     ErrorCodeEmergency,
			Sources:   []Document{},
			Metadata:  metadata,
			Verdict:   verdict,
		}
	case !verdict.Passed():
		prometheus.ConsultationsTotal.WithLabelValues(OutcomeRefused).Inc()
		return &Result{
			SessionID: sessionID,
			Response:  appSafety.RefusalMessage,
			Error:     ErrorCodeSafetyViolation,
			Sources:   []Document{},
			Metadata:  metadata,
			Verdict:   verdict,
		}
	}

	prometheus.ConsultationsTotal.WithLabelValues(OutcomeAnswered).Inc()
	metadata["safety_validated"] = true
	metadata["retrieved_docs_count"] = len(docs)

	response := candidate
	if len(verdict.Warnings) > 0 {
		response += "\n\n" + strings.Join(verdict.Warnings, "\n")
	}
	return &Result{
		SessionID: sessionID,
		Response:  response,
		Sources:   docs,
		Metadata:  metadata,
		Verdict:   verdict,
	}
}
