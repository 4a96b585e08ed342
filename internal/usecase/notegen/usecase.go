package notegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"checkmate-agent/internal/agents"
	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

var (
	ErrNoContent   = errors.New("either text or image must be provided")
	ErrBothContent = errors.New("only one of text or image can be provided")
)

const translationTarget = "cn"

// ReportRunner is the slice of the agent loop the note generator needs.
type ReportRunner interface {
	GenerateReport(ctx context.Context, content entity.Message, planningEnabled bool) *agents.ReportOutcome
}

// UseCase orchestrates one community-note generation end to end: run the
// agent session, condense the passing report into a short note, translate it,
// strip the sender's own links from the citations and persist the call record.
type UseCase struct {
	runners         map[string]ReportRunner
	defaultProvider string
	summarizer      output.SummarizerPort
	translator      output.TranslatorPort
	store           output.StorePort
	logger          output.LoggerPort
	environment     string
}

var _ input.NoteGenerator = (*UseCase)(nil)

func NewUseCase(
	runners map[string]ReportRunner,
	defaultProvider string,
	summarizer output.SummarizerPort,
	translator output.TranslatorPort,
	store output.StorePort,
	logger output.LoggerPort,
	environment string,
) *UseCase {
	return &UseCase{
		runners:         runners,
		defaultProvider: defaultProvider,
		summarizer:      summarizer,
		translator:      translator,
		store:           store,
		logger:          logger,
		environment:     environment,
	}
}

func (u *UseCase) GenerateNote(ctx context.Context, req input.NoteRequest) (*entity.NoteVerdict, error) {
	if req.Text == "" && req.ImageURL == "" {
		return nil, ErrNoContent
	}
	if req.Text != "" && req.ImageURL != "" {
		return nil, ErrBothContent
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := u.logger.WithField("requestId", requestID)

	provider := req.Provider
	if provider == "" {
		provider = u.defaultProvider
	}
	runner, ok := u.runners[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	started := time.Now()
	outcome := runner.GenerateReport(ctx, startingContent(req), req.AddPlanning)
	agentElapsed := time.Since(started).Seconds()

	verdict := &entity.NoteVerdict{
		RequestID:      requestID,
		Success:        outcome.Success,
		AgentTrace:     outcome.Trace,
		CostTrace:      outcome.CostTrace,
		TotalCost:      outcome.TotalCost,
		AgentTimeTaken: agentElapsed,
	}

	if !outcome.Success {
		log.Warn("Agent session failed", "error", outcome.Err, "turns", outcome.Turns)
		verdict.ErrorMessage = outcome.Err
		verdict.TotalTimeTaken = time.Since(started).Seconds()
		u.persist(ctx, req, provider, verdict, log)
		return verdict, nil
	}

	report := outcome.Report
	verdict.Report = report.Report
	verdict.IsControversial = report.IsControversial
	verdict.IsVideo = report.IsVideo
	verdict.IsAccessBlocked = report.IsAccessBlocked
	verdict.Links = RemoveUserLinks(report.Sources, req.Text)

	note, err := u.summarizer.Summarize(ctx, report.Report, req.Text, req.ImageURL, req.Caption)
	if err != nil {
		log.Error("Summarization failed", "error", err.Error())
		verdict.Success = false
		verdict.ErrorMessage = fmt.Sprintf("summarization failed: %v", err)
		verdict.TotalTimeTaken = time.Since(started).Seconds()
		u.persist(ctx, req, provider, verdict, log)
		return verdict, nil
	}
	verdict.EN = note

	translated, err := u.translator.Translate(ctx, note, translationTarget)
	if err != nil {
		// A missing translation should not sink an otherwise good note.
		log.Warn("Translation failed, falling back to English", "error", err.Error())
		translated = note
	}
	verdict.CN = translated

	verdict.TotalTimeTaken = time.Since(started).Seconds()
	u.persist(ctx, req, provider, verdict, log)
	return verdict, nil
}

func startingContent(req input.NoteRequest) entity.Message {
	if req.ImageURL != "" {
		content := "Please assess the following image."
		if req.Caption != "" {
			content = fmt.Sprintf("Please assess the following image, which was sent with this caption: %s", req.Caption)
		}
		return entity.Message{Role: entity.RoleUser, Content: content, ImageURL: req.ImageURL}
	}
	return entity.Message{
		Role:    entity.RoleUser,
		Content: fmt.Sprintf("Please assess the following content sent in by a user:\n\n%s", req.Text),
	}
}

// persist is best effort. A storage outage must not fail the request.
func (u *UseCase) persist(ctx context.Context, req input.NoteRequest, provider string, verdict *entity.NoteVerdict, log output.LoggerPort) {
	if u.store == nil {
		return
	}
	record := entity.AgentCallRecord{
		RequestID:   verdict.RequestID,
		Success:     verdict.Success,
		EN:          verdict.EN,
		CN:          verdict.CN,
		Links:       verdict.Links,
		Report:      verdict.Report,
		Error:       verdict.ErrorMessage,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		Caption:     req.Caption,
		Provider:    provider,
		Environment: u.environment,
		Timestamp:   time.Now().UTC(),
		AgentTrace:  verdict.AgentTrace,
		CostTrace:   verdict.CostTrace,
	}
	if err := u.store.Save(ctx, record); err != nil {
		log.Error("Failed to persist agent call record", "error", err.Error())
	}
}
