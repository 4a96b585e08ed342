package notegen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkmate-agent/internal/agents"
	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                 {}
func (nopLogger) Info(msg string, args ...any)                  {}
func (nopLogger) Warn(msg string, args ...any)                  {}
func (nopLogger) Error(msg string, args ...any)                 {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

type fakeRunner struct {
	outcome    *agents.ReportOutcome
	gotContent entity.Message
	gotPlan    bool
}

func (f *fakeRunner) GenerateReport(ctx context.Context, content entity.Message, planningEnabled bool) *agents.ReportOutcome {
	f.gotContent = content
	f.gotPlan = planningEnabled
	return f.outcome
}

type fakeSummarizer struct {
	note string
	err  error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, report, inputText, inputImageURL, inputCaption string) (string, error) {
	return f.note, f.err
}

type fakeTranslator struct {
	out string
	err error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return f.out, f.err
}

type fakeStore struct {
	records []entity.AgentCallRecord
	err     error
}

func (f *fakeStore) Save(ctx context.Context, record entity.AgentCallRecord) error {
	f.records = append(f.records, record)
	return f.err
}

func passingOutcome(report entity.SubmittedReport) *agents.ReportOutcome {
	return &agents.ReportOutcome{
		Success:   true,
		Report:    &report,
		Review:    &entity.ReviewResult{Feedback: "ok", PassedReview: true},
		TotalCost: 0.01,
	}
}

func newTestUseCase(runner ReportRunner, summarizer output.SummarizerPort, translator output.TranslatorPort, store output.StorePort) *UseCase {
	return NewUseCase(
		map[string]ReportRunner{"openai": runner},
		"openai",
		summarizer,
		translator,
		store,
		nopLogger{},
		"test",
	)
}

func TestGenerateNoteRejectsEmptyAndDoubleContent(t *testing.T) {
	uc := newTestUseCase(&fakeRunner{}, &fakeSummarizer{}, &fakeTranslator{}, &fakeStore{})

	_, err := uc.GenerateNote(context.Background(), input.NoteRequest{})
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = uc.GenerateNote(context.Background(), input.NoteRequest{
		Text:     "hello",
		ImageURL: "https://example.com/img.jpg",
	})
	assert.ErrorIs(t, err, ErrBothContent)
}

func TestGenerateNoteUnknownProvider(t *testing.T) {
	uc := newTestUseCase(&fakeRunner{}, &fakeSummarizer{}, &fakeTranslator{}, &fakeStore{})

	_, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x", Provider: "mistral"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral")
}

func TestGenerateNoteHappyPath(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{
		Report:  "The message is a confirmed phishing attempt.",
		Sources: []string{"https://www.police.gov.sg/advisory", "https://scam-site.example.com/"},
	})}
	store := &fakeStore{}
	uc := newTestUseCase(runner,
		&fakeSummarizer{note: "🚨 This is a scam. Do not click the link."},
		&fakeTranslator{out: "🚨 这是一个骗局。请勿点击链接。"},
		store,
	)

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{
		Text:        "Won a prize! Claim at https://scam-site.example.com",
		AddPlanning: true,
		RequestID:   "req-1",
	})
	require.NoError(t, err)

	assert.True(t, verdict.Success)
	assert.Equal(t, "req-1", verdict.RequestID)
	assert.Equal(t, "🚨 This is a scam. Do not click the link.", verdict.EN)
	assert.Equal(t, "🚨 这是一个骗局。请勿点击链接。", verdict.CN)
	// The sender's own link is stripped from citations.
	assert.Equal(t, []string{"https://www.police.gov.sg/advisory"}, verdict.Links)
	assert.True(t, runner.gotPlan)
	assert.Equal(t, entity.RoleUser, runner.gotContent.Role)

	require.Len(t, store.records, 1)
	assert.Equal(t, "req-1", store.records[0].RequestID)
	assert.Equal(t, "openai", store.records[0].Provider)
}

func TestGenerateNoteAssignsRequestID(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{Report: "r"})}
	uc := newTestUseCase(runner, &fakeSummarizer{note: "✅ Legitimate."}, &fakeTranslator{out: "✅ 合法。"}, &fakeStore{})

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, verdict.RequestID)
}

func TestGenerateNoteImageContent(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{Report: "r"})}
	uc := newTestUseCase(runner, &fakeSummarizer{note: "⚠️ Misleading."}, &fakeTranslator{out: "⚠️"}, &fakeStore{})

	_, err := uc.GenerateNote(context.Background(), input.NoteRequest{
		ImageURL: "https://example.com/img.jpg",
		Caption:  "forwarded as received",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/img.jpg", runner.gotContent.ImageURL)
	assert.Contains(t, runner.gotContent.Content, "forwarded as received")
}

func TestGenerateNoteAgentFailureIsNotAnError(t *testing.T) {
	runner := &fakeRunner{outcome: &agents.ReportOutcome{
		Success: false,
		Err:     "Couldn't generate after 50 turns",
		Turns:   50,
	}}
	store := &fakeStore{}
	uc := newTestUseCase(runner, &fakeSummarizer{}, &fakeTranslator{}, store)

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x"})
	require.NoError(t, err)

	assert.False(t, verdict.Success)
	assert.Equal(t, "Couldn't generate after 50 turns", verdict.ErrorMessage)
	assert.Empty(t, verdict.EN)
	// Failures are persisted too.
	require.Len(t, store.records, 1)
	assert.False(t, store.records[0].Success)
}

func TestGenerateNoteTranslationFallsBackToEnglish(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{Report: "r"})}
	uc := newTestUseCase(runner,
		&fakeSummarizer{note: "❌ False claim."},
		&fakeTranslator{err: errors.New("model unavailable")},
		&fakeStore{},
	)

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x"})
	require.NoError(t, err)

	assert.True(t, verdict.Success)
	assert.Equal(t, "❌ False claim.", verdict.EN)
	assert.Equal(t, "❌ False claim.", verdict.CN)
}

func TestGenerateNoteSummarizationFailure(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{Report: "r"})}
	uc := newTestUseCase(runner,
		&fakeSummarizer{err: errors.New("context length exceeded")},
		&fakeTranslator{},
		&fakeStore{},
	)

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x"})
	require.NoError(t, err)

	assert.False(t, verdict.Success)
	assert.Contains(t, verdict.ErrorMessage, "summarization failed")
	// The underlying report is still surfaced for debugging.
	assert.Equal(t, "r", verdict.Report)
}

func TestGenerateNoteStoreFailureIsSwallowed(t *testing.T) {
	runner := &fakeRunner{outcome: passingOutcome(entity.SubmittedReport{Report: "r"})}
	store := &fakeStore{err: errors.New("firestore unavailable")}
	uc := newTestUseCase(runner, &fakeSummarizer{note: "✅"}, &fakeTranslator{out: "✅"}, store)

	verdict, err := uc.GenerateNote(context.Background(), input.NoteRequest{Text: "x"})
	require.NoError(t, err)
	assert.True(t, verdict.Success)
}
