package di

import (
	"context"
	"fmt"
	"time"

	"checkmate-agent/internal/adapter/tool"
	"checkmate-agent/internal/agents"
	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/application/service"
	"checkmate-agent/internal/infrastructure/api"
	"checkmate-agent/internal/infrastructure/env"
	"checkmate-agent/internal/infrastructure/llm"
	"checkmate-agent/internal/infrastructure/llm/gemini"
	"checkmate-agent/internal/infrastructure/llm/openai"
	"checkmate-agent/internal/infrastructure/logger"
	"checkmate-agent/internal/infrastructure/notes"
	"checkmate-agent/internal/infrastructure/prompts"
	"checkmate-agent/internal/infrastructure/review"
	"checkmate-agent/internal/infrastructure/screenshot/remote"
	"checkmate-agent/internal/infrastructure/screenshot/rodshot"
	"checkmate-agent/internal/infrastructure/search/serper"
	"checkmate-agent/internal/infrastructure/store/firestore"
	"checkmate-agent/internal/infrastructure/urlscan"
	"checkmate-agent/internal/usecase/notegen"
	"checkmate-agent/internal/usecase/screening"
)

const agentTemperature = 0.2

type Container struct {
	Logger   output.LoggerPort
	Server   *api.Server
	Notes    input.NoteGenerator
	Screener input.Screener

	renderer *rodshot.Renderer
	store    *firestore.Store
	gemini   *gemini.Adapter
}

// NewContainer wires the whole service from environment configuration. The
// env service has already loaded .env files by the time this runs.
func NewContainer(ctx context.Context, environ *env.EnvService) (*Container, error) {
	environment := environ.GetDefault("APP_ENV", "dev")

	log, err := logger.NewZapAdapter(environment)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	c := &Container{Logger: log}

	// Model providers. OpenAI also backs the single-shot calls (review,
	// summary, translation, screening filters).
	openaiAdapter := openai.NewAdapter(openai.Config{
		APIKey: environ.MustGet("OPENAI_API_KEY"),
		Model:  environ.GetDefault("OPENAI_MODEL", "gpt-4o"),
		Logger: log,
	})
	openaiLLM := llm.NewRetrier(openaiAdapter, llm.DefaultRetryPolicy(
		environ.GetDefault("OPENAI_MODEL", "gpt-4o"),
		environ.GetDefault("OPENAI_FALLBACK_MODEL", "gpt-4o-mini"),
	), log)

	runners := map[string]notegen.ReportRunner{}

	reviewer := review.NewReviewer(openaiLLM, prompts.ReviewPrompt, log)

	search := serper.NewClient(serper.Config{
		APIKey: environ.MustGet("SERPER_API_KEY"),
		Logger: log,
	})
	scanner := urlscan.NewClient(urlscan.Config{
		APIKey:  environ.MustGet("URLSCAN_API_KEY"),
		BaseURL: environ.MustGet("URLSCAN_API_URL"),
		Logger:  log,
	})

	shot, err := c.buildScreenshotter(environ, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	registry := service.NewToolRegistry()
	registry.Register(tool.NewInferIntentTool())
	registry.Register(tool.NewPlanNextStepTool())
	registry.Register(tool.NewSearchGoogleTool(search, log))
	registry.Register(tool.NewScreenshotTool(shot, log))
	registry.Register(tool.NewCheckMaliciousURLTool(scanner, log))
	registry.Register(tool.NewSubmitReportTool(reviewer, log))

	runners["openai"] = agents.NewAgentLoop(openaiLLM, registry, log, prompts.AgentSystemPrompt, agentTemperature)

	if geminiKey := environ.Get("GEMINI_API_KEY"); geminiKey != "" {
		geminiAdapter, err := gemini.NewAdapter(ctx, gemini.Config{
			APIKey: geminiKey,
			Model:  environ.GetDefault("GEMINI_MODEL", "gemini-1.5-pro"),
			Logger: log,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create gemini adapter: %w", err)
		}
		c.gemini = geminiAdapter
		geminiLLM := llm.NewRetrier(geminiAdapter, llm.DefaultRetryPolicy(
			environ.GetDefault("GEMINI_MODEL", "gemini-1.5-pro"),
			environ.GetDefault("GEMINI_FALLBACK_MODEL", "gemini-1.5-flash"),
		), log)
		runners["gemini"] = agents.NewAgentLoop(geminiLLM, registry, log, prompts.AgentSystemPrompt, agentTemperature)
	}

	var store output.StorePort
	if projectID := environ.Get("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		fsStore, err := firestore.NewStore(ctx, projectID, log)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create store: %w", err)
		}
		c.store = fsStore
		store = fsStore
	} else {
		log.Warn("GOOGLE_CLOUD_PROJECT not set, agent calls will not be persisted")
	}

	summarizer := notes.NewSummarizer(openaiLLM, prompts.SummaryPrompt, log)
	translator := notes.NewTranslator(openaiLLM, prompts.TranslationPrompt, log)

	c.Notes = notegen.NewUseCase(
		runners,
		environ.GetDefault("DEFAULT_PROVIDER", "openai"),
		summarizer,
		translator,
		store,
		log,
		environment,
	)
	c.Screener = screening.NewUseCase(openaiLLM, log,
		prompts.NeedsCheckingPrompt,
		prompts.SensitivityPrompt,
		prompts.RedactionPrompt,
	)

	c.Server = api.NewServer(api.Config{
		Notes:     c.Notes,
		Screener:  c.Screener,
		Logger:    log,
		AuthToken: environ.Get("API_AUTH_TOKEN"),
	})

	return c, nil
}

func (c *Container) buildScreenshotter(environ *env.EnvService, log output.LoggerPort) (output.ScreenshotPort, error) {
	if environ.GetDefault("SCREENSHOT_MODE", "local") == "remote" {
		return remote.NewClient(remote.Config{
			APIKey:  environ.MustGet("SCREENSHOT_API_KEY"),
			BaseURL: environ.MustGet("SCREENSHOT_API_URL"),
			Logger:  log,
		}), nil
	}

	cfg := rodshot.DefaultConfig()
	cfg.Timeout = time.Duration(environ.GetInt("SCREENSHOT_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.Logger = log
	renderer, err := rodshot.NewRenderer(cfg)
	if err != nil {
		return nil, fmt.Errorf("create screenshot renderer: %w", err)
	}
	c.renderer = renderer
	return renderer, nil
}

func (c *Container) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
	if c.gemini != nil {
		_ = c.gemini.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
