package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"checkmate-agent/internal/application/port/output"
	"checkmate-agent/internal/domain/entity"
	"checkmate-agent/internal/infrastructure/llm"
)

var _ output.LLMPort = (*Adapter)(nil)

type modelPricing struct {
	prompt     float64
	completion float64
}

// USD per million tokens.
var pricing = map[string]modelPricing{
	"gemini-1.5-pro":   {prompt: 1.25, completion: 5.00},
	"gemini-1.5-flash": {prompt: 0.075, completion: 0.30},
}

type Adapter struct {
	client     *genai.Client
	model      string
	httpClient *http.Client
	logger     output.LoggerPort
}

type Config struct {
	APIKey string
	Model  string
	Logger output.LoggerPort
}

func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Adapter{
		client:     client,
		model:      cfg.Model,
		httpClient: http.DefaultClient,
		logger:     cfg.Logger,
	}, nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	model := a.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)

	if req.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}

	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: convertTools(req.Tools)}}
		model.ToolConfig = toolConfig(req)
	}

	system, contents, err := a.convertMessages(ctx, req.Messages)
	if err != nil {
		return nil, err
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("no sendable messages")
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]

	resp, err := chat.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			return nil, fmt.Errorf("%s: %w", apiErr.Message, llm.ErrRateLimited)
		}
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}

	message, err := convertResponse(resp.Candidates[0].Content)
	if err != nil {
		return nil, err
	}
	return &output.ChatResponse{
		Message: message,
		Cost:    estimateCost(modelName, resp.UsageMetadata),
	}, nil
}

func toolConfig(req output.ChatRequest) *genai.ToolConfig {
	cfg := &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{}}
	switch req.ToolChoice {
	case output.ToolChoiceRequired:
		cfg.FunctionCallingConfig.Mode = genai.FunctionCallingAny
		names := make([]string, 0, len(req.Tools))
		for _, t := range req.Tools {
			names = append(names, string(t.Name))
		}
		cfg.FunctionCallingConfig.AllowedFunctionNames = names
	case output.ToolChoiceNone:
		cfg.FunctionCallingConfig.Mode = genai.FunctionCallingNone
	default:
		cfg.FunctionCallingConfig.Mode = genai.FunctionCallingAuto
	}
	return cfg
}

// convertMessages folds system turns into one instruction string and maps the
// rest onto Gemini's user/model alternation. Tool results travel back as
// FunctionResponse parts on a user turn.
func (a *Adapter) convertMessages(ctx context.Context, messages []entity.Message) (string, []*genai.Content, error) {
	var system strings.Builder
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)

		case entity.RoleAssistant:
			parts := []genai.Part{}
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return "", nil, fmt.Errorf("parse tool call arguments: %w", err)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})

		case entity.RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     msg.Name,
					Response: functionResponsePayload(msg.Content),
				}},
			})

		case entity.RoleUser:
			parts := []genai.Part{}
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			if msg.ImageURL != "" {
				img, err := a.imagePart(ctx, msg.ImageURL)
				if err != nil {
					return "", nil, err
				}
				parts = append(parts, img)
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})
		}
	}
	return system.String(), contents, nil
}

// functionResponsePayload turns one tool output string into the response map
// Gemini expects. JSON objects (including failure outputs, which already
// carry a result key) pass through as-is; anything else gets wrapped.
func functionResponsePayload(content string) map[string]any {
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		return payload
	}
	return map[string]any{"result": content}
}

// imagePart resolves an image reference into inline bytes. Data URLs decode
// locally; anything else is fetched.
func (a *Adapter) imagePart(ctx context.Context, ref string) (genai.Part, error) {
	if strings.HasPrefix(ref, "data:") {
		meta, payload, ok := strings.Cut(ref, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL")
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
		format := "jpeg"
		if strings.Contains(meta, "image/png") {
			format = "png"
		}
		return genai.ImageData(format, data), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	format := strings.TrimPrefix(resp.Header.Get("Content-Type"), "image/")
	if format == "" || strings.Contains(format, "/") {
		format = "jpeg"
	}
	return genai.ImageData(format, data), nil
}

func convertTools(tools []entity.ToolDefinition) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		result = append(result, &genai.FunctionDeclaration{
			Name:        string(t.Name),
			Description: t.Description,
			Parameters:  convertSchema(t.Parameters),
		})
	}
	return result
}

// convertSchema maps a JSON-schema style parameter map onto genai.Schema.
// Only the subset the tool definitions use is supported.
func convertSchema(params map[string]interface{}) *genai.Schema {
	if params == nil {
		return nil
	}
	schema := &genai.Schema{}

	if t, ok := params["type"].(string); ok {
		schema.Type = schemaType(t)
	}
	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}
	if enum, ok := params["enum"].([]string); ok {
		schema.Enum = enum
	}
	if required, ok := params["required"].([]string); ok {
		schema.Required = required
	}
	if items, ok := params["items"].(map[string]interface{}); ok {
		schema.Items = convertSchema(items)
	}
	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if prop, ok := raw.(map[string]interface{}); ok {
				schema.Properties[name] = convertSchema(prop)
			}
		}
	}
	return schema
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}

func convertResponse(content *genai.Content) (entity.Message, error) {
	message := entity.Message{Role: entity.RoleAssistant}
	var text strings.Builder

	for _, part := range content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return entity.Message{}, fmt.Errorf("marshal function call args: %w", err)
			}
			message.ToolCalls = append(message.ToolCalls, entity.ToolCall{
				ID:        "call-" + uuid.NewString(),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}
	message.Content = text.String()
	return message, nil
}

func estimateCost(model string, usage *genai.UsageMetadata) float64 {
	if usage == nil {
		return 0
	}
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	return float64(usage.PromptTokenCount)*p.prompt/1e6 + float64(usage.CandidatesTokenCount)*p.completion/1e6
}
