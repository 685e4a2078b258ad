package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/uiengineer/internal/logging"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/schema"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = "gpt-4o-mini"

	// ComponentsPath locates the tree inside the model's JSON object.
	ComponentsPath = "$.components"
)

// ChatClient is the subset of *openai.Client the orchestrator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Orchestrator implements ports.Orchestrator with a chat model.
type Orchestrator struct {
	client      ChatClient
	model       string
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

type Option func(*Orchestrator)

// WithModel selects the model name.
func WithModel(model string) Option {
	return func(o *Orchestrator) {
		if model != "" {
			o.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Orchestrator) {
		o.temperature = t
	}
}

// WithTimeout bounds a single completion call. Zero means no bound beyond
// the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an orchestrator for an OpenAI-compatible endpoint. An empty
// baseURL targets the OpenAI API.
func New(apiKey, baseURL string, opts ...Option) *Orchestrator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewFromClient(openai.NewClientWithConfig(cfg), opts...)
}

// NewFromClient creates an orchestrator from an existing client.
func NewFromClient(client ChatClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		model:       DefaultModel,
		temperature: 0.2,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate asks the model for the initial tree of appID.
func (o *Orchestrator) Generate(ctx context.Context, appID string) (domain.Tree, error) {
	prompt, err := render("generate.tmpl", promptData{AppID: appID})
	if err != nil {
		return nil, err
	}
	return o.complete(ctx, appID, prompt)
}

// Update asks the model to revise the prior tree following instruction.
func (o *Orchestrator) Update(ctx context.Context, appID, prior, instruction string) (domain.Tree, error) {
	prompt, err := render("update.tmpl", promptData{AppID: appID, Prior: prior, Instruction: instruction})
	if err != nil {
		return nil, err
	}
	return o.complete(ctx, appID, prompt)
}

func (o *Orchestrator) complete(ctx context.Context, appID, prompt string) (domain.Tree, error) {
	system, err := render("system.tmpl", promptData{AppID: appID})
	if err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		User:        reqID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %w", domain.ErrOrchestrator, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", domain.ErrOrchestrator)
	}

	choice := resp.Choices[0]
	o.logger.Debug("completion received",
		"app_id", appID,
		"request_id", reqID,
		"model", resp.Model,
		"finish_reason", choice.FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start),
	)
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, fmt.Errorf("%w: reply truncated at the token limit", domain.ErrOrchestrator)
	}

	tree, err := schema.ParseJSONPath([]byte(choice.Message.Content), ComponentsPath)
	if err != nil {
		return nil, fmt.Errorf("model reply for %s: %w", appID, err)
	}
	return tree, nil
}
