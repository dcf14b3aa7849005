package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"dida/config"
)

// Factory builds per-session completion clients backed by an eino chat
// model. Key resolution is delegated to the injected resolver so the
// factory itself carries no credential state.
type Factory struct {
	cfg      config.Config
	resolver KeyResolver
	logger   func(string)
}

// NewFactory creates a client factory.
func NewFactory(cfg config.Config, resolver KeyResolver, logFunc func(string)) *Factory {
	return &Factory{cfg: cfg, resolver: resolver, logger: logFunc}
}

func (f *Factory) log(msg string) {
	if f.logger != nil {
		f.logger(msg)
	}
}

// ClientFor returns a completion client bound to the session's credentials.
func (f *Factory) ClientFor(ctx context.Context, sessionID string) (Client, error) {
	key, err := f.resolver.ResolveKey(sessionID)
	if err != nil {
		return nil, err
	}

	chatModel, err := f.newChatModel(ctx, key)
	if err != nil {
		return nil, err
	}
	return &einoClient{model: chatModel, logger: f.logger}, nil
}

func (f *Factory) newChatModel(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	switch f.cfg.LLMProvider {
	case "", "OpenAI", "OpenAI-Compatible":
		maxTokens := f.cfg.MaxTokens
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:    apiKey,
			BaseURL:   f.cfg.BaseURL,
			Model:     f.cfg.ModelName,
			MaxTokens: &maxTokens,
			Timeout:   300 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %v", err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q (use OpenAI or OpenAI-Compatible with a base URL)", f.cfg.LLMProvider)
	}
}

// ValidateKey issues a minimal completion to check a key, returning whether
// it is usable and a human-readable message.
func (f *Factory) ValidateKey(ctx context.Context, apiKey string) (bool, string) {
	chatModel, err := f.newChatModel(ctx, apiKey)
	if err != nil {
		return false, err.Error()
	}

	client := &einoClient{model: chatModel, logger: f.logger}
	if _, err := client.Complete(ctx, "", "test"); err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "invalid") || strings.Contains(msg, "incorrect"):
			return false, "Invalid API key"
		case strings.Contains(msg, "quota"):
			return false, "API key valid but quota exceeded"
		default:
			return false, fmt.Sprintf("Validation error: %v", err)
		}
	}
	return true, "API key is valid"
}

// einoClient runs one completion through an eino chat model.
type einoClient struct {
	model  model.BaseChatModel
	logger func(string)
}

func (c *einoClient) log(msg string) {
	if c.logger != nil {
		c.logger(msg)
	}
}

// Complete implements Client. The system message is omitted when empty.
func (c *einoClient) Complete(ctx context.Context, system, user string) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	messages = append(messages, schema.UserMessage(user))

	c.log(fmt.Sprintf("[LLM] Completion request - system: %d chars, user: %d chars", len(system), len(user)))

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		c.log(fmt.Sprintf("[LLM] Completion error: %v", err))
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	c.log(fmt.Sprintf("[LLM] Completion response: %d chars", len(resp.Content)))
	return resp.Content, nil
}
