package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// SystemPrompt is the system instruction sent with every chat request.
const SystemPrompt = "You are the Gem AI Cybersecurity Assistant. " +
	"You provide safe, educational cybersecurity guidance in clear steps. " +
	"You do NOT ask for or process passwords, full credit card numbers, " +
	"private keys, or any extremely sensitive data. " +
	"You help users understand threats, phishing, scams, and good practice."

// DefaultAssistantModel is used when no model is configured.
const DefaultAssistantModel = "gemini-2.5-flash"

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("assistant returned an empty reply")

// Assistant answers a single chat message.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// GenAIAssistant answers with Google's Gemini API.
type GenAIAssistant struct {
	client *genai.Client
	model  string
}

// NewGenAIAssistant creates a Gemini-backed assistant.
func NewGenAIAssistant(ctx context.Context, apiKey, model string) (*GenAIAssistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	return newGenAIAssistant(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGenAIAssistant(ctx context.Context, cfg *genai.ClientConfig, model string) (*GenAIAssistant, error) {
	if model == "" {
		model = DefaultAssistantModel
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIAssistant{client: client, model: model}, nil
}

// Reply sends one user message with the assistant system prompt.
func (a *GenAIAssistant) Reply(ctx context.Context, message string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx,
		a.model,
		genai.Text(message),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
