package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/openai"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
)

const cookingAssistantInstructions = `You are a friendly and knowledgeable cooking assistant. Your role is to:
1. Provide recipe suggestions and cooking tips
2. Help with ingredient substitutions and measurement conversions
3. Explain cooking techniques and terminology
4. Offer meal planning and dietary advice
5. Share food safety guidelines

Format your responses using markdown:
- Use **bold** for important terms or ingredients
- Use bullet points or numbered lists for steps or multiple items
- Use ` + "`code blocks`" + ` for measurements or temperatures
- Use ### for section headers when providing detailed information
- Include line breaks between sections for better readability

Keep responses concise but informative. If a user asks about something outside of cooking and food, politely redirect them to cooking-related topics.`

// AssistantService is the conversational layer on top of the completion
// client: an ongoing cooking-assistant chat plus a few one-shot helpers for
// recipe copy.
type AssistantService interface {
	StartChat(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, conversationID, message string) (string, error)

	GenerateRecipeDescription(ctx context.Context, ingredients []string, instructions string) (string, error)
	SuggestRecipeImprovements(ctx context.Context, recipe string) (string, error)
	GenerateCookingTips(ctx context.Context, ingredients []string) (string, error)
}

type assistantService struct {
	log    *logger.Logger
	client openai.Client
}

func NewAssistantService(log *logger.Logger, client openai.Client) AssistantService {
	serviceLog := log.With("service", "AssistantService")
	return &assistantService{log: serviceLog, client: client}
}

func (asv *assistantService) StartChat(ctx context.Context) (string, error) {
	conversationID, err := asv.client.CreateConversation(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to start assistant chat: %w", err)
	}
	return conversationID, nil
}

func (asv *assistantService) SendMessage(ctx context.Context, conversationID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message required")
	}
	reply, err := asv.client.GenerateTextInConversation(ctx, conversationID, cookingAssistantInstructions, message)
	if err != nil {
		return "", fmt.Errorf("assistant reply failed: %w", err)
	}
	return reply, nil
}

func (asv *assistantService) GenerateRecipeDescription(ctx context.Context, ingredients []string, instructions string) (string, error) {
	prompt := fmt.Sprintf("Given these ingredients: %s and cooking instructions: %s, provide a brief, engaging description of this recipe in 2-3 sentences.",
		strings.Join(ingredients, ", "), instructions)
	return asv.client.GenerateText(ctx, cookingAssistantInstructions, prompt)
}

func (asv *assistantService) SuggestRecipeImprovements(ctx context.Context, recipe string) (string, error) {
	prompt := fmt.Sprintf("As a culinary expert, analyze this recipe and suggest 2-3 ways to improve it or make it more interesting:\n%s", recipe)
	return asv.client.GenerateText(ctx, cookingAssistantInstructions, prompt)
}

func (asv *assistantService) GenerateCookingTips(ctx context.Context, ingredients []string) (string, error) {
	prompt := fmt.Sprintf("Provide 2-3 professional cooking tips specifically for working with these ingredients: %s",
		strings.Join(ingredients, ", "))
	return asv.client.GenerateText(ctx, cookingAssistantInstructions, prompt)
}
