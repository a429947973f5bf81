package translate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You are a translation engine for a live bilingual chat. " +
	"Translate the user's message from {source} to {target}. " +
	"Preserve tone and meaning. Reply with the translation only, no commentary."

// ArkGateway translates through an Ark-hosted chat model driven by an eino
// prompt chain.
type ArkGateway struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGateway compiles the translation chain over the supplied chat model.
func NewArkGateway(ctx context.Context, chatModel model.ChatModel) (*ArkGateway, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{text}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile translation chain: %w", err)
	}

	return &ArkGateway{chatModel: chatModel, chain: runnable}, nil
}

func (g *ArkGateway) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	response, err := g.chain.Invoke(ctx, map[string]any{
		"source": sourceLang,
		"target": targetLang,
		"text":   text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run translation chain: %w", err)
	}

	translated := strings.TrimSpace(response.Content)
	if translated == "" {
		return "", fmt.Errorf("translation model returned empty output for %s->%s", sourceLang, targetLang)
	}

	log.Printf("[translate] %s->%s in=%d out=%d", sourceLang, targetLang, len(text), len(translated))
	return translated, nil
}
