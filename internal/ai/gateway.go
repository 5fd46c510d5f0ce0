package ai

import "context"

// Gateway binds an OpenAI-compatible client to one resolved ChatConfig,
// giving callers a single Complete method.
type Gateway struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
}

func NewGateway(cfg ChatConfig) *Gateway {
	return &Gateway{
		client: NewOpenAICompatibleClient(),
		cfg:    cfg,
	}
}

func (g *Gateway) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return g.client.Complete(ctx, g.cfg, messages)
}
