package experiment

import (
	"fmt"

	"surveychat/internal/config"
)

// PageVars mirrors the js_vars a survey page hands the embedded chat
// widget. The front-end uses them verbatim to drive the chat API.
type PageVars struct {
	UserID                  string `json:"user_id"`
	ChatID                  string `json:"chat_id"`
	SystemMessage           string `json:"system_message,omitempty"`
	InitialAssistantMessage string `json:"initial_assistant_message,omitempty"`
	InitialUserMessage      string `json:"initial_user_message,omitempty"`
	MaxMessages             int    `json:"max_messages"`
	MaxCharacters           int    `json:"max_characters"`
	SaveChatHistory         bool   `json:"save_chat_history"`
	APIEndpoint             string `json:"api_endpoint"`
}

// Provider derives chat page variables from the experiment configuration.
type Provider struct {
	cfg config.ExperimentConfig
}

func NewProvider(cfg config.ExperimentConfig) *Provider {
	return &Provider{cfg: cfg}
}

// ChatID combines the participant code with the round number, keeping one
// session per participant per round.
func ChatID(participant string, round int) string {
	return fmt.Sprintf("%s-%d", participant, round)
}

func (p *Provider) Vars(participant string, round int) PageVars {
	return PageVars{
		UserID:                  participant,
		ChatID:                  ChatID(participant, round),
		SystemMessage:           p.cfg.SystemMessage,
		InitialAssistantMessage: p.cfg.InitialAssistantMessage,
		InitialUserMessage:      p.cfg.InitialUserMessage,
		MaxMessages:             p.cfg.MaxMessages,
		MaxCharacters:           p.cfg.MaxCharacters,
		SaveChatHistory:         p.cfg.SaveChatHistory,
		APIEndpoint:             p.cfg.APIEndpoint,
	}
}

// MaxCharacters exposes the per-message character bound for transport
// validation. Zero means unlimited.
func (p *Provider) MaxCharacters() int {
	return p.cfg.MaxCharacters
}
