package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surveychat/internal/config"
)

func TestChatID(t *testing.T) {
	assert.Equal(t, "p4fj28dk-1", ChatID("p4fj28dk", 1))
	assert.Equal(t, "p4fj28dk-2", ChatID("p4fj28dk", 2))
}

func TestProviderVars(t *testing.T) {
	provider := NewProvider(config.ExperimentConfig{
		SystemMessage:           "be terse",
		InitialAssistantMessage: "hello!",
		MaxMessages:             10,
		MaxCharacters:           500,
		SaveChatHistory:         true,
		APIEndpoint:             "/api/v1/chat",
	})

	vars := provider.Vars("p4fj28dk", 2)
	assert.Equal(t, "p4fj28dk", vars.UserID)
	assert.Equal(t, "p4fj28dk-2", vars.ChatID)
	assert.Equal(t, "be terse", vars.SystemMessage)
	assert.Equal(t, "hello!", vars.InitialAssistantMessage)
	assert.Empty(t, vars.InitialUserMessage)
	assert.Equal(t, 10, vars.MaxMessages)
	assert.Equal(t, 500, vars.MaxCharacters)
	assert.True(t, vars.SaveChatHistory)
	assert.Equal(t, "/api/v1/chat", vars.APIEndpoint)

	assert.Equal(t, 500, provider.MaxCharacters())
}
