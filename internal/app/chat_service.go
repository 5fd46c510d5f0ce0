package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveychat/internal/ai"
	"surveychat/internal/model"
	"surveychat/internal/observability"
	"surveychat/internal/sessionstore"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrSessionNotFound      = errors.New("chat session not found")
	ErrOwnerMismatch        = errors.New("user id mismatch")
	ErrOwnerQuotaExceeded   = errors.New("maximum number of chats reached for this user")
	ErrMessageQuotaExceeded = errors.New("message limit reached for this chat")
	ErrGateway              = errors.New("completion gateway failed")
	ErrConflict             = errors.New("concurrent update conflict")
)

// CompletionGateway produces one assistant reply for an ordered sequence
// of role-tagged messages. Synchronous, one request per call.
type CompletionGateway interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// TurnPublisher receives completed turns for asynchronous archiving.
// Publishing is best-effort and never fails a chat call.
type TurnPublisher interface {
	PublishTurn(ctx context.Context, event model.TurnEvent) error
}

// Quotas bounds per-session and per-owner usage. Zero disables a limit.
type Quotas struct {
	MaxUserMessagesPerSession int
	MaxSessionsPerOwner       int
}

// ChatService owns the session lifecycle: create-or-fetch, append a turn,
// fetch history. Every operation issues at most one gateway call, one
// store read and one store write; initialization may also scan the store
// for quota counting.
type ChatService struct {
	store     sessionstore.Store
	gateway   CompletionGateway
	publisher TurnPublisher
	quotas    Quotas
}

type InitializeInput struct {
	SessionID               string
	OwnerID                 string
	SystemMessage           string
	InitialAssistantMessage string
	InitialUserMessage      string
}

// SessionView is the caller-visible portion of a session: system-role
// messages are filtered out.
type SessionView struct {
	SessionID string          `json:"chat_id"`
	OwnerID   string          `json:"user_id"`
	IsNew     bool            `json:"is_new"`
	Messages  []model.Message `json:"messages"`
}

type SendMessageInput struct {
	SessionID string
	OwnerID   string
	Content   string
}

type ReplyView struct {
	Reply     string `json:"message"`
	SessionID string `json:"chat_id"`
	OwnerID   string `json:"user_id"`
}

func NewChatService(store sessionstore.Store, gateway CompletionGateway, publisher TurnPublisher, quotas Quotas) *ChatService {
	return &ChatService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		quotas:    quotas,
	}
}

// InitializeSession creates a session on first call for a given id, or
// returns the existing one. Seed arguments apply only to brand-new
// sessions; a pre-existing session is returned unchanged even when seeds
// are supplied.
func (s *ChatService) InitializeSession(ctx context.Context, input InitializeInput) (*SessionView, error) {
	if input.SessionID == "" || input.OwnerID == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.store.Get(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("read session failed: %w", err)
	}
	if existing != nil {
		if existing.OwnerID != input.OwnerID {
			observability.FromContext(ctx).Warn("user id mismatch",
				"chat_id", input.SessionID, "provided", input.OwnerID)
			return nil, ErrOwnerMismatch
		}
		return &SessionView{
			SessionID: existing.SessionID,
			OwnerID:   existing.OwnerID,
			IsNew:     false,
			Messages:  visibleMessages(existing.Messages),
		}, nil
	}

	if s.quotas.MaxSessionsPerOwner > 0 {
		owned, err := s.store.CountByOwner(ctx, input.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("count owner sessions failed: %w", err)
		}
		if owned >= s.quotas.MaxSessionsPerOwner {
			return nil, ErrOwnerQuotaExceeded
		}
	}

	now := time.Now()
	messages := make([]model.Message, 0, 4)
	if input.SystemMessage != "" {
		messages = append(messages, model.Message{
			Role:      model.RoleSystem,
			Content:   input.SystemMessage,
			Timestamp: now,
		})
	}
	if input.InitialAssistantMessage != "" {
		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   input.InitialAssistantMessage,
			Timestamp: now,
		})
	}
	if input.InitialUserMessage != "" {
		messages = append(messages, model.Message{
			Role:      model.RoleUser,
			Content:   input.InitialUserMessage,
			Timestamp: now,
		})

		// A seed user message gets a generated reply before anything is
		// persisted; a gateway failure must not leave a half-built record.
		reply, err := s.gateway.Complete(ctx, promptMessages(messages))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   reply,
			Timestamp: time.Now(),
		})
	}

	session := &model.Session{
		SessionID: input.SessionID,
		OwnerID:   input.OwnerID,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, session); err != nil {
		if errors.Is(err, sessionstore.ErrAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("persist session failed: %w", err)
	}

	s.publishMessages(ctx, session, messages)
	observability.FromContext(ctx).Info("chat initialized",
		"chat_id", input.SessionID, "user_id", input.OwnerID)

	return &SessionView{
		SessionID: session.SessionID,
		OwnerID:   session.OwnerID,
		IsNew:     true,
		Messages:  visibleMessages(messages),
	}, nil
}

// SendMessage appends one user turn, obtains the assistant reply and
// persists both in a single conditional write. On gateway failure the
// stored record is left exactly as it was: the unanswered user turn is
// deliberately not persisted.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*ReplyView, error) {
	if input.SessionID == "" || input.OwnerID == "" || input.Content == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.store.Get(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("read session failed: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.OwnerID != input.OwnerID {
		observability.FromContext(ctx).Warn("user id mismatch",
			"chat_id", input.SessionID, "provided", input.OwnerID)
		return nil, ErrOwnerMismatch
	}

	if s.quotas.MaxUserMessagesPerSession > 0 &&
		session.UserMessageCount() >= s.quotas.MaxUserMessagesPerSession {
		return nil, ErrMessageQuotaExceeded
	}

	userMessage := model.Message{
		Role:      model.RoleUser,
		Content:   input.Content,
		Timestamp: time.Now(),
	}
	messages := append(append([]model.Message(nil), session.Messages...), userMessage)

	reply, err := s.gateway.Complete(ctx, promptMessages(messages))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	assistantMessage := model.Message{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}
	messages = append(messages, assistantMessage)

	if err := s.store.UpdateMessages(ctx, session.SessionID, messages, assistantMessage.Timestamp, session.Version); err != nil {
		switch {
		case errors.Is(err, sessionstore.ErrVersionConflict):
			return nil, ErrConflict
		case errors.Is(err, sessionstore.ErrNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("update session failed: %w", err)
	}

	s.publishMessages(ctx, session, []model.Message{userMessage, assistantMessage})

	return &ReplyView{
		Reply:     reply,
		SessionID: session.SessionID,
		OwnerID:   session.OwnerID,
	}, nil
}

// GetHistory returns the complete stored record, system messages
// included. Unlike the other two operations history is unfiltered.
func (s *ChatService) GetHistory(ctx context.Context, sessionID, ownerID string) (*model.Session, error) {
	if sessionID == "" || ownerID == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read session failed: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.OwnerID != ownerID {
		observability.FromContext(ctx).Warn("user id mismatch",
			"chat_id", sessionID, "provided", ownerID)
		return nil, ErrOwnerMismatch
	}
	return session, nil
}

func (s *ChatService) publishMessages(ctx context.Context, session *model.Session, messages []model.Message) {
	if s.publisher == nil {
		return
	}
	for _, msg := range messages {
		event := model.TurnEvent{
			SessionID:  session.SessionID,
			OwnerID:    session.OwnerID,
			Role:       msg.Role,
			Content:    msg.Content,
			RecordedAt: msg.Timestamp,
		}
		if err := s.publisher.PublishTurn(ctx, event); err != nil {
			observability.FromContext(ctx).Warn("publish turn event failed",
				"chat_id", session.SessionID, "error", err)
		}
	}
}

// visibleMessages filters out system-role entries; they seed model
// context but are never returned by initialize or chat calls.
func visibleMessages(messages []model.Message) []model.Message {
	visible := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

// promptMessages strips stored messages down to the role+content pairs
// the gateway accepts. Timestamps never cross this boundary.
func promptMessages(messages []model.Message) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}
