package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"surveychat/internal/app"
	"surveychat/internal/transport/http/middleware"
	"surveychat/internal/transport/http/response"
)

const (
	RouteInitialize = "initialize"
	RouteChat       = "chat"
	RouteHistory    = "history"
)

type ChatHandler struct {
	chatService   *app.ChatService
	gate          *middleware.AccessGate
	maxCharacters int
}

// Envelope is the inbound request shape: a route name plus the payload
// for that route.
type Envelope struct {
	Route   string      `json:"route"`
	Payload ChatPayload `json:"payload"`
}

// ChatPayload is the union of the three route payloads. chat_id and
// user_id are required on every route; the rest is per-route.
type ChatPayload struct {
	SessionID               string  `json:"chat_id"`
	OwnerID                 string  `json:"user_id"`
	SystemMessage           string  `json:"system_message"`
	InitialAssistantMessage string  `json:"initial_assistant_message"`
	InitialUserMessage      string  `json:"initial_user_message"`
	Message                 *string `json:"message"`
}

func NewChatHandler(chatService *app.ChatService, gate *middleware.AccessGate, maxCharacters int) *ChatHandler {
	return &ChatHandler{
		chatService:   chatService,
		gate:          gate,
		maxCharacters: maxCharacters,
	}
}

// Handle validates the envelope once and dispatches into the session
// service. Every service failure is converted to an {error: message}
// body; nothing raises past this boundary.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req Envelope
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if msg, ok := missingFields(req.Payload); !ok {
		response.Error(c, http.StatusBadRequest, msg)
		return
	}

	origin := strings.TrimRight(c.GetHeader("Origin"), "/")
	if !h.gate.Allows(origin, req.Payload.OwnerID) {
		response.Error(c, http.StatusForbidden, "User not allowed")
		return
	}
	if tokenOwner, ok := middleware.OwnerFromContext(c); ok && tokenOwner != req.Payload.OwnerID {
		response.Error(c, http.StatusForbidden, "User not allowed")
		return
	}

	ctx := c.Request.Context()

	switch req.Route {
	case RouteInitialize:
		view, err := h.chatService.InitializeSession(ctx, app.InitializeInput{
			SessionID:               req.Payload.SessionID,
			OwnerID:                 req.Payload.OwnerID,
			SystemMessage:           req.Payload.SystemMessage,
			InitialAssistantMessage: req.Payload.InitialAssistantMessage,
			InitialUserMessage:      req.Payload.InitialUserMessage,
		})
		if err != nil {
			h.serviceError(c, err)
			return
		}
		response.OK(c, view)

	case RouteChat:
		if req.Payload.Message == nil || *req.Payload.Message == "" {
			response.Error(c, http.StatusBadRequest, "message is required")
			return
		}
		if h.maxCharacters > 0 && len(*req.Payload.Message) > h.maxCharacters {
			response.Error(c, http.StatusBadRequest,
				fmt.Sprintf("message exceeds maximum length of %d characters", h.maxCharacters))
			return
		}
		view, err := h.chatService.SendMessage(ctx, app.SendMessageInput{
			SessionID: req.Payload.SessionID,
			OwnerID:   req.Payload.OwnerID,
			Content:   *req.Payload.Message,
		})
		if err != nil {
			h.serviceError(c, err)
			return
		}
		response.OK(c, view)

	case RouteHistory:
		session, err := h.chatService.GetHistory(ctx, req.Payload.SessionID, req.Payload.OwnerID)
		if err != nil {
			h.serviceError(c, err)
			return
		}
		response.OK(c, session)

	default:
		response.Error(c, http.StatusBadRequest, "Invalid route specified")
	}
}

func (h *ChatHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrOwnerMismatch):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrOwnerQuotaExceeded), errors.Is(err, app.ErrMessageQuotaExceeded):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrConflict):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrGateway):
		response.Error(c, http.StatusBadGateway, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "request failed")
	}
}

// missingFields reproduces the original boundary check: both ids must be
// present before anything reaches the service.
func missingFields(p ChatPayload) (string, bool) {
	var missing []string
	if p.OwnerID == "" {
		missing = append(missing, "user_id")
	}
	if p.SessionID == "" {
		missing = append(missing, "chat_id")
	}
	if len(missing) > 0 {
		return "Missing: " + strings.Join(missing, ", "), false
	}
	return "", true
}
