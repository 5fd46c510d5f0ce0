package http

import (
	"github.com/gin-gonic/gin"

	"surveychat/internal/ai"
	appsvc "surveychat/internal/app"
	"surveychat/internal/bootstrap"
	"surveychat/internal/experiment"
	"surveychat/internal/transport/http/handler"
	"surveychat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	gateway := ai.NewGateway(ai.ChatConfig{
		BaseURL:   app.Config.LLM.BaseURL,
		APIKey:    app.Config.LLM.APIKey,
		Model:     app.Config.LLM.Model,
		MaxTokens: app.Config.LLM.MaxTokens,
	})

	var publisher appsvc.TurnPublisher
	if app.TurnPublisher != nil {
		publisher = app.TurnPublisher
	}

	chatService := appsvc.NewChatService(app.Store, gateway, publisher, appsvc.Quotas{
		MaxUserMessagesPerSession: app.Config.Quota.MaxUserMessagesPerSession,
		MaxSessionsPerOwner:       app.Config.Quota.MaxSessionsPerOwner,
	})

	gate := middleware.NewAccessGate(
		app.Config.Access.AllowedOwnerIDs,
		app.Config.Access.TrustedOrigins,
	)
	chatHandler := handler.NewChatHandler(chatService, gate, app.Config.Experiment.MaxCharacters)

	provider := experiment.NewProvider(app.Config.Experiment)
	experimentHandler := handler.NewExperimentHandler(provider)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequestID(), middleware.CORS(app.Config.CORS.AllowedOrigins))
	if app.Config.Access.RequireToken {
		v1.Use(middleware.ParticipantToken(app.Config.Access.JWTSecret))
	}

	v1.POST("/chat", chatHandler.Handle)
	v1.OPTIONS("/chat", preflight)
	v1.GET("/experiment/config", experimentHandler.Config)
	v1.OPTIONS("/experiment/config", preflight)

	return router
}

// preflight exists only so gin routes OPTIONS requests; the CORS
// middleware answers them before this runs.
func preflight(c *gin.Context) {}
