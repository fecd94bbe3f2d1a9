package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicktalk/quicktalk/internal/container"
	handlers "github.com/quicktalk/quicktalk/internal/interface/http"
	"github.com/quicktalk/quicktalk/internal/interface/middleware"
)

type ChatModule struct {
	Handler *handlers.ChatHandler
}

func NewChatModule(h *handlers.ChatHandler) *ChatModule {
	return &ChatModule{Handler: h}
}

func (m *ChatModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/chat")
	auth.Use(middleware.Auth(container.GetRedis(), container.GetJWT()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/send", m.Handler.Send)
		auth.GET("/history", m.Handler.History)
		auth.GET("/conversation/:peer", m.Handler.Conversation)
		auth.GET("/stream", m.Handler.Stream)
	}
}
