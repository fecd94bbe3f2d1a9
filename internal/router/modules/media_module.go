package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicktalk/quicktalk/internal/container"
	handlers "github.com/quicktalk/quicktalk/internal/interface/http"
	"github.com/quicktalk/quicktalk/internal/interface/middleware"
)

type MediaModule struct {
	Handler *handlers.MediaHandler
}

func NewMediaModule(h *handlers.MediaHandler) *MediaModule {
	return &MediaModule{Handler: h}
}

func (m *MediaModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/media")
	auth.Use(middleware.Auth(container.GetRedis(), container.GetJWT()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/upload", m.Handler.Upload)
	}
}
