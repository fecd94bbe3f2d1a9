package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicktalk/quicktalk/internal/container"
	handlers "github.com/quicktalk/quicktalk/internal/interface/http"
	"github.com/quicktalk/quicktalk/internal/interface/middleware"
)

type CryptoModule struct {
	Handler *handlers.CryptoHandler
}

func NewCryptoModule(h *handlers.CryptoHandler) *CryptoModule {
	return &CryptoModule{Handler: h}
}

func (m *CryptoModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIP())
	rg.GET("/crypto/keypair", limiter, m.Handler.KeyPair)
}
