package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quicktalk/quicktalk/pkg/helpers"
	"github.com/quicktalk/quicktalk/pkg/response"
)

// Auth validates the access token cookie and ensures an active session
// exists in Redis with a matching session id. It sets userID, userName,
// and userEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set("userID", data["user_id"])
		c.Set("userName", data["username"]) // handle used in chats
		c.Set("userEmail", data["email"])
		c.Next()
	}
}
