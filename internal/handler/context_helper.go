package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/center-cms-api/internal/dto"
	"github.com/noah-isme/center-cms-api/internal/middleware"
)

func actorFromContext(c *gin.Context) dto.Actor {
	actor := dto.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if user := middleware.PrincipalFrom(c).User; user != nil {
		actor.UserID = user.UserID
	}
	return actor
}
