package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/streetvoice-api/internal/middleware"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/service"
)

func principalFromContext(c *gin.Context) *models.Principal {
	principal, ok := middleware.Principal(c)
	if !ok {
		return nil
	}
	return principal
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
