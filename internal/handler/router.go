package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schemapilot/schemapilot/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Generate  *GenerateHandler
	Files     *FileHandler
	Health    *HealthHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", deps.Health.Check)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	generateGroup := authGroup.Group("")
	generateGroup.Use(middleware.RateLimit(time.Second))
	generateGroup.POST("/generate", deps.Generate.Generate)

	authGroup.POST("/generate/ambiguity", deps.Generate.Ambiguity)

	authGroup.POST("/admin/files", deps.Files.Upload)
	authGroup.GET("/admin/files", deps.Files.List)
	authGroup.DELETE("/admin/files/:id", deps.Files.Delete)
}
