package http

import (
	"github.com/gin-gonic/gin"

	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Project    *ProjectHandler
	Experience *ExperienceHandler
	Query      *QueryHandler
	Health     *HealthHandler
	Backup     *BackupHandler
}

// RegisterRoutes mounts the API. Reads are public; every mutation sits
// behind authMiddleware. loginLimiter guards the token endpoint.
func RegisterRoutes(router *gin.Engine, h Handlers, authMiddleware, loginLimiter gin.HandlerFunc) {
	router.GET("/", h.Health.Root)

	router.POST("/auth/token", loginLimiter, h.Auth.Login)

	api := router.Group("/api")
	api.GET("/version", h.Health.Version)

	v1 := api.Group("/v1")
	{
		v1.GET("/health", h.Health.Health)

		v1.GET("/profiles", h.Profile.ListProfiles)
		v1.GET("/profiles/summary", h.Query.ProfileSummaries)
		v1.GET("/profiles/email/:email", h.Profile.GetProfileByEmail)
		v1.GET("/profiles/:id", h.Profile.GetProfile)
		v1.GET("/projects/:id", h.Project.GetProject)
		v1.GET("/work-experiences/:id", h.Experience.GetWorkExperience)

		v1.GET("/search", h.Query.Search)
		v1.GET("/projects", h.Query.ProjectsBySkill)
		v1.GET("/skills/top", h.Query.TopSkills)

		private := v1.Group("")
		private.Use(authMiddleware)
		{
			private.POST("/profiles", h.Profile.CreateProfile)
			private.PUT("/profiles/:id", h.Profile.UpdateProfile)
			private.DELETE("/profiles/:id", h.Profile.DeleteProfile)

			private.POST("/profiles/:id/projects", h.Project.CreateProject)
			private.PUT("/projects/:id", h.Project.UpdateProject)
			private.DELETE("/projects/:id", h.Project.DeleteProject)

			private.POST("/profiles/:id/work-experiences", h.Experience.CreateWorkExperience)
			private.PUT("/work-experiences/:id", h.Experience.UpdateWorkExperience)
			private.DELETE("/work-experiences/:id", h.Experience.DeleteWorkExperience)

			private.POST("/admin/backup", h.Backup.RunBackup)
		}
	}
}

// NewRouter builds an engine with the shared middleware chain. Host and
// origin checks sit after ErrorMiddleware so their rejections render as
// API errors.
func NewRouter(h Handlers, authMiddleware, loginLimiter gin.HandlerFunc, policy OriginPolicy, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestLogger(log),
		gin.Recovery(),
		ErrorMiddleware(log),
		TrustedHostMiddleware(policy.TrustedHosts),
		CORSMiddleware(policy.AllowedOrigins),
	)
	RegisterRoutes(router, h, authMiddleware, loginLimiter)
	return router
}
