package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	experienceUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/experience"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

type ExperienceHandler struct {
	experienceUseCase *experienceUC.ExperienceUseCase
}

func NewExperienceHandler(uc *experienceUC.ExperienceUseCase) *ExperienceHandler {
	return &ExperienceHandler{experienceUseCase: uc}
}

func (h *ExperienceHandler) CreateWorkExperience(c *gin.Context) {
	profileID, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req WorkExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		c.Error(err)
		return
	}

	w, err := h.experienceUseCase.ExecuteCreate(c.Request.Context(), experienceUC.CreateInput{
		ProfileID:  profileID,
		Actor:      actorFromContext(c),
		Experience: in,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *ExperienceHandler) GetWorkExperience(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	w, err := h.experienceUseCase.ExecuteGet(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *ExperienceHandler) UpdateWorkExperience(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req UpdateWorkExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	p, err := req.ToDomain()
	if err != nil {
		c.Error(err)
		return
	}

	w, err := h.experienceUseCase.ExecuteUpdate(c.Request.Context(), experienceUC.UpdateInput{
		ExperienceID: id,
		Actor:        actorFromContext(c),
		Patch:        p,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *ExperienceHandler) DeleteWorkExperience(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	input := experienceUC.DeleteInput{ExperienceID: id, Actor: actorFromContext(c)}
	if err := h.experienceUseCase.ExecuteDelete(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
