package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/profile"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type ProfileHandler struct {
	createProfileUseCase *profileUC.CreateProfileUseCase
	getProfileUseCase    *profileUC.GetProfileUseCase
	listProfilesUseCase  *profileUC.ListProfilesUseCase
	updateProfileUseCase *profileUC.UpdateProfileUseCase
	deleteProfileUseCase *profileUC.DeleteProfileUseCase
	logger               logger.Logger
}

func NewProfileHandler(
	createUC *profileUC.CreateProfileUseCase,
	getUC *profileUC.GetProfileUseCase,
	listUC *profileUC.ListProfilesUseCase,
	updateUC *profileUC.UpdateProfileUseCase,
	deleteUC *profileUC.DeleteProfileUseCase,
	log logger.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		createProfileUseCase: createUC,
		getProfileUseCase:    getUC,
		listProfilesUseCase:  listUC,
		updateProfileUseCase: updateUC,
		deleteProfileUseCase: deleteUC,
		logger:               log,
	}
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		c.Error(err)
		return
	}

	output, err := h.createProfileUseCase.Execute(c.Request.Context(), profileUC.CreateProfileInput{
		Actor:   actorFromContext(c),
		Profile: in,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, output.Profile)
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		c.Error(err)
		return
	}
	limit, err := queryLimit(c, profileUC.DefaultListLimit)
	if err != nil {
		c.Error(err)
		return
	}

	profiles, err := h.listProfilesUseCase.Execute(c.Request.Context(), profileUC.ListProfilesInput{Offset: skip, Limit: limit})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	p, err := h.getProfileUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) GetProfileByEmail(c *gin.Context) {
	p, err := h.getProfileUseCase.ExecuteByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.updateProfileUseCase.Execute(c.Request.Context(), profileUC.UpdateProfileInput{
		ProfileID: id,
		Actor:     actorFromContext(c),
		Patch:     req,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Profile)
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	input := profileUC.DeleteProfileInput{ProfileID: id, Actor: actorFromContext(c)}
	if err := h.deleteProfileUseCase.Execute(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}
