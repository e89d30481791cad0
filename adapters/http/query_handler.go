package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/profile"
	queryUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/query"
)

type QueryHandler struct {
	queryUseCase *queryUC.QueryUseCase
}

func NewQueryHandler(uc *queryUC.QueryUseCase) *QueryHandler {
	return &QueryHandler{queryUseCase: uc}
}

func (h *QueryHandler) Search(c *gin.Context) {
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

	results, err := h.queryUseCase.ExecuteSearch(c.Request.Context(), queryUC.SearchInput{
		Query:  c.Query("q"),
		Offset: skip,
		Limit:  limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *QueryHandler) ProjectsBySkill(c *gin.Context) {
	projects, err := h.queryUseCase.ExecuteProjectsBySkill(c.Request.Context(), c.Query("skill"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *QueryHandler) TopSkills(c *gin.Context) {
	limit, err := queryLimit(c, queryUC.DefaultTopSkills)
	if err != nil {
		c.Error(err)
		return
	}

	counts, err := h.queryUseCase.ExecuteTopSkills(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *QueryHandler) ProfileSummaries(c *gin.Context) {
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

	summaries, err := h.queryUseCase.ExecuteSummaries(c.Request.Context(), skip, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
