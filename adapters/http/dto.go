package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
)

const dateLayout = "2006-01-02"

// parseDate accepts a calendar date only. Timestamps are rejected because
// the columns store DATE and an offset could move the day.
func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperror.NewInvalidInput(field+" must be a date in YYYY-MM-DD format", err)
	}
	return t, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewInvalidInput("invalid "+name, err)
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperror.NewInvalidInput("query parameter '"+name+"' must be a non-negative integer", err)
	}
	return v, nil
}

// queryLimit is queryInt for page sizes, which must be at least 1.
func queryLimit(c *gin.Context, def int) (int, error) {
	v, err := queryInt(c, "limit", def)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, apperror.NewInvalidInput("query parameter 'limit' must be at least 1", nil)
	}
	return v, nil
}

// Project DTOs

type ProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Links       *string `json:"links"`
}

func (r ProjectRequest) ToDomain() project.NewProject {
	return project.NewProject{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Links:       r.Links,
	}
}

// Work experience DTOs

type WorkExperienceRequest struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (r WorkExperienceRequest) ToDomain() (experience.NewWorkExperience, error) {
	w := experience.NewWorkExperience{
		Company:     strings.TrimSpace(r.Company),
		Position:    strings.TrimSpace(r.Position),
		Description: r.Description,
	}
	if strings.TrimSpace(r.StartDate) == "" {
		return w, apperror.NewInvalidInput("start_date is required", nil)
	}
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return w, err
	}
	end, err := parseOptionalDate("end_date", r.EndDate)
	if err != nil {
		return w, err
	}
	w.StartDate = start
	w.EndDate = end
	return w, nil
}

type UpdateWorkExperienceRequest struct {
	Company     patch.Field[string]  `json:"company"`
	Position    patch.Field[string]  `json:"position"`
	Description patch.Field[*string] `json:"description"`
	StartDate   patch.Field[string]  `json:"start_date"`
	EndDate     patch.Field[*string] `json:"end_date"`
}

func (r UpdateWorkExperienceRequest) ToDomain() (experience.Patch, error) {
	p := experience.Patch{
		Company:     r.Company,
		Position:    r.Position,
		Description: r.Description,
	}
	if v, ok := r.StartDate.Get(); ok {
		start, err := parseDate("start_date", v)
		if err != nil {
			return p, err
		}
		p.StartDate = patch.Of(start)
	}
	if v, ok := r.EndDate.Get(); ok {
		end, err := parseOptionalDate("end_date", v)
		if err != nil {
			return p, err
		}
		p.EndDate = patch.Of(end)
	}
	return p, nil
}

// Profile DTOs

type CreateProfileRequest struct {
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	Description     *string                 `json:"description"`
	GithubURL       *string                 `json:"github_url"`
	LinkedinURL     *string                 `json:"linkedin_url"`
	PortfolioURL    *string                 `json:"portfolio_url"`
	Skills          []string                `json:"skills"`
	Projects        []ProjectRequest        `json:"projects"`
	WorkExperiences []WorkExperienceRequest `json:"work_experiences"`
}

func (r CreateProfileRequest) ToDomain() (profile.NewProfile, error) {
	in := profile.NewProfile{
		Name:         r.Name,
		Email:        r.Email,
		Description:  r.Description,
		GithubURL:    r.GithubURL,
		LinkedinURL:  r.LinkedinURL,
		PortfolioURL: r.PortfolioURL,
		Skills:       r.Skills,
	}
	for _, p := range r.Projects {
		in.Projects = append(in.Projects, p.ToDomain())
	}
	for _, w := range r.WorkExperiences {
		we, err := w.ToDomain()
		if err != nil {
			return in, err
		}
		in.WorkExperiences = append(in.WorkExperiences, we)
	}
	return in, nil
}

// UpdateProfileRequest decodes straight into the domain patch; absent keys
// stay unset.
type UpdateProfileRequest = profile.Patch

type UpdateProjectRequest = project.Patch
