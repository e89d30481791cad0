package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, profileID int64, in project.NewProject) (*project.Project, error) {
	args := m.Called(ctx, profileID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, id int64, p project.Patch) (*project.Project, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProfileEvent(ctx context.Context, payload event.ProfileEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func TestCreateProject(t *testing.T) {
	repo := new(MockProjectRepository)
	pub := new(MockPublisher)
	uc := NewCreateProjectUseCase(repo, pub, logger.NewNopLogger())

	in := project.NewProject{Title: "Engine", Description: "notes"}
	repo.On("Create", mock.Anything, int64(3), in).Return(&project.Project{ID: 11, ProfileID: 3, Title: "Engine"}, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.MatchedBy(func(p event.ProfileEventPayload) bool {
		return p.EventType == event.ProjectCreated && p.ProfileID == 3 && p.EntityID == 11
	})).Return(nil)

	out, err := uc.Execute(context.Background(), CreateProjectInput{ProfileID: 3, Actor: "admin", Project: in})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Project.ID)
	pub.AssertExpectations(t)
}

func TestCreateProject_Invalid(t *testing.T) {
	repo := new(MockProjectRepository)
	uc := NewCreateProjectUseCase(repo, new(MockPublisher), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), CreateProjectInput{ProfileID: 3, Project: project.NewProject{Title: "x"}})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProject_MissingProfile(t *testing.T) {
	repo := new(MockProjectRepository)
	uc := NewCreateProjectUseCase(repo, new(MockPublisher), logger.NewNopLogger())
	repo.On("Create", mock.Anything, int64(99), mock.Anything).Return(nil, apperror.NewNotFound("profile", "99"))

	_, err := uc.Execute(context.Background(), CreateProjectInput{
		ProfileID: 99,
		Project:   project.NewProject{Title: "t", Description: "d"},
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProject_RejectsBlankTitle(t *testing.T) {
	repo := new(MockProjectRepository)
	uc := NewUpdateProjectUseCase(repo, new(MockPublisher), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), UpdateProjectInput{ProjectID: 1, Patch: project.Patch{Title: patch.Of("  ")}})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpdateProject(t *testing.T) {
	repo := new(MockProjectRepository)
	pub := new(MockPublisher)
	uc := NewUpdateProjectUseCase(repo, pub, logger.NewNopLogger())

	repo.On("Update", mock.Anything, int64(11), mock.Anything).Return(&project.Project{ID: 11, ProfileID: 3, Title: "v2"}, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Execute(context.Background(), UpdateProjectInput{ProjectID: 11, Patch: project.Patch{Title: patch.Of("v2")}})
	require.NoError(t, err)
	assert.Equal(t, "v2", out.Project.Title)
}

func TestDeleteProject(t *testing.T) {
	repo := new(MockProjectRepository)
	pub := new(MockPublisher)
	uc := NewDeleteProjectUseCase(repo, pub, logger.NewNopLogger())

	repo.On("FindByID", mock.Anything, int64(11)).Return(&project.Project{ID: 11, ProfileID: 3}, nil)
	repo.On("Delete", mock.Anything, int64(11)).Return(true, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.MatchedBy(func(p event.ProfileEventPayload) bool {
		return p.EventType == event.ProjectDeleted && p.ProfileID == 3
	})).Return(nil)

	require.NoError(t, uc.Execute(context.Background(), DeleteProjectInput{ProjectID: 11, Actor: "admin"}))
	pub.AssertExpectations(t)
}

func TestDeleteProject_NotFound(t *testing.T) {
	repo := new(MockProjectRepository)
	uc := NewDeleteProjectUseCase(repo, new(MockPublisher), logger.NewNopLogger())
	repo.On("FindByID", mock.Anything, int64(11)).Return(nil, apperror.NewNotFound("project", "11"))

	err := uc.Execute(context.Background(), DeleteProjectInput{ProjectID: 11})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
