package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/whopranjalshah/me-api-playground/adapters/event"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
)

func TestCreateProfile_NormalizesAndPublishes(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewCreateProfileUseCase(repo, pub, logger.NewNopLogger())

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(in profile.NewProfile) bool {
		return in.Name == "Ada" && assert.ObjectsAreEqual([]string{"Go", "Rust"}, in.Skills)
	})).Return(&profile.Profile{ID: 7, Name: "Ada"}, nil)
	pub.On("PublishProfileEvent", mock.Anything, eventOfType(event.ProfileCreated, 7)).Return(nil)

	out, err := uc.Execute(context.Background(), CreateProfileInput{
		Actor: "admin",
		Profile: profile.NewProfile{
			Name:   " Ada ",
			Email:  "ada@example.com",
			Skills: []string{"Go", "Rust", "Go"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Profile.ID)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateProfile_ValidationFails(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewCreateProfileUseCase(repo, new(MockPublisher), logger.NewNopLogger())

	cases := map[string]profile.NewProfile{
		"bad email":        {Name: "Ada", Email: "not-an-email"},
		"missing name":     {Email: "ada@example.com"},
		"project w/o desc": {Name: "Ada", Email: "ada@example.com", Projects: []project.NewProject{{Title: "x"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), CreateProfileInput{Actor: "admin", Profile: in})
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProfile_DuplicateEmail(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewCreateProfileUseCase(repo, new(MockPublisher), logger.NewNopLogger())
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(&profile.Profile{ID: 1}, nil)

	_, err := uc.Execute(context.Background(), CreateProfileInput{
		Profile: profile.NewProfile{Name: "Ada", Email: "ada@example.com"},
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProfile_PublishFailureIsSwallowed(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewCreateProfileUseCase(repo, pub, logger.NewNopLogger())

	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(&profile.Profile{ID: 7}, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := uc.Execute(context.Background(), CreateProfileInput{
		Actor:   "admin",
		Profile: profile.NewProfile{Name: "Ada", Email: "ada@example.com"},
	})
	assert.NoError(t, err)
}

func TestGetProfileByEmail_Absent(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	_, err := NewGetProfileUseCase(repo).ExecuteByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListProfiles_ClampsPage(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("List", mock.Anything, 0, DefaultListLimit).Return([]*profile.Profile{}, nil)
	repo.On("List", mock.Anything, 5, MaxListLimit).Return([]*profile.Profile{{ID: 1}}, nil)

	uc := NewListProfilesUseCase(repo)

	got, err := uc.Execute(context.Background(), ListProfilesInput{Offset: -3, Limit: 0})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = uc.Execute(context.Background(), ListProfilesInput{Offset: 5, Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_PassesOnlyProvidedFields(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewUpdateProfileUseCase(repo, pub, logger.NewNopLogger())

	desc := "new bio"
	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p profile.Patch) bool {
		return p.Description.Set && *p.Description.Value == desc && !p.Name.Set && !p.Skills.Set
	})).Return(&profile.Profile{ID: 7, Description: &desc}, nil)
	pub.On("PublishProfileEvent", mock.Anything, eventOfType(event.ProfileUpdated, 7)).Return(nil)

	out, err := uc.Execute(context.Background(), UpdateProfileInput{
		ProfileID: 7,
		Actor:     "admin",
		Patch:     profile.Patch{Description: patch.Of(&desc)},
	})
	require.NoError(t, err)
	assert.Equal(t, desc, *out.Profile.Description)
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestUpdateProfile_NullSkillsNotForwarded(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewUpdateProfileUseCase(repo, pub, logger.NewNopLogger())

	repo.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p profile.Patch) bool {
		return p.Description.Set && !p.Skills.Set
	})).Return(&profile.Profile{ID: 7}, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.Anything).Return(nil)

	var p profile.Patch
	require.NoError(t, json.Unmarshal([]byte(`{"description": "x", "skills": null}`), &p))

	_, err := uc.Execute(context.Background(), UpdateProfileInput{ProfileID: 7, Patch: p})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_EmailTakenByAnother(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewUpdateProfileUseCase(repo, new(MockPublisher), logger.NewNopLogger())
	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(&profile.Profile{ID: 2}, nil)

	_, err := uc.Execute(context.Background(), UpdateProfileInput{
		ProfileID: 7,
		Patch:     profile.Patch{Email: patch.Of("bob@example.com")},
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUpdateProfile_KeepOwnEmail(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewUpdateProfileUseCase(repo, pub, logger.NewNopLogger())
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(&profile.Profile{ID: 7}, nil)
	repo.On("Update", mock.Anything, int64(7), mock.Anything).Return(&profile.Profile{ID: 7}, nil)
	pub.On("PublishProfileEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.Execute(context.Background(), UpdateProfileInput{
		ProfileID: 7,
		Patch:     profile.Patch{Email: patch.Of("ada@example.com")},
	})
	assert.NoError(t, err)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo := new(MockProfileRepository)
	uc := NewUpdateProfileUseCase(repo, new(MockPublisher), logger.NewNopLogger())
	repo.On("Update", mock.Anything, int64(99), mock.Anything).Return(nil, apperror.NewNotFound("profile", "99"))

	_, err := uc.Execute(context.Background(), UpdateProfileInput{ProfileID: 99, Patch: profile.Patch{Name: patch.Of("x")}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteProfile(t *testing.T) {
	repo := new(MockProfileRepository)
	pub := new(MockPublisher)
	uc := NewDeleteProfileUseCase(repo, pub, logger.NewNopLogger())

	repo.On("Delete", mock.Anything, int64(7)).Return(true, nil).Once()
	repo.On("Delete", mock.Anything, int64(7)).Return(false, nil).Once()
	pub.On("PublishProfileEvent", mock.Anything, eventOfType(event.ProfileDeleted, 7)).Return(nil).Once()

	require.NoError(t, uc.Execute(context.Background(), DeleteProfileInput{ProfileID: 7, Actor: "admin"}))
	err := uc.Execute(context.Background(), DeleteProfileInput{ProfileID: 7, Actor: "admin"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	pub.AssertExpectations(t)
}
