package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/whopranjalshah/me-api-playground/internal/domain/audit"
	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/search"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/internal/domain/user"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"

	"github.com/google/uuid"
)

type ProfileRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool         *pgxpool.Pool
	pgContainer    *postgres.PostgresContainer
	testLogger     logger.Logger
	profileRepo    profile.Repository
	projectRepo    project.Repository
	experienceRepo experience.Repository
	searchRepo     search.Repository
	userRepo       user.Repository
	auditRepo      audit.Repository
}

func (s *ProfileRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool
	s.testLogger = logger.NewNopLogger()

	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)
	s.projectRepo = NewPostgresProjectRepo(s.dbPool, s.testLogger)
	s.experienceRepo = NewPostgresExperienceRepo(s.dbPool, s.testLogger)
	s.searchRepo = NewPostgresSearchRepo(s.dbPool, s.testLogger)
	s.userRepo = NewPostgresUserRepo(s.dbPool)
	s.auditRepo = NewPostgresAuditRepo(s.dbPool)
}

func (s *ProfileRepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(),
		`TRUNCATE profile_skills, projects, work_experiences, profiles, skills, users, profile_audit_log RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *ProfileRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestProfileRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(ProfileRepoIntegrationTestSuite))
}

func strPtr(s string) *string { return &s }

func (s *ProfileRepoIntegrationTestSuite) createProfile(name, email string, skills ...string) *profile.Profile {
	in := profile.NewProfile{Name: name, Email: email, Skills: skills}
	in.Normalize()
	p, err := s.profileRepo.Create(context.Background(), in)
	s.Require().NoError(err)
	return p
}

func (s *ProfileRepoIntegrationTestSuite) countRows(query string, args ...any) int {
	var n int
	s.Require().NoError(s.dbPool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func (s *ProfileRepoIntegrationTestSuite) Test_Create_RoundTrip() {
	ctx := context.Background()
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	in := profile.NewProfile{
		Name:        "Ada",
		Email:       "ada@example.com",
		Description: strPtr("compilers"),
		Skills:      []string{"Go", "Rust", "Go", " Rust "},
		Projects: []project.NewProject{
			{Title: "Engine", Description: "analytical", Links: strPtr(`{"github":"https://github.com/ada/engine"}`)},
		},
		WorkExperiences: []experience.NewWorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: start},
		},
	}
	in.Normalize()

	created, err := s.profileRepo.Create(ctx, in)
	s.Require().NoError(err)

	found, err := s.profileRepo.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Ada", found.Name)
	s.Equal([]string{"Go", "Rust"}, skill.Names(found.Skills))
	s.Require().Len(found.Projects, 1)
	s.Equal(`{"github":"https://github.com/ada/engine"}`, *found.Projects[0].Links)
	s.Require().Len(found.WorkExperiences, 1)
	s.True(found.WorkExperiences[0].IsCurrent())
	s.True(start.Equal(found.WorkExperiences[0].StartDate))

	byEmail, err := s.profileRepo.FindByEmail(ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Create_IsAtomic() {
	ctx := context.Background()
	s.createProfile("Ada", "ada@example.com")

	in := profile.NewProfile{Name: "Other", Email: "ada@example.com", Skills: []string{"Elixir"}}
	_, err := s.profileRepo.Create(ctx, in)
	s.ErrorIs(err, apperror.ErrConflict)

	s.Equal(1, s.countRows(`SELECT COUNT(*) FROM profiles`))
	s.Equal(0, s.countRows(`SELECT COUNT(*) FROM skills WHERE name = 'Elixir'`))
}

func (s *ProfileRepoIntegrationTestSuite) Test_FindMissing() {
	ctx := context.Background()

	_, err := s.profileRepo.FindByID(ctx, 999)
	s.ErrorIs(err, apperror.ErrNotFound)

	p, err := s.profileRepo.FindByEmail(ctx, "nobody@example.com")
	s.NoError(err)
	s.Nil(p)
}

func (s *ProfileRepoIntegrationTestSuite) Test_SkillReuse() {
	a := s.createProfile("Ada", "ada@example.com", "Go")
	b := s.createProfile("Bob", "bob@example.com", "Go")

	s.Equal(1, s.countRows(`SELECT COUNT(*) FROM skills WHERE name = 'Go'`))
	s.Equal(a.Skills[0].ID, b.Skills[0].ID)
}

func (s *ProfileRepoIntegrationTestSuite) Test_ConcurrentSkillCreation() {
	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := profile.NewProfile{
				Name:   fmt.Sprintf("Writer %d", i),
				Email:  fmt.Sprintf("writer%d@example.com", i),
				Skills: []string{"Zig", "Odin"},
			}
			_, err := s.profileRepo.Create(context.Background(), in)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.Equal(1, s.countRows(`SELECT COUNT(*) FROM skills WHERE name = 'Zig'`))
	s.Equal(writers, s.countRows(`SELECT COUNT(*) FROM profile_skills ps JOIN skills sk ON sk.id = ps.skill_id WHERE sk.name = 'Zig'`))
}

func (s *ProfileRepoIntegrationTestSuite) Test_ConcurrentSkillCreation_OppositeOrder() {
	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			skills := []string{"Zig", "Odin", "Nim"}
			if i%2 == 1 {
				skills = []string{"Nim", "Odin", "Zig"}
			}
			in := profile.NewProfile{
				Name:   fmt.Sprintf("Writer %d", i),
				Email:  fmt.Sprintf("writer%d@example.com", i),
				Skills: skills,
			}
			_, err := s.profileRepo.Create(context.Background(), in)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.Equal(3, s.countRows(`SELECT COUNT(*) FROM skills`))
	s.Equal(writers*3, s.countRows(`SELECT COUNT(*) FROM profile_skills`))
}

func (s *ProfileRepoIntegrationTestSuite) Test_PartialUpdate() {
	ctx := context.Background()
	created := s.createProfile("Ada", "ada@example.com", "Go")

	updated, err := s.profileRepo.Update(ctx, created.ID, profile.Patch{Description: patch.Of(strPtr("new bio"))})
	s.Require().NoError(err)

	s.Equal("Ada", updated.Name)
	s.Equal("ada@example.com", updated.Email)
	s.Equal("new bio", *updated.Description)
	s.Equal([]string{"Go"}, skill.Names(updated.Skills))
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))

	cleared, err := s.profileRepo.Update(ctx, created.ID, profile.Patch{Description: patch.Null[string]()})
	s.Require().NoError(err)
	s.Nil(cleared.Description)
}

func (s *ProfileRepoIntegrationTestSuite) Test_SkillsFullReplace() {
	ctx := context.Background()
	created := s.createProfile("Ada", "ada@example.com", "Go", "Rust")

	kept, err := s.profileRepo.Update(ctx, created.ID, profile.Patch{Name: patch.Of("Ada L.")})
	s.Require().NoError(err)
	s.Len(kept.Skills, 2)

	replaced, err := s.profileRepo.Update(ctx, created.ID, profile.Patch{Skills: patch.Of([]string{"Haskell"})})
	s.Require().NoError(err)
	s.Equal([]string{"Haskell"}, skill.Names(replaced.Skills))

	cleared, err := s.profileRepo.Update(ctx, created.ID, profile.Patch{Skills: patch.Of([]string{})})
	s.Require().NoError(err)
	s.Empty(cleared.Skills)
	s.Equal(3, s.countRows(`SELECT COUNT(*) FROM skills`))
}

func (s *ProfileRepoIntegrationTestSuite) Test_Update_Errors() {
	ctx := context.Background()
	s.createProfile("Ada", "ada@example.com")
	bob := s.createProfile("Bob", "bob@example.com")

	_, err := s.profileRepo.Update(ctx, 999, profile.Patch{Name: patch.Of("x")})
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.profileRepo.Update(ctx, bob.ID, profile.Patch{Email: patch.Of("ada@example.com")})
	s.ErrorIs(err, apperror.ErrConflict)
}

func (s *ProfileRepoIntegrationTestSuite) Test_CascadeDelete() {
	ctx := context.Background()
	in := profile.NewProfile{
		Name:   "Ada",
		Email:  "ada@example.com",
		Skills: []string{"Go"},
		Projects: []project.NewProject{
			{Title: "One", Description: "first"},
			{Title: "Two", Description: "second"},
		},
		WorkExperiences: []experience.NewWorkExperience{
			{Company: "Acme", Position: "Engineer", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	created, err := s.profileRepo.Create(ctx, in)
	s.Require().NoError(err)

	found, err := s.profileRepo.Delete(ctx, created.ID)
	s.Require().NoError(err)
	s.True(found)

	s.Equal(0, s.countRows(`SELECT COUNT(*) FROM projects WHERE profile_id = $1`, created.ID))
	s.Equal(0, s.countRows(`SELECT COUNT(*) FROM work_experiences WHERE profile_id = $1`, created.ID))
	s.Equal(1, s.countRows(`SELECT COUNT(*) FROM skills WHERE name = 'Go'`))

	found, err = s.profileRepo.Delete(ctx, created.ID)
	s.NoError(err)
	s.False(found)
}

func (s *ProfileRepoIntegrationTestSuite) Test_List() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.createProfile(fmt.Sprintf("P%d", i), fmt.Sprintf("p%d@example.com", i), "Go")
	}

	page, err := s.profileRepo.List(ctx, 1, 5)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("P1", page[0].Name)
	s.Equal([]string{"Go"}, skill.Names(page[0].Skills))
}

func (s *ProfileRepoIntegrationTestSuite) Test_ChildRows() {
	ctx := context.Background()
	owner := s.createProfile("Ada", "ada@example.com")

	_, err := s.projectRepo.Create(ctx, 999, project.NewProject{Title: "t", Description: "d"})
	s.ErrorIs(err, apperror.ErrNotFound)

	p, err := s.projectRepo.Create(ctx, owner.ID, project.NewProject{Title: "Engine", Description: "d"})
	s.Require().NoError(err)

	updated, err := s.projectRepo.Update(ctx, p.ID, project.Patch{Title: patch.Of("Engine 2")})
	s.Require().NoError(err)
	s.Equal("Engine 2", updated.Title)
	s.Equal("d", updated.Description)

	_, err = s.projectRepo.Update(ctx, 999, project.Patch{Title: patch.Of("x")})
	s.ErrorIs(err, apperror.ErrNotFound)

	w, err := s.experienceRepo.Create(ctx, owner.ID, experience.NewWorkExperience{
		Company: "Acme", Position: "Dev", StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	end := time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)
	ended, err := s.experienceRepo.Update(ctx, w.ID, experience.Patch{EndDate: patch.Of(&end)})
	s.Require().NoError(err)
	s.False(ended.IsCurrent())

	deleted, err := s.experienceRepo.Delete(ctx, w.ID)
	s.NoError(err)
	s.True(deleted)
	deleted, err = s.projectRepo.Delete(ctx, 999)
	s.NoError(err)
	s.False(deleted)
}

func (s *ProfileRepoIntegrationTestSuite) Test_ExperienceDateCheckIsInvalidInput() {
	ctx := context.Background()
	owner := s.createProfile("Ada", "ada@example.com")

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, -1, 0)

	_, err := s.experienceRepo.Create(ctx, owner.ID, experience.NewWorkExperience{
		Company: "Acme", Position: "Dev", StartDate: start, EndDate: &before,
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	w, err := s.experienceRepo.Create(ctx, owner.ID, experience.NewWorkExperience{
		Company: "Acme", Position: "Dev", StartDate: start,
	})
	s.Require().NoError(err)

	// Skips the use case check, as a racing writer would.
	_, err = s.experienceRepo.Update(ctx, w.ID, experience.Patch{EndDate: patch.Of(&before)})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *ProfileRepoIntegrationTestSuite) Test_Search() {
	ctx := context.Background()
	ada := s.createProfile("Ada", "ada@example.com", "Rust")
	s.createProfile("Bob", "bob@example.com", "Go")

	for _, q := range []string{"rust", "RUST", "Rus"} {
		got, err := s.searchRepo.SearchProfiles(ctx, q, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(got, 1, q)
		s.Equal(ada.ID, got[0].ID)
	}

	got, err := s.searchRepo.SearchProfiles(ctx, "%", 0, 10)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *ProfileRepoIntegrationTestSuite) Test_ProjectsBySkill() {
	ctx := context.Background()
	ada := s.createProfile("Ada", "ada@example.com", "PostgreSQL")
	bob := s.createProfile("Bob", "bob@example.com", "Go")

	p, err := s.projectRepo.Create(ctx, ada.ID, project.NewProject{Title: "db", Description: "d"})
	s.Require().NoError(err)
	_, err = s.projectRepo.Create(ctx, bob.ID, project.NewProject{Title: "cli", Description: "d"})
	s.Require().NoError(err)

	got, err := s.searchRepo.ProjectsBySkill(ctx, "postgres")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(p.ID, got[0].ID)
}

func (s *ProfileRepoIntegrationTestSuite) Test_TopSkills_And_Summaries() {
	ctx := context.Background()
	s.createProfile("A", "a@example.com", "Go", "Rust")
	s.createProfile("B", "b@example.com", "Go")
	s.createProfile("C", "c@example.com")

	top, err := s.searchRepo.TopSkills(ctx, 1)
	s.Require().NoError(err)
	s.Equal([]skill.SkillCount{{Name: "Go", Count: 2}}, top)

	summaries, err := s.searchRepo.ProfileSummaries(ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(summaries, 3)
	s.Equal(2, summaries[0].SkillsCount)
	s.Equal(0, summaries[2].SkillsCount)
}

func (s *ProfileRepoIntegrationTestSuite) Test_UsersAndAudit() {
	ctx := context.Background()

	u := &user.User{Username: "admin", PasswordHash: "hash", Role: user.RoleAdmin}
	s.Require().NoError(s.userRepo.Upsert(ctx, u))
	s.NotZero(u.ID)

	found, err := s.userRepo.FindByUsername(ctx, "admin")
	s.Require().NoError(err)
	s.Equal("hash", found.PasswordHash)

	_, err = s.userRepo.FindByUsername(ctx, "ghost")
	s.ErrorIs(err, apperror.ErrNotFound)

	entry := audit.Entry{EventID: uuid.New(), EventType: "profile.created", ProfileID: 1, EntityID: 1, Actor: "admin", OccurredAt: time.Now()}
	s.Require().NoError(s.auditRepo.Append(ctx, entry))
	s.Require().NoError(s.auditRepo.Append(ctx, entry))
	s.Equal(1, s.countRows(`SELECT COUNT(*) FROM profile_audit_log`))
}
