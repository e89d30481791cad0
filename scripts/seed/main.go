package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/adapters/persistence"
	"github.com/whopranjalshah/me-api-playground/internal/config"
	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/user"
	"github.com/whopranjalshah/me-api-playground/pkg/auth"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

// seed creates or updates the API account from SEED_USERNAME and
// SEED_PASSWORD, then inserts a demo profile into an empty database.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}
	log := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer log.Sync()

	username := strings.TrimSpace(os.Getenv("SEED_USERNAME"))
	password := os.Getenv("SEED_PASSWORD")
	role := os.Getenv("SEED_ROLE")
	if role == "" {
		role = user.RoleAdmin
	}
	if username == "" || password == "" {
		log.Fatal("Cannot seed account", errors.New("SEED_USERNAME and SEED_PASSWORD must be set"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal("Cannot hash password", err)
	}

	pool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer pool.Close()

	ctx := context.Background()
	u := &user.User{Username: username, PasswordHash: hash, Role: role}
	if err := persistence.NewPostgresUserRepo(pool).Upsert(ctx, u); err != nil {
		log.Fatal("Cannot add user", err)
	}
	log.Info("Added or updated account", zap.String("username", username), zap.String("role", role))

	profileRepo := persistence.NewPostgresProfileRepo(pool, log)
	existing, err := profileRepo.List(ctx, 0, 1)
	if err != nil {
		log.Fatal("Cannot list profiles", err)
	}
	if len(existing) > 0 {
		log.Info("Profiles already present, skipping demo data")
		return
	}

	p, err := profileRepo.Create(ctx, demoProfile())
	if err != nil {
		log.Fatal("Cannot create demo profile", err)
	}
	log.Info("Created demo profile", zap.Int64("profile_id", p.ID))
}

func demoProfile() profile.NewProfile {
	desc := "Backend engineer working on APIs and data pipelines."
	github := "https://github.com/example"
	links := `{"repo":"https://github.com/example/me-api-playground"}`
	end := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)

	return profile.NewProfile{
		Name:        "Demo Candidate",
		Email:       "demo@example.com",
		Description: &desc,
		GithubURL:   &github,
		Skills:      []string{"Go", "PostgreSQL", "Kafka", "Docker"},
		Projects: []project.NewProject{{
			Title:       "Profile API",
			Description: "REST API serving candidate profiles with search.",
			Links:       &links,
		}},
		WorkExperiences: []experience.NewWorkExperience{
			{
				Company:   "Acme Corp",
				Position:  "Software Engineer",
				StartDate: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
				EndDate:   &end,
			},
			{
				Company:   "Globex",
				Position:  "Senior Software Engineer",
				StartDate: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}
