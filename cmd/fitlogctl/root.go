package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/logging"
	"github.com/mansoorceksport/fitlog/internal/repository"
	"github.com/mansoorceksport/fitlog/internal/server"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/spf13/cobra"
)

var (
	flagUser  string
	flagEmail string
)

var rootCmd = &cobra.Command{
	Use:           "fitlogctl",
	Short:         "Operator tool for the FitLog store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user id")
	rootCmd.PersistentFlags().StringVarP(&flagEmail, "email", "e", "", "user email, instead of --user")
}

// env is the configuration and store shared by commands that touch user data
type env struct {
	cfg      *config.Config
	sessions *service.WorkoutSessions
	userID   string
	close    func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(logging.SetupParams{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	return cfg, nil
}

// openEnv connects the store and resolves --user / --email to a user id
func openEnv(ctx context.Context) (*env, error) {
	if flagUser == "" && flagEmail == "" {
		return nil, fmt.Errorf("--user or --email is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userID := flagUser
	if userID == "" {
		user, err := repository.NewKVUserRepository(store).GetByEmail(ctx, strings.TrimSpace(flagEmail))
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("failed to find user %s: %w", flagEmail, err)
		}
		userID = user.ID
	}

	return &env{
		cfg:      cfg,
		sessions: service.NewWorkoutSessions(repository.NewKVWorkoutStore(store), cfg.Location()),
		userID:   userID,
		close:    closeStore,
	}, nil
}

func (e *env) repository(ctx context.Context) (*service.WorkoutRepository, error) {
	return e.sessions.For(ctx, e.userID)
}
