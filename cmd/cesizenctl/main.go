package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cesizen/internal/config"
	"cesizen/internal/db"
	"cesizen/internal/domain"
	"cesizen/internal/repository"
	"cesizen/internal/service"
)

var (
	emailFlag = &cli.StringFlag{
		Name:     "email",
		Usage:    "Email of the administrator account",
		Required: true,
	}

	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "Initial password (min 8 chars, one letter and one digit)",
		Required: true,
		Sources:  cli.EnvVars("CESIZEN_ADMIN_PASSWORD"),
	}

	nameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Display name",
		Value: "Administrateur",
	}

	statusFlag = &cli.BoolFlag{
		Name:  "status",
		Usage: "Only print the current schema version",
	}
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cmd := &cli.Command{
		Name:  "cesizenctl",
		Usage: "Administrative tasks for the CESIZen API",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Applies pending database migrations",
				Flags: []cli.Flag{statusFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withPool(ctx, func(pool *pgxpool.Pool) error {
						if !cmd.Bool(statusFlag.Name) {
							if err := db.Migrate(ctx, pool); err != nil {
								return err
							}
						}
						version, err := db.MigrationVersion(ctx, pool)
						if err != nil {
							return err
						}
						logger.Info("schema version", zap.Int64("version", version))
						return nil
					})
				},
			},
			{
				Name:  "seed-catalog",
				Usage: "Inserts or refreshes the default stress event catalog",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return withPool(ctx, func(pool *pgxpool.Pool) error {
						catalog := service.NewCatalogService(logger, repository.NewPgStressEventRepository(pool), nil, 0, nil)
						n, err := catalog.Seed(ctx)
						if err != nil {
							return err
						}
						logger.Info("stress catalog seeded", zap.Int("events", n))
						return nil
					})
				},
			},
			{
				Name:  "create-admin",
				Usage: "Creates an administrator account",
				Flags: []cli.Flag{emailFlag, passwordFlag, nameFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withPool(ctx, func(pool *pgxpool.Pool) error {
						users := service.NewUserService(logger, repository.NewPgUserRepository(pool), nil, nil)
						user, err := users.CreateUser(ctx, service.CreateUserInput{
							Email:       cmd.String(emailFlag.Name),
							DisplayName: cmd.String(nameFlag.Name),
							Password:    cmd.String(passwordFlag.Name),
							Role:        domain.RoleAdmin,
						})
						if err != nil {
							return fmt.Errorf("creating admin: %w", err)
						}
						logger.Info("admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
						return nil
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}
