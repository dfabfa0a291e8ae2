package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/eduinsight-server/internal/app"
	"github.com/godilite/eduinsight-server/internal/auth"
	"github.com/godilite/eduinsight-server/internal/config"
	"github.com/godilite/eduinsight-server/internal/service"
	"github.com/godilite/eduinsight-server/pkg/cache"
	dbbuilder "github.com/godilite/eduinsight-server/pkg/database"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	envFile string

	seedStudents    int
	seedSubmissions int
	seedValue       uint64

	tokenUserID int64
	tokenRole   string
	tokenName   string
	tokenTTL    time.Duration

	rootCmd = &cobra.Command{
		Use:           "eduinsight",
		Short:         "Course feedback analytics server",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(envFile)

			cfg = config.LoadFromEnv()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			var err error
			logger, err = config.NewLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers (default)",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load a demo catalogue and deterministic ratings",
		RunE:  runSeed,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a signed access token",
		RunE:  runToken,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment is read")

	seedCmd.Flags().IntVar(&seedStudents, "students", 100, "number of distinct student ids")
	seedCmd.Flags().IntVar(&seedSubmissions, "submissions", 300, "number of submissions to record")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 1, "random seed; equal seeds give equal data")

	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 1, "subject user id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleAdmin), "student, instructor or admin")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "full name carried in the claims")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, tokenCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	migrateCfg := *cfg
	migrateCfg.MigrateOnStart = false

	db, err := app.OpenDatabase(ctx, &migrateCfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return dbbuilder.Migrate(ctx, db, cfg.DBDriver, logger)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	db, err := app.OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Bump the shared cache generation so a running server sees the new data.
	var cacher service.Cacher
	if cfg.CacheEnabled {
		c, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			logger.Warn("cache unavailable; cached analytics expire by TTL only", zap.Error(err))
		} else {
			defer c.Close()
			cacher = c
		}
	}

	svc := app.NewServices(db, cfg, cacher, logger)
	report, err := app.Seed(ctx, svc, app.SeedOptions{
		Students:    seedStudents,
		Submissions: seedSubmissions,
		Seed:        seedValue,
	}, logger)
	if err != nil {
		return err
	}

	out, _ := json.Marshal(report)
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	raw, err := tokens.Issue(tokenUserID, auth.Role(tokenRole), tokenName, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), raw)
	return nil
}
