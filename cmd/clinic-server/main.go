package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/sariva/clinic/internal/config"
	"github.com/sariva/clinic/internal/domain/appointment"
	"github.com/sariva/clinic/internal/domain/clinicsettings"
	"github.com/sariva/clinic/internal/domain/dashboard"
	"github.com/sariva/clinic/internal/domain/dietplan"
	"github.com/sariva/clinic/internal/domain/doctor"
	"github.com/sariva/clinic/internal/domain/medicine"
	"github.com/sariva/clinic/internal/domain/patient"
	"github.com/sariva/clinic/internal/domain/prescription"
	"github.com/sariva/clinic/internal/domain/reference"
	"github.com/sariva/clinic/internal/domain/rxprint"
	"github.com/sariva/clinic/internal/domain/user"
	"github.com/sariva/clinic/internal/platform/auth"
	"github.com/sariva/clinic/internal/platform/db"
	"github.com/sariva/clinic/internal/platform/gemini"
	"github.com/sariva/clinic/internal/platform/logging"
	"github.com/sariva/clinic/internal/platform/mail"
	"github.com/sariva/clinic/internal/platform/middleware"
)

const tokenIssuer = "sariva-clinic"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// withPool loads the config, opens the pool and hands both to fn.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				if dir == "" {
					dir = cfg.MigrationsDir
				}
				count, err := db.NewMigrator(pool, dir).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				if dir == "" {
					dir = cfg.MigrationsDir
				}
				statuses, err := db.NewMigrator(pool, dir).Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample data",
	}

	medicinesCmd := &cobra.Command{
		Use:   "medicines",
		Short: "Load the bundled medicine catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				svc := medicine.NewService(medicine.NewRepoPG(pool), db.NewTxRunner(pool))
				res, err := svc.Seed(ctx, force)
				if err != nil {
					return fmt.Errorf("seed medicines: %w", err)
				}
				if res.Skipped {
					fmt.Printf("Inventory already holds %d medicines; use --force to add the catalogue anyway.\n", res.Existing)
					return nil
				}
				fmt.Printf("Inserted %d medicine(s).\n", res.Inserted)
				return nil
			})
		},
	}
	medicinesCmd.Flags().Bool("force", false, "Seed even when the inventory is already populated")
	cmd.AddCommand(medicinesCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}

	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				u, err := user.NewService(user.NewRepoPG(pool)).CreateAdmin(ctx, name, email, password)
				if err != nil {
					return err
				}
				fmt.Printf("Created admin %s (%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	createAdminCmd.Flags().String("name", "Administrator", "Display name")
	createAdminCmd.Flags().String("email", "", "Login email")
	createAdminCmd.Flags().String("password", "", "Login password")
	cmd.AddCommand(createAdminCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stdout, logging.Options{
		Level:      cfg.LogLevel,
		Dev:        cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	loc := cfg.Location()

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Token revocation
	var revocations auth.RevocationStore
	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		revocations = auth.NewRedisRevocationStore(client)
		logger.Info().Msg("token revocations stored in redis")
	} else {
		mem := auth.NewMemoryRevocationStore()
		defer mem.Close()
		revocations = mem
	}

	signingKey, generated, err := resolveSigningKey(cfg.JWTSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve signing key")
	}
	if generated {
		logger.Warn().Msg("JWT_SECRET not set; tokens are signed with a random key and will not survive a restart")
	}
	tokens := auth.NewTokenIssuer(signingKey, tokenIssuer, cfg.JWTExpiresIn)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger, cfg.IsDev())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	jwtCfg := auth.JWTConfig{
		SigningKey:  signingKey,
		Issuer:      tokenIssuer,
		Revocations: revocations,
		Skipper:     auth.AuthSkipper,
		Logger:      logger,
	}
	if cfg.ResolvedAuthMode() == "development" {
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	api := e.Group("/api")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Clinic Management API is running",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	txRunner := db.NewTxRunner(pool)
	counter := db.NewCounter(pool)

	// Accounts
	userSvc := user.NewService(user.NewRepoPG(pool))
	user.NewHandler(userSvc, tokens, revocations, cfg.AllowRegistration).RegisterRoutes(api)

	// Patients and doctors
	patientSvc := patient.NewService(patient.NewRepoPG(pool), txRunner, counter)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	doctorSvc := doctor.NewService(doctor.NewRepoPG(pool), txRunner, userSvc)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)

	// Inventory
	medicineSvc := medicine.NewService(medicine.NewRepoPG(pool), txRunner)
	medicine.NewHandler(medicineSvc).RegisterRoutes(api)

	// Lookup lists
	for _, kind := range []reference.Kind{reference.Qualifications, reference.Specializations} {
		refSvc := reference.NewService(kind, reference.NewRepoPG(pool, kind))
		reference.NewHandler(refSvc).RegisterRoutes(api)
	}

	// Clinic settings
	settingsSvc := clinicsettings.NewService(clinicsettings.NewRepoPG(pool), txRunner)
	clinicsettings.NewHandler(settingsSvc).RegisterRoutes(api)

	// Appointments
	appointmentSvc := appointment.NewService(appointment.NewRepoPG(pool), txRunner, loc)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)

	// Prescriptions, printing and email
	prescriptionSvc := prescription.NewService(prescription.NewRepoPG(pool), txRunner, counter, patientSvc, doctorSvc, loc)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(api)

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
	})
	if !mailer.Enabled() {
		logger.Info().Msg("SMTP_HOST not set; prescription email is disabled")
	}
	rxprint.NewHandler(prescriptionSvc, settingsSvc, mailer, loc, logger).RegisterRoutes(api)

	// Dashboard
	dashboardSvc := dashboard.NewService(dashboard.NewRepoPG(pool), loc)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)

	// AI diet plans
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})
	if !cfg.GeminiConfigured() {
		logger.Info().Msg("GEMINI_API_KEY not set; diet plan generation is disabled")
	}
	dietplan.NewHandler(dietplan.NewService(geminiClient, cfg.GeminiConfigured(), logger)).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth_mode", cfg.ResolvedAuthMode()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// resolveSigningKey returns JWT_SECRET as the token signing key, or a random
// 32-byte key when it is empty. The second return value is true when a
// random key was generated.
func resolveSigningKey(secret string) ([]byte, bool, error) {
	if secret != "" {
		return []byte(secret), false, nil
	}
	key := make([]byte, 32)
	if _, err := crypto_rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("failed to generate random signing key: %w", err)
	}
	return key, true, nil
}
