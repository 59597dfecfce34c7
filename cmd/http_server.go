package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal"
	"github.com/frahmantamala/attendance-tracking/internal/activity"
	activityPostgres "github.com/frahmantamala/attendance-tracking/internal/activity/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/admin"
	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-tracking/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/auth"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/devicelock"
	devicelockPostgres "github.com/frahmantamala/attendance-tracking/internal/devicelock/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	locationPostgres "github.com/frahmantamala/attendance-tracking/internal/location/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/scheduler"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	settingsPostgres "github.com/frahmantamala/attendance-tracking/internal/settings/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/transport/rest"
	"github.com/frahmantamala/attendance-tracking/internal/user"
	userPostgres "github.com/frahmantamala/attendance-tracking/internal/user/postgres"
	"github.com/frahmantamala/attendance-tracking/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Router    *chi.Mux
	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	deps.Scheduler.Start(schedulerCtx)

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Scheduler.Stop()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-open pgx connection pool
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	loc, err := time.LoadLocation(config.Attendance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	bus := events.NewEventBus(appLogger)

	// repositories
	userRepo := userPostgres.NewUserRepository(gormDB)
	deviceRepo := devicelockPostgres.NewDeviceRepository(gormDB)
	attendanceRepo := attendancePostgres.NewAttendanceRepository(gormDB)
	locationRepo := locationPostgres.NewLocationRepository(gormDB)
	activityRepo := activityPostgres.NewActivityRepository(gormDB)
	settingsRepo := settingsPostgres.NewSettingsRepository(gormDB)

	// settings are seeded once here, then read per sweep tick
	settingsService := settings.NewService(settingsRepo, appLogger)
	if err := settingsService.EnsureDefaults(); err != nil {
		return nil, fmt.Errorf("failed to seed default settings: %w", err)
	}

	userService := user.NewService(userRepo, config.Security.BCryptCost, appLogger)
	attendanceService := attendance.NewService(attendanceRepo, userRepo, settingsService, bus, loc, appLogger)

	remoteClient := location.NewClient(config.Location.ServiceBaseURL, config.Location.RequestTimeout, appLogger)
	geocoder := location.NewGeocoder(config.Location.GeocodeBaseURL, config.Location.RequestTimeout, appLogger)
	locationService := location.NewService(locationRepo, attendanceService, userService, remoteClient, geocoder, config.Location.Retention, appLogger)

	activityService := activity.NewService(activityRepo, appLogger)
	activity.NewEventHandler(activityService, appLogger).RegisterEventHandlers(bus)

	guard := devicelock.NewGuard(deviceRepo, bus, appLogger)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	// logout closes any open attendance record; already-closed is not an error
	logoutCheckout := func(ctx context.Context, u *user.User, ip string) error {
		_, err := attendanceService.CheckOut(ctx, u, ip, events.TriggerLogout)
		if errors.Is(err, internal.ErrNotCheckedIn) {
			return nil
		}
		return err
	}
	authService := auth.NewService(userRepo, tokenGen, guard, logoutCheckout, bus, appLogger)

	adminService := admin.NewService(userService, attendanceService, locationService, activityService, settingsService, appLogger)

	sched := scheduler.New(config.Attendance.SweepInterval, appLogger)
	sched.Register(attendance.NewSweeper(attendanceRepo, userRepo, settingsService, bus, loc, appLogger))
	sched.Register(locationService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(
		router,
		db.DB,
		auth.NewHandler(authService),
		attendance.NewHandler(attendanceService),
		location.NewHandler(locationService),
		admin.NewHandler(adminService),
		appLogger,
	)

	return &Dependencies{
		Config:    config,
		Logger:    appLogger,
		DB:        db,
		Router:    router,
		Scheduler: sched,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
