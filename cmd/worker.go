package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/activity"
	activityPostgres "github.com/frahmantamala/attendance-tracking/internal/activity/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-tracking/internal/attendance/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/location"
	locationPostgres "github.com/frahmantamala/attendance-tracking/internal/location/postgres"
	"github.com/frahmantamala/attendance-tracking/internal/scheduler"
	"github.com/frahmantamala/attendance-tracking/internal/settings"
	settingsPostgres "github.com/frahmantamala/attendance-tracking/internal/settings/postgres"
	userPostgres "github.com/frahmantamala/attendance-tracking/internal/user/postgres"
	"github.com/frahmantamala/attendance-tracking/pkg/logger"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers without the HTTP surface.`,
}

// Sweep worker command
var sweepWorkerCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Start the auto-checkout sweeper",
	Long:  `Run the auto-checkout and location-retention sweeps standalone, for deployments that separate them from the API server.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus with the activity-log subscribers attached.`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

func startSweepWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(config.Attendance.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load timezone: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewEventBus(appLogger)

	attendanceRepo := attendancePostgres.NewAttendanceRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	locationRepo := locationPostgres.NewLocationRepository(gormDB)
	settingsService := settings.NewService(settingsPostgres.NewSettingsRepository(gormDB), appLogger)

	activityService := activity.NewService(activityPostgres.NewActivityRepository(gormDB), appLogger)
	activity.NewEventHandler(activityService, appLogger).RegisterEventHandlers(bus)

	attendanceService := attendance.NewService(attendanceRepo, userRepo, settingsService, bus, loc, appLogger)
	locationService := location.NewService(locationRepo, attendanceService, nil, nil, nil, config.Location.Retention, appLogger)

	sched := scheduler.New(config.Attendance.SweepInterval, appLogger)
	sched.Register(attendance.NewSweeper(attendanceRepo, userRepo, settingsService, bus, loc, appLogger))
	sched.Register(locationService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	appLogger.Info("sweep worker is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	appLogger.Info("received signal, shutting down sweep worker", "signal", sig)

	sched.Stop()
	appLogger.Info("sweep worker shutdown complete")
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(appLogger)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		appLogger.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	appLogger.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	appLogger.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	appLogger.Info("received signal, shutting down event bus", "signal", sig)
	appLogger.Info("event bus shutdown complete")
}

func init() {
	workerCmd.AddCommand(sweepWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
