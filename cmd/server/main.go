package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/api/handlers"
	"github.com/emberfeed/emberfeed/internal/api/middleware"
	job "github.com/emberfeed/emberfeed/internal/jobs"
	"github.com/emberfeed/emberfeed/internal/queue"
	"github.com/emberfeed/emberfeed/internal/repository"
	"github.com/emberfeed/emberfeed/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
	}))

	historyRepo := repository.NewDispatchHistoryRepository(db)

	sheetsService, err := service.NewSheetsService(context.Background(), *cfg)
	if err != nil {
		log.Fatalf("Failed to create Sheets service: %v", err)
	}
	blueskyService := service.NewBlueskyService(*cfg)
	dispatchService := service.NewDispatchService(*cfg, sheetsService, blueskyService, historyRepo)
	emberService := service.NewEmberService(*cfg)
	reportService := service.NewReportService(*cfg, sheetsService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	dispatch := handlers.NewDispatchHandler(historyRepo, client)
	api.Post("/dispatch/run", dispatch.TriggerRun)
	api.Get("/dispatch/history", dispatch.History)

	report := handlers.NewReportHandler(*cfg, client)
	api.Post("/reports/refresh", report.TriggerRefresh)

	// cron jobs
	scheduleJob := job.NewScheduleJob(*cfg, client)

	// queue
	queueW := queue.NewQueue(*cfg, dispatchService, emberService, reportService)

	c := cron.New()
	c.AddFunc(cfg.DispatchCron, scheduleJob.RunDispatch)
	c.AddFunc(cfg.RefreshCron, scheduleJob.RefreshCountries)
	c.Start()

	go func() {
		// Concurrency 1 keeps dispatch runs single-flight; overlapping runs
		// could double-post a row before its status write commits.
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatchRun, queueW.HandleDispatchRunTask)
		mux.HandleFunc(queue.TaskTypeEmberRefresh, queueW.HandleEmberRefreshTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
