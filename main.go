package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ThariniLelwala/EduBloom-sub000/app/config"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
	"github.com/ThariniLelwala/EduBloom-sub000/app/logger"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/auth"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/parents"
	"github.com/ThariniLelwala/EduBloom-sub000/app/routes/students"
	"github.com/ThariniLelwala/EduBloom-sub000/app/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logging)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store := database.NewStore(db)
	sessions := services.NewSessionManager(store, cfg.Session.TTL)
	linkService := services.NewLinkService(store, log)
	authService := services.NewAuthService(store, sessions, log)

	services.StartScheduler(store, cfg.Session, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: auth.ErrorHandler,
	})

	// Middleware
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Routes
	auth.SetupAuthRoutes(app, auth.NewHandler(authService, linkService, log), sessions)
	students.SetupStudentsRoutes(app, students.NewHandler(linkService, log), sessions)
	parents.SetupParentsRoutes(app, parents.NewHandler(linkService, log), sessions)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	log.Info().Str("address", cfg.Server.Address).Msg("Server starting")
	if err := app.Listen(cfg.Server.Address); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
