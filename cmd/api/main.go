package main

import (
	"os"

	"amigella/cmd/internal/domain/sqlite"
	"amigella/cmd/internal/domain/sqlite/repository"
	"amigella/cmd/internal/integration/gemini"
	"amigella/cmd/internal/routes"
	"amigella/cmd/internal/scheduling"
	"amigella/cmd/internal/service"
	"amigella/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	err := godotenv.Load()
	if err != nil {
		log.Warn("no .env file found, relying on environment")
	}

	// Init SQLite
	db, err := sqlite.Init()
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Gemini capability client (transcription + extraction)
	geminiClient, err := gemini.InitClient()
	if err != nil {
		log.Fatal("failed to initialize gemini client", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	catRepo := repository.NewCategoryRepository(db)
	vlogRepo := repository.NewVoiceLogRepository(db)
	decRepo := repository.NewDecisionRepository(db)

	// The reconciler owns every checked appointment mutation.
	engine := scheduling.NewReconciler(apptRepo, catRepo, vlogRepo, decRepo, geminiClient)

	// Getting services
	userService := service.NewUserService(userRepo, catRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, userRepo, engine, validate)
	voiceService := service.NewVoiceService(userRepo, vlogRepo, engine)
	sentinelService := service.NewSentinelService(apptRepo, userRepo, engine, validate)
	catService := service.NewCategoryService(catRepo)

	// Getting routes
	userRoutes := routes.NewUserDefault(userService)
	apptRoutes := routes.NewAppointmentDefault(apptService)
	voiceRoutes := routes.NewVoiceDefault(voiceService)
	sentinelRoutes := routes.NewSentinelDefault(sentinelService)
	catRoutes := routes.NewCategoryDefault(catService)

	e := echo.New()
	e.Use(middleware.CORS())

	// Appointments
	e.GET("/api/appointments", apptRoutes.GetAppointments)
	e.GET("/api/appointments/today", apptRoutes.GetToday)
	e.POST("/api/appointments", apptRoutes.CreateAppointment)
	e.PUT("/api/appointments/:id", apptRoutes.UpdateAppointment)
	e.DELETE("/api/appointments/:id", apptRoutes.DeleteAppointment)
	e.GET("/api/free-slots", apptRoutes.GetFreeSlots)

	// Voice intake
	e.POST("/api/voice/transcribe", voiceRoutes.Transcribe)
	e.GET("/api/voice-logs", voiceRoutes.GetVoiceLogs)

	// Sentinel
	e.POST("/api/sentinel/check", sentinelRoutes.Check)
	e.POST("/api/sentinel/force-add", sentinelRoutes.ForceAdd)

	// Categories
	e.GET("/api/categories", catRoutes.GetCategories)

	// Users
	e.POST("/api/users", userRoutes.Register)
	e.POST("/api/users/login", userRoutes.Login)

	// Health
	e.GET("/api/health", health)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	err = e.Start(":" + port)
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func health(c echo.Context) error {
	return c.JSON(200, echo.Map{"status": "OK"})
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("hasupper", validators.HasUpper)
	_ = validate.RegisterValidation("haslower", validators.HasLower)
	_ = validate.RegisterValidation("hasdigit", validators.HasDigit)
	_ = validate.RegisterValidation("hasspecial", validators.HasSpecial)
	_ = validate.RegisterValidation("nospaces", validators.NoWhiteSpaces)
	_ = validate.RegisterValidation("iso8601", validators.IsIso8601)
}
