package main

import (
	"log"
	"net/http"

	"busao_api/internal/config"
	"busao_api/internal/controllers"
	"busao_api/internal/logger"
	"busao_api/internal/middleware"
	"busao_api/internal/routes"
)

func main() {
	// Structured logging to a rotating file
	logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	auth := middleware.NewAuth(cfg.JWTSecret)

	r := routes.SetupRouter(routes.Controllers{
		Auth:  controllers.NewAuthController(db, auth),
		Lines: controllers.NewLineController(db),
		Stops: controllers.NewStopController(db),
		Users: controllers.NewUserController(db),
	}, auth)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚌 Server running at :%s", cfg.ServerPort)
	srvErr := http.ListenAndServe("0.0.0.0:"+cfg.ServerPort, handler)

	// Explicit teardown of the shared storage handle before exiting.
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Fatal(srvErr)
}
