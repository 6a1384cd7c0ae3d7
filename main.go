package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"triagelens/internal"
	"triagelens/internal/config"
	"triagelens/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if appConfig.Logging.Level != "" {
		internal.DefaultLogger.SetLevel(internal.ParseLogLevel(appConfig.Logging.Level))
	}
	gin.SetMode(appConfig.Server.GinMode)

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown()

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("Starting triagelens on port %s (upload limit %d MB)", appConfig.Server.Port, appConfig.Server.MaxUploadMB)
	if err := appContainer.Server.Start(appConfig.Server.Addr()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
