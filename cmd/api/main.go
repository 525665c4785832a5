package main

import (
	"os"

	"github.com/yigit/swimdesk/internal/bootstrap"
	"github.com/yigit/swimdesk/internal/config"
	"github.com/yigit/swimdesk/internal/pkg/logger"
	"github.com/yigit/swimdesk/internal/server"
)

// @title SwimDesk API
// @version 1.0
// @description Front-desk and admin API for a swim school: class catalog, sessions, enrollments, rosters and payments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := config.GetEnv("CONFIG_PATH", bootstrap.DefaultConfigPath)

	srv, err := server.NewServer(configPath)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
