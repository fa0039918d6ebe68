package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads the first readable .env file of the working directory.
// Variables already set in the environment win. Load calls it; callers that
// run without a configuration file call it themselves.
func LoadEnvFiles() {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", "path", path)
			return
		}
	}
}
