package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/imgup/internal/upload"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first .env/.env.local file found in the working
// directory. Existing process variables are never overwritten.
func loadEnvFile() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("path", path))
		return
	}
}

// expandEnv substitutes $VAR and ${VAR} from the environment. The upload file
// sentinel is kept verbatim.
func expandEnv(s string) string {
	sentinel := strings.TrimPrefix(upload.FileSentinel, "$")
	return os.Expand(s, func(key string) string {
		if key == sentinel {
			return upload.FileSentinel
		}
		return os.Getenv(key)
	})
}
