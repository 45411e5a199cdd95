package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvFileVar     = "ENV_FILE"
	DefaultEnvFile = ".env"
)

// LoadEnv loads the dotenv file named by ENV_FILE, or .env, into the
// process environment without overriding variables already set. It returns
// the file it tried so callers can log a miss.
func LoadEnv() (string, error) {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = DefaultEnvFile
	}
	return path, godotenv.Load(path)
}
