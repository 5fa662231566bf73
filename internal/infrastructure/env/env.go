package env

import (
	"fmt"
	"os"

	"chat-harvester/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

type EnvService struct {
	appEnv string
	loaded []string
}

// NewEnvService loads .env and then .env.<APP_ENV> over it. Both files are
// optional; real environment variables always win over .env.
func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	e := &EnvService{appEnv: appEnv}
	if err := godotenv.Load(".env"); err == nil {
		e.loaded = append(e.loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		e.loaded = append(e.loaded, envFile)
	}
	return e
}

func (e *EnvService) AppEnv() string { return e.appEnv }

// Loaded lists the env files that were found and applied.
func (e *EnvService) Loaded() []string { return e.loaded }

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
