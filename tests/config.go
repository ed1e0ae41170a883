package tests

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey string
	BaseURL      string
	Model        string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, falling back to environment variables")
	}

	return &Config{
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		BaseURL:      getEnv("PENPAL_BASE_URL", ""),
		Model:        getEnv("PENPAL_MODEL", "gpt-4o-mini"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
