package app

import (
	"github.com/yungbote/toxicity-backend/internal/pkg/envutil"
)

type Config struct {
	HTTPAddr string
	LogMode  string
	Version  string
}

func LoadConfig() Config {
	return Config{
		HTTPAddr: envutil.String("HTTP_ADDR", ":8080"),
		LogMode:  envutil.String("LOG_MODE", "development"),
		Version:  envutil.String("SERVICE_VERSION", "dev"),
	}
}
