package config

import (
	"os"
	"strings"
)

type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDB       string
	DefaultLocale string
	ForecastURL   string
	GeocodeURL    string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGODB_DATABASE", "accshift"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "vi"),
		ForecastURL:   strings.TrimRight(getEnv("WEATHER_API_URL", "https://api.open-meteo.com"), "/"),
		GeocodeURL:    strings.TrimRight(getEnv("GEOCODE_API_URL", "https://geocoding-api.open-meteo.com"), "/"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
