package config

import "os"

type Config struct {
	Port        string
	Env         string
	PostgresUrl string
	MongoURI    string
	RedisAddr   string
	SMTPAddr    string
	SMTPUser    string
	SMTPPass    string
	EmailFrom   string
	SiteName    string
	SiteURL     string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		PostgresUrl: getEnv("POSTGRES_URL", "http://localhost:5432"),
		MongoURI:    getEnv("MONGO_URI", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		SMTPAddr:    getEnv("SMTP_ADDR", "localhost:25"),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		EmailFrom:   getEnv("EMAIL_FROM", "Clearforum <noreply@clearforum.dev>"),
		SiteName:    getEnv("SITE_NAME", "Clearforum"),
		SiteURL:     getEnv("SITE_URL", "https://clearforum.dev"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
