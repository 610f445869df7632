package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	JWTSecret            string
	AutomationWebhookURL string
	ProxyUpstreamURL     string
	ProxyOrigin          string
}

func NewConfig() *Config {
	// .env é opcional; em produção as variáveis vêm do ambiente
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8081"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret-change-me"),
		AutomationWebhookURL: os.Getenv("AUTOMATION_WEBHOOK_URL"),
		ProxyUpstreamURL:     getEnv("PROXY_UPSTREAM_URL", "https://bloodykomododragon-n8n.cloudfy.live/webhook/aria-final"),
		ProxyOrigin:          getEnv("PROXY_ORIGIN", "https://bloodykomododragon-n8n.cloudfy.live"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
