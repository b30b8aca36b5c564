package config

import "github.com/spf13/viper"

// Config concentra toda a configuração lida do ambiente.
type Config struct {
	ServerAddress   string `mapstructure:"SERVER_ADDRESS"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          uint   `mapstructure:"DB_PORT"`
	DBName          string `mapstructure:"DB_NAME"`
	DBUsername      string `mapstructure:"DB_USERNAME"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBSecretID      string `mapstructure:"DB_SECRET_ID"`
	DBSSLDisable    bool   `mapstructure:"DB_SSL_MODE_DISABLE"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	CORSOrigins     []string
	AlertWebhookURL string `mapstructure:"ALERT_WEBHOOK_URL"`
	LogFormat       string `mapstructure:"LOG_FORMAT"`
}

// Load lê a configuração das variáveis de ambiente (o main carrega o .env
// via godotenv antes).
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "trading")
	v.SetDefault("LOG_FORMAT", "json")

	// AutomaticEnv não popula Unmarshal sem BindEnv explícito por chave.
	keys := []string{
		"SERVER_ADDRESS", "DB_HOST", "DB_PORT", "DB_NAME",
		"DB_USERNAME", "DB_PASSWORD", "DB_SECRET_ID", "DB_SSL_MODE_DISABLE",
		"JWT_SECRET", "ALERT_WEBHOOK_URL", "LOG_FORMAT",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	_ = v.BindEnv("CORS_ORIGINS")
	cfg.CORSOrigins = v.GetStringSlice("CORS_ORIGINS")
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return cfg, nil
}
