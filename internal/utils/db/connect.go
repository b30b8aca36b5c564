package db

import (
	"fmt"

	"github.com/YarnBridge/api-trading/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect abre a conexão Postgres. Credenciais vêm da configuração ou,
// quando ausentes, do Secrets Manager.
func Connect(cfg config.Config) (*gorm.DB, error) {
	username, password := cfg.DBUsername, cfg.DBPassword
	if username == "" || password == "" {
		var err error
		username, password, err = retrieveCredentials(cfg.DBSecretID)
		if err != nil {
			return nil, err
		}
	}

	var sslMode string
	if cfg.DBSSLDisable {
		sslMode = " sslmode=disable"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.DBHost, username, password, cfg.DBName, cfg.DBPort, sslMode)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
}
