package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	ResetPassword ResetPasswordConfig
	Messenger     MessengerConfig
	SMTP          SMTPConfig
	SNS           SNSConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret                 string
	AccessLifetimeMinutes  int
	RefreshLifetimeHours   int
	RotateRefreshTokens    bool
	BlacklistAfterRotation bool
}

type ResetPasswordConfig struct {
	// CodeExpirationHours bounds how long a one-time code stays
	// consumable after creation.
	CodeExpirationHours int
	// TokenLifetimeMinutes bounds the signed reset token handed out
	// after a code is validated.
	TokenLifetimeMinutes int
}

type MessengerConfig struct {
	// Default selects the delivery channel: "EMAIL" or "SMS".
	Default string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SNSConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("JWT_ACCESS_LIFETIME_MINUTES", 5)
	viper.SetDefault("JWT_REFRESH_LIFETIME_HOURS", 24)
	viper.SetDefault("JWT_ROTATE_REFRESH_TOKENS", true)
	viper.SetDefault("JWT_BLACKLIST_AFTER_ROTATION", true)
	viper.SetDefault("RESET_CODE_EXPIRATION_HOURS", 24)
	viper.SetDefault("RESET_TOKEN_LIFETIME_MINUTES", 60)
	viper.SetDefault("DEFAULT_MESSENGER", "EMAIL")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:                 viper.GetString("JWT_SECRET"),
			AccessLifetimeMinutes:  viper.GetInt("JWT_ACCESS_LIFETIME_MINUTES"),
			RefreshLifetimeHours:   viper.GetInt("JWT_REFRESH_LIFETIME_HOURS"),
			RotateRefreshTokens:    viper.GetBool("JWT_ROTATE_REFRESH_TOKENS"),
			BlacklistAfterRotation: viper.GetBool("JWT_BLACKLIST_AFTER_ROTATION"),
		},
		ResetPassword: ResetPasswordConfig{
			CodeExpirationHours:  viper.GetInt("RESET_CODE_EXPIRATION_HOURS"),
			TokenLifetimeMinutes: viper.GetInt("RESET_TOKEN_LIFETIME_MINUTES"),
		},
		Messenger: MessengerConfig{
			Default: viper.GetString("DEFAULT_MESSENGER"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		SNS: SNSConfig{
			AccessKey: viper.GetString("AWS_ACCESS_KEY"),
			SecretKey: viper.GetString("AWS_SECRET_KEY"),
			Region:    viper.GetString("AWS_REGION"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *JWTConfig) AccessLifetime() time.Duration {
	return time.Duration(c.AccessLifetimeMinutes) * time.Minute
}

func (c *JWTConfig) RefreshLifetime() time.Duration {
	return time.Duration(c.RefreshLifetimeHours) * time.Hour
}

func (c *ResetPasswordConfig) CodeExpiration() time.Duration {
	return time.Duration(c.CodeExpirationHours) * time.Hour
}

func (c *ResetPasswordConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}
