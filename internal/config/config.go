package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"somiti-server/pkg/logger"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	IdentityFirebase = "firebase"
	IdentityMemory   = "memory"
)

type Config struct {
	HTTPPort       string
	Env            string
	AllowedOrigins []string
	MetricsEnabled bool
	BcryptCost     int
	Store          StoreConfig
	Mongo          MongoConfig
	DB             DBConfig
	Identity       IdentityConfig
	AMQP           AMQPConfig
}

type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type IdentityConfig struct {
	Provider        string
	CredentialsFile string
	Timeout         time.Duration
	ServiceAccount  ServiceAccount
}

// ServiceAccount mirrors the fields of a Google service-account key file so
// the credentials can be supplied through individual env vars.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

func (s ServiceAccount) Configured() bool {
	return s.ClientEmail != "" && s.PrivateKey != ""
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("PORT", getEnv("HTTP_PORT", "5000")),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		},
		Mongo: MongoConfig{
			URI:            getEnv("DB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("DB_DATABASE", "SomitiDB"),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "somiti"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Identity: IdentityConfig{
			Provider:        strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityFirebase)),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			Timeout:         getEnvDuration("IDENTITY_TIMEOUT", 10*time.Second),
			ServiceAccount: ServiceAccount{
				Type:         getEnv("TYPE", "service_account"),
				ProjectID:    getEnv("PROJECT_ID", ""),
				PrivateKeyID: getEnv("PRIVATE_KEY_ID", ""),
				PrivateKey:   strings.ReplaceAll(getEnv("PRIVATE_KEY", ""), `\n`, "\n"),
				ClientEmail:  getEnv("CLIENT_EMAIL", ""),
				ClientID:     getEnv("CLIENT_ID", ""),
				AuthURI:      getEnv("AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
				TokenURI:     getEnv("TOKEN_URI", "https://oauth2.googleapis.com/token"),
			},
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "somiti.events"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "transactions"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Identity.Provider {
	case IdentityFirebase, IdentityMemory:
	default:
		return fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
