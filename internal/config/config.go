package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Auth     AuthConfig     `yaml:"auth"`
	Consul   ConsulConfig   `yaml:"consul"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Environment    string        `yaml:"environment"`
	GinMode        string        `yaml:"gin_mode"`
	ServiceName    string        `yaml:"service_name"`
	ServiceAddress string        `yaml:"service_address"`
	ServiceID      string        `yaml:"service_id"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// SeedUsers are inserted into the memory driver at startup. The mongo
	// driver reads users written by the auth service and ignores them.
	SeedUsers []SeedUser `yaml:"seed_users"`
}

type SeedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type MongoConfig struct {
	URI             string        `yaml:"uri"`
	Database        string        `yaml:"database"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	Transactions    bool          `yaml:"transactions"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RabbitMQConfig struct {
	URI      string `yaml:"uri"`
	Exchange string `yaml:"exchange"`
}

type AuthConfig struct {
	JWTSecret           string        `yaml:"jwt_secret"`
	TokenExpiry         time.Duration `yaml:"token_expiry"`
	TrustGatewayHeaders bool          `yaml:"trust_gateway_headers"`
}

type ConsulConfig struct {
	Address string `yaml:"address"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

// Default returns the configuration used when neither a YAML file nor
// environment variables say otherwise.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "5000",
			Environment:    "development",
			GinMode:        "debug",
			ServiceName:    "quiz-platform",
			ServiceAddress: "localhost",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{Driver: StorageMongo},
		Mongo: MongoConfig{
			URI:             "mongodb://localhost:27017",
			Database:        "quiz_platform",
			MaxPoolSize:     100,
			MinPoolSize:     10,
			MaxConnIdleTime: 60 * time.Second,
			ConnectTimeout:  10 * time.Second,
		},
		Redis: RedisConfig{TTL: 30 * time.Second},
		RabbitMQ: RabbitMQConfig{
			Exchange: "quiz.events",
		},
		Auth: AuthConfig{TokenExpiry: 24 * time.Hour},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
	}
}

// Load layers configuration: defaults, then the YAML file at path (if any),
// then a .env file, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("NODE_ENV", getEnv("APP_ENV", c.Server.Environment))
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Server.ServiceName = getEnv("SERVICE_NAME", c.Server.ServiceName)
	c.Server.ServiceAddress = getEnv("SERVICE_ADDRESS", c.Server.ServiceAddress)
	c.Server.ServiceID = getEnv("SERVICE_ID", c.Server.ServiceID)
	c.Server.ReadTimeout = getEnvAsDuration("READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	for _, id := range splitList(getEnv("SEED_USERS", "")) {
		c.Storage.SeedUsers = append(c.Storage.SeedUsers, SeedUser{ID: id})
	}

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)
	c.Mongo.MaxPoolSize = getEnvAsUint64("MONGO_MAX_POOL_SIZE", c.Mongo.MaxPoolSize)
	c.Mongo.MinPoolSize = getEnvAsUint64("MONGO_MIN_POOL_SIZE", c.Mongo.MinPoolSize)
	c.Mongo.Transactions = getEnvAsBool("MONGO_TRANSACTIONS", c.Mongo.Transactions)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvAsDuration("LEADERBOARD_CACHE_TTL", c.Redis.TTL)

	c.RabbitMQ.URI = getEnv("RABBITMQ_URI", c.RabbitMQ.URI)
	c.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", c.RabbitMQ.Exchange)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenExpiry = getEnvAsDuration("TOKEN_EXPIRY", c.Auth.TokenExpiry)
	c.Auth.TrustGatewayHeaders = getEnvAsBool("TRUST_GATEWAY_HEADERS", c.Auth.TrustGatewayHeaders)

	c.Consul.Address = getEnv("CONSUL_ADDR", c.Consul.Address)

	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}

	c.Log.File = getEnv("LOG_FILE", c.Log.File)

	if c.Server.ServiceID == "" {
		c.Server.ServiceID = c.Server.ServiceName + "-" + getEnv("HOSTNAME", "local")
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required when storage driver is %q", StorageMongo)
		}
	case StorageMemory:
		for _, u := range c.Storage.SeedUsers {
			if !primitive.IsValidObjectID(u.ID) {
				return fmt.Errorf("seed user id %q is not a valid object id", u.ID)
			}
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.TrustGatewayHeaders {
		return fmt.Errorf("JWT_SECRET is required unless gateway headers are trusted")
	}
	return nil
}

// IsProduction reports whether the service runs with the production CORS policy.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, err := strconv.ParseUint(getEnv(key, ""), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
