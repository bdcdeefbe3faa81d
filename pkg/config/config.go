package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported document store drivers.
const (
	StoreDriverFile     = "file"
	StoreDriverMemory   = "memory"
	StoreDriverS3       = "s3"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	S3        S3Config
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Tables    TableConfig
	Realtime  RealtimeConfig
}

// StoreConfig selects and tunes the backing medium for the record collections.
type StoreConfig struct {
	Driver            string
	DataDir           string
	EquipmentDocument string
	MaintenanceDoc    string
	SerializeWrites   bool
	BootstrapEmpty    bool
}

// S3Config points the document store at an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	// URL (redis:// or rediss://) takes precedence over the discrete fields.
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
	Timeout  time.Duration
}

// CacheConfig toggles Redis-backed caching of aggregates.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// AuthConfig guards mutating routes with HS256 bearer tokens when enabled.
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard aggregates and cache tuning.
type DashboardConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// TableConfig governs server-held table sessions.
type TableConfig struct {
	SessionTTL  time.Duration
	MaxSessions int
}

// RealtimeConfig toggles the websocket change feed.
type RealtimeConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver:            strings.ToLower(v.GetString("STORE_DRIVER")),
		DataDir:           v.GetString("STORE_DATA_DIR"),
		EquipmentDocument: v.GetString("STORE_EQUIPMENT_DOCUMENT"),
		MaintenanceDoc:    v.GetString("STORE_MAINTENANCE_DOCUMENT"),
		SerializeWrites:   v.GetBool("STORE_SERIALIZE_WRITES"),
		BootstrapEmpty:    v.GetBool("STORE_BOOTSTRAP_EMPTY"),
	}

	cfg.S3 = S3Config{
		Bucket:    v.GetString("S3_BUCKET"),
		Region:    v.GetString("S3_REGION"),
		Endpoint:  v.GetString("S3_ENDPOINT"),
		Prefix:    v.GetString("S3_PREFIX"),
		PathStyle: v.GetBool("S3_PATH_STYLE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.SQLite = SQLiteConfig{Path: v.GetString("SQLITE_PATH")}

	cfg.Redis = RedisConfig{
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Timeout:  parseDuration(v.GetString("REDIS_TIMEOUT"), 2*time.Second),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 10*time.Minute),
	}

	cfg.Auth = AuthConfig{
		Enabled:   v.GetBool("AUTH_ENABLED"),
		JWTSecret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	recent := v.GetInt("RECENT_MAINTENANCE_LIMIT")
	if recent <= 0 {
		recent = 5
	}
	cfg.Dashboard = DashboardConfig{
		CacheTTL:    parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		RecentLimit: recent,
	}

	cfg.Tables = TableConfig{
		SessionTTL:  parseDuration(v.GetString("TABLE_SESSION_TTL"), 30*time.Minute),
		MaxSessions: v.GetInt("TABLE_MAX_SESSIONS"),
	}

	cfg.Realtime = RealtimeConfig{Enabled: v.GetBool("ENABLE_REALTIME")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverFile)
	v.SetDefault("STORE_DATA_DIR", "./data")
	v.SetDefault("STORE_EQUIPMENT_DOCUMENT", "equipmentRecordData.json")
	v.SetDefault("STORE_MAINTENANCE_DOCUMENT", "maintenanceRecordData.json")
	v.SetDefault("STORE_SERIALIZE_WRITES", true)
	v.SetDefault("STORE_BOOTSTRAP_EMPTY", true)

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PREFIX", "collections/")
	v.SetDefault("S3_PATH_STYLE", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "maintenance_tracker")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SQLITE_PATH", "./data/collections.db")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TIMEOUT", "2s")
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_DEFAULT_TTL", "10m")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("RECENT_MAINTENANCE_LIMIT", 5)

	v.SetDefault("TABLE_SESSION_TTL", "30m")
	v.SetDefault("TABLE_MAX_SESSIONS", 256)

	v.SetDefault("ENABLE_REALTIME", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
