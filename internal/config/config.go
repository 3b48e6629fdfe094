package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Store      StoreConfig      `validate:"required"`
	Postgres   PostgresConfig
	Supabase   SupabaseConfig
	Bolt       BoltConfig
	Cache      CacheConfig    `validate:"required"`
	Sequence   SequenceConfig `validate:"required"`
	Drafts     DraftsConfig
	Render     RenderConfig
	Export     ExportConfig `validate:"required"`
	S3         S3Config
	Share      ShareConfig
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// StoreConfig selects the Invoice Record Store backend
type StoreConfig struct {
	Backend types.StoreBackend `validate:"required,oneof=postgres supabase bolt"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	AutoMigrate            bool
}

type SupabaseConfig struct {
	BaseURL    string
	ServiceKey string
	Table      string
}

// BoltConfig is the file used by the offline invoice store
type BoltConfig struct {
	Path string
}

// CacheConfig describes the Local Cache Store holding the fallback sequence counter
type CacheConfig struct {
	Backend    types.CacheBackend `validate:"required,oneof=bolt memory"`
	Path       string
	QuotaBytes int
}

type SequenceConfig struct {
	Prefix   string `validate:"required,alphanum"`
	Width    int    `validate:"gte=1"`
	CacheKey string `validate:"required"`
}

type DraftsConfig struct {
	TTL time.Duration
}

type RenderConfig struct {
	TypstBinary string
	WorkDir     string
	FontDir     string
	Scale       int
}

type ExportConfig struct {
	Saver     types.SaverKind `validate:"required,oneof=filesystem s3"`
	OutputDir string
}

type S3Config struct {
	Enabled               bool
	Region                string
	Bucket                string
	KeyPrefix             string
	PresignExpiryDuration string
}

type ShareConfig struct {
	PublicBaseURL string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, real deployments use the environment directly
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/invoicegen")

	v.SetEnvPrefix("INVOICEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopenconns", 10)
	v.SetDefault("postgres.maxidleconns", 5)
	v.SetDefault("postgres.connmaxlifetimeminutes", 30)
	v.SetDefault("supabase.table", d.Supabase.Table)
	v.SetDefault("bolt.path", d.Bolt.Path)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.quotabytes", d.Cache.QuotaBytes)
	v.SetDefault("sequence.prefix", d.Sequence.Prefix)
	v.SetDefault("sequence.width", d.Sequence.Width)
	v.SetDefault("sequence.cachekey", d.Sequence.CacheKey)
	v.SetDefault("drafts.ttl", d.Drafts.TTL)
	v.SetDefault("render.typstbinary", d.Render.TypstBinary)
	v.SetDefault("render.scale", d.Render.Scale)
	v.SetDefault("export.saver", d.Export.Saver)
	v.SetDefault("export.outputdir", d.Export.OutputDir)
	v.SetDefault("s3.presignexpiryduration", "30m")
	v.SetDefault("sentry.samplerate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Store:      StoreConfig{Backend: types.StoreBackendBolt},
		Supabase:   SupabaseConfig{Table: "invoices"},
		Bolt:       BoltConfig{Path: "data/invoices.db"},
		Cache: CacheConfig{
			Backend:    types.CacheBackendBolt,
			Path:       "data/cache.db",
			QuotaBytes: 5 << 20,
		},
		Sequence: SequenceConfig{
			Prefix:   "GP",
			Width:    4,
			CacheKey: "invoiceGenerator_sequence",
		},
		Drafts: DraftsConfig{TTL: 2 * time.Hour},
		Render: RenderConfig{TypstBinary: "typst", Scale: 2},
		Export: ExportConfig{Saver: types.SaverFilesystem, OutputDir: "exports"},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
