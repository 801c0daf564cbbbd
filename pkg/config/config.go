package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MYCREW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SinkLocal = "local"
	SinkGCS   = "gcs"

	EnvAppEnv      = "MYCREW_APP_ENV"
	EnvPort        = "MYCREW_APP_PORT"
	EnvDBDriver    = "MYCREW_DB_DRIVER"
	EnvDBDSN       = "MYCREW_DB_DSN"
	EnvDBHost      = "MYCREW_DB_HOST"
	EnvDBUser      = "MYCREW_DB_USER"
	EnvDBName      = "MYCREW_DB_NAME"
	EnvRedisURL    = "MYCREW_REDIS_URL"
	EnvExportSink  = "MYCREW_EXPORT_SINK"
	EnvGCSBucket   = "MYCREW_GCS_BUCKET_NAME"
	EnvGCPProject  = "MYCREW_GCP_PROJECT_ID"
	EnvCSVYesToken = "MYCREW_EXPORT_CSV_YES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Import       ImportConfig
	Export       ExportConfig
	Sweep        SweepConfig
	GCP          GCPConfig
	GCS          GCSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Export.Sink {
	case SinkLocal:
		if strings.TrimSpace(c.Export.Dir) == "" {
			return fmt.Errorf("%s=local requires MYCREW_EXPORT_DIR", EnvExportSink)
		}
	case SinkGCS:
		if c.GCS.BucketName == "" || c.GCP.ProjectID == "" {
			return fmt.Errorf("%s=gcs requires %s and %s", EnvExportSink, EnvGCSBucket, EnvGCPProject)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvExportSink, c.Export.Sink)
	}
	if strings.EqualFold(c.Export.CSVYesToken, c.Export.CSVNoToken) {
		return fmt.Errorf("%s must differ from the no token", EnvCSVYesToken)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"MYCREW_APP_ENV" required:"true"`
	Port         string `envconfig:"MYCREW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MYCREW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MYCREW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MYCREW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	Driver string `envconfig:"MYCREW_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"MYCREW_DB_DSN"`

	LegacyHost     string `envconfig:"MYCREW_DB_HOST"`
	LegacyPort     int    `envconfig:"MYCREW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MYCREW_DB_USER"`
	LegacyPassword string `envconfig:"MYCREW_DB_PASSWORD"`
	LegacyName     string `envconfig:"MYCREW_DB_NAME"`
	LegacySSLMode  string `envconfig:"MYCREW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MYCREW_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MYCREW_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MYCREW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MYCREW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MYCREW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MYCREW_REDIS_ADDR"`
	Password     string        `envconfig:"MYCREW_REDIS_PASSWORD"`
	DB           int           `envconfig:"MYCREW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MYCREW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MYCREW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MYCREW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MYCREW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MYCREW_REDIS_WRITE_TIMEOUT" default:"5s"`
	Namespace    string        `envconfig:"MYCREW_REDIS_NAMESPACE" default:"mycrew"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MYCREW_CORS_ALLOWED_ORIGINS" default:"*"`
}

type ImportConfig struct {
	MaxUploadBytes int64         `envconfig:"MYCREW_IMPORT_MAX_UPLOAD_BYTES" default:"10485760"`
	PendingTTL     time.Duration `envconfig:"MYCREW_IMPORT_PENDING_TTL" default:"30m"`
}

type ExportConfig struct {
	Sink        string `envconfig:"MYCREW_EXPORT_SINK" default:"local"`
	Dir         string `envconfig:"MYCREW_EXPORT_DIR" default:"exports"`
	CSVYesToken string `envconfig:"MYCREW_EXPORT_CSV_YES" default:"Oui"`
	CSVNoToken  string `envconfig:"MYCREW_EXPORT_CSV_NO" default:"Non"`
}

type SweepConfig struct {
	Interval time.Duration `envconfig:"MYCREW_SWEEP_INTERVAL" default:"24h"`
	OnBoot   bool          `envconfig:"MYCREW_SWEEP_ON_BOOT" default:"true"`
	LockTTL  time.Duration `envconfig:"MYCREW_SWEEP_LOCK_TTL" default:"10m"`
	// MetricsAddr is where the cron worker serves /metrics. Empty disables it.
	MetricsAddr string `envconfig:"MYCREW_SWEEP_METRICS_ADDR" default:":9091"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MYCREW_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MYCREW_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MYCREW_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"MYCREW_GCS_BUCKET_NAME"`
	Prefix     string `envconfig:"MYCREW_GCS_PREFIX" default:"exports"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MYCREW_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:mycrew.db?_foreign_keys=on"
		return nil
	}
	if !strings.EqualFold(db.Driver, DriverPostgres) {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
