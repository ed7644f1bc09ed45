package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv           string
	ServiceName      string
	ServiceVersion   string
	HTTPAddr         string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	LogLevel         logging.Level
	InternalJobToken string
	MetricsEnabled   bool

	StoreDriver             string
	DBURL                   string
	DBDisablePreparedBinary bool
	BoltPath                string
	CacheEnabled            bool
	CacheTTL                time.Duration

	FootballDataEnabled        bool
	FootballDataBaseURL        string
	FootballDataToken          string
	FootballDataDetailsEnabled bool
	ESPNSiteBaseURL            string
	ESPNCoreEnabled            bool
	ESPNCoreBaseURL            string

	FetchTimeout               time.Duration
	FetchMinInterval           time.Duration
	FetchMaxRetries            int
	FetchBackoffBase           time.Duration
	FetchBackoffMax            time.Duration
	FetchCircuitEnabled        bool
	FetchCircuitFailureCount   int
	FetchCircuitOpenTimeout    time.Duration
	FetchCircuitHalfOpenMaxReq int

	IngestEnabled            bool
	IngestInterval           time.Duration
	IngestRunOnStart         bool
	IngestCompetitions       string
	IngestWindowDays         int
	IngestSliceDays          int
	IngestCompetitionWorkers int
	IngestSecondaryEnabled   bool
	IngestDetailLookback     time.Duration

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:           appEnv,
		ServiceName:      getEnv("APP_SERVICE_NAME", "matchfeed-ingestor"),
		ServiceVersion:   getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:         getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:         parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_READ_TIMEOUT and APP_WRITE_TIMEOUT must be > 0")
	}
	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}

	if err := loadStore(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadSources(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadFetch(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadIngest(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDatabaseURL reads only the database keys; the migration binary needs
// nothing else.
func LoadDatabaseURL() (string, error) {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return "", fmt.Errorf("DB_URL is required")
	}
	disable, err := getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", false)
	if err != nil {
		return "", err
	}
	return NormalizeDBURL(dbURL, disable), nil
}

func loadStore(cfg *Config) error {
	var err error
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory)))
	switch cfg.StoreDriver {
	case StoreMemory, StorePostgres, StoreBolt:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s, %s", cfg.StoreDriver, StoreMemory, StorePostgres, StoreBolt)
	}

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.StoreDriver == StorePostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
	}
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", false); err != nil {
		return err
	}
	cfg.BoltPath = strings.TrimSpace(getEnv("BOLT_PATH", "./data/matchfeed.db"))
	if cfg.StoreDriver == StoreBolt && cfg.BoltPath == "" {
		return fmt.Errorf("BOLT_PATH is required when STORE_DRIVER=bolt")
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "30s"); err != nil {
		return err
	}
	if cfg.CacheEnabled && cfg.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0 when CACHE_ENABLED=true")
	}
	return nil
}

func loadSources(cfg *Config) error {
	var err error
	if cfg.FootballDataEnabled, err = getEnvAsBool("FOOTBALLDATA_ENABLED", false); err != nil {
		return err
	}
	cfg.FootballDataBaseURL = strings.TrimSpace(getEnv("FOOTBALLDATA_BASE_URL", "https://api.football-data.org/v4"))
	cfg.FootballDataToken = strings.TrimSpace(getEnv("FOOTBALLDATA_TOKEN", ""))
	if cfg.FootballDataEnabled && cfg.FootballDataToken == "" {
		return fmt.Errorf("FOOTBALLDATA_TOKEN is required when FOOTBALLDATA_ENABLED=true")
	}
	if cfg.FootballDataDetailsEnabled, err = getEnvAsBool("FOOTBALLDATA_DETAILS_ENABLED", false); err != nil {
		return err
	}

	cfg.ESPNSiteBaseURL = strings.TrimSpace(getEnv("ESPN_SITE_BASE_URL", "https://site.api.espn.com/apis/site/v2/sports/soccer"))
	if cfg.ESPNCoreEnabled, err = getEnvAsBool("ESPN_CORE_ENABLED", true); err != nil {
		return err
	}
	cfg.ESPNCoreBaseURL = strings.TrimSpace(getEnv("ESPN_CORE_BASE_URL", "https://sports.core.api.espn.com/v2/sports/soccer/leagues"))

	for key, raw := range map[string]string{
		"FOOTBALLDATA_BASE_URL": cfg.FootballDataBaseURL,
		"ESPN_SITE_BASE_URL":    cfg.ESPNSiteBaseURL,
		"ESPN_CORE_BASE_URL":    cfg.ESPNCoreBaseURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
	}
	return nil
}

func loadFetch(cfg *Config) error {
	var err error
	if cfg.FetchTimeout, err = getEnvAsDuration("FETCH_TIMEOUT", "20s"); err != nil {
		return err
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if cfg.FetchMinInterval, err = getEnvAsDuration("FETCH_MIN_INTERVAL", "6s"); err != nil {
		return err
	}
	if cfg.FetchMinInterval < 0 {
		return fmt.Errorf("FETCH_MIN_INTERVAL must be >= 0")
	}
	if cfg.FetchMaxRetries, err = getEnvAsInt("FETCH_MAX_RETRIES", 3); err != nil {
		return fmt.Errorf("parse FETCH_MAX_RETRIES: %w", err)
	}
	if cfg.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be >= 0")
	}
	if cfg.FetchBackoffBase, err = getEnvAsDuration("FETCH_BACKOFF_BASE", "2s"); err != nil {
		return err
	}
	if cfg.FetchBackoffMax, err = getEnvAsDuration("FETCH_BACKOFF_MAX", "60s"); err != nil {
		return err
	}
	if cfg.FetchBackoffBase <= 0 {
		return fmt.Errorf("FETCH_BACKOFF_BASE must be > 0")
	}
	if cfg.FetchBackoffMax < cfg.FetchBackoffBase {
		return fmt.Errorf("FETCH_BACKOFF_MAX must be >= FETCH_BACKOFF_BASE")
	}

	if cfg.FetchCircuitEnabled, err = getEnvAsBool("FETCH_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if cfg.FetchCircuitFailureCount, err = getEnvAsInt("FETCH_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse FETCH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.FetchCircuitFailureCount <= 0 {
		return fmt.Errorf("FETCH_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	if cfg.FetchCircuitOpenTimeout, err = getEnvAsDuration("FETCH_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.FetchCircuitOpenTimeout <= 0 {
		return fmt.Errorf("FETCH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	if cfg.FetchCircuitHalfOpenMaxReq, err = getEnvAsInt("FETCH_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return fmt.Errorf("parse FETCH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.FetchCircuitHalfOpenMaxReq <= 0 {
		return fmt.Errorf("FETCH_CIRCUIT_HALF_OPEN_MAX_REQ must be > 0")
	}
	return nil
}

func loadIngest(cfg *Config) error {
	var err error
	if cfg.IngestEnabled, err = getEnvAsBool("INGEST_ENABLED", true); err != nil {
		return err
	}
	if cfg.IngestInterval, err = getEnvAsDuration("INGEST_INTERVAL", "5m"); err != nil {
		return err
	}
	if cfg.IngestInterval <= 0 {
		return fmt.Errorf("INGEST_INTERVAL must be > 0")
	}
	if cfg.IngestRunOnStart, err = getEnvAsBool("INGEST_RUN_ON_START", true); err != nil {
		return err
	}

	cfg.IngestCompetitions = strings.TrimSpace(getEnv("INGEST_COMPETITIONS", "PL:eng.1,PD:esp.1,SA:ita.1,BL1:ger.1,FL1:fra.1"))
	if len(splitCSV(cfg.IngestCompetitions)) == 0 {
		return fmt.Errorf("INGEST_COMPETITIONS is required")
	}

	if cfg.IngestWindowDays, err = getEnvAsInt("INGEST_WINDOW_DAYS", 7); err != nil {
		return fmt.Errorf("parse INGEST_WINDOW_DAYS: %w", err)
	}
	if cfg.IngestWindowDays <= 0 {
		return fmt.Errorf("INGEST_WINDOW_DAYS must be > 0")
	}
	if cfg.IngestSliceDays, err = getEnvAsInt("INGEST_SLICE_DAYS", 3); err != nil {
		return fmt.Errorf("parse INGEST_SLICE_DAYS: %w", err)
	}
	if cfg.IngestSliceDays <= 0 {
		return fmt.Errorf("INGEST_SLICE_DAYS must be > 0")
	}
	if cfg.IngestCompetitionWorkers, err = getEnvAsInt("INGEST_COMPETITION_WORKERS", 1); err != nil {
		return fmt.Errorf("parse INGEST_COMPETITION_WORKERS: %w", err)
	}
	if cfg.IngestCompetitionWorkers <= 0 {
		return fmt.Errorf("INGEST_COMPETITION_WORKERS must be > 0")
	}
	if cfg.IngestSecondaryEnabled, err = getEnvAsBool("INGEST_SECONDARY_ENABLED", true); err != nil {
		return err
	}
	if cfg.IngestDetailLookback, err = getEnvAsDuration("INGEST_DETAIL_LOOKBACK", "4h"); err != nil {
		return err
	}
	if cfg.IngestDetailLookback <= 0 {
		return fmt.Errorf("INGEST_DETAIL_LOOKBACK must be > 0")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return err
	}
	if cfg.UptraceCaptureRequestBody, err = getEnvAsBool("UPTRACE_CAPTURE_REQUEST_BODY", true); err != nil {
		return err
	}
	if cfg.UptraceRequestBodyMaxBytes, err = getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192); err != nil {
		return fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if cfg.UptraceRequestBodyMaxBytes <= 0 {
		return fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
}

// NormalizeDBURL adds disable_prepared_binary_result for poolers that cannot
// serve binary results from prepared statements.
func NormalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}
