package buildCFG

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"anveshan/internal/mailer"
	"anveshan/internal/ratelimit"
	"anveshan/pkg/validator"
)

// Source is the subset of wbf/config used here.
type Source interface {
	GetString(key string) string
	GetInt(key string) int
}

const (
	defaultPort        = "3000"
	defaultServiceName = "Pharma Anveshan 2026 API"
	defaultExchange    = "registrations"
	defaultQueue       = "registration.notifications"
	defaultSMTPPort    = 587
	defaultRateLimit   = 10
	defaultRateWindow  = time.Minute
)

type ServerConfig struct {
	Port            string `validate:"required,numeric"`
	ServiceName     string `validate:"required"`
	StaticDir       string
	MigrationsDir   string `validate:"required"`
	ShutdownTimeout time.Duration
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
	Prefetch int
}

func (c RabbitConfig) Enabled() bool { return c.Url != "" }

type RateLimitConfig struct {
	RedisURL string
	ratelimit.Config
}

type dbSettings struct {
	DSN string `validate:"required"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func intOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func BuildServerConfig(cfg Source, log *zerolog.Logger) ServerConfig {
	serverCfg := ServerConfig{
		Port:            firstNonEmpty(os.Getenv("PORT"), cfg.GetString("server.port"), defaultPort),
		ServiceName:     firstNonEmpty(cfg.GetString("server.service_name"), defaultServiceName),
		StaticDir:       cfg.GetString("server.static_dir"),
		MigrationsDir:   firstNonEmpty(cfg.GetString("database.migrations_dir"), "migrations/postgres"),
		ShutdownTimeout: time.Duration(intOr(cfg.GetInt("server.shutdown_timeout_seconds"), 10)) * time.Second,
	}
	if err := validator.Validate(context.Background(), serverCfg); err != nil {
		log.Warn().Err(err).Str("port", serverCfg.Port).Msg("invalid server config, falling back to default port")
		serverCfg.Port = defaultPort
	}
	return serverCfg
}

// BuildDBConfig returns the master DSN, replica DSNs and pool options.
// DATABASE_URL and DATABASE_SSL override the file.
func BuildDBConfig(cfg Source, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	settings := dbSettings{DSN: firstNonEmpty(os.Getenv("DATABASE_URL"), cfg.GetString("database.dsn"))}
	if err := validator.Validate(context.Background(), settings); err != nil {
		return "", nil, nil, fmt.Errorf("database config: %w", err)
	}

	sslRaw := firstNonEmpty(os.Getenv("DATABASE_SSL"), cfg.GetString("database.ssl"))
	requireTLS := false
	if sslRaw != "" {
		v, err := strconv.ParseBool(sslRaw)
		if err != nil {
			return "", nil, nil, fmt.Errorf("database.ssl must be a boolean, got %q", sslRaw)
		}
		requireTLS = v
	}

	master, err := withSSLMode(settings.DSN, requireTLS)
	if err != nil {
		return "", nil, nil, err
	}

	var slaves []string
	if raw := cfg.GetString("database.slaves"); raw != "" {
		for _, dsn := range strings.Split(raw, ",") {
			dsn = strings.TrimSpace(dsn)
			if dsn == "" {
				continue
			}
			slave, err := withSSLMode(dsn, requireTLS)
			if err != nil {
				return "", nil, nil, err
			}
			slaves = append(slaves, slave)
		}
	}

	opts := &dbpg.Options{
		MaxOpenConns:    intOr(cfg.GetInt("database.max_open_conns"), 20),
		MaxIdleConns:    intOr(cfg.GetInt("database.max_idle_conns"), 5),
		ConnMaxLifetime: time.Duration(intOr(cfg.GetInt("database.conn_max_lifetime_seconds"), 300)) * time.Second,
	}

	log.Info().
		Bool("tls", requireTLS).
		Int("replicas", len(slaves)).
		Int("max_open_conns", opts.MaxOpenConns).
		Msg("database config loaded")
	return master, slaves, opts, nil
}

// withSSLMode sets sslmode on either URL or key=value DSNs unless the DSN
// already names one.
func withSSLMode(dsn string, requireTLS bool) (string, error) {
	mode := "disable"
	if requireTLS {
		mode = "require"
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse database url: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", mode)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if strings.Contains(dsn, "sslmode=") {
		return dsn, nil
	}
	return strings.TrimSpace(dsn) + " sslmode=" + mode, nil
}

func BuildRabbitConfig(cfg Source, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      firstNonEmpty(os.Getenv("RABBITMQ_URL"), cfg.GetString("rabbitmq.url")),
		Exchange: firstNonEmpty(cfg.GetString("rabbitmq.exchange"), defaultExchange),
		Queue:    firstNonEmpty(cfg.GetString("rabbitmq.queue"), defaultQueue),
		Prefetch: intOr(cfg.GetInt("rabbitmq.prefetch"), 10),
	}
	if rc.Url == "" {
		log.Info().Msg("RabbitMQ not configured, notifications are sent in-process")
		return rc, nil
	}
	u, err := url.Parse(rc.Url)
	if err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
		return RabbitConfig{}, fmt.Errorf("rabbitmq.url must be an amqp:// or amqps:// url")
	}
	return rc, nil
}

// BuildMailConfig reads SMTP settings. A missing SMTP_PASSWORD disables
// notifications without failing startup.
func BuildMailConfig(cfg Source, log *zerolog.Logger) mailer.Config {
	mc := mailer.Config{
		Host:      firstNonEmpty(os.Getenv("SMTP_HOST"), cfg.GetString("mail.host")),
		Port:      intOr(cfg.GetInt("mail.port"), defaultSMTPPort),
		Username:  firstNonEmpty(os.Getenv("SMTP_USERNAME"), cfg.GetString("mail.username")),
		Password:  os.Getenv("SMTP_PASSWORD"),
		From:      cfg.GetString("mail.from"),
		EventName: firstNonEmpty(cfg.GetString("mail.event_name"), "Pharma Anveshan 2026"),
	}
	if p := os.Getenv("SMTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			mc.Port = n
		}
	}
	if !mc.Enabled() {
		log.Warn().Msg("SMTP credential not configured, confirmation e-mails are disabled")
	}
	return mc
}

func BuildAdminToken(cfg Source, log *zerolog.Logger) string {
	token := firstNonEmpty(os.Getenv("ADMIN_TOKEN"), cfg.GetString("admin.token"))
	if token == "" {
		log.Warn().Msg("ADMIN_TOKEN not set, admin endpoints will reject every request")
	}
	return token
}

func BuildRateLimitConfig(cfg Source, _ *zerolog.Logger) RateLimitConfig {
	return RateLimitConfig{
		RedisURL: firstNonEmpty(os.Getenv("REDIS_URL"), cfg.GetString("ratelimit.redis_url")),
		Config: ratelimit.Config{
			Limit:  intOr(cfg.GetInt("ratelimit.limit"), defaultRateLimit),
			Window: time.Duration(intOr(cfg.GetInt("ratelimit.window_seconds"), int(defaultRateWindow/time.Second))) * time.Second,
		},
	}
}
