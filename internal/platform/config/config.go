package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Optional backends (Postgres, Redis, S3, Kafka) fall back to
// in-process implementations when their settings are empty.
type Config struct {
	Addr        string
	MetricsAddr string

	DatabaseURL string

	RedisURL string

	SessionSecret string
	SessionTTL    time.Duration

	// Extractor is the external audio-to-observation capability. The command
	// receives <audio-path> <date> <locale> <mime-type> as arguments and
	// prints a JSON observation on stdout.
	ExtractorCommand string
	ExtractorTimeout time.Duration
	ExtractorLocale  string

	// DataDir is the local artifact root. Audio lands under uploads/ and
	// rendered reports under reports/; an S3 bucket replaces it when set.
	DataDir string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	KafkaBrokers []string
	AuditTopic   string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:             envOr("ZOOWATCH_ADDR", ":8080"),
		MetricsAddr:      envOr("ZOOWATCH_METRICS_ADDR", ":9090"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		SessionSecret:    envOr("SESSION_SECRET", "dev-secret-key-change-in-production"),
		SessionTTL:       envDurationOr("SESSION_TTL", 24*time.Hour),
		ExtractorCommand: envOr("EXTRACTOR_CMD", "python3 server/run_model.py"),
		ExtractorTimeout: envDurationOr("EXTRACTOR_TIMEOUT", 60*time.Second),
		ExtractorLocale:  envOr("EXTRACTOR_LOCALE", "hi"),
		DataDir:          envOr("DATA_DIR", "data"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3Region:         envOr("S3_REGION", "us-east-1"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		AuditTopic:       envOr("AUDIT_TOPIC", "zoowatch.audit"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Plain integers are read as seconds for operator convenience.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
