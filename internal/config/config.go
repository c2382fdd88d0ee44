package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Email    EmailConfig
	Dispatch DispatchConfig
	Event    EventDefaults
	Store    StoreConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type EmailConfig struct {
	Provider string // smtp, brevo or log

	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPImplicitTLS bool

	BrevoAPIKey string
	BrevoURL    string

	FromName     string
	FromAddress  string
	ReplyToName  string
	ReplyToEmail string

	LogoPath       string
	QRRemoteURL    string
	SubjectPattern string
}

type DispatchConfig struct {
	SendDelay      time.Duration
	HardBlockCodes []string
	SupportEmail   string
	FooterText     string
}

// EventDefaults seed the stored event configuration when none was saved yet.
type EventDefaults struct {
	ID            string
	Name          string
	Address       string
	Date          string
	Time          string
	WelcomeMsg    string
	AssistanceMsg string
}

type StoreConfig struct {
	Driver      string // redis, sqlite or postgres
	RedisAddr   string
	RedisDB     int
	KeyPrefix   string
	SQLiteDSN   string
	PostgresDSN string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topics  TopicConfig
}

type TopicConfig struct {
	BatchCompleted string
}

type AuthConfig struct {
	OIDCIssuer string
	JWTSecret  string
}

func Load() *Config {
	smtpUser := getEnv("EMAIL_USER", getEnv("SMTP_USERNAME", ""))

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", ":3000"),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Minute),
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxBodyBytes:   int64(getEnvInt("MAX_BODY_MB", 50)) << 20,
		},
		Email: EmailConfig{
			Provider:        strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp")),
			SMTPHost:        getEnv("SMTP_HOST", "smtp.zoho.com"),
			SMTPPort:        getEnv("SMTP_PORT", "465"),
			SMTPUsername:    smtpUser,
			SMTPPassword:    getEnv("EMAIL_PASS", getEnv("SMTP_PASSWORD", "")),
			SMTPImplicitTLS: getEnvBool("SMTP_IMPLICIT_TLS", true),
			BrevoAPIKey:     getEnv("BREVO_API_KEY", ""),
			BrevoURL:        getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email"),
			FromName:        getEnv("SENDER_NAME", "WoowTek Eventos"),
			FromAddress:     getEnv("SENDER_EMAIL", smtpUser),
			ReplyToName:     getEnv("REPLY_NAME", ""),
			ReplyToEmail:    getEnv("REPLY_EMAIL", ""),
			LogoPath:        getEnv("LOGO_PATH", "assets/logo.png"),
			QRRemoteURL:     getEnv("QR_REMOTE_URL", ""),
			SubjectPattern:  getEnv("EMAIL_SUBJECT", "Tu Ticket para %s"),
		},
		Dispatch: DispatchConfig{
			SendDelay:      getEnvDuration("SEND_DELAY", 4*time.Second),
			HardBlockCodes: getEnvList("HARD_BLOCK_CODES", []string{"5.4.6", "429"}),
			SupportEmail:   getEnv("SUPPORT_EMAIL", "atencionalcliente@woowtek.com"),
			FooterText:     getEnv("FOOTER_TEXT", "Robotic Minds • Edtech Company"),
		},
		Event: EventDefaults{
			ID:            getEnv("EVENT_ID", "001"),
			Name:          getEnv("EVENT_NAME", "Prueba Torneo"),
			Address:       getEnv("EVENT_ADDRESS", "Matriz Valle, Quito"),
			Date:          getEnv("EVENT_DATE", "15 de Diciembre, 2025"),
			Time:          getEnv("EVENT_TIME", "10:00 AM"),
			WelcomeMsg:    getEnv("EVENT_WELCOME_MSG", "Mensaje detalle del evento. ¡Nos vemos allá!"),
			AssistanceMsg: getEnv("EVENT_ASSISTANCE_MSG", "Presenta este código QR en la entrada."),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvInt("REDIS_DB", 0),
			KeyPrefix:   getEnv("REDIS_KEY_PREFIX", "ticket-mailer:"),
			SQLiteDSN:   getEnv("SQLITE_DSN", "file:ticket-mailer.db?cache=shared"),
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topics: TopicConfig{
				BatchCompleted: getEnv("KAFKA_TOPIC_BATCH_COMPLETED", "ticketing.mailer.batch_completed"),
			},
		},
		Auth: AuthConfig{
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
			JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("4s") or a bare number of milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
