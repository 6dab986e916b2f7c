package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Storage backend identifiers.
const (
	BackendDatabase = "database"
	BackendWorkbook = "workbook"
	BackendSheets   = "sheets"
)

// Notification transport identifiers.
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
	TransportNone  = "none"
)

// Config holds application configuration. It is loaded once at process start
// and never re-read per submission.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// Timezone used for submission timestamps and PO number buckets.
	Timezone string

	StorageBackend string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	// Workbook backend.
	WorkbookPath string

	// Google Sheets backend.
	SpreadsheetID         string
	Worksheet             string
	GoogleCredentialsJSON string

	// Notification.
	NotifyTransport string
	Recipients      []string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	GmailSender     string

	// Form defaults and enumerations.
	PONumberPrefix      string
	DefaultAddress      string
	DefaultDepartment   string
	ClassificationCodes []string
	UrgencyLevels       []string

	// Identity.
	AllowedEmailDomain string
	OAuth2ClientID     string
	OAuth2ClientSecret string
	OAuth2RedirectURL  string
	SessionSecret      string
	SessionCookieName  string
	AuthCookieSecure   bool
}

// Module provides the configuration to the fx graph.
var Module = fx.Provide(Load)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "intake"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Timezone:    getenv("INTAKE_TIMEZONE", "America/Los_Angeles"),

		StorageBackend: normalizeBackend(getenv("STORAGE_BACKEND", BackendDatabase)),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "intake"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		WorkbookPath: getenv("WORKBOOK_PATH", "data/purchase_summary.xlsx"),

		SpreadsheetID:         strings.TrimSpace(getenv("SHEETS_SPREADSHEET_ID", "")),
		Worksheet:             getenv("SHEETS_WORKSHEET", "purchase_summary"),
		GoogleCredentialsJSON: strings.TrimSpace(getenv("GOOGLE_CREDENTIALS_JSON", "")),

		NotifyTransport: normalizeTransport(getenv("NOTIFY_TRANSPORT", TransportNone)),
		Recipients:      splitList(getenv("NOTIFY_RECIPIENTS", "")),
		SMTPHost:        getenv("SMTP_HOST", "localhost"),
		SMTPPort:        getenvInt("SMTP_PORT", 587),
		SMTPUsername:    getenv("SMTP_USERNAME", ""),
		SMTPPassword:    getenv("SMTP_PASSWORD", ""),
		SMTPFrom:        getenv("SMTP_FROM", "no-reply@localhost"),
		GmailSender:     strings.TrimSpace(getenv("GMAIL_SENDER", "")),

		PONumberPrefix:    getenv("PO_NUMBER_PREFIX", "RD-PO"),
		DefaultAddress:    getenv("DEFAULT_SHIPPING_ADDRESS", "420 S Hillview Dr, Milpitas, CA 95035"),
		DefaultDepartment: getenv("DEFAULT_DEPARTMENT", "R&D"),
		ClassificationCodes: splitList(getenv("CLASSIFICATION_CODES",
			"6051 - Lab Supplies (including Chemicals),"+
				"6052 - Testing (Outside Lab Validation),"+
				"6055 - Parts & Tools,"+
				"6054 - Prototype,"+
				"6053 - Other")),
		UrgencyLevels: splitList(getenv("URGENCY_LEVELS", "Normal,Urgent")),

		AllowedEmailDomain: strings.TrimPrefix(strings.TrimSpace(getenv("AUTH_ALLOWED_DOMAIN", "")), "@"),
		OAuth2ClientID:     strings.TrimSpace(getenv("OAUTH2_CLIENT_ID", "")),
		OAuth2ClientSecret: strings.TrimSpace(getenv("OAUTH2_CLIENT_SECRET", "")),
		OAuth2RedirectURL:  strings.TrimSpace(getenv("OAUTH2_REDIRECT_URL", "")),
		SessionSecret:      strings.TrimSpace(getenv("SESSION_SECRET", "")),
		SessionCookieName:  getenv("SESSION_COOKIE_NAME", "intake_session"),
		AuthCookieSecure:   authCookieSecure,
	}

	return cfg
}

// AuthRequired reports whether submissions must carry a verified identity.
func (c Config) AuthRequired() bool {
	return c.AllowedEmailDomain != ""
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case BackendWorkbook:
		return BackendWorkbook
	case BackendSheets:
		return BackendSheets
	default:
		return BackendDatabase
	}
}

func normalizeTransport(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TransportSMTP:
		return TransportSMTP
	case TransportGmail:
		return TransportGmail
	default:
		return TransportNone
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
