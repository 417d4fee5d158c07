package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseKey            string `env:"SUPABASE_KEY"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseBucket         string `env:"SUPABASE_BUCKET" envDefault:"gita-guru"`

	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	HTTPClientTimeout int    `env:"HTTP_CLIENT_TIMEOUT_SECONDS" envDefault:"10"`
	PortalPath        string `env:"PORTAL_PATH" envDefault:"/portal"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL   string `env:"DATABASE_URL"`
	ProfilesTable string `env:"PROFILES_TABLE" envDefault:"users"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionSecret string `env:"SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
	// APIAllowedOrigins habilita CORS en /api; vacio lo deja apagado.
	APIAllowedOrigins   []string `env:"API_ALLOWED_ORIGINS" envSeparator:","`
	SessionTTLMinutes   int      `env:"SESSION_TTL_MINUTES" envDefault:"720"`
	JWTAccessTTLMinutes int      `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Gita Guru"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	LoginRateLimit         int `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindowMinutes int `env:"LOGIN_RATE_WINDOW_MINUTES" envDefault:"10"`

	// Origins indica de que fuente salio cada clave resuelta.
	Origins map[string]string
}

var requiredKeys = []string{"SUPABASE_URL", "SUPABASE_KEY", "SUPABASE_SERVICE_ROLE_KEY"}

// LoadConfig carga la configuración desde el entorno y el almacen de secretos.
func LoadConfig() (*Config, error) {
	resolver, err := DefaultResolver()
	if err != nil {
		return nil, err
	}
	return Load(resolver)
}

// Load resuelve cada clave conocida con r y decodifica el resultado en Config.
func Load(r *Resolver) (*Config, error) {
	values := make(map[string]string)
	origins := make(map[string]string)
	for _, key := range knownKeys() {
		v, src, ok := r.Lookup(key)
		if !ok {
			continue
		}
		values[key] = strings.TrimSpace(v)
		origins[key] = src
	}

	var missing []string
	for _, key := range requiredKeys {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingSecretsError{Keys: missing}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range knownKeys() {
		if _, ok := origins[key]; !ok {
			origins[key] = SourceDefault
		}
	}
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	cfg.Origins = origins
	return &cfg, nil
}

func (c *Config) ClientTimeout() time.Duration {
	if c.HTTPClientTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPClientTimeout) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) LoginRateWindow() time.Duration {
	return time.Duration(c.LoginRateWindowMinutes) * time.Minute
}

func knownKeys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		keys = append(keys, strings.Split(tag, ",")[0])
	}
	return keys
}

// MissingSecretsError indica que faltan secretos obligatorios al arrancar.
type MissingSecretsError struct {
	Keys []string
}

func (e *MissingSecretsError) Error() string {
	var b strings.Builder
	for _, key := range e.Keys {
		fmt.Fprintf(&b, "%s environment variable is required.\n", key)
	}
	b.WriteString(`
Please create a .env file in the project root with the following content:
SUPABASE_URL=https://your-project-id.supabase.co
SUPABASE_KEY=your-anon-key-here
SUPABASE_SERVICE_ROLE_KEY=your-service-role-key-here

or set the same keys in the platform secrets store (` + DefaultSecretsFile + `).
You can find these values in your Supabase dashboard under Settings > API.`)
	return b.String()
}
