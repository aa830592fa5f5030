package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store & auth backends
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendLocal    = "local"
)

type (
	ServerConfig struct {
		Address            string
		DebugHost          string
		Host               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
		TrustProxy         bool // client IP from X-Forwarded-For set by a private-network proxy
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SupabaseConfig struct {
		URL     string
		AnonKey string
	}

	RateLimitConfig struct {
		Contact int
		SignIn  int
		Window  time.Duration
	}

	Config struct {
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		AppName         string
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		SendgridApiKey  string
		RollbarToken    string
		RedisAddr       string
		StoreBackend    string
		AuthBackend     string
		RemoteTimeout   time.Duration

		defaultFromEmail string
		consultantEmail  string

		Server    ServerConfig
		Database  DatabaseConfig
		Supabase  SupabaseConfig
		RateLimit RateLimitConfig
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// ConsultantEmail is where contact form notifications are delivered.
func (c *Config) ConsultantEmail() mail.Address {
	return mail.Address{Name: c.AppName + " Consultants", Address: c.consultantEmail}
}

// NewConfig reads the configuration from the environment (and `config/.env.<env>` if present).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "EduMed")
	conf.SetDefault("secretKey", "k7#c2-bm!x9v(0qz$u3e@w+h5t^yl&dn*8rfo)pj1sg6=ai4")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("consultantEmail", "admin@edumedsolutions.com")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("redis.addr", "")
	conf.SetDefault("store.backend", BackendMemory)
	conf.SetDefault("auth.backend", BackendLocal)
	conf.SetDefault("remoteTimeout", 10*time.Second)

	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("server.trustProxy", false)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "edumed")
	conf.SetDefault("database.user", "edumed")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", false)

	conf.SetDefault("supabase.url", "")
	conf.SetDefault("supabase.anonKey", "")

	conf.SetDefault("rateLimit.contact", 5)
	conf.SetDefault("rateLimit.signIn", 10)
	conf.SetDefault("rateLimit.window", time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:             env,
		Build:           conf.GetString("build"),
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		AppName:         conf.GetString("appName"),
		SecretKey:       conf.GetString("secretKey"),
		WorkDir:         wd,
		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		SendgridApiKey:  conf.GetString("sendgridApiKey"),
		RollbarToken:    conf.GetString("rollbarToken"),
		RedisAddr:       conf.GetString("redis.addr"),
		StoreBackend:    strings.ToLower(conf.GetString("store.backend")),
		AuthBackend:     strings.ToLower(conf.GetString("auth.backend")),
		RemoteTimeout:   conf.GetDuration("remoteTimeout"),

		defaultFromEmail: conf.GetString("defaultFromEmail"),
		consultantEmail:  conf.GetString("consultantEmail"),

		Server: ServerConfig{
			Address:            conf.GetString("server.address"),
			DebugHost:          conf.GetString("server.debugHost"),
			Host:               conf.GetString("server.host"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
			DisableReqLogs:     conf.GetBool("server.disableReqLogs"),
			TrustProxy:         conf.GetBool("server.trustProxy"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Supabase: SupabaseConfig{
			URL:     strings.TrimRight(conf.GetString("supabase.url"), "/"),
			AnonKey: conf.GetString("supabase.anonKey"),
		},
		RateLimit: RateLimitConfig{
			Contact: conf.GetInt("rateLimit.contact"),
			SignIn:  conf.GetInt("rateLimit.signIn"),
			Window:  conf.GetDuration("rateLimit.window"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests; it does not touch the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "EduMed",
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:3000",
		StoreBackend:     BackendMemory,
		AuthBackend:      BackendLocal,
		RemoteTimeout:    time.Second,
		defaultFromEmail: "noreply@localhost",
		consultantEmail:  "consultants@localhost",
		Server: ServerConfig{
			Address:            ":0",
			JWTExpirationDelta: 10 * time.Minute,
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
		},
		RateLimit: RateLimitConfig{
			Contact: 100,
			SignIn:  100,
			Window:  time.Minute,
		},
	}
}
