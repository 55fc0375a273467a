package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type DB struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type HTTP struct {
	Host string
	Port int
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type SMTP struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

type Config struct {
	HTTP  HTTP
	DB    DB
	Redis Redis
	JWT   struct {
		Secret string
		Issuer string
		ExpMin int
	}
	Uploads struct {
		Dir string
	}
	Lockout struct {
		Threshold int
	}
	OAuth struct {
		GitHub OAuthClient
		Google OAuthClient
	}
	SMTP SMTP
	Log  struct {
		Level string
	}
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Secrets come from the environment: TROVE_JWT_SECRET,
	// TROVE_OAUTH_GITHUB_CLIENTSECRET, TROVE_SMTP_PASSWORD and friends.
	v.SetEnvPrefix("trove")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return fromViper(v), nil
}

// Watch re-reads the file on change and hands the fresh snapshot to onChange.
// Only tunables (lockout threshold, log level) are expected to move at
// runtime; connections are not rebuilt.
func Watch(path string, onChange func(*Config)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("trove")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return
	}
	v.OnConfigChange(func(fsnotify.Event) {
		onChange(fromViper(v))
	})
	v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 3000)
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.pass", "")
	v.SetDefault("db.name", "trove")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.issuer", "trove")
	v.SetDefault("jwt.exp_min", 60)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("lockout.threshold", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("smtp.port", 587)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		HTTP: HTTP{Host: v.GetString("http.host"), Port: v.GetInt("http.port")},
		DB: DB{
			Host: v.GetString("db.host"), Port: v.GetInt("db.port"),
			User: v.GetString("db.user"), Pass: v.GetString("db.pass"),
			Name: v.GetString("db.name"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
	cfg.JWT.Secret = v.GetString("jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	cfg.JWT.ExpMin = v.GetInt("jwt.exp_min")
	if cfg.JWT.ExpMin <= 0 {
		cfg.JWT.ExpMin = 60
	}
	cfg.Uploads.Dir = v.GetString("uploads.dir")
	cfg.Lockout.Threshold = v.GetInt("lockout.threshold")
	if cfg.Lockout.Threshold < 1 {
		cfg.Lockout.Threshold = 1
	}
	cfg.OAuth.GitHub = OAuthClient{
		ClientID:     v.GetString("oauth.github.clientid"),
		ClientSecret: v.GetString("oauth.github.clientsecret"),
		RedirectURL:  v.GetString("oauth.github.redirecturl"),
	}
	cfg.OAuth.Google = OAuthClient{
		ClientID:     v.GetString("oauth.google.clientid"),
		ClientSecret: v.GetString("oauth.google.clientsecret"),
		RedirectURL:  v.GetString("oauth.google.redirecturl"),
	}
	cfg.SMTP = SMTP{
		Enabled:  v.GetBool("smtp.enabled"),
		Host:     v.GetString("smtp.host"),
		Port:     v.GetInt("smtp.port"),
		From:     v.GetString("smtp.from"),
		Username: v.GetString("smtp.username"),
		Password: v.GetString("smtp.password"),
	}
	cfg.Log.Level = v.GetString("log.level")
	return cfg
}
