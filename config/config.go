package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	MongoURI          string `mapstructure:"MONGODB_URI"`
	MongoDatabase     string `mapstructure:"MONGODB_DATABASE"`
	MongoTransactions bool   `mapstructure:"MONGO_TRANSACTIONS"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTExpiresDay int    `mapstructure:"JWT_EXPIRES_DAY"`
	BcryptCost    int    `mapstructure:"BCRYPT_COST"`

	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RedisURL           string `mapstructure:"REDIS_URL"`

	ImageProvider     string `mapstructure:"IMAGE_PROVIDER"`
	ImgurClientID     string `mapstructure:"IMGUR_CLIENTID"`
	ImgurClientSecret string `mapstructure:"IMGUR_CLIENT_SECRET"`
	ImgurRefreshToken string `mapstructure:"IMGUR_REFRESH_TOKEN"`
	ImgurAlbumID      string `mapstructure:"IMGUR_ALBUM_ID"`
	CloudinaryURL     string `mapstructure:"CLOUDINARY_URL"`
	CloudinaryFolder  string `mapstructure:"CLOUDINARY_FOLDER"`

	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `mapstructure:"VAPID_SUBJECT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]interface{}{
	"PORT":                  "8080",
	"GIN_MODE":              "debug",
	"MONGODB_URI":           "",
	"MONGODB_DATABASE":      "metawall",
	"MONGO_TRANSACTIONS":    true,
	"JWT_SECRET":            "",
	"JWT_EXPIRES_DAY":       7,
	"BCRYPT_COST":           12,
	"CORS_ORIGINS":          "*",
	"RATE_LIMIT_PER_MINUTE": 120,
	"REDIS_URL":             "",
	"IMAGE_PROVIDER":        "imgur",
	"IMGUR_CLIENTID":        "",
	"IMGUR_CLIENT_SECRET":   "",
	"IMGUR_REFRESH_TOKEN":   "",
	"IMGUR_ALBUM_ID":        "",
	"CLOUDINARY_URL":        "",
	"CLOUDINARY_FOLDER":     "metawall",
	"VAPID_PUBLIC_KEY":      "",
	"VAPID_PRIVATE_KEY":     "",
	"VAPID_SUBJECT":         "mailto:admin@metawall.dev",
	"LOG_LEVEL":             "info",
}

// Load reads an optional .env file into the process environment and binds
// the environment onto Config. MONGODB_URI and JWT_SECRET are required.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug(".env file not found, loading from environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.Errorf("%s must be set", strings.Join(missing, " and "))
	}
	if c.JWTExpiresDay <= 0 {
		return errors.New("JWT_EXPIRES_DAY must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}
