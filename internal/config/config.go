package config

import (
	"os"
	"strconv"
	"time"

	twitch_oauth_client "twitch_poll_client/internal/client/twitch-oauth-client"
	twitch_session "twitch_poll_client/internal/service/twitch-session"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultAPIURL         = "https://api.twitch.tv"
	defaultIDURL          = "https://id.twitch.tv"
	defaultRequestTimeout = time.Second * 10
	defaultStatePath      = ".twitch_session.json"
)

var ErrMissingVariable = errors.New("required environment variable is not set")

type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	APIURL         string
	IDURL          string
	RequestTimeout time.Duration
	StatePath      string

	DBConn string

	TelegramAPIToken string
	TelegramChatID   int64

	LogLevel logrus.Level
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	// Load .env if present, don't fail if missing
	_ = godotenv.Load()

	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ClientID:         os.Getenv("TWITCH_CLIENT_ID"),
		ClientSecret:     os.Getenv("TWITCH_SECRET"),
		RedirectURI:      getenv("TWITCH_REDIRECT_URI", twitch_oauth_client.DefaultRedirectURI),
		APIURL:           getenv("TWITCH_API_URL", defaultAPIURL),
		IDURL:            getenv("TWITCH_ID_URL", defaultIDURL),
		StatePath:        getenv("TWITCH_STATE_PATH", defaultStatePath),
		DBConn:           os.Getenv("DB_CONN"),
		TelegramAPIToken: os.Getenv("TELEGRAM_API_TOKEN"),
	}

	if cfg.ClientID == "" {
		return nil, errors.Wrap(ErrMissingVariable, "TWITCH_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.Wrap(ErrMissingVariable, "TWITCH_SECRET")
	}

	var err error

	cfg.RequestTimeout, err = time.ParseDuration(getenv("TWITCH_REQUEST_TIMEOUT", defaultRequestTimeout.String()))
	if err != nil {
		return nil, errors.Wrap(err, "TWITCH_REQUEST_TIMEOUT")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, errors.Errorf("TWITCH_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "TELEGRAM_CHAT_ID")
		}
	}

	cfg.LogLevel, err = logrus.ParseLevel(getenv("LOG_LEVEL", logrus.InfoLevel.String()))
	if err != nil {
		return nil, errors.Wrap(err, "LOG_LEVEL")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) SetupLogging() {
	logrus.SetLevel(c.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func (c *Config) Session() twitch_session.Config {
	return twitch_session.Config{
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		APIBaseURL:     c.APIURL,
		IDBaseURL:      c.IDURL,
		RedirectURI:    c.RedirectURI,
		RequestTimeout: c.RequestTimeout,
	}
}

// NotificationsEnabled reports whether poll results go to Telegram.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramAPIToken != "" && c.TelegramChatID != 0
}
