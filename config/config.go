package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. Headers and Cookies carry the
// anti-bot fingerprinting fields sent with every upstream request; they come
// from the built-in defaults, an optional settings file and the environment,
// in that order, so they can be rotated without touching extraction logic.
type Config struct {
	// Upstream
	BaseURL string
	Headers map[string]string
	Cookies map[string]string
	Timeout time.Duration
	Retries int

	// Pacing
	DelayProfile  string // "cautious", "normal", "aggressive"
	RatePerSecond float64
	RateBurst     int
	RespectRobots bool
	ProxyURL      string

	// Archive & export
	ArchiveEnabled bool
	ArchiveDir     string
	OutputDir      string

	// Settings file (headers/cookies/archive flag)
	SettingsFile string

	// HTTP server
	HTTPPort string
	APIKey   string

	Debug bool
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://www.ozon.ru",
		Headers:       defaultHeaders(),
		Cookies:       defaultCookies(),
		Timeout:       30 * time.Second,
		Retries:       2,
		DelayProfile:  "normal",
		RatePerSecond: 2.0,
		RateBurst:     3,
		RespectRobots: true,
		ArchiveDir:    "api_responses",
		OutputDir:     "results",
		SettingsFile:  "settings.json",
		HTTPPort:      "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("OZONSCRAP_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("OZONSCRAP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("OZONSCRAP_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retries = n
		}
	}
	if v := os.Getenv("OZONSCRAP_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("OZONSCRAP_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("OZONSCRAP_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("OZONSCRAP_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("OZONSCRAP_PROXY"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("OZONSCRAP_ARCHIVE"); v != "" {
		c.ArchiveEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("OZONSCRAP_ARCHIVE_DIR"); v != "" {
		c.ArchiveDir = v
	}
	if v := os.Getenv("OZONSCRAP_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("OZONSCRAP_SETTINGS"); v != "" {
		c.SettingsFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("OZONSCRAP_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("OZONSCRAP_DEBUG"); v == "true" || v == "1" {
		c.Debug = true
	}
}

// settingsFile mirrors the on-disk settings document: rotated headers and
// cookies plus the archive flag.
type settingsFile struct {
	Headers          map[string]string `json:"headers"`
	Cookies          map[string]string `json:"cookies"`
	SaveAPIResponses *bool             `json:"save_api_responses"`
}

// LoadSettingsFile merges the settings file (if it exists) over the current
// headers/cookies. A missing file is not an error; a malformed one is.
func (c *Config) LoadSettingsFile() error {
	if c.SettingsFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.SettingsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings file: %w", err)
	}
	var s settingsFile
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse settings file %s: %w", c.SettingsFile, err)
	}
	for k, v := range s.Headers {
		c.Headers[k] = v
	}
	for k, v := range s.Cookies {
		c.Cookies[k] = v
	}
	if s.SaveAPIResponses != nil {
		c.ArchiveEnabled = *s.SaveAPIResponses
	}
	return nil
}

// Validate reports unusable settings synchronously, before any crawl starts.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// defaultHeaders are the browser-fingerprint headers observed to pass the
// upstream's bot checks. Rotated via the settings file when they go stale.
func defaultHeaders() map[string]string {
	return map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"accept-language":           "ru,en;q=0.9,uk;q=0.8,de;q=0.7,fr;q=0.6",
		"cache-control":             "max-age=0",
		"priority":                  "u=0, i",
		"sec-ch-ua":                 `"Chromium";v="134", "Not:A-Brand";v="24", "Google Chrome";v="134"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-platform":        `"Windows"`,
		"sec-fetch-dest":            "document",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-site":            "none",
		"sec-fetch-user":            "?1",
		"upgrade-insecure-requests": "1",
		"user-agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
	}
}

func defaultCookies() map[string]string {
	return map[string]string{
		"__Secure-user-id":    "0",
		"__Secure-ab-group":   "46",
		"is_cookies_accepted": "1",
		"guest":               "true",
	}
}
