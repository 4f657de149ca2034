package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a digest run.
type Config struct {
	Mail          MailConfig
	Exclusions    ExclusionConfig
	Fetch         FetchConfig
	CleanupPause  time.Duration // pause between deleting old digests and sending the new one
	WatchInterval time.Duration
	Store         StoreConfig
	LockPath      string
	Notification  NotificationConfig
	Classify      ClassifyConfig
}

// MailConfig controls the gog CLI invocations and the mailbox queries.
type MailConfig struct {
	Binary         string
	SourceQuery    string
	SourceMax      int
	DigestSubject  string
	DigestLookback string // gmail newer_than value, e.g. "1d"
	PreviousMax    int
	CleanupMax     int
	Timeout        time.Duration // per invocation, zero disables
}

// PreviousDigestQuery is the search used to recover listings from recent digests.
func (m MailConfig) PreviousDigestQuery() string {
	return fmt.Sprintf("subject:%q newer_than:%s", m.DigestSubject, m.DigestLookback)
}

// CleanupQuery is the search used to find digests to delete before sending.
func (m MailConfig) CleanupQuery() string {
	return fmt.Sprintf("subject:%q", m.DigestSubject)
}

// ExclusionConfig locates the job ID denylist.
type ExclusionConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig controls live job-page fetching for pay ranges.
type FetchConfig struct {
	Enabled   bool
	Host      string
	Timeout   time.Duration
	Delay     time.Duration // fixed pause after every fetch
	UserAgent string
}

// StoreConfig locates the run history database. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig holds optional secondary notifiers.
type NotificationConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// ClassifyConfig extends the built-in company keyword tables.
type ClassifyConfig struct {
	ExtraPublic []string `yaml:"extra_public"`
	ExtraTier1  []string `yaml:"extra_tier1"`
	ExtraTier2  []string `yaml:"extra_tier2"`
}

const (
	DefaultSourceQuery   = "(from:jobs-listings@linkedin.com OR from:jobs-noreply@linkedin.com OR from:jobalerts-noreply@linkedin.com OR from:messages-noreply@linkedin.com) newer_than:1d"
	DefaultDigestSubject = "LinkedIn Job Opportunities"
	DefaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	DefaultExclusionPath = "~/bin/linkedin-jobs-exclusions.txt"
)

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Mail: MailConfig{
			Binary:         "gog",
			SourceQuery:    DefaultSourceQuery,
			SourceMax:      50,
			DigestSubject:  DefaultDigestSubject,
			DigestLookback: "1d",
			PreviousMax:    10,
			CleanupMax:     20,
			Timeout:        2 * time.Minute,
		},
		Exclusions: ExclusionConfig{Path: DefaultExclusionPath},
		Fetch: FetchConfig{
			Enabled:   true,
			Host:      "www.linkedin.com",
			Timeout:   15 * time.Second,
			Delay:     500 * time.Millisecond,
			UserAgent: DefaultUserAgent,
		},
		CleanupPause:  1 * time.Second,
		WatchInterval: 1 * time.Hour,
		Store:         StoreConfig{Path: "jobdigest.db"},
		LockPath:      "jobdigest.lock",
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Mail          rawMailConfig      `yaml:"mail"`
	Exclusions    ExclusionConfig    `yaml:"exclusions"`
	Fetch         rawFetchConfig     `yaml:"fetch"`
	CleanupPause  string             `yaml:"cleanup_pause"`
	WatchInterval string             `yaml:"watch_interval"`
	Store         StoreConfig        `yaml:"store"`
	LockPath      string             `yaml:"lock_path"`
	Notification  NotificationConfig `yaml:"notification"`
	Classify      ClassifyConfig     `yaml:"classify"`
}

type rawMailConfig struct {
	Binary         string `yaml:"binary"`
	SourceQuery    string `yaml:"source_query"`
	SourceMax      int    `yaml:"source_max"`
	DigestSubject  string `yaml:"digest_subject"`
	DigestLookback string `yaml:"digest_lookback"`
	PreviousMax    int    `yaml:"previous_max"`
	CleanupMax     int    `yaml:"cleanup_max"`
	Timeout        string `yaml:"timeout"`
}

type rawFetchConfig struct {
	Enabled   *bool  `yaml:"enabled"`
	Host      string `yaml:"host"`
	Timeout   string `yaml:"timeout"`
	Delay     string `yaml:"delay"`
	UserAgent string `yaml:"user_agent"`
}

// Load reads and parses the YAML config file at path on top of Default,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	m := &cfg.Mail
	m.Binary = orString(raw.Mail.Binary, m.Binary)
	m.SourceQuery = orString(raw.Mail.SourceQuery, m.SourceQuery)
	m.SourceMax = orInt(raw.Mail.SourceMax, m.SourceMax)
	m.DigestSubject = orString(raw.Mail.DigestSubject, m.DigestSubject)
	m.DigestLookback = orString(raw.Mail.DigestLookback, m.DigestLookback)
	m.PreviousMax = orInt(raw.Mail.PreviousMax, m.PreviousMax)
	m.CleanupMax = orInt(raw.Mail.CleanupMax, m.CleanupMax)
	if m.Timeout, err = parseDuration("mail.timeout", raw.Mail.Timeout, m.Timeout); err != nil {
		return nil, err
	}

	cfg.Exclusions.Path = orString(raw.Exclusions.Path, cfg.Exclusions.Path)

	f := &cfg.Fetch
	if raw.Fetch.Enabled != nil {
		f.Enabled = *raw.Fetch.Enabled
	}
	f.Host = orString(raw.Fetch.Host, f.Host)
	f.UserAgent = orString(raw.Fetch.UserAgent, f.UserAgent)
	if f.Timeout, err = parseDuration("fetch.timeout", raw.Fetch.Timeout, f.Timeout); err != nil {
		return nil, err
	}
	if f.Delay, err = parseDuration("fetch.delay", raw.Fetch.Delay, f.Delay); err != nil {
		return nil, err
	}

	if cfg.CleanupPause, err = parseDuration("cleanup_pause", raw.CleanupPause, cfg.CleanupPause); err != nil {
		return nil, err
	}
	if cfg.WatchInterval, err = parseDuration("watch_interval", raw.WatchInterval, cfg.WatchInterval); err != nil {
		return nil, err
	}

	cfg.Store.Path = orString(raw.Store.Path, cfg.Store.Path)
	cfg.LockPath = orString(raw.LockPath, cfg.LockPath)
	cfg.Notification = raw.Notification
	cfg.Classify = raw.Classify

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func orString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Mail.Binary == "" {
		return fmt.Errorf("mail.binary must not be empty")
	}
	if cfg.Mail.SourceMax < 0 || cfg.Mail.PreviousMax < 0 || cfg.Mail.CleanupMax < 0 {
		return fmt.Errorf("mail search limits must be positive")
	}
	if cfg.Mail.Timeout < 0 {
		return fmt.Errorf("mail.timeout must not be negative, got %v", cfg.Mail.Timeout)
	}

	if cfg.Fetch.Enabled && cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive when fetch is enabled, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Delay < 0 {
		return fmt.Errorf("fetch.delay must not be negative, got %v", cfg.Fetch.Delay)
	}
	if cfg.CleanupPause < 0 {
		return fmt.Errorf("cleanup_pause must not be negative, got %v", cfg.CleanupPause)
	}
	if cfg.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive, got %v", cfg.WatchInterval)
	}

	if url := cfg.Notification.SlackWebhookURL; url != "" && !strings.HasPrefix(url, "https://hooks.slack.com/") {
		return fmt.Errorf("notification.slack_webhook_url must start with https://hooks.slack.com/")
	}

	return nil
}
