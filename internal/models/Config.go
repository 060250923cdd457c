// Package models defines the core data structures for the Veeam special agent.
// It includes the agent configuration and the API response structures that
// match the Veeam Backup & Replication REST API JSON format.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default values matching the ruleset defaults of the monitoring platform.
const (
	DefaultPort             = 9419
	DefaultTimeoutSeconds   = 60
	DefaultSessionAge       = 86400
	DefaultRestorePointDays = 7
	DefaultPageLimit        = 500
)

// DefaultSections is the section set collected when none is configured.
var DefaultSections = []string{"jobs", "repositories", "proxies"}

// Config represents the complete configuration for one collection run.
// Values can come from a YAML file, command line flags, or both; flags win.
type Config struct {
	Server struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
		TimeoutSeconds     int    `yaml:"timeout"`
	} `yaml:"server"`

	Sections         []string       `yaml:"sections"`
	BackupMode       string         `yaml:"backupMode"`
	SessionAge       int            `yaml:"sessionAge"`
	RestorePointDays int            `yaml:"restorePointDays"`
	NoCache          bool           `yaml:"noCache"`
	CacheDir         string         `yaml:"cacheDir"`
	CacheTTLs        map[string]int `yaml:"cacheTTLs"`
	Redact           bool           `yaml:"redact"`
}

// SetDefaults fills in defaults for optional fields. Called automatically
// by Validate before any checks run.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.SessionAge == 0 {
		c.SessionAge = DefaultSessionAge
	}
	if c.RestorePointDays == 0 {
		c.RestorePointDays = DefaultRestorePointDays
	}
	if c.BackupMode == "" {
		c.BackupMode = "disabled"
	}
	if len(c.Sections) == 0 {
		c.Sections = append([]string(nil), DefaultSections...)
	}
}

// Validate checks the configuration and returns an error describing the
// first problem found. Defaults are applied first.
func (c *Config) Validate() error {
	c.SetDefaults()

	if c.Server.Host == "" {
		return errors.New("server host is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Username == "" {
		return errors.New("username is required")
	}
	if c.Server.Password == "" {
		return errors.New("password is required")
	}
	if c.Server.TimeoutSeconds < 5 || c.Server.TimeoutSeconds > 300 {
		return fmt.Errorf("invalid timeout: %ds (must be 5-300)", c.Server.TimeoutSeconds)
	}
	switch c.BackupMode {
	case "disabled", "piggyback", "services", "both":
	default:
		return fmt.Errorf("invalid backup mode: %s", c.BackupMode)
	}
	for section, ttl := range c.CacheTTLs {
		if ttl < 0 {
			return fmt.Errorf("negative cache TTL for section %s", section)
		}
	}
	return nil
}

// GetBaseURL returns the base URL of the Veeam REST API.
//
// Example: "https://veeam.example.com:9419"
func (c *Config) GetBaseURL() string {
	return fmt.Sprintf("https://%s:%d", c.Server.Host, c.Server.Port)
}

// GetTimeout returns the per-request timeout as a time.Duration.
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// SectionEnabled reports whether a section was requested for this run.
func (c *Config) SectionEnabled(name string) bool {
	for _, s := range c.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// MaskPassword returns a masked version of the password for safe logging.
// Passwords shorter than 8 characters are fully masked.
func (c *Config) MaskPassword() string {
	p := c.Server.Password
	if len(p) < 8 {
		return "****"
	}
	return p[:1] + "****" + p[len(p)-1:]
}

// BuildURL constructs a complete API URL from the endpoint path and query
// parameters. Endpoint paths are relative to the versioned API root.
//
// Example:
//
//	cfg.BuildURL("taskSessions", map[string]string{"limit": "500", "skip": "0"})
//	// https://veeam:9419/api/v1/taskSessions?limit=500&skip=0
func (c *Config) BuildURL(endpoint string, queryParams map[string]string) string {
	u, _ := url.Parse(c.GetBaseURL())
	u.Path = "/api/v1/" + endpoint
	q := u.Query()
	for key, value := range queryParams {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseCachedSections parses the --cached-sections value, a comma separated
// list of section:seconds pairs, into a TTL override map.
//
// Example: "jobs:1800,license:86400"
func ParseCachedSections(value string) (map[string]int, error) {
	if value == "" {
		return nil, nil
	}
	overrides := make(map[string]int)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, secs, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid cached section %q (want name:seconds)", pair)
		}
		n, err := strconv.Atoi(secs)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid cache interval %q for section %s", secs, name)
		}
		overrides[name] = n
	}
	return overrides, nil
}
