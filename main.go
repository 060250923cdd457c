// Veeam Agent collects monitoring data from a Veeam Backup & Replication
// server via its REST API and prints it as agent sections for the monitoring
// platform. One invocation performs one collection run.
//
// Usage:
//
//	veeam_agent --hostname veeam.example.com --username 'DOMAIN\svc_monitor'
//
// The password is taken from --password or the VEEAM_PASSWORD environment
// variable. Section payloads go to stdout, diagnostics to stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fjacquet/veeam_agent/internal/agent"
	"github.com/fjacquet/veeam_agent/internal/logging"
	"github.com/fjacquet/veeam_agent/internal/models"
	"github.com/fjacquet/veeam_agent/internal/utils"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const programName = "veeam_agent"

type cliFlags struct {
	configFile       string
	hostname         string
	port             int
	username         string
	password         string
	noCertCheck      bool
	timeout          int
	sections         []string
	backupMode       string
	sessionAge       int
	restorePointDays int
	noCache          bool
	cacheDir         string
	cachedSections   string
	redact           bool
	debug            bool
}

// buildConfig merges the optional YAML config file with command line flags.
// Flags win over file values.
func buildConfig(cmd *cobra.Command, flags cliFlags) (*models.Config, error) {
	var cfg models.Config

	if flags.configFile != "" {
		if !utils.FileExists(flags.configFile) {
			return nil, fmt.Errorf("config file not found: %s", flags.configFile)
		}
		if err := utils.ReadFile(&cfg, flags.configFile); err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("hostname") {
		cfg.Server.Host = flags.hostname
	}
	if set("port") {
		cfg.Server.Port = flags.port
	}
	if set("username") {
		cfg.Server.Username = flags.username
	}
	if set("password") {
		cfg.Server.Password = flags.password
	}
	if set("no-cert-check") {
		cfg.Server.InsecureSkipVerify = flags.noCertCheck
	}
	if set("timeout") {
		cfg.Server.TimeoutSeconds = flags.timeout
	}
	if set("sections") {
		cfg.Sections = flags.sections
	}
	if set("backup-mode") {
		cfg.BackupMode = flags.backupMode
	}
	if set("session-age") {
		cfg.SessionAge = flags.sessionAge
	}
	if set("restore-points-days") {
		cfg.RestorePointDays = flags.restorePointDays
	}
	if set("no-cache") {
		cfg.NoCache = flags.noCache
	}
	if set("cache-dir") {
		cfg.CacheDir = flags.cacheDir
	}
	if set("redact") {
		cfg.Redact = flags.redact
	}
	if set("cached-sections") {
		overrides, err := models.ParseCachedSections(flags.cachedSections)
		if err != nil {
			return nil, err
		}
		cfg.CacheTTLs = overrides
	}

	if cfg.Server.Password == "" {
		cfg.Server.Password = os.Getenv("VEEAM_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func run(cfg models.Config) error {
	log.Debugf("Target: %s, user: %s, password: %s", cfg.GetBaseURL(), cfg.Server.Username, cfg.MaskPassword())

	cache, err := agent.NewSectionCache(cfg.CacheDir, cfg.NoCache)
	if err != nil {
		return err
	}

	client := agent.NewClient(cfg)
	result, err := agent.Run(context.Background(), cfg, client, cache)
	if err != nil {
		return err
	}
	return agent.Emit(os.Stdout, cfg, result)
}

// newRootCommand wires the flag set onto the root command. Separated from
// main so tests can parse flags and build configs without running a
// collection.
func newRootCommand(flags *cliFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Monitoring agent for Veeam Backup & Replication",
		Long:          "Collects jobs, infrastructure and per-object backup status from the Veeam REST API and prints monitoring sections to stdout",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(flags.debug)

			cfg, err := buildConfig(cmd, *flags)
			if err != nil {
				return err
			}
			return run(*cfg)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "Path to YAML configuration file")
	f.StringVar(&flags.hostname, "hostname", "", "Veeam server IP or hostname")
	f.IntVar(&flags.port, "port", models.DefaultPort, "REST API port")
	f.StringVar(&flags.username, "username", "", "Username (DOMAIN\\user or user@domain)")
	f.StringVar(&flags.password, "password", "", "Password (or set VEEAM_PASSWORD)")
	f.BoolVar(&flags.noCertCheck, "no-cert-check", false, "Disable SSL certificate verification")
	f.IntVar(&flags.timeout, "timeout", models.DefaultTimeoutSeconds, "API request timeout in seconds")
	f.StringSliceVar(&flags.sections, "sections", nil, "Sections to collect (default: jobs,repositories,proxies)")
	f.StringVar(&flags.backupMode, "backup-mode", "disabled", "Per-object backup services: disabled, piggyback, services or both")
	f.IntVar(&flags.sessionAge, "session-age", models.DefaultSessionAge, "Only fetch task sessions from the last N seconds")
	f.IntVar(&flags.restorePointDays, "restore-points-days", models.DefaultRestorePointDays, "Only fetch restore points from the last N days")
	f.BoolVar(&flags.noCache, "no-cache", false, "Disable the section cache")
	f.StringVar(&flags.cacheDir, "cache-dir", "", "Directory for the section cache file")
	f.StringVar(&flags.cachedSections, "cached-sections", "", "Per-section TTL overrides as name:seconds,...")
	f.BoolVar(&flags.redact, "redact", false, "Anonymize identifiers in the output")
	f.BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging")

	return rootCmd
}

func main() {
	var flags cliFlags
	if err := newRootCommand(&flags).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
