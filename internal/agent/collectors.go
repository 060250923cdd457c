package agent

import (
	"context"
	"time"

	"github.com/fjacquet/veeam_agent/internal/models"
	"github.com/fjacquet/veeam_agent/internal/utils"
)

// Section names, also the cache keys and the suffix of the emitted blocks.
const (
	SectionJobs           = "jobs"
	SectionBackupObjects  = "backup_objects"
	SectionTasks          = "tasks"
	SectionRepositories   = "repositories"
	SectionProxies        = "proxies"
	SectionManagedServers = "managed_servers"
	SectionScaleOutRepos  = "scaleout_repositories"
	SectionWANAccel       = "wan_accelerators"
	SectionReplicas       = "replicas"
	SectionSecurity       = "security"
	SectionConfigBackup   = "config_backup"
	SectionLicense        = "license"
	SectionServer         = "server"
)

// defaultTTLs is the per-section cache validity table. Current-state
// infrastructure sections refresh every few minutes, near-static ones daily.
var defaultTTLs = map[string]time.Duration{
	SectionJobs:           30 * time.Minute,
	SectionBackupObjects:  30 * time.Minute,
	SectionTasks:          30 * time.Minute,
	SectionRepositories:   5 * time.Minute,
	SectionProxies:        5 * time.Minute,
	SectionScaleOutRepos:  5 * time.Minute,
	SectionWANAccel:       5 * time.Minute,
	SectionManagedServers: time.Hour,
	SectionReplicas:       30 * time.Minute,
	SectionSecurity:       12 * time.Hour,
	SectionConfigBackup:   time.Hour,
	SectionLicense:        24 * time.Hour,
	SectionServer:         24 * time.Hour,
}

// sectionCollector binds one logical data domain to its cache TTL and a
// fetch function closed over the authenticated client.
type sectionCollector struct {
	Name  string
	TTL   time.Duration
	Fetch func(ctx context.Context) (interface{}, error)
}

// sectionTTL resolves the cache TTL for a section, applying any configured
// override.
func sectionTTL(cfg models.Config, name string) time.Duration {
	if secs, ok := cfg.CacheTTLs[name]; ok {
		return time.Duration(secs) * time.Second
	}
	return defaultTTLs[name]
}

// memoizeFetch wraps a fetch so the underlying endpoint is queried at most
// once per run. Collectors run sequentially, so no locking is needed.
// Failures are not memoized; a later section sharing the endpoint retries.
func memoizeFetch[T any](fetch func(context.Context) ([]T, error)) func(context.Context) ([]T, error) {
	var items []T
	var done bool
	return func(ctx context.Context) ([]T, error) {
		if done {
			return items, nil
		}
		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		items, done = fetched, true
		return items, nil
	}
}

// buildCollectors assembles the declarative collector list in the fixed
// collection order of a run. Only the task-session and restore-point fetches
// apply the server-side time filter; the remaining sections represent
// current state, not history. The jobs and task-session fetches are shared
// between their own sections and the backup object pipeline, so each
// endpoint is hit once per run.
func buildCollectors(c *Client, cfg models.Config) []sectionCollector {
	sessionWindow := func() string {
		return utils.ConvertTimeToFilterDate(time.Now().Add(-time.Duration(cfg.SessionAge) * time.Second))
	}
	restorePointWindow := func() string {
		return utils.ConvertTimeToFilterDate(time.Now().AddDate(0, 0, -cfg.RestorePointDays))
	}

	fetchJobs := memoizeFetch(func(ctx context.Context) ([]models.Job, error) {
		return fetchAllPages[models.Job](ctx, c, "jobs/states", fetchOptions{})
	})
	fetchTasks := memoizeFetch(func(ctx context.Context) ([]models.TaskSession, error) {
		return fetchAllPages[models.TaskSession](ctx, c, "taskSessions",
			fetchOptions{CreatedAfter: sessionWindow()})
	})

	return []sectionCollector{
		{
			Name: SectionJobs,
			TTL:  sectionTTL(cfg, SectionJobs),
			Fetch: func(ctx context.Context) (interface{}, error) {
				shared, err := fetchJobs(ctx)
				if err != nil {
					return nil, err
				}
				// Copy before decorating: the shared slice also feeds the
				// backup object join.
				jobs := append([]models.Job(nil), shared...)
				for i := range jobs {
					jobs[i].LastRunAgeSeconds = utils.AgeSeconds(jobs[i].LastRun)
				}
				return redactJobs(cfg, jobs), nil
			},
		},
		{
			Name: SectionBackupObjects,
			TTL:  sectionTTL(cfg, SectionBackupObjects),
			Fetch: func(ctx context.Context) (interface{}, error) {
				jobs, err := fetchJobs(ctx)
				if err != nil {
					return nil, err
				}
				backups, err := fetchAllPages[models.Backup](ctx, c, "backups", fetchOptions{})
				if err != nil {
					return nil, err
				}
				objects, err := fetchAllPages[models.BackupObject](ctx, c, "backupObjects", fetchOptions{})
				if err != nil {
					return nil, err
				}
				tasks, err := fetchTasks(ctx)
				if err != nil {
					return nil, err
				}
				restorePoints, err := fetchAllPages[models.RestorePoint](ctx, c, "restorePoints",
					fetchOptions{CreatedAfter: restorePointWindow()})
				if err != nil {
					return nil, err
				}
				enriched := enrichBackupObjects(objects, jobs, backups, tasks, restorePoints)
				return redactEnriched(cfg, enriched), nil
			},
		},
		{
			Name: SectionTasks,
			TTL:  sectionTTL(cfg, SectionTasks),
			Fetch: func(ctx context.Context) (interface{}, error) {
				shared, err := fetchTasks(ctx)
				if err != nil {
					return nil, err
				}
				tasks := append([]models.TaskSession(nil), shared...)
				return redactTasks(cfg, tasks), nil
			},
		},
		{
			Name: SectionRepositories,
			TTL:  sectionTTL(cfg, SectionRepositories),
			Fetch: func(ctx context.Context) (interface{}, error) {
				repos, err := fetchAllPages[models.Repository](ctx, c, "backupInfrastructure/repositories/states", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactRepositories(cfg, repos), nil
			},
		},
		{
			Name: SectionProxies,
			TTL:  sectionTTL(cfg, SectionProxies),
			Fetch: func(ctx context.Context) (interface{}, error) {
				proxies, err := fetchAllPages[models.Proxy](ctx, c, "backupInfrastructure/proxies/states", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactProxies(cfg, proxies), nil
			},
		},
		{
			Name: SectionManagedServers,
			TTL:  sectionTTL(cfg, SectionManagedServers),
			Fetch: func(ctx context.Context) (interface{}, error) {
				servers, err := fetchAllPages[models.ManagedServer](ctx, c, "backupInfrastructure/managedServers", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactManagedServers(cfg, servers), nil
			},
		},
		{
			Name: SectionScaleOutRepos,
			TTL:  sectionTTL(cfg, SectionScaleOutRepos),
			Fetch: func(ctx context.Context) (interface{}, error) {
				repos, err := fetchAllPages[models.ScaleOutRepository](ctx, c, "backupInfrastructure/scaleOutRepositories", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactScaleOutRepos(cfg, repos), nil
			},
		},
		{
			Name: SectionWANAccel,
			TTL:  sectionTTL(cfg, SectionWANAccel),
			Fetch: func(ctx context.Context) (interface{}, error) {
				accels, err := fetchAllPages[models.WANAccelerator](ctx, c, "backupInfrastructure/wanAccelerators", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactWANAccelerators(cfg, accels), nil
			},
		},
		{
			Name: SectionReplicas,
			TTL:  sectionTTL(cfg, SectionReplicas),
			Fetch: func(ctx context.Context) (interface{}, error) {
				replicas, err := fetchAllPages[models.Replica](ctx, c, "replicas", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return redactReplicas(cfg, replicas), nil
			},
		},
		{
			Name: SectionSecurity,
			TTL:  sectionTTL(cfg, SectionSecurity),
			Fetch: func(ctx context.Context) (interface{}, error) {
				// Best-practice check names are vendor constants, nothing to
				// redact.
				checks, err := fetchAllPages[models.SecurityCheck](ctx, c, "securityAnalyzer/results", fetchOptions{})
				if err != nil {
					return nil, err
				}
				return checks, nil
			},
		},
		{
			Name: SectionConfigBackup,
			TTL:  sectionTTL(cfg, SectionConfigBackup),
			Fetch: func(ctx context.Context) (interface{}, error) {
				cb, err := fetchOne[models.ConfigBackup](ctx, c, "configBackup")
				if err != nil {
					return nil, err
				}
				return redactConfigBackup(cfg, cb), nil
			},
		},
		{
			Name: SectionLicense,
			TTL:  sectionTTL(cfg, SectionLicense),
			Fetch: func(ctx context.Context) (interface{}, error) {
				lic, err := fetchOne[models.License](ctx, c, "license")
				if err != nil {
					return nil, err
				}
				return redactLicense(cfg, lic), nil
			},
		},
		{
			Name: SectionServer,
			TTL:  sectionTTL(cfg, SectionServer),
			Fetch: func(ctx context.Context) (interface{}, error) {
				info, err := fetchOne[models.ServerInfo](ctx, c, "serverInfo")
				if err != nil {
					return nil, err
				}
				return redactServerInfo(cfg, info), nil
			},
		},
	}
}

// sectionWanted reports whether a collector runs this invocation. The backup
// object pipeline is driven by the backup mode rather than the section list,
// since its output feeds the per-object services.
func sectionWanted(cfg models.Config, name string) bool {
	if name == SectionBackupObjects {
		return cfg.BackupMode != "disabled" || cfg.SectionEnabled(name)
	}
	return cfg.SectionEnabled(name)
}
