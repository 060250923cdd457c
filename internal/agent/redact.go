package agent

import (
	"fmt"
	"hash/fnv"

	"github.com/fjacquet/veeam_agent/internal/models"
)

// anonymize replaces an identifier with a stable pseudonym so that redacted
// output stays joinable across sections and runs while metric and status
// values remain untouched.
func anonymize(kind, name string) string {
	if name == "" {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%s-%08x", kind, h.Sum32())
}

func redactJobs(cfg models.Config, jobs []models.Job) []models.Job {
	if !cfg.Redact {
		return jobs
	}
	for i := range jobs {
		jobs[i].Name = anonymize("job", jobs[i].Name)
		jobs[i].RepositoryName = anonymize("repo", jobs[i].RepositoryName)
		jobs[i].Description = ""
	}
	return jobs
}

func redactEnriched(cfg models.Config, objects []models.EnrichedBackupObject) []models.EnrichedBackupObject {
	if !cfg.Redact {
		return objects
	}
	for i := range objects {
		objects[i].Name = anonymize("object", objects[i].Name)
		if objects[i].JobName != "Unknown" {
			objects[i].JobName = anonymize("job", objects[i].JobName)
		}
		objects[i].TaskMessage = ""
	}
	return objects
}

func redactTasks(cfg models.Config, tasks []models.TaskSession) []models.TaskSession {
	if !cfg.Redact {
		return tasks
	}
	for i := range tasks {
		tasks[i].Name = anonymize("object", tasks[i].Name)
		tasks[i].Result.Message = ""
	}
	return tasks
}

func redactRepositories(cfg models.Config, repos []models.Repository) []models.Repository {
	if !cfg.Redact {
		return repos
	}
	for i := range repos {
		repos[i].Name = anonymize("repo", repos[i].Name)
		repos[i].HostName = anonymize("host", repos[i].HostName)
		repos[i].Path = ""
	}
	return repos
}

func redactProxies(cfg models.Config, proxies []models.Proxy) []models.Proxy {
	if !cfg.Redact {
		return proxies
	}
	for i := range proxies {
		proxies[i].Name = anonymize("proxy", proxies[i].Name)
		proxies[i].HostName = anonymize("host", proxies[i].HostName)
	}
	return proxies
}

func redactManagedServers(cfg models.Config, servers []models.ManagedServer) []models.ManagedServer {
	if !cfg.Redact {
		return servers
	}
	for i := range servers {
		servers[i].Name = anonymize("server", servers[i].Name)
		servers[i].Description = ""
	}
	return servers
}

func redactScaleOutRepos(cfg models.Config, repos []models.ScaleOutRepository) []models.ScaleOutRepository {
	if !cfg.Redact {
		return repos
	}
	for i := range repos {
		repos[i].Name = anonymize("repo", repos[i].Name)
		repos[i].Description = ""
	}
	return repos
}

func redactWANAccelerators(cfg models.Config, accels []models.WANAccelerator) []models.WANAccelerator {
	if !cfg.Redact {
		return accels
	}
	for i := range accels {
		accels[i].Name = anonymize("wan", accels[i].Name)
		accels[i].HostName = anonymize("host", accels[i].HostName)
	}
	return accels
}

func redactReplicas(cfg models.Config, replicas []models.Replica) []models.Replica {
	if !cfg.Redact {
		return replicas
	}
	for i := range replicas {
		replicas[i].Name = anonymize("replica", replicas[i].Name)
	}
	return replicas
}

func redactConfigBackup(cfg models.Config, cb *models.ConfigBackup) *models.ConfigBackup {
	if !cfg.Redact {
		return cb
	}
	cb.BackupRepositoryID = anonymize("repo", cb.BackupRepositoryID)
	return cb
}

func redactLicense(cfg models.Config, lic *models.License) *models.License {
	if !cfg.Redact {
		return lic
	}
	lic.LicensedTo = anonymize("org", lic.LicensedTo)
	return lic
}

func redactServerInfo(cfg models.Config, info *models.ServerInfo) *models.ServerInfo {
	if !cfg.Redact {
		return info
	}
	info.Name = anonymize("host", info.Name)
	info.VBRID = ""
	return info
}
