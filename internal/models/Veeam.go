package models

// TokenResponse is the body returned by the OAuth2 token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Pagination is the paging metadata Veeam attaches to bulk responses.
// Total may be zero when the server omits it; callers then fall back to
// stopping on an empty page.
type Pagination struct {
	Total int `json:"total"`
	Count int `json:"count"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Page is the envelope of a single page from a paginated endpoint.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// SessionProgress carries the per-session figures the jobs/states endpoint
// reports for the job's last run.
type SessionProgress struct {
	Duration        string `json:"duration,omitempty"`
	ProcessedSize   int64  `json:"processedSize,omitempty"`
	ReadSize        int64  `json:"readSize,omitempty"`
	TransferredSize int64  `json:"transferredSize,omitempty"`
	ProcessingRate  string `json:"processingRate,omitempty"`
	Bottleneck      string `json:"bottleneck,omitempty"`
}

// Job is one entry from the jobs/states endpoint. The section is consumed
// field by field downstream, so everything the endpoint reports for a job
// state is modeled here and passes through to the output.
type Job struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Type              string           `json:"type"`
	Status            string           `json:"status"`
	LastResult        string           `json:"lastResult"`
	LastRun           string           `json:"lastRun"`
	NextRun           string           `json:"nextRun,omitempty"`
	SessionID         string           `json:"sessionId,omitempty"`
	Description       string           `json:"description,omitempty"`
	ObjectsCount      int              `json:"objectsCount,omitempty"`
	ProcessingRate    string           `json:"processingRate,omitempty"`
	IsDisabled        bool             `json:"isDisabled,omitempty"`
	ProgressPercent   int              `json:"progressPercent,omitempty"`
	RepositoryName    string           `json:"repositoryName,omitempty"`
	Workload          string           `json:"workload,omitempty"`
	HighPriority      bool             `json:"highPriority,omitempty"`
	SessionProgress   *SessionProgress `json:"sessionProgress,omitempty"`
	LastRunAgeSeconds *int64           `json:"lastRunAgeSeconds,omitempty"`
}

// Backup is one entry from the backups endpoint. It links backup objects to
// the job that produced them.
type Backup struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	JobID      string `json:"jobId"`
	PolicyTag  string `json:"policyTag,omitempty"`
	PlatformID string `json:"platformId,omitempty"`
}

// BackupObject is one entry from the backupObjects endpoint, before
// enrichment.
type BackupObject struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Type               string `json:"type"`
	PlatformName       string `json:"platformName,omitempty"`
	BackupID           string `json:"backupId"`
	RestorePointsCount int    `json:"restorePointsCount"`
	LastRunFailed      bool   `json:"lastRunFailed"`
	LastRun            string `json:"lastRun,omitempty"`
	TotalSize          int64  `json:"totalSize,omitempty"`
}

// RestorePoint is one entry from the bulk restorePoints endpoint.
type RestorePoint struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BackupID      string `json:"backupId"`
	CreationTime  string `json:"creationTime"`
	MalwareStatus string `json:"malwareStatus,omitempty"`
	OriginalSize  int64  `json:"originalSize,omitempty"`
	BackupSize    int64  `json:"backupSize,omitempty"`
}

// TaskResult carries the per-object outcome of a task session.
type TaskResult struct {
	Result  string `json:"result"`
	Message string `json:"message,omitempty"`
}

// TaskSession is one entry from the taskSessions endpoint: the per-object
// execution record of a job run, with the richer performance figures the
// backupObjects endpoint does not expose.
type TaskSession struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	JobID           string     `json:"jobId"`
	SessionID       string     `json:"sessionId,omitempty"`
	Type            string     `json:"type,omitempty"`
	CreationTime    string     `json:"creationTime"`
	EndTime         string     `json:"endTime,omitempty"`
	State           string     `json:"state,omitempty"`
	Result          TaskResult `json:"result"`
	Duration        string     `json:"duration,omitempty"`
	ProcessingRate  string     `json:"processingRate,omitempty"`
	TransferredSize int64      `json:"transferredSize,omitempty"`
	ProcessedSize   int64      `json:"processedSize,omitempty"`
	Bottleneck      string     `json:"bottleneck,omitempty"`
}

// Repository is one entry from backupInfrastructure/repositories/states.
type Repository struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	HostName    string  `json:"hostName,omitempty"`
	Path        string  `json:"path,omitempty"`
	CapacityGB  float64 `json:"capacityGB"`
	FreeGB      float64 `json:"freeGB"`
	UsedSpaceGB float64 `json:"usedSpaceGB"`
	IsOnline    bool    `json:"isOnline"`
	IsOutOfDate bool    `json:"isOutOfDate"`
}

// Proxy is one entry from backupInfrastructure/proxies/states.
type Proxy struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	HostName string `json:"hostName,omitempty"`
	IsOnline bool   `json:"isOnline"`
}

// ManagedServer is one entry from backupInfrastructure/managedServers.
type ManagedServer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ScaleOutRepository is one entry from
// backupInfrastructure/scaleOutRepositories.
type ScaleOutRepository struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ExtentIDs   []string `json:"extentIds,omitempty"`
}

// WANAccelerator is one entry from backupInfrastructure/wanAccelerators.
type WANAccelerator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HostName string `json:"hostName,omitempty"`
}

// Replica is one entry from the replicas endpoint: a standby copy of a
// machine kept for disaster recovery.
type Replica struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	PlatformName string `json:"platformName,omitempty"`
	JobID        string `json:"jobId,omitempty"`
}

// SecurityCheck is one result of the Security & Compliance Analyzer: a named
// best-practice check with a Passed/Failed/Suppressed/NotApplicable status.
type SecurityCheck struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status"`
}

// ConfigBackupEncryption is the encryption block of the configuration backup
// settings.
type ConfigBackupEncryption struct {
	IsEnabled bool `json:"isEnabled"`
}

// ConfigBackupLastRun records the most recent successful configuration
// backup.
type ConfigBackupLastRun struct {
	LastSuccessfulTime string `json:"lastSuccessfulTime,omitempty"`
	SessionID          string `json:"sessionId,omitempty"`
}

// ConfigBackup is the body of the configBackup endpoint: the backup server's
// own configuration backup settings and last result.
type ConfigBackup struct {
	IsEnabled            bool                   `json:"isEnabled"`
	BackupRepositoryID   string                 `json:"backupRepositoryId,omitempty"`
	RestorePointsToKeep  int                    `json:"restorePointsToKeep,omitempty"`
	Encryption           ConfigBackupEncryption `json:"encryption"`
	LastSuccessfulBackup ConfigBackupLastRun    `json:"lastSuccessfulBackup"`
}

// InstanceLicenseSummary is the instance consumption block of the license.
type InstanceLicenseSummary struct {
	LicensedInstances float64 `json:"licensedInstancesNumber"`
	UsedInstances     float64 `json:"usedInstancesNumber"`
}

// License is the body of the license endpoint.
type License struct {
	Status                 string                 `json:"status"`
	Type                   string                 `json:"type"`
	Edition                string                 `json:"edition"`
	LicensedTo             string                 `json:"licensedTo"`
	ExpirationDate         string                 `json:"expirationDate,omitempty"`
	SupportExpirationDate  string                 `json:"supportExpirationDate,omitempty"`
	AutoUpdateEnabled      bool                   `json:"autoUpdateEnabled,omitempty"`
	InstanceLicenseSummary InstanceLicenseSummary `json:"instanceLicenseSummary"`
}

// ServerInfo is the body of the serverInfo endpoint.
type ServerInfo struct {
	VBRID          string `json:"vbrId,omitempty"`
	Name           string `json:"name"`
	BuildVersion   string `json:"buildVersion"`
	DatabaseVendor string `json:"databaseVendor,omitempty"`
	SQLServer      string `json:"sqlServerVersion,omitempty"`
}

// EnrichedBackupObject is the composite record produced by the enrichment
// join: one per monitored machine, combining the backup object with its job,
// its latest restore point, and a matching task session when one exists.
type EnrichedBackupObject struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	PlatformName       string `json:"platformName,omitempty"`
	JobID              string `json:"jobId,omitempty"`
	JobName            string `json:"jobName"`
	JobType            string `json:"jobType,omitempty"`
	LastRunFailed      bool   `json:"lastRunFailed"`
	LastRun            string `json:"lastRun,omitempty"`
	RestorePointsCount int    `json:"restorePointsCount"`

	// From the latest restore point for this object, when inside the
	// configured time window.
	LatestRestorePoint string `json:"latestRestorePoint,omitempty"`
	MalwareStatus      string `json:"malwareStatus,omitempty"`
	OriginalSize       int64  `json:"originalSize,omitempty"`

	// From the matching task session (VM class objects), or from the
	// backup object itself (agent class objects).
	TaskResult      string   `json:"taskResult,omitempty"`
	TaskMessage     string   `json:"taskMessage,omitempty"`
	DurationSeconds *int64   `json:"durationSeconds,omitempty"`
	TransferredSize int64    `json:"transferredSize,omitempty"`
	ProcessingRate  *float64 `json:"processingRateBps,omitempty"`
	Bottleneck      string   `json:"bottleneck,omitempty"`
}
