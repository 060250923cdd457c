package agent

import (
	"strings"

	"github.com/fjacquet/veeam_agent/internal/models"
	"github.com/fjacquet/veeam_agent/internal/utils"
)

// orphanedPrefix marks backups whose source object was decommissioned. Such
// objects are stale, not actionable, and are excluded from output.
const orphanedPrefix = "Orphaned"

// taskKey scopes a task session to one object within one job, so that two
// jobs protecting same-named machines never leak sessions into each other.
type taskKey struct {
	jobID string
	name  string
}

// enrichBackupObjects joins the raw bulk collections into one composite
// record per monitored object. All lookups are index maps built up front;
// the join itself is a single linear pass and performs no network calls.
func enrichBackupObjects(
	objects []models.BackupObject,
	jobs []models.Job,
	backups []models.Backup,
	tasks []models.TaskSession,
	restorePoints []models.RestorePoint,
) []models.EnrichedBackupObject {

	jobsByID := make(map[string]models.Job, len(jobs))
	for _, job := range jobs {
		jobsByID[job.ID] = job
	}

	// Backup id -> owning job id, from the bulk backups listing. This is the
	// job-mapping call that replaces one API round trip per object.
	jobIDByBackup := make(map[string]string, len(backups))
	for _, b := range backups {
		jobIDByBackup[b.ID] = b.JobID
	}

	latestRP := latestRestorePoints(restorePoints)
	latestTask := latestTaskSessions(tasks)

	enriched := make([]models.EnrichedBackupObject, 0, len(objects))
	for _, obj := range objects {
		if obj.RestorePointsCount == 0 {
			continue
		}
		if strings.HasPrefix(obj.Name, orphanedPrefix) {
			continue
		}

		rec := models.EnrichedBackupObject{
			Name:               obj.Name,
			Type:               obj.Type,
			PlatformName:       obj.PlatformName,
			LastRunFailed:      obj.LastRunFailed,
			LastRun:            obj.LastRun,
			RestorePointsCount: obj.RestorePointsCount,
			JobName:            "Unknown",
			TransferredSize:    obj.TotalSize,
		}

		jobID := jobIDByBackup[obj.BackupID]
		rec.JobID = jobID
		if job, ok := jobsByID[jobID]; ok {
			rec.JobName = job.Name
			rec.JobType = job.Type
			rec.ProcessingRate = utils.ParseRateBytesPerSecond(job.ProcessingRate)
		}

		if rp, ok := latestRP[obj.Name]; ok {
			rec.LatestRestorePoint = rp.CreationTime
			rec.MalwareStatus = rp.MalwareStatus
			rec.OriginalSize = rp.OriginalSize
		}

		// VM class objects get the richer per-object figures from their task
		// session. Agent class backups have no task session for their backup
		// type and keep the object-level fields.
		if isVMClass(obj.Type) {
			if task, ok := latestTask[taskKey{jobID: jobID, name: obj.Name}]; ok {
				rec.TaskResult = task.Result.Result
				rec.TaskMessage = task.Result.Message
				rec.DurationSeconds = utils.ParseDurationSeconds(task.Duration)
				rec.Bottleneck = task.Bottleneck
				if task.TransferredSize > 0 {
					rec.TransferredSize = task.TransferredSize
				}
				if rate := utils.ParseRateBytesPerSecond(task.ProcessingRate); rate != nil {
					rec.ProcessingRate = rate
				}
			}
		}

		enriched = append(enriched, rec)
	}
	return enriched
}

func isVMClass(objectType string) bool {
	return objectType == "VirtualMachine" || objectType == "VCloud"
}

// latestRestorePoints indexes the most recent restore point per object name.
// Ties on the creation timestamp go to the lexicographically greater ID, so
// the choice is deterministic across runs.
func latestRestorePoints(restorePoints []models.RestorePoint) map[string]models.RestorePoint {
	latest := make(map[string]models.RestorePoint)
	for _, rp := range restorePoints {
		cur, ok := latest[rp.Name]
		if !ok || rp.CreationTime > cur.CreationTime ||
			(rp.CreationTime == cur.CreationTime && rp.ID > cur.ID) {
			latest[rp.Name] = rp
		}
	}
	return latest
}

// latestTaskSessions indexes the most recent task session per (job, object).
// The end time orders sessions, falling back to the creation time for
// sessions still running. ISO-8601 UTC strings compare correctly as strings.
func latestTaskSessions(tasks []models.TaskSession) map[taskKey]models.TaskSession {
	latest := make(map[taskKey]models.TaskSession)
	for _, task := range tasks {
		key := taskKey{jobID: task.JobID, name: task.Name}
		cur, ok := latest[key]
		if !ok || sessionTime(task) > sessionTime(cur) {
			latest[key] = task
		}
	}
	return latest
}

func sessionTime(task models.TaskSession) string {
	if task.EndTime != "" {
		return task.EndTime
	}
	return task.CreationTime
}
