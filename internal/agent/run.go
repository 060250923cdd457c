package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjacquet/veeam_agent/internal/models"
	log "github.com/sirupsen/logrus"
)

// SectionResult is the outcome of one collector: either a serialized payload
// or the error that made its endpoint fail.
type SectionResult struct {
	Name    string
	Payload json.RawMessage
	Err     error
}

// RunResult aggregates the per-section outcomes of one collection run.
// Order preserves the fixed collection sequence for emission.
type RunResult struct {
	Order    []string
	Sections map[string]SectionResult
}

// Run executes one collection run: authenticate, then collect every enabled
// section in fixed order through the cache. A failed token exchange aborts
// the run; a failed section is recorded and skipped so the remaining
// endpoints still produce output.
func Run(ctx context.Context, cfg models.Config, client *Client, cache *SectionCache) (*RunResult, error) {
	if _, err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	result := &RunResult{Sections: make(map[string]SectionResult)}
	for _, col := range buildCollectors(client, cfg) {
		if !sectionWanted(cfg, col.Name) {
			continue
		}

		payload, err := cache.GetOrFetch(col.Name, col.TTL, func() (json.RawMessage, error) {
			data, err := col.Fetch(ctx)
			if err != nil {
				return nil, &SectionError{Section: col.Name, Err: err}
			}
			payload, err := json.Marshal(data)
			if err != nil {
				return nil, &SectionError{Section: col.Name, Err: fmt.Errorf("encode: %w", err)}
			}
			return payload, nil
		})
		if err != nil {
			log.Errorf("Section %s failed: %v", col.Name, err)
		}

		result.Order = append(result.Order, col.Name)
		result.Sections[col.Name] = SectionResult{Name: col.Name, Payload: payload, Err: err}
	}
	return result, nil
}

// EnrichedObjects decodes the backup object section payload back into typed
// records, for piggyback emission. Returns nil when the section was not
// collected or failed.
func (r *RunResult) EnrichedObjects() []models.EnrichedBackupObject {
	section, ok := r.Sections[SectionBackupObjects]
	if !ok || section.Err != nil {
		return nil
	}
	var objects []models.EnrichedBackupObject
	if err := json.Unmarshal(section.Payload, &objects); err != nil {
		log.Errorf("Failed to decode backup object payload: %v", err)
		return nil
	}
	return objects
}
