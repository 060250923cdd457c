package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fjacquet/veeam_agent/internal/models"
)

// sectionPrefix namespaces every emitted block for the consuming check
// plugins.
const sectionPrefix = "veeam_rest_"

// Emit writes the run's output in the monitoring platform's agent format:
// one named, delimited block per collected section with a compact JSON body.
// Failed sections are omitted entirely, which the platform reads as "no
// data"; collected-but-empty sections still emit their empty JSON body to
// distinguish the two.
func Emit(w io.Writer, cfg models.Config, result *RunResult) error {
	for _, name := range result.Order {
		section := result.Sections[name]
		if section.Err != nil {
			continue
		}
		if name == SectionBackupObjects {
			if err := emitBackupObjects(w, cfg, result); err != nil {
				return err
			}
			continue
		}
		if err := emitBlock(w, sectionPrefix+name, section.Payload); err != nil {
			return err
		}
	}
	return nil
}

// emitBackupObjects routes the enriched records according to the backup
// mode: as a section on the primary host, as piggyback data addressed to
// each object's own host identity, or both.
func emitBackupObjects(w io.Writer, cfg models.Config, result *RunResult) error {
	section := result.Sections[SectionBackupObjects]

	if cfg.BackupMode == "services" || cfg.BackupMode == "both" || cfg.SectionEnabled(SectionBackupObjects) {
		if err := emitBlock(w, sectionPrefix+SectionBackupObjects, section.Payload); err != nil {
			return err
		}
	}

	if cfg.BackupMode == "piggyback" || cfg.BackupMode == "both" {
		for _, obj := range result.EnrichedObjects() {
			payload, err := json.Marshal(obj)
			if err != nil {
				return fmt.Errorf("encode piggyback record for %s: %w", obj.Name, err)
			}
			if _, err := fmt.Fprintf(w, "<<<<%s>>>>\n", PiggybackHostName(obj.Name)); err != nil {
				return err
			}
			if err := emitBlock(w, sectionPrefix+"vm_backup", payload); err != nil {
				return err
			}
			if _, err := fmt.Fprint(w, "<<<<>>>>\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitBlock(w io.Writer, name string, payload json.RawMessage) error {
	if len(payload) == 0 || string(payload) == "null" {
		// Collected but found nothing: an empty collection marker, not a
		// missing section.
		payload = json.RawMessage("[]")
	}
	_, err := fmt.Fprintf(w, "<<<%s:sep(0)>>>\n%s\n", name, payload)
	return err
}

// PiggybackHostName converts an object display name into the host identity
// its records are attached to: whitespace becomes underscores, case is
// preserved.
func PiggybackHostName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}
