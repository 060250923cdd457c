package agent

import "fmt"

// AuthError reports a failed token exchange. It is fatal for the whole run:
// nothing can be collected without a session.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// SectionError reports the failure of a single collector's endpoint. It is
// isolated: the section's output block is omitted and the run continues.
type SectionError struct {
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}
