package service

import "time"

// applyCompletionRule returns the completion timestamp a record should carry
// after its completion status is set to status:
//
//   - status true with no existing timestamp: stamp now
//   - status true with an existing timestamp: keep it (no re-stamping)
//   - status false: clear unconditionally
func applyCompletionRule(status bool, current *time.Time, now time.Time) *time.Time {
	if !status {
		return nil
	}
	if current != nil {
		return current
	}
	return &now
}
