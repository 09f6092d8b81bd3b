// Package auditlog records user-visible actions to the audit trail.
//
// Records are write-only: nothing in the system reads them back except
// operators inspecting the store directly. Failures to write an audit
// record are logged and never propagated, so auditing can not break the
// operation being audited.
package auditlog

import (
	"time"

	"github.com/rs/zerolog/log"

	"vigil/internal/storage"
)

// Recorder writes audit records against an injected storage handle.
type Recorder struct {
	storage *storage.Storage
}

// NewRecorder creates a new audit recorder.
func NewRecorder(st *storage.Storage) *Recorder {
	return &Recorder{storage: st}
}

// Record writes a single audit entry.
func (r *Recorder) Record(userID *int64, ip, action, detail string) {
	entry := &storage.AuditLog{
		UserID:    userID,
		IP:        ip,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := r.storage.DB().Create(entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit record")
	}
}

// Event records a system-level action with no acting user.
func (r *Recorder) Event(action, detail string) {
	r.Record(nil, "", action, detail)
}

// Prune deletes audit records older than the given retention window.
func (r *Recorder) Prune(retention time.Duration) error {
	threshold := time.Now().Add(-retention)
	return r.storage.DB().
		Where("created_at < ?", threshold).
		Delete(&storage.AuditLog{}).Error
}
