package models

import "time"

// Audit is the bookkeeping block embedded in every persisted entity. Rows are
// never physically removed; Deleted hides them from list queries.
type Audit struct {
	Deleted          bool      `gorm:"column:is_deleted;not null;default:false;index" json:"deleted"`
	CreatedTime      time.Time `gorm:"column:created_time" json:"createdTime"`
	CreatedBy        *int64    `gorm:"column:created_by" json:"createdBy,omitempty"`
	LastModifiedTime time.Time `gorm:"column:last_modified_time" json:"lastModifiedTime"`
	LastModifiedBy   *int64    `gorm:"column:last_modified_by" json:"lastModifiedBy,omitempty"`
}

// Audited is satisfied by any entity embedding Audit.
type Audited interface {
	AuditInfo() *Audit
}

// AuditInfo exposes the embedded block to generic code.
func (a *Audit) AuditInfo() *Audit { return a }

// StampCreate initializes a new record. actor is nil for anonymous writes such as sign-up.
func (a *Audit) StampCreate(actor *int64, now time.Time) {
	a.Deleted = false
	a.CreatedTime = now
	a.CreatedBy = actor
	a.LastModifiedTime = now
	a.LastModifiedBy = actor
}

// StampUpdate records a modification.
func (a *Audit) StampUpdate(actor *int64, now time.Time) {
	a.LastModifiedTime = now
	a.LastModifiedBy = actor
}

// MarkDeleted flags the record as soft-deleted and stamps the modification.
func (a *Audit) MarkDeleted(actor *int64, now time.Time) {
	a.Deleted = true
	a.StampUpdate(actor, now)
}

// Entity is a persisted, audited record with a numeric primary key.
type Entity interface {
	Audited
	GetID() int64
	SetID(id int64)
}
