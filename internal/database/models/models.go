// Package models defines the data structures for database entities in
// CropCert. It includes models for certifications, audit records, and the
// scalar registry state rows, representing the core data model for the
// application.
package models

import "time"

// Certification represents one GMO-free certification claim. FarmID,
// ProductID, and TestID are opaque references to external registries; this
// system only requires them to be positive. IssueTime is the opaque marker
// of the last status change, so it moves forward on approval and revocation;
// CreatedAt keeps the original issuance instant.
type Certification struct {
	CertID    int64     `db:"cert_id" json:"cert_id"`
	FarmID    int64     `db:"farm_id" json:"farm_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	TestID    int64     `db:"test_id" json:"test_id"`
	Status    string    `db:"status" json:"status"`
	IssueTime int64     `db:"issue_time" json:"issue_time"`
	Metadata  string    `db:"metadata" json:"metadata"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CertAudit is the most recent audit action taken on a certification. One
// row per certification; each approval or revocation overwrites it.
type CertAudit struct {
	CertID    int64     `db:"cert_id" json:"cert_id"`
	Auditor   string    `db:"auditor" json:"auditor"`
	AuditTime int64     `db:"audit_time" json:"audit_time"`
	Notes     string    `db:"notes" json:"notes"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RegistryValue represents a scalar registry state row (the certification
// counter and the authority binding).
type RegistryValue struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
