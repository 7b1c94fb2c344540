// Package registry implements the certification state machine: issuance,
// approval, and revocation of GMO-free certification records, the one-time
// authority binding, the monotonic ID allocator, and the auditor verification
// gate. All registry state lives in the database; a single registry instance
// owns it and serializes every operation behind one mutex.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cropcert/cropcert/internal/database"
	"github.com/cropcert/cropcert/internal/database/models"
	"github.com/cropcert/cropcert/internal/events"
	"github.com/cropcert/cropcert/internal/metrics"
)

// Input bounds, counted in Unicode code points.
const (
	MaxMetadataLen = 500
	MaxNotesLen    = 200
)

// Keys of the scalar registry state rows.
const (
	counterKey   = "cert_counter"
	authorityKey = "authority"
)

// Registry coordinates all certification operations. Mutating operations
// validate every precondition before writing anything, so a failed call
// leaves the registry untouched.
type Registry struct {
	mu       sync.RWMutex
	db       *database.Database
	sentinel string
	verifier AuditorVerifier
	emitter  events.Emitter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a registry over the given database. The sentinel identity can
// never be bound as authority; it is checked independently of the verifier,
// which decides auditor status only. The verifier must not be nil; emitter
// and metrics may be nil to disable those side channels.
func New(db *database.Database, sentinel string, verifier AuditorVerifier, emitter events.Emitter, m *metrics.Metrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		db:       db,
		sentinel: sentinel,
		verifier: verifier,
		emitter:  emitter,
		metrics:  m,
		logger:   logger,
	}
}

// IssueRequest carries the inputs of a certification issuance.
type IssueRequest struct {
	FarmID    int64
	ProductID int64
	TestID    int64
	Metadata  string
}

// SetAuthority binds the issuing authority. The binding succeeds exactly
// once: rebinding, the sentinel identity, and the empty identity are all
// rejected with ErrNotAuthorized. There is no way to change or clear the
// binding afterward.
func (r *Registry) SetAuthority(ctx context.Context, identity string) (err error) {
	start := time.Now()
	defer func() { r.finish("set_authority", start, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if identity == "" || identity == r.sentinel {
		return ErrNotAuthorized
	}

	// Reject rebinding
	_, err = r.db.GetRegistryValue(authorityKey)
	if err == nil {
		return ErrNotAuthorized
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read authority binding: %w", err)
	}

	// Plain insert: the primary key enforces one-shot binding at the
	// storage layer as well
	if err := r.db.InsertRegistryValue(authorityKey, identity); err != nil {
		return fmt.Errorf("failed to bind authority: %w", err)
	}

	r.logger.Info("Authority bound", zap.String("authority", identity))
	return nil
}

// Issue creates a new certification in status pending and returns its ID.
// Any caller may issue once the authority binding exists; the claim only
// becomes authoritative after auditor approval.
func (r *Registry) Issue(ctx context.Context, caller string, now int64, req IssueRequest) (certID int64, err error) {
	start := time.Now()
	defer func() { r.finish("issue", start, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Authority binding is checked before any field validation
	if _, err := r.db.GetRegistryValue(authorityKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotAuthorized
		}
		return 0, fmt.Errorf("failed to read authority binding: %w", err)
	}

	if req.FarmID <= 0 {
		return 0, ErrInvalidFarmID
	}
	if req.ProductID <= 0 {
		return 0, ErrInvalidProductID
	}
	if req.TestID <= 0 {
		return 0, ErrInvalidTestID
	}
	if utf8.RuneCountInString(req.Metadata) > MaxMetadataLen {
		return 0, ErrInvalidMetadata
	}

	counter, err := r.counter()
	if err != nil {
		return 0, err
	}
	candidate := counter + 1

	// Invariant guard: the candidate slot must be free
	if _, err := r.db.GetCertification(candidate); err == nil {
		return 0, ErrCertAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check certification slot: %w", err)
	}

	cert := &models.Certification{
		CertID:    candidate,
		FarmID:    req.FarmID,
		ProductID: req.ProductID,
		TestID:    req.TestID,
		Status:    string(StatusPending),
		IssueTime: now,
		Metadata:  req.Metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Record and counter commit in one transaction
	if err := r.db.CreateCertification(cert, candidate); err != nil {
		return 0, fmt.Errorf("failed to store certification: %w", err)
	}

	r.logger.Info("Certification issued",
		zap.Int64("cert_id", candidate),
		zap.Int64("farm_id", req.FarmID),
		zap.Int64("product_id", req.ProductID),
		zap.Int64("test_id", req.TestID),
		zap.String("caller", caller),
		zap.Int64("issue_time", now),
	)
	r.metrics.RecordStatusEntered(string(StatusPending))
	r.emit(ctx, events.CertIssued, candidate)

	return candidate, nil
}

// Approve moves a pending certification to active, re-stamps its issue time
// with the supplied marker, and overwrites the audit record with the caller,
// marker, and notes. Only callers that pass auditor verification may approve.
func (r *Registry) Approve(ctx context.Context, caller string, now int64, certID int64, notes string) error {
	return r.transition(ctx, "approve", caller, now, certID, notes, StatusActive, events.CertApproved)
}

// Revoke moves an active certification to revoked, a terminal status, and
// overwrites the audit record. Only callers that pass auditor verification
// may revoke; pending certifications cannot be revoked.
func (r *Registry) Revoke(ctx context.Context, caller string, now int64, certID int64, notes string) error {
	return r.transition(ctx, "revoke", caller, now, certID, notes, StatusRevoked, events.CertRevoked)
}

// transition is the shared approve/revoke path. Check order: record
// existence, auditor verification, status guard. All checks precede all
// writes; record and audit commit in one transaction.
func (r *Registry) transition(ctx context.Context, op, caller string, now int64, certID int64, notes string, next Status, eventName string) (err error) {
	start := time.Now()
	defer func() { r.finish(op, start, err) }()

	if utf8.RuneCountInString(notes) > MaxNotesLen {
		return ErrInvalidNotes
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cert, err := r.db.GetCertification(certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCertNotFound
		}
		return fmt.Errorf("failed to load certification: %w", err)
	}

	ok, err := r.verifier.Verify(ctx, caller)
	if err != nil {
		return fmt.Errorf("auditor verification failed: %w", err)
	}
	if !ok {
		return ErrAuditorNotVerified
	}

	if !Status(cert.Status).CanTransitionTo(next) {
		return ErrInvalidStatus
	}

	audit := &models.CertAudit{
		CertID:    certID,
		Auditor:   caller,
		AuditTime: now,
		Notes:     notes,
		UpdatedAt: time.Now(),
	}
	if err := r.db.UpdateCertificationStatus(certID, string(next), now, audit); err != nil {
		return fmt.Errorf("failed to update certification: %w", err)
	}

	r.logger.Info("Certification status changed",
		zap.Int64("cert_id", certID),
		zap.String("from", cert.Status),
		zap.String("to", string(next)),
		zap.String("auditor", caller),
		zap.Int64("audit_time", now),
	)
	r.metrics.RecordStatusEntered(string(next))
	r.emit(ctx, eventName, certID)

	return nil
}

// GetCertification returns the certification at certID, or nil if absent.
// Absence is not an error.
func (r *Registry) GetCertification(certID int64) (*models.Certification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cert, err := r.db.GetCertification(certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load certification: %w", err)
	}
	return cert, nil
}

// GetCertAudit returns the most recent audit record for certID, or nil if
// the certification has never been approved or revoked.
func (r *Registry) GetCertAudit(certID int64) (*models.CertAudit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	audit, err := r.db.GetCertAudit(certID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load audit record: %w", err)
	}
	return audit, nil
}

// ListCertifications returns certifications ordered by ID, optionally
// filtered by status. An empty status returns everything.
func (r *Registry) ListCertifications(status Status) ([]*models.Certification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	certs, err := r.db.ListCertifications(string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	return certs, nil
}

// Counter returns the number of certifications ever issued. IDs are
// allocated as counter+1, so this is also the highest assigned ID.
func (r *Registry) Counter() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counter()
}

// Authority returns the bound authority identity, with bound=false while the
// registry is still unbound.
func (r *Registry) Authority() (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, err := r.db.GetRegistryValue(authorityKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read authority binding: %w", err)
	}
	return identity, true, nil
}

// Summary aggregates the registry's operational state.
type Summary struct {
	Counter        int64            `json:"counter"`
	AuthorityBound bool             `json:"authority_bound"`
	Authority      string           `json:"authority,omitempty"`
	Certifications map[string]int64 `json:"certifications"`
}

// GetSummary returns the counter, authority binding, and per-status
// certification counts.
func (r *Registry) GetSummary() (*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counter, err := r.counter()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Counter:        counter,
		Certifications: make(map[string]int64, len(Statuses())),
	}
	for _, s := range Statuses() {
		summary.Certifications[string(s)] = 0
	}

	counts, err := r.db.CountCertificationsByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count certifications: %w", err)
	}
	for status, n := range counts {
		summary.Certifications[status] = n
	}

	identity, err := r.db.GetRegistryValue(authorityKey)
	if err == nil {
		summary.AuthorityBound = true
		summary.Authority = identity
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read authority binding: %w", err)
	}

	return summary, nil
}

// counter reads the allocator value. Callers must hold the mutex.
func (r *Registry) counter() (int64, error) {
	value, err := r.db.GetRegistryValue(counterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read certification counter: %w", err)
	}
	counter, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt certification counter %q: %w", value, err)
	}
	return counter, nil
}

// emit delivers one event, logging delivery failures. The operation has
// already committed; emission is best-effort.
func (r *Registry) emit(ctx context.Context, name string, certID int64) {
	if r.emitter == nil {
		return
	}
	if err := r.emitter.Emit(ctx, events.Event{Name: name, CertID: certID}); err != nil {
		r.logger.Warn("Failed to emit registry event",
			zap.String("event", name),
			zap.Int64("cert_id", certID),
			zap.Error(err),
		)
	}
}

// finish records operation metrics.
func (r *Registry) finish(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.metrics.RecordOperation(op, outcome)
	r.metrics.ObserveOperationDuration(op, time.Since(start))
}
