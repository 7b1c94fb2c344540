// Package database provides database connection management, migrations, and data access methods for the CropCert registry.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/cropcert/cropcert/internal/config"
	"github.com/cropcert/cropcert/internal/database/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database represents the database connection and operations
type Database struct {
	db     *sql.DB
	dbType string
}

// New creates a new database connection
func New(cfg *config.Config) (*Database, error) {
	var db *sql.DB
	var err error

	switch cfg.Database.Type {
	case "sqlite":
		db, err = sql.Open("sqlite3", cfg.Database.SQLite.Path+"?_foreign_keys=on")
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		// SQLite only allows one writer at a time
		db.SetMaxOpenConns(1)
	case "postgres":
		db, err = sql.Open("postgres", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdleConns)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		db:     db,
		dbType: cfg.Database.Type,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping checks the database connection
func (d *Database) Ping() error {
	return d.db.Ping()
}

// Migrate runs database migrations
func (d *Database) Migrate() error {
	// List of migration files to run in order
	var migrationFiles []string
	if d.dbType == "postgres" {
		migrationFiles = []string{
			"migrations/000001_init_schema.postgres.up.sql",
		}
	} else {
		migrationFiles = []string{
			"migrations/000001_init_schema.up.sql",
		}
	}

	// Run each migration file
	for _, migrationFile := range migrationFiles {
		content, err := migrationsFS.ReadFile(migrationFile)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migrationFile, err)
		}

		// Remove comments and split into statements
		var statements []string
		lines := strings.Split(string(content), "\n")
		var currentStmt strings.Builder

		for _, line := range lines {
			line = strings.TrimSpace(line)
			// Skip comment lines
			if strings.HasPrefix(line, "--") || line == "" {
				continue
			}

			currentStmt.WriteString(line)
			currentStmt.WriteString("\n")

			// If line ends with semicolon, we have a complete statement
			if strings.HasSuffix(line, ";") {
				stmt := strings.TrimSpace(currentStmt.String())
				if stmt != "" {
					statements = append(statements, stmt)
				}
				currentStmt.Reset()
			}
		}

		// Execute statements in order
		for _, stmt := range statements {
			if _, err := d.db.Exec(stmt); err != nil {
				// Ignore "duplicate column" errors for idempotent migrations
				if !strings.Contains(err.Error(), "duplicate column") && !strings.Contains(err.Error(), "already exists") {
					return fmt.Errorf("migration %s failed: %w\nStatement: %s", migrationFile, err, stmt)
				}
			}
		}
	}

	return nil
}

// DB returns the underlying database connection for direct queries
func (d *Database) DB() *sql.DB {
	return d.db
}

// Certification operations

// CreateCertification stores a new certification and advances the counter in
// a single transaction
func (d *Database) CreateCertification(cert *models.Certification, counter int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `INSERT INTO certifications
	                (cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at)
	                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	counterQuery := `UPDATE registry_state SET value = ?, updated_at = ? WHERE key = 'cert_counter'`

	if d.dbType == "postgres" {
		insertQuery = `INSERT INTO certifications
		               (cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at)
		               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		counterQuery = `UPDATE registry_state SET value = $1, updated_at = $2 WHERE key = 'cert_counter'`
	}

	_, err = tx.Exec(insertQuery,
		cert.CertID, cert.FarmID, cert.ProductID, cert.TestID,
		cert.Status, cert.IssueTime, cert.Metadata, cert.CreatedAt, cert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert certification: %w", err)
	}

	if _, err := tx.Exec(counterQuery, fmt.Sprintf("%d", counter), time.Now()); err != nil {
		return fmt.Errorf("failed to advance counter: %w", err)
	}

	return tx.Commit()
}

// GetCertification retrieves a certification by ID
func (d *Database) GetCertification(certID int64) (*models.Certification, error) {
	query := `SELECT cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at
	          FROM certifications WHERE cert_id = ?`
	if d.dbType == "postgres" {
		query = `SELECT cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at
		         FROM certifications WHERE cert_id = $1`
	}

	var cert models.Certification
	err := d.db.QueryRow(query, certID).Scan(
		&cert.CertID, &cert.FarmID, &cert.ProductID, &cert.TestID,
		&cert.Status, &cert.IssueTime, &cert.Metadata, &cert.CreatedAt, &cert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// ListCertifications retrieves certifications ordered by ID, optionally
// filtered by status (empty status returns all)
func (d *Database) ListCertifications(status string) ([]*models.Certification, error) {
	query := `SELECT cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at
	          FROM certifications ORDER BY cert_id`
	args := []interface{}{}

	if status != "" {
		query = `SELECT cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at
		         FROM certifications WHERE status = ? ORDER BY cert_id`
		if d.dbType == "postgres" {
			query = `SELECT cert_id, farm_id, product_id, test_id, status, issue_time, metadata, created_at, updated_at
			         FROM certifications WHERE status = $1 ORDER BY cert_id`
		}
		args = append(args, status)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certifications []*models.Certification
	for rows.Next() {
		var cert models.Certification
		err := rows.Scan(
			&cert.CertID, &cert.FarmID, &cert.ProductID, &cert.TestID,
			&cert.Status, &cert.IssueTime, &cert.Metadata, &cert.CreatedAt, &cert.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		certifications = append(certifications, &cert)
	}

	return certifications, rows.Err()
}

// CountCertificationsByStatus returns the number of certifications per status
func (d *Database) CountCertificationsByStatus() (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM certifications GROUP BY status`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// UpdateCertificationStatus updates a certification's status and issue time
// and overwrites its audit record in a single transaction
func (d *Database) UpdateCertificationStatus(certID int64, status string, issueTime int64, audit *models.CertAudit) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `UPDATE certifications SET status = ?, issue_time = ?, updated_at = ? WHERE cert_id = ?`
	auditQuery := `INSERT OR REPLACE INTO cert_audits (cert_id, auditor, audit_time, notes, updated_at)
	               VALUES (?, ?, ?, ?, ?)`

	if d.dbType == "postgres" {
		updateQuery = `UPDATE certifications SET status = $1, issue_time = $2, updated_at = $3 WHERE cert_id = $4`
		auditQuery = `INSERT INTO cert_audits (cert_id, auditor, audit_time, notes, updated_at)
		              VALUES ($1, $2, $3, $4, $5)
		              ON CONFLICT (cert_id) DO UPDATE SET auditor = $2, audit_time = $3, notes = $4, updated_at = $5`
	}

	result, err := tx.Exec(updateQuery, status, issueTime, time.Now(), certID)
	if err != nil {
		return fmt.Errorf("failed to update certification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.Exec(auditQuery, audit.CertID, audit.Auditor, audit.AuditTime, audit.Notes, audit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}

	return tx.Commit()
}

// Audit operations

// GetCertAudit retrieves the audit record for a certification
func (d *Database) GetCertAudit(certID int64) (*models.CertAudit, error) {
	query := `SELECT cert_id, auditor, audit_time, notes, updated_at FROM cert_audits WHERE cert_id = ?`
	if d.dbType == "postgres" {
		query = `SELECT cert_id, auditor, audit_time, notes, updated_at FROM cert_audits WHERE cert_id = $1`
	}

	var audit models.CertAudit
	err := d.db.QueryRow(query, certID).Scan(
		&audit.CertID, &audit.Auditor, &audit.AuditTime, &audit.Notes, &audit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// Registry state operations

// GetRegistryValue retrieves a scalar registry state value
func (d *Database) GetRegistryValue(key string) (string, error) {
	query := `SELECT value FROM registry_state WHERE key = ?`
	if d.dbType == "postgres" {
		query = `SELECT value FROM registry_state WHERE key = $1`
	}

	var value string
	err := d.db.QueryRow(query, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetRegistryValue sets a scalar registry state value, replacing any
// existing value
func (d *Database) SetRegistryValue(key, value string) error {
	query := `INSERT OR REPLACE INTO registry_state (key, value, updated_at) VALUES (?, ?, ?)`
	if d.dbType == "postgres" {
		query = `INSERT INTO registry_state (key, value, updated_at)
		         VALUES ($1, $2, $3)
		         ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`
	}

	_, err := d.db.Exec(query, key, value, time.Now())
	return err
}

// InsertRegistryValue inserts a scalar registry state value and fails if the
// key already exists. Used for one-shot values like the authority binding.
func (d *Database) InsertRegistryValue(key, value string) error {
	query := `INSERT INTO registry_state (key, value, updated_at) VALUES (?, ?, ?)`
	if d.dbType == "postgres" {
		query = `INSERT INTO registry_state (key, value, updated_at) VALUES ($1, $2, $3)`
	}

	_, err := d.db.Exec(query, key, value, time.Now())
	return err
}
