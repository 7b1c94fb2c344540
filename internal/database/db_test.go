package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/cropcert/cropcert/internal/config"
	"github.com/cropcert/cropcert/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a test database with migrations
func setupTestDB(t *testing.T) *Database {
	dbPath := t.TempDir() + "/test.db"

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: dbPath,
			},
		},
	}

	db, err := New(cfg)
	require.NoError(t, err, "Failed to create test database")

	err = db.Migrate()
	require.NoError(t, err, "Failed to run migrations")

	return db
}

func TestNew(t *testing.T) {
	t.Run("Create SQLite database successfully", func(t *testing.T) {
		dbPath := t.TempDir() + "/test.db"
		cfg := &config.Config{
			Database: config.DatabaseConfig{
				Type: "sqlite",
				SQLite: config.SQLiteConfig{
					Path: dbPath,
				},
			},
		}

		db, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, db)
		defer db.Close()
	})

	t.Run("Create with unsupported database type fails", func(t *testing.T) {
		cfg := &config.Config{
			Database: config.DatabaseConfig{
				Type: "unsupported",
			},
		}

		_, err := New(cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database type")
	})
}

func TestMigrate(t *testing.T) {
	t.Run("Run migrations successfully", func(t *testing.T) {
		dbPath := t.TempDir() + "/test.db"
		cfg := &config.Config{
			Database: config.DatabaseConfig{
				Type: "sqlite",
				SQLite: config.SQLiteConfig{
					Path: dbPath,
				},
			},
		}

		db, err := New(cfg)
		require.NoError(t, err)
		defer db.Close()

		err = db.Migrate()
		assert.NoError(t, err)

		// Verify tables were created
		var count int
		err = db.DB().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
		require.NoError(t, err)
		assert.Greater(t, count, 0)
	})

	t.Run("Run migrations multiple times (idempotent)", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		// Run migrations again
		err := db.Migrate()
		assert.NoError(t, err)
	})

	t.Run("Migrations seed the certification counter", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		value, err := db.GetRegistryValue("cert_counter")
		require.NoError(t, err)
		assert.Equal(t, "0", value)
	})

	t.Run("Re-running migrations preserves the counter", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := db.SetRegistryValue("cert_counter", "7")
		require.NoError(t, err)

		err = db.Migrate()
		require.NoError(t, err)

		value, err := db.GetRegistryValue("cert_counter")
		require.NoError(t, err)
		assert.Equal(t, "7", value)
	})
}

func TestDB(t *testing.T) {
	t.Run("Get underlying database connection", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		sqlDB := db.DB()
		assert.NotNil(t, sqlDB)

		// Verify it works
		err := sqlDB.Ping()
		assert.NoError(t, err)
	})
}

func TestCreateCertification(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	t.Run("Create certification successfully", func(t *testing.T) {
		cert := &models.Certification{
			CertID:    1,
			FarmID:    100,
			ProductID: 200,
			TestID:    300,
			Status:    "pending",
			IssueTime: 1700000000,
			Metadata:  "organic soy lot 42",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err := db.CreateCertification(cert, 1)
		assert.NoError(t, err)
	})

	t.Run("Create certification advances the counter", func(t *testing.T) {
		cert := &models.Certification{
			CertID:    2,
			FarmID:    101,
			ProductID: 201,
			TestID:    301,
			Status:    "pending",
			IssueTime: 1700000001,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err := db.CreateCertification(cert, 2)
		require.NoError(t, err)

		value, err := db.GetRegistryValue("cert_counter")
		require.NoError(t, err)
		assert.Equal(t, "2", value)
	})

	t.Run("Create certification with duplicate ID fails", func(t *testing.T) {
		cert := &models.Certification{
			CertID:    1,
			FarmID:    102,
			ProductID: 202,
			TestID:    302,
			Status:    "pending",
			IssueTime: 1700000002,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err := db.CreateCertification(cert, 3)
		assert.Error(t, err)

		// The failed transaction must not advance the counter
		value, err := db.GetRegistryValue("cert_counter")
		require.NoError(t, err)
		assert.Equal(t, "2", value)
	})
}

func TestGetCertification(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Create a certification first
	cert := &models.Certification{
		CertID:    1,
		FarmID:    100,
		ProductID: 200,
		TestID:    300,
		Status:    "pending",
		IssueTime: 1700000000,
		Metadata:  "first harvest",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := db.CreateCertification(cert, 1)
	require.NoError(t, err)

	t.Run("Get existing certification", func(t *testing.T) {
		retrieved, err := db.GetCertification(1)
		require.NoError(t, err)
		assert.Equal(t, cert.CertID, retrieved.CertID)
		assert.Equal(t, cert.FarmID, retrieved.FarmID)
		assert.Equal(t, cert.ProductID, retrieved.ProductID)
		assert.Equal(t, cert.TestID, retrieved.TestID)
		assert.Equal(t, cert.Status, retrieved.Status)
		assert.Equal(t, cert.IssueTime, retrieved.IssueTime)
		assert.Equal(t, cert.Metadata, retrieved.Metadata)
	})

	t.Run("Get non-existent certification fails", func(t *testing.T) {
		_, err := db.GetCertification(999)
		assert.Error(t, err)
		assert.Equal(t, sql.ErrNoRows, err)
	})
}

func TestListCertifications(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	t.Run("List certifications when empty", func(t *testing.T) {
		certifications, err := db.ListCertifications("")
		require.NoError(t, err)
		assert.Empty(t, certifications)
	})

	t.Run("List certifications after creating some", func(t *testing.T) {
		// Create three certifications
		for i := int64(1); i <= 3; i++ {
			cert := &models.Certification{
				CertID:    i,
				FarmID:    100 + i,
				ProductID: 200 + i,
				TestID:    300 + i,
				Status:    "pending",
				IssueTime: 1700000000 + i,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			err := db.CreateCertification(cert, i)
			require.NoError(t, err)
		}

		certifications, err := db.ListCertifications("")
		require.NoError(t, err)
		assert.Len(t, certifications, 3)
		// Should be ordered by cert_id
		assert.Equal(t, int64(1), certifications[0].CertID)
		assert.Equal(t, int64(3), certifications[2].CertID)
	})

	t.Run("List certifications filtered by status", func(t *testing.T) {
		audit := &models.CertAudit{
			CertID:    2,
			Auditor:   "auditor-1",
			AuditTime: 1700000100,
			Notes:     "lab results verified",
			UpdatedAt: time.Now(),
		}
		err := db.UpdateCertificationStatus(2, "active", 1700000100, audit)
		require.NoError(t, err)

		active, err := db.ListCertifications("active")
		require.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Equal(t, int64(2), active[0].CertID)

		pending, err := db.ListCertifications("pending")
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})
}

func TestCountCertificationsByStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	t.Run("Count when empty", func(t *testing.T) {
		counts, err := db.CountCertificationsByStatus()
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("Count after creating certifications", func(t *testing.T) {
		for i := int64(1); i <= 2; i++ {
			cert := &models.Certification{
				CertID:    i,
				FarmID:    100 + i,
				ProductID: 200 + i,
				TestID:    300 + i,
				Status:    "pending",
				IssueTime: 1700000000 + i,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			err := db.CreateCertification(cert, i)
			require.NoError(t, err)
		}

		audit := &models.CertAudit{
			CertID:    1,
			Auditor:   "auditor-1",
			AuditTime: 1700000100,
			UpdatedAt: time.Now(),
		}
		err := db.UpdateCertificationStatus(1, "active", 1700000100, audit)
		require.NoError(t, err)

		counts, err := db.CountCertificationsByStatus()
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["pending"])
		assert.Equal(t, int64(1), counts["active"])
	})
}

func TestUpdateCertificationStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Create a certification first
	cert := &models.Certification{
		CertID:    1,
		FarmID:    100,
		ProductID: 200,
		TestID:    300,
		Status:    "pending",
		IssueTime: 1700000000,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := db.CreateCertification(cert, 1)
	require.NoError(t, err)

	t.Run("Update status and write audit record", func(t *testing.T) {
		audit := &models.CertAudit{
			CertID:    1,
			Auditor:   "auditor-1",
			AuditTime: 1700000100,
			Notes:     "lab results verified",
			UpdatedAt: time.Now(),
		}

		err := db.UpdateCertificationStatus(1, "active", 1700000100, audit)
		assert.NoError(t, err)

		retrieved, err := db.GetCertification(1)
		require.NoError(t, err)
		assert.Equal(t, "active", retrieved.Status)
		assert.Equal(t, int64(1700000100), retrieved.IssueTime)

		stored, err := db.GetCertAudit(1)
		require.NoError(t, err)
		assert.Equal(t, "auditor-1", stored.Auditor)
		assert.Equal(t, "lab results verified", stored.Notes)
	})

	t.Run("Second update overwrites the audit record", func(t *testing.T) {
		audit := &models.CertAudit{
			CertID:    1,
			Auditor:   "auditor-2",
			AuditTime: 1700000200,
			Notes:     "contamination found",
			UpdatedAt: time.Now(),
		}

		err := db.UpdateCertificationStatus(1, "revoked", 1700000200, audit)
		assert.NoError(t, err)

		stored, err := db.GetCertAudit(1)
		require.NoError(t, err)
		assert.Equal(t, "auditor-2", stored.Auditor)
		assert.Equal(t, int64(1700000200), stored.AuditTime)
		assert.Equal(t, "contamination found", stored.Notes)
	})

	t.Run("Update non-existent certification fails", func(t *testing.T) {
		audit := &models.CertAudit{
			CertID:    999,
			Auditor:   "auditor-1",
			AuditTime: 1700000300,
			UpdatedAt: time.Now(),
		}

		err := db.UpdateCertificationStatus(999, "active", 1700000300, audit)
		assert.Error(t, err)
		assert.Equal(t, sql.ErrNoRows, err)
	})
}

func TestGetCertAudit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Create a certification and audit it
	cert := &models.Certification{
		CertID:    1,
		FarmID:    100,
		ProductID: 200,
		TestID:    300,
		Status:    "pending",
		IssueTime: 1700000000,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := db.CreateCertification(cert, 1)
	require.NoError(t, err)

	audit := &models.CertAudit{
		CertID:    1,
		Auditor:   "auditor-1",
		AuditTime: 1700000100,
		Notes:     "approved after inspection",
		UpdatedAt: time.Now(),
	}
	err = db.UpdateCertificationStatus(1, "active", 1700000100, audit)
	require.NoError(t, err)

	t.Run("Get existing audit record", func(t *testing.T) {
		retrieved, err := db.GetCertAudit(1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), retrieved.CertID)
		assert.Equal(t, "auditor-1", retrieved.Auditor)
		assert.Equal(t, int64(1700000100), retrieved.AuditTime)
		assert.Equal(t, "approved after inspection", retrieved.Notes)
	})

	t.Run("Get audit for certification without one fails", func(t *testing.T) {
		_, err := db.GetCertAudit(999)
		assert.Error(t, err)
		assert.Equal(t, sql.ErrNoRows, err)
	})
}

func TestSetRegistryValue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	t.Run("Set registry value successfully", func(t *testing.T) {
		err := db.SetRegistryValue("test_key", "test_value")
		assert.NoError(t, err)
	})

	t.Run("Update existing registry value", func(t *testing.T) {
		err := db.SetRegistryValue("update_key", "initial_value")
		require.NoError(t, err)

		// Update with new value
		err = db.SetRegistryValue("update_key", "updated_value")
		assert.NoError(t, err)

		// Verify the value was updated
		value, err := db.GetRegistryValue("update_key")
		require.NoError(t, err)
		assert.Equal(t, "updated_value", value)
	})
}

func TestGetRegistryValue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Set a value first
	err := db.SetRegistryValue("get_test_key", "get_test_value")
	require.NoError(t, err)

	t.Run("Get existing registry value", func(t *testing.T) {
		value, err := db.GetRegistryValue("get_test_key")
		require.NoError(t, err)
		assert.Equal(t, "get_test_value", value)
	})

	t.Run("Get non-existent registry value fails", func(t *testing.T) {
		_, err := db.GetRegistryValue("non_existent_key")
		assert.Error(t, err)
		assert.Equal(t, sql.ErrNoRows, err)
	})
}

func TestInsertRegistryValue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	t.Run("Insert new registry value", func(t *testing.T) {
		err := db.InsertRegistryValue("authority", "regulator-1")
		assert.NoError(t, err)

		value, err := db.GetRegistryValue("authority")
		require.NoError(t, err)
		assert.Equal(t, "regulator-1", value)
	})

	t.Run("Insert existing key fails", func(t *testing.T) {
		err := db.InsertRegistryValue("authority", "regulator-2")
		assert.Error(t, err)

		// Original value is untouched
		value, err := db.GetRegistryValue("authority")
		require.NoError(t, err)
		assert.Equal(t, "regulator-1", value)
	})
}
