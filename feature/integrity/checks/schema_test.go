package checks

import (
	"regexp"
	"testing"

	"lot-sync/core/database"
	"lot-sync/feature/lots"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

type notTabler struct {
	ID int `gorm:"column:id"`
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, lots.LotRow{})
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_NoTableName(t *testing.T) {
	db, _ := setupMockDB(t)
	_, err := CheckSchema(db, notTabler{})
	assert.ErrorContains(t, err, "does not implement TableName")
}

func TestCheckSchema_SQLiteMigrated(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&lots.LotRow{}, &lots.LedgerRow{}))

	report, err := CheckSchema(db, lots.LotRow{}, &lots.LedgerRow{})
	require.NoError(t, err)
	assert.True(t, report.Matched, "%+v", report)
	assert.Equal(t, "ok", report.Tables["lots"].Status)
	assert.Equal(t, "ok", report.Tables["image_ledger"].Status)
}

func TestCheckSchema_SQLiteMissingTable(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckSchema(db, lots.RunRow{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "sync_runs")
}

func TestCheckSchema_MySQLMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("run_id", "varchar(36)", "NO", "MUL", nil, "")
	rows.AddRow("kind", "varchar(16)", "NO", "", nil, "")
	rows.AddRow("identifier", "varchar(512)", "YES", "", nil, "")
	rows.AddRow("detail", "varchar(255)", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `sync_run_changes`")).WillReturnRows(rows)

	report, err := CheckSchema(db, lots.ChangeRow{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables["sync_run_changes"]
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"lot_number"}, tbl.MissingColumns)
	assert.Equal(t, []string{"detail: expected text, got varchar(255)"}, tbl.TypeMismatches)
	assert.NoError(t, mock.ExpectationsWereMet())
}
