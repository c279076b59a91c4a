package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// NewDB opens the configured database and migrates the schema.
// DATABASE_URL values starting with sqlite:// select the file-based driver
// used for development; anything else is handed to postgres.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := Open(cfg.DBUrl, &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func Open(url string, gormCfg *gorm.Config) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(url)

	// timestamps are stored in UTC so SQLite text comparisons stay ordered
	if gormCfg.NowFunc == nil {
		gormCfg.NowFunc = func() time.Time { return time.Now().UTC() }
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if isSQLite {
		// one writer; also keeps in-memory databases on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	return db, nil
}

func dialectorFor(url string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(withForeignKeys(strings.TrimPrefix(url, "sqlite://"))), true
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return sqlite.Open(withForeignKeys(url)), true
	default:
		return postgres.Open(url), false
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Migrate creates tables and the indexes gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Salon{},
		&models.Client{},
		&models.Service{},
		&models.Professional{},
		&models.ServiceProfessional{},
		&models.Appointment{},
		&models.BusinessHours{},
		&models.AuditLog{},
		&models.TokenBlacklist{},
	); err != nil {
		return err
	}

	// One active booking per professional and instant.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_professional_slot
		ON appointments (professional_id, appointment_datetime)
		WHERE status IN ('scheduled', 'confirmed') AND professional_id IS NOT NULL
	`).Error
}
