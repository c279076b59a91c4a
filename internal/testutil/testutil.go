// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-scheduler/internal/db"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	gdb, err := db.Open(dsn, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

// Password used by every fixture account.
const Password = "secret123"

var passwordHash string

func hash(t testing.TB) string {
	if passwordHash == "" {
		b, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(b)
	}
	return passwordHash
}

func Salon(t testing.TB, gdb *gorm.DB, name string) *models.Salon {
	t.Helper()

	due := datatypes.Date(time.Now().AddDate(0, 0, 30))
	s := &models.Salon{
		Name:                name,
		Email:               strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash:        hash(t),
		Active:              true,
		SubscriptionPaid:    true,
		SubscriptionDueDate: &due,
	}
	require.NoError(t, gdb.Create(s).Error)
	return s
}

func Admin(t testing.TB, gdb *gorm.DB) *models.Salon {
	t.Helper()

	s := &models.Salon{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: hash(t),
		Active:       true,
		IsAdmin:      true,
	}
	require.NoError(t, gdb.Create(s).Error)
	return s
}

func Client(t testing.TB, gdb *gorm.DB, salonID uint, name, phone string, points int) *models.Client {
	t.Helper()

	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	h := hash(t)
	c := &models.Client{
		SalonID:       salonID,
		Name:          name,
		Email:         &email,
		PasswordHash:  &h,
		LoyaltyPoints: points,
	}
	if phone != "" {
		c.Phone = &phone
	}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func Service(t testing.TB, gdb *gorm.DB, salonID uint, name string, price string, points int) *models.Service {
	t.Helper()

	s := &models.Service{
		SalonID:         salonID,
		Name:            name,
		DurationMinutes: 60,
		Price:           decimal.RequireFromString(price),
		LoyaltyPoints:   points,
		Active:          true,
	}
	require.NoError(t, gdb.Create(s).Error)
	return s
}

func Professional(t testing.TB, gdb *gorm.DB, salonID uint, name string) *models.Professional {
	t.Helper()

	p := &models.Professional{
		SalonID: salonID,
		Name:    name,
		Active:  true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Appointment(
	t testing.TB,
	gdb *gorm.DB,
	salonID, clientID, serviceID uint,
	professionalID *uint,
	at time.Time,
	status string,
) *models.Appointment {
	t.Helper()

	ap := &models.Appointment{
		SalonID:             salonID,
		ClientID:            &clientID,
		ServiceID:           serviceID,
		ProfessionalID:      professionalID,
		AppointmentDatetime: at.UTC(),
		Price:               decimal.NewFromInt(50),
		Status:              status,
	}
	require.NoError(t, gdb.Omit("Client", "Service", "Professional", "Salon").Create(ap).Error)
	return ap
}

func UintPtr(v uint) *uint { return &v }
