package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func strp(s string) *string { return &s }

func TestBuildSlots(t *testing.T) {
	hours := &models.BusinessHours{}
	// 2025-09-25 is a Thursday
	hours.SetDay(time.Thursday, strp("09:00"), strp("11:00"))

	day := time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC)

	slots := BuildSlots(hours, day, nil, before)
	assert.Equal(t, []TimeSlot{
		{"09:00", "09:30"},
		{"09:30", "10:00"},
		{"10:00", "10:30"},
		{"10:30", "11:00"},
	}, slots)

	occupied := []time.Time{time.Date(2025, 9, 25, 9, 30, 0, 0, time.UTC)}
	slots = BuildSlots(hours, day, occupied, before)
	assert.Len(t, slots, 3)
	assert.Equal(t, "10:00", slots[1].Start)

	// past slots are dropped
	now := time.Date(2025, 9, 25, 10, 0, 0, 0, time.UTC)
	slots = BuildSlots(hours, day, nil, now)
	assert.Equal(t, []TimeSlot{{"10:30", "11:00"}}, slots)
}

func TestBuildSlotsClosedDay(t *testing.T) {
	hours := models.DefaultBusinessHours(1)
	sunday := time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)

	slots := BuildSlots(hours, sunday, nil, sunday.Add(-time.Hour))
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestIsWithinBusinessHours(t *testing.T) {
	hours := models.DefaultBusinessHours(1)
	thu := time.Date(2025, 9, 25, 17, 30, 0, 0, time.UTC)

	assert.True(t, IsWithinBusinessHours(hours, thu, thu.Add(30*time.Minute)))
	assert.False(t, IsWithinBusinessHours(hours, thu, thu.Add(time.Hour)))
	assert.False(t, IsWithinBusinessHours(hours, thu.Add(-10*time.Hour), thu.Add(-9*time.Hour)))

	sunday := time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)
	assert.False(t, IsWithinBusinessHours(hours, sunday, sunday.Add(time.Hour)))
}
