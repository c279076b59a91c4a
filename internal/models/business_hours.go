package models

import "time"

// BusinessHours keeps one open/close pair per weekday. A nil pair means
// the salon is closed that day.
type BusinessHours struct {
	SalonID uint  `gorm:"primaryKey;autoIncrement:false" json:"salon_id"`
	Salon   Salon `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	MondayOpen     *string `gorm:"size:5"`
	MondayClose    *string `gorm:"size:5"`
	TuesdayOpen    *string `gorm:"size:5"`
	TuesdayClose   *string `gorm:"size:5"`
	WednesdayOpen  *string `gorm:"size:5"`
	WednesdayClose *string `gorm:"size:5"`
	ThursdayOpen   *string `gorm:"size:5"`
	ThursdayClose  *string `gorm:"size:5"`
	FridayOpen     *string `gorm:"size:5"`
	FridayClose    *string `gorm:"size:5"`
	SaturdayOpen   *string `gorm:"size:5"`
	SaturdayClose  *string `gorm:"size:5"`
	SundayOpen     *string `gorm:"size:5"`
	SundayClose    *string `gorm:"size:5"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BusinessHours) TableName() string { return "business_hours" }

// Day returns the open/close pair for a weekday.
func (b *BusinessHours) Day(d time.Weekday) (open, close *string) {
	switch d {
	case time.Monday:
		return b.MondayOpen, b.MondayClose
	case time.Tuesday:
		return b.TuesdayOpen, b.TuesdayClose
	case time.Wednesday:
		return b.WednesdayOpen, b.WednesdayClose
	case time.Thursday:
		return b.ThursdayOpen, b.ThursdayClose
	case time.Friday:
		return b.FridayOpen, b.FridayClose
	case time.Saturday:
		return b.SaturdayOpen, b.SaturdayClose
	default:
		return b.SundayOpen, b.SundayClose
	}
}

// SetDay replaces the open/close pair for a weekday.
func (b *BusinessHours) SetDay(d time.Weekday, open, close *string) {
	switch d {
	case time.Monday:
		b.MondayOpen, b.MondayClose = open, close
	case time.Tuesday:
		b.TuesdayOpen, b.TuesdayClose = open, close
	case time.Wednesday:
		b.WednesdayOpen, b.WednesdayClose = open, close
	case time.Thursday:
		b.ThursdayOpen, b.ThursdayClose = open, close
	case time.Friday:
		b.FridayOpen, b.FridayClose = open, close
	case time.Saturday:
		b.SaturdayOpen, b.SaturdayClose = open, close
	default:
		b.SundayOpen, b.SundayClose = open, close
	}
}

// DefaultBusinessHours is used until the owner saves a schedule:
// 08:00-18:00 Monday to Saturday, closed on Sunday.
func DefaultBusinessHours(salonID uint) *BusinessHours {
	bh := &BusinessHours{SalonID: salonID}
	for d := time.Monday; d <= time.Saturday; d++ {
		open, close := "08:00", "18:00"
		bh.SetDay(d, &open, &close)
	}
	return bh
}
