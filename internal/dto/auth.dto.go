package dto

import (
	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
)

type UserDTO struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Role               string `json:"role"`
	SalonID            uint   `json:"salon_id"`
	SalonName          string `json:"salon_name"`
	MustChangePassword bool   `json:"must_change_password"`
	LoyaltyPoints      *int   `json:"loyalty_points,omitempty"`
}

type LoginResponse struct {
	*auth.TokenPair
	User UserDTO `json:"user"`
}

func NewUserDTO(id *auth.Identity) UserDTO {
	out := UserDTO{
		ID:      id.UserID,
		Name:    id.Name(),
		Role:    id.Role,
		SalonID: id.SalonID,
	}

	if id.Salon != nil {
		out.SalonName = id.Salon.Name
	}

	if id.Client != nil {
		if id.Client.Email != nil {
			out.Email = *id.Client.Email
		}
		if id.Client.Phone != nil {
			out.Phone = *id.Client.Phone
		}
		points := id.Client.LoyaltyPoints
		out.LoyaltyPoints = &points
		return out
	}

	if id.Salon != nil {
		out.Email = id.Salon.Email
		out.Phone = id.Salon.Phone
		out.MustChangePassword = id.Salon.HasTempPassword
	}
	return out
}
