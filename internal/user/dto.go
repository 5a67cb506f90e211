package user

import (
	"errors"

	"github.com/google/uuid"
)

// UpdateUserDTO carries the mutable profile fields. Function changes are
// restricted to team leadership by the service.
type UpdateUserDTO struct {
	Nickname  *string    `json:"nickname,omitempty"`
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
	Function  *int       `json:"function,omitempty"`
	PatrolID  *uuid.UUID `json:"patrol_id,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Nickname != nil && len(*dto.Nickname) > 100 {
		return errors.New("nickname must be less than 100 characters")
	}
	if dto.Function != nil && (*dto.Function < int(FunctionMember) || *dto.Function > int(FunctionSenior)) {
		return errors.New("function must be between 0 and 5")
	}
	return nil
}

type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Nickname     string     `json:"nickname,omitempty"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	DisplayName  string     `json:"display_name"`
	Function     int        `json:"function"`
	FunctionName string     `json:"function_name"`
	PatrolID     *uuid.UUID `json:"patrol_id,omitempty"`
	TeamID       *uuid.UUID `json:"team_id,omitempty"`
	IsActive     bool       `json:"is_active"`
}

func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		DisplayName:  u.DisplayName(),
		Function:     int(u.Function),
		FunctionName: u.Function.String(),
		PatrolID:     u.PatrolID,
		TeamID:       u.TeamID,
		IsActive:     u.IsActive,
	}
}

func ToResponseSlice(users []*User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = ToResponse(u)
	}
	return result
}
