package team

import "errors"

type CreateTeamDTO struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

func (dto CreateTeamDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	return nil
}

type CreatePatrolDTO struct {
	Name string `json:"name"`
}

func (dto CreatePatrolDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	return nil
}
