package user

import "errors"

// CreateUserDTO is the admin payload for creating an account.
type CreateUserDTO struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=user master developer"`
	JobTitle string `json:"job_title"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	if len(dto.Username) < 3 || len(dto.Username) > 64 {
		return errors.New("username must be between 3 and 64 characters")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if _, err := ParseRole(dto.Role); err != nil {
		return err
	}
	return nil
}
