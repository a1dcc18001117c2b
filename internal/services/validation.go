package services

import (
	"github.com/go-playground/validator/v10"

	"github.com/AnshRaj112/niknak-backend/internal/apperr"
	"github.com/AnshRaj112/niknak-backend/pkg/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateUsername(username string) error {
	if err := utils.ValidateUsername(username); err != nil {
		return apperr.InvalidArgument(err.Error())
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperr.InvalidArgument("Invalid email address")
	}
	return nil
}

func validateAvatarURL(avatar string) error {
	if err := validate.Var(avatar, "required,http_url"); err != nil {
		return apperr.InvalidArgument("Avatar must be an http(s) URL")
	}
	return nil
}

func validateAvatarName(name string) error {
	if err := validate.Var(name, "max=64"); err != nil {
		return apperr.InvalidArgument("Avatar name must be at most 64 characters")
	}
	return nil
}
