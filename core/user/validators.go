package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/youwenshao/staffroom/core"
)

var (
	signupRoleTag  = "signuprole"
	signupRoleText = "invalid role"
)

func init() {
	_ = core.Validate.RegisterValidation(signupRoleTag, signupRoleValidation)
	core.RegisterCustomTranslation(signupRoleTag, signupRoleText)
}

func signupRoleValidation(fl validator.FieldLevel) bool {
	role, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, r := range SignupRoles {
		if role == r {
			return true
		}
	}
	return false
}
