package validation

import (
	"github.com/go-playground/validator/v10"

	"pedidos-system/pkg/constants"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("setor", isValidSetor); err != nil {
		return err
	}
	if err := v.RegisterValidation("urgencia", isValidUrgencia); err != nil {
		return err
	}
	if err := v.RegisterValidation("tipo_usuario", isValidRole); err != nil {
		return err
	}
	return nil
}

func isValidSetor(fl validator.FieldLevel) bool {
	return constants.IsValidSetor(fl.Field().String())
}

// isValidUrgencia - пустое значение допустимо, по умолчанию будет "Padrão".
func isValidUrgencia(fl validator.FieldLevel) bool {
	u := fl.Field().String()
	return u == "" || constants.IsValidUrgencia(u)
}

func isValidRole(fl validator.FieldLevel) bool {
	return constants.IsValidRole(fl.Field().String())
}
