package validator

import (
	"log"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// username: 4-8 символов, строчные латинские буквы, цифры и подчеркивание.
// Регистр нормализуется на уровне сервиса, правило проверяет уже
// нормализованное значение.
var usernameRe = regexp.MustCompile(`^[a-z0-9_]{4,8}$`)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("username", validateUsername)
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения ловит 'required'
	}
	return usernameRe.MatchString(value)
}
