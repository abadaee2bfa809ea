package httpapi

import (
	"encoding/json"
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=4,max=20,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64,strongpw"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type forgotPasswordRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Method string `json:"method" validate:"omitempty,oneof=token otp"`
}

// resetPasswordRequest must carry exactly one of Token or OTP; the handler
// enforces that, since validator tags cannot express mutual exclusion here.
type resetPasswordRequest struct {
	Token       string `json:"token"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=64,strongpw"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpw", strongPassword)
	return v
}

// strongPassword requires at least one upper, lower, digit, and special rune.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func (a *API) decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validate.Struct(dst)
}

func validationErrors(err error) map[string][]string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make(map[string][]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := jsonFieldName(fe.Field())
		out[field] = append(out[field], validationMessage(fe))
	}
	return out
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return string(unicode.ToLower(rune(field[0]))) + field[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "alphanum":
		return "must contain only letters and digits"
	case "strongpw":
		return "must contain upper, lower, digit, and special characters"
	default:
		return "is invalid"
	}
}
