package sms

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

const expiryNotice = " This code will expire in 5 minutes."

var templates = map[entity.Purpose]string{
	entity.PurposeRegistration:      "Welcome! Your verification code is: %s.",
	entity.PurposeLogin:             "Your login verification code is: %s.",
	entity.PurposePasswordReset:     "Your password reset code is: %s.",
	entity.PurposePhoneVerification: "Your phone verification code is: %s.",
}

const fallbackTemplate = "Your verification code is: %s."

// FormatMessage renders the SMS body for a purpose. Unknown purposes get the
// generic wording.
func FormatMessage(code string, purpose entity.Purpose) string {
	tpl := lo.ValueOr(templates, purpose, fallbackTemplate)
	return fmt.Sprintf(tpl, code) + expiryNotice
}
