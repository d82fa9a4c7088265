package application

import (
	"github.com/pquerna/otp/totp"
)

// TOTPGenerator produces a new shared secret and provisioning URL for a user.
type TOTPGenerator func(issuer, account string) (TwoFactorEnrollment, error)

// TOTPValidator checks a one-time code against a stored secret.
type TOTPValidator func(code, secret string) bool

// GenerateTOTPSecret creates a fresh secret for enrolling an authenticator
// app.
func GenerateTOTPSecret(issuer, account string) (TwoFactorEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return TwoFactorEnrollment{}, err
	}
	return TwoFactorEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// ValidateTOTPCode checks a one-time code against the stored secret.
func ValidateTOTPCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
