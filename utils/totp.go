package utils

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret creates a secret for the account and the otpauth:// URL
// authenticator apps scan. The issuer shown in the app is AppName.
func GenerateTOTPSecret(email string) (secret string, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      AppName,
		AccountName: email,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a code against the secret, allowing one period of drift.
func VerifyTOTP(secret, code string) bool {
	if secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}
