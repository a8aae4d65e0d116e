package emailtemplates

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

const (
	SUBJECT_EMAIL_VERIFICATION = "Email Verification"
	SUBJECT_PASSWORD_RESET     = "Password Reset"
	SUBJECT_ACCOUNT_DELETED    = "Account Deleted"
)

var appBaseURL = "http://localhost:3000"

// Init sets the base URL used in links inside the email bodies.
func Init(baseURL string) {
	if baseURL != "" {
		appBaseURL = strings.TrimRight(baseURL, "/")
	}
}

const verificationEmailTemplate = `<div>
  <p>Hello,</p>
  <p>Your verification code is <strong>{{.code}}</strong>. It is valid for 5 minutes.</p>
  <p>You can also confirm your email directly: <a href="{{.baseURL}}/verify-email/{{.accountID}}">{{.baseURL}}/verify-email/{{.accountID}}</a></p>
</div>`

const passwordResetEmailTemplate = `<div>
  <p>Hello,</p>
  <p>A password reset was requested for your account. The link below is valid for 5 minutes.</p>
  <p><a href="{{.baseURL}}/reset-password?id={{.accountID}}&token={{.token}}">Reset your password</a></p>
  <p>If you did not request this, you can ignore this email.</p>
</div>`

const accountDeletedEmailTemplate = `<div>
  <p>Hello {{.name}},</p>
  <p>Your account has been deleted. If this was not expected, please contact the school administration.</p>
</div>`

func ResolveTemplate(tempName string, templateDef string, contentInfos map[string]string) (content string, err error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", errors.New("empty template `" + tempName)
	}
	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		err = fmt.Errorf("error when parsing template %s: %v", tempName, err)
		return "", err
	}
	var tpl bytes.Buffer

	err = tmpl.Execute(&tpl, contentInfos)
	if err != nil {
		err = fmt.Errorf("error during executing template %s: %v", tempName, err)
		return "", err
	}
	return tpl.String(), nil
}

// VerificationEmail renders the email carrying the OTP code and the account id.
func VerificationEmail(code string, accountID string) (subject string, content string, err error) {
	content, err = ResolveTemplate("email-verification", verificationEmailTemplate, map[string]string{
		"code":      code,
		"accountID": accountID,
		"baseURL":   appBaseURL,
	})
	return SUBJECT_EMAIL_VERIFICATION, content, err
}

// PasswordResetEmail renders the email carrying the reset token and the account id.
func PasswordResetEmail(token string, accountID string) (subject string, content string, err error) {
	content, err = ResolveTemplate("password-reset", passwordResetEmailTemplate, map[string]string{
		"token":     token,
		"accountID": accountID,
		"baseURL":   appBaseURL,
	})
	return SUBJECT_PASSWORD_RESET, content, err
}

// AccountDeletedEmail renders the notification sent after an account removal.
func AccountDeletedEmail(name string) (subject string, content string, err error) {
	content, err = ResolveTemplate("account-deleted", accountDeletedEmailTemplate, map[string]string{
		"name": name,
	})
	return SUBJECT_ACCOUNT_DELETED, content, err
}
