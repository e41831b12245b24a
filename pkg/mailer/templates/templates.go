package templates

import (
	"bytes"
	"fmt"
	ht "html/template"
	tt "text/template"
)

// Template names carried in EmailJob.Template.
const (
	LoginOTP = "login_otp"
)

var otpText = tt.Must(tt.New("login_otp_text").Parse(
	`Your one-time code is {{.Code}}.

It expires in {{.ExpiresInMinutes}} minutes. If you did not request this code, you can ignore this email.
`))

var otpHTML = ht.Must(ht.New("login_otp_html").Parse(
	`<p>Your one-time code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.ExpiresInMinutes}} minutes. If you did not request this code, you can ignore this email.</p>
`))

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case LoginOTP:
		var tb, hb bytes.Buffer
		if err = otpText.Execute(&tb, data); err != nil {
			return
		}
		if err = otpHTML.Execute(&hb, data); err != nil {
			return
		}
		return "Your OTP code", tb.String(), hb.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
