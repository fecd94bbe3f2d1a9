package templates

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

var otpHTML = htmltpl.Must(htmltpl.New("otp_html").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>{{.AppName}} verification code</h2>
    <p>Use this code to continue. It expires in {{.ExpiresInMinutes}} minutes.</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p style="color: #888; font-size: 12px;">If you did not request this, you can ignore this email.</p>
  </body>
</html>`))

var otpText = texttpl.Must(texttpl.New("otp_text").Parse(
	`Your {{.AppName}} verification code is {{.Code}}. It expires in {{.ExpiresInMinutes}} minutes.`))

type otpData struct {
	AppName          string
	Code             string
	ExpiresInMinutes int
}

// RenderOTP renders the OTP email from job data. Data keys: AppName,
// Code, ExpiresInMinutes.
func RenderOTP(data map[string]any) (subject, text, html string, err error) {
	d := otpData{AppName: "QuickTalk", ExpiresInMinutes: 5}
	if v, ok := data["AppName"].(string); ok && v != "" {
		d.AppName = v
	}
	if v, ok := data["Code"].(string); ok {
		d.Code = v
	}
	// JSON round-trips numbers as float64
	switch v := data["ExpiresInMinutes"].(type) {
	case float64:
		d.ExpiresInMinutes = int(v)
	case int:
		d.ExpiresInMinutes = v
	}
	if d.Code == "" {
		return "", "", "", fmt.Errorf("otp template: missing Code")
	}

	var tb, hb bytes.Buffer
	if err := otpText.Execute(&tb, d); err != nil {
		return "", "", "", err
	}
	if err := otpHTML.Execute(&hb, d); err != nil {
		return "", "", "", err
	}
	subject = fmt.Sprintf("%s verification code", d.AppName)
	return subject, tb.String(), hb.String(), nil
}
