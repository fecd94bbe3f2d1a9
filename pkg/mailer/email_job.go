package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template "otp" carries the verification code in Data; raw jobs set
// Subject plus Text and/or HTML instead.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "otp"
	Data     map[string]any `json:"data,omitempty"`
}
