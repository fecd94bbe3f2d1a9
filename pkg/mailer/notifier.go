package mailer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quicktalk/quicktalk/pkg/helpers"
)

// QueueNotifier delivers OTP codes by enqueuing an email job on
// RabbitMQ. Publishing is awaited synchronously so a broker failure can
// be surfaced to the caller as a send failure.
type QueueNotifier struct {
	Pub     *helpers.RabbitPublisher
	AppName string
	OTPTTL  time.Duration
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, appName string, otpTTL time.Duration) *QueueNotifier {
	return &QueueNotifier{Pub: pub, AppName: appName, OTPTTL: otpTTL}
}

func (n *QueueNotifier) SendOTP(ctx context.Context, email, code string) error {
	job := EmailJob{
		To:       email,
		Template: "otp",
		Data: map[string]any{
			"AppName":          n.AppName,
			"Code":             code,
			"ExpiresInMinutes": int(n.OTPTTL.Minutes()),
		},
	}
	return n.Pub.PublishJSON(ctx, job)
}

// LogNotifier writes the OTP to the log instead of sending email. Used
// when MAIL_SEND_ENABLED is off (local development).
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n *LogNotifier) SendOTP(_ context.Context, email, code string) error {
	n.Logger.WithFields(logrus.Fields{"to": email, "code": code}).Info("mail sending disabled, OTP logged")
	return nil
}
