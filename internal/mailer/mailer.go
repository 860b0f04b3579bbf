// Package mailer delivers rendered outreach messages over SMTP, with a
// dry-run transport that satisfies the same contract without sending.
package mailer

import (
	"context"
	"time"
)

// Message is one fully rendered outreach email.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Transport delivers a message. Any non-nil error is treated as a failed
// send by the dispatcher and still consumes rate quota.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// Config holds the SMTP connection settings.
type Config struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"-"`
	SenderName  string `mapstructure:"sender-name"`
	SenderEmail string `mapstructure:"sender-email"`

	Timeout time.Duration `mapstructure:"timeout"`
}
