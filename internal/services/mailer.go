package services

import (
	"context"
	"log"
)

// Mailer delivers transactional mail (password-reset links). Implementations
// must respect the caller's context deadline.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound mail to the application log instead of sending
// it. Default in development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Printf("mail to=%s subject=%q\n%s", to, subject, body)
	return nil
}
