package messenger

import (
	"context"
	"fmt"

	"identity-service/internal/config"
	"identity-service/internal/domain/user"
)

// Service type identifiers for the delivery channels.
const (
	EmailType = "EMAIL"
	SMSType   = "SMS"
)

// Sender delivers an out-of-band message to a user. The channel is
// chosen once at composition time via configuration, not per call.
type Sender interface {
	ServiceType() string
	Send(ctx context.Context, recipient, subject, message string) error
	// Recipient resolves the address the message goes to for the given
	// user, e.g. the email address or phone number.
	Recipient(u *user.User) (string, error)
}

// NewDefaultSender builds the sender selected by the Messenger.Default
// setting.
func NewDefaultSender(ctx context.Context, cfg *config.Config) (Sender, error) {
	switch cfg.Messenger.Default {
	case EmailType:
		return NewEmailSender(&cfg.SMTP), nil
	case SMSType:
		return NewSMSSender(ctx, &cfg.SNS)
	default:
		return nil, fmt.Errorf("unknown messenger type %q", cfg.Messenger.Default)
	}
}
