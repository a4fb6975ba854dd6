package review

import "context"

// Provider defines the contract for delivering a rendered notification to a
// single recipient. Implementations live in infra/ (e.g., Resend for email).
type Provider interface {
	// Send delivers a rendered message and returns the provider's message ID.
	Send(ctx context.Context, msg *Message) (string, error)
}

// TemplateRenderer defines the contract for rendering notification templates.
// Implementations live in infra/template/ and must escape user-supplied text
// before embedding it in the rendered document.
type TemplateRenderer interface {
	// Render produces a subject line, HTML body, and plain-text body for the given notification type.
	Render(notifType NotificationType, data map[string]any) (subject, html, text string, err error)
}
