package connectors

import (
	"context"

	"pga/internal"
)

// MailConnector lists candidate messages of a mailbox together with their raw
// RFC 822 bytes.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
