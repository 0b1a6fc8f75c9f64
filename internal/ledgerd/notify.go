package ledgerd

import (
	"context"
	"log/slog"

	"github.com/mybank/mybank/internal/money"
)

// TransferEvent describes a completed transfer for downstream delivery
// (receipts, push notifications). Only a logging sink exists today.
type TransferEvent struct {
	SenderID   int64
	ReceiverID int64
	Amount     money.Amount
	Remarks    string
}

// Notifier delivers transfer events to downstream systems.
type Notifier interface {
	TransferCompleted(ctx context.Context, event TransferEvent) error
}

// LogNotifier writes transfer events to the structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a logging notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// TransferCompleted logs the event.
func (n *LogNotifier) TransferCompleted(_ context.Context, event TransferEvent) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("transfer completed",
		"sender_id", event.SenderID,
		"receiver_id", event.ReceiverID,
		"amount", event.Amount.String(),
	)
	return nil
}
