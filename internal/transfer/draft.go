package transfer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/money"
	"github.com/mybank/mybank/internal/session"
)

// Draft is a not-yet-submitted transfer under user edit. It exists only
// client-side: it is never persisted and is discarded on cancel or on a
// terminal success. The client transaction id is fixed at draft creation so a
// retried submission of the same draft is idempotent at the service.
type Draft struct {
	Fields     DraftFields
	ClientTxID string

	receiverID      int64
	receiverAccount int64
	amount          money.Amount
}

func newDraft() *Draft {
	return &Draft{ClientTxID: uuid.NewString()}
}

// bind parses the validated fields into their typed form. It must only be
// called after Validate returned no errors.
func (d *Draft) bind(fields DraftFields) {
	d.Fields = fields
	d.receiverID, _ = strconv.ParseInt(strings.TrimSpace(fields.ReceiverID), 10, 64)
	d.receiverAccount, _ = strconv.ParseInt(strings.TrimSpace(fields.ReceiverAccount), 10, 64)
	d.amount, _ = money.Parse(fields.Amount)
}

// request derives the wire payload from the draft and the sender identity.
// The remarks string embeds both party names in a fixed format; the view model
// pattern-matches it later to infer transfer direction, so it must be stable.
func (d *Draft) request(sender session.Identity, now time.Time) ledger.TransferRequest {
	return ledger.TransferRequest{
		SenderID:      sender.UserID,
		ReceiverID:    d.receiverID,
		AccountNumber: d.receiverAccount,
		Amount:        d.amount,
		Remarks:       fmt.Sprintf("Transfer of %s from %s to %s", d.amount.USD(), sender.Name, strings.TrimSpace(d.Fields.ReceiverName)),
		Timestamp:     now.Unix(),
		ClientTxID:    d.ClientTxID,
	}
}
