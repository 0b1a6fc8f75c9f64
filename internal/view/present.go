// Package view derives display-ready rows from raw ledger records. The
// derivation is pure: it never mutates its inputs and is re-run in full on
// every new transaction list.
package view

import (
	"strings"
	"time"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/session"
)

const dateLayout = "02 Jan 2006"

// Row is a presentation-ready transaction.
type Row struct {
	Date        string
	Description string
	Amount      string
	Status      string
}

// Present maps ledger records to display rows for the given viewer.
//
// A record's magnitude is shown negative when its remarks mark it as a
// transfer sent by the viewer ("Transfer" plus "from {name}" substring match).
// The match is tied to the remarks format produced at submission time; a
// record whose free-form remarks happen to contain both fragments is
// misclassified; the service's records carry no sender or receiver ids to
// match on instead.
func Present(records []ledger.Record, viewer session.Identity) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			Date:        displayDate(rec),
			Description: rec.Remarks,
			Amount:      signedAmount(rec, viewer.Name),
			Status:      statusGlyph(rec.Status),
		})
	}
	return rows
}

func displayDate(rec ledger.Record) string {
	if rec.DateTimeStamp > 0 {
		return time.Unix(rec.DateTimeStamp, 0).Format(dateLayout)
	}
	// Records without a timestamp carry a pre-formatted date string.
	return rec.Date
}

func signedAmount(rec ledger.Record, viewerName string) string {
	outgoing := strings.Contains(rec.Remarks, "Transfer") &&
		strings.Contains(rec.Remarks, "from "+viewerName)
	if outgoing {
		return (-rec.Amount).USD()
	}
	return rec.Amount.USD()
}

func statusGlyph(status string) string {
	// Exact, case-sensitive match; anything else, including a missing
	// status, renders as a cross.
	switch status {
	case "completed", "success":
		return "✓"
	default:
		return "✗"
	}
}
