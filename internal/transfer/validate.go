package transfer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mybank/mybank/internal/money"
)

// DraftFields carries the raw values collected from the transfer form. Parsing
// happens during validation so every broken field can be reported at once.
type DraftFields struct {
	ReceiverName    string
	ReceiverID      string
	ReceiverEmail   string
	ReceiverAccount string
	Amount          string
	Confirmed       bool
}

// FieldError tags a single violated rule with the offending field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationErrors is the full set of violated rules, in field order.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	reasons := make([]string, len(e))
	for i, fe := range e {
		reasons[i] = fe.Field + ": " + fe.Reason
	}
	return "validation failed: " + strings.Join(reasons, "; ")
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@(?:[A-Za-z0-9-]+\.)+[A-Za-z]{2,}$`)

// Validate checks a draft against every syntactic and business rule. All rules
// run; the result carries the exact set of violations, empty meaning valid.
// Results are never cached: callers re-validate on every submit attempt and
// every confirmation toggle.
func Validate(fields DraftFields, balance money.Amount) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(fields.ReceiverName) == "" {
		errs = append(errs, FieldError{Field: "receiverName", Reason: "receiver name is required"})
	}

	if id, err := strconv.ParseInt(strings.TrimSpace(fields.ReceiverID), 10, 64); err != nil || id <= 0 {
		errs = append(errs, FieldError{Field: "receiverId", Reason: "receiver ID must be a positive number"})
	}

	if !emailPattern.MatchString(strings.TrimSpace(fields.ReceiverEmail)) {
		errs = append(errs, FieldError{Field: "receiverEmail", Reason: "receiver email must be a valid address"})
	}

	if acct, err := strconv.ParseInt(strings.TrimSpace(fields.ReceiverAccount), 10, 64); err != nil || acct <= 0 {
		errs = append(errs, FieldError{Field: "receiverAccount", Reason: "receiver account must be a positive number"})
	}

	if amount, err := money.Parse(fields.Amount); err != nil || amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Reason: "amount must be a positive number"})
	} else if amount > balance {
		errs = append(errs, FieldError{Field: "amount", Reason: "amount exceeds available balance"})
	}

	if !fields.Confirmed {
		errs = append(errs, FieldError{Field: "confirmed", Reason: "transfer must be confirmed"})
	}

	return errs
}
