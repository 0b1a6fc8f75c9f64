package transfer

import (
	"testing"

	"github.com/mybank/mybank/internal/money"
)

func validFields() DraftFields {
	return DraftFields{
		ReceiverName:    "Bob",
		ReceiverID:      "7",
		ReceiverEmail:   "bob@x.com",
		ReceiverAccount: "42",
		Amount:          "50",
		Confirmed:       true,
	}
}

func TestValidateAccepts(t *testing.T) {
	errs := Validate(validFields(), money.FromCents(10000))
	if len(errs) != 0 {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestValidateAmountExceedsBalance(t *testing.T) {
	fields := validFields()
	fields.Amount = "150"

	errs := Validate(fields, money.FromCents(10000))
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if errs[0].Field != "amount" {
		t.Fatalf("expected amount error, got %q", errs[0].Field)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	fields := DraftFields{
		ReceiverName:    "  ",
		ReceiverID:      "-3",
		ReceiverEmail:   "not-an-email",
		ReceiverAccount: "abc",
		Amount:          "0",
		Confirmed:       false,
	}

	errs := Validate(fields, money.FromCents(10000))
	want := []string{"receiverName", "receiverId", "receiverEmail", "receiverAccount", "amount", "confirmed"}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for i, field := range want {
		if errs[i].Field != field {
			t.Fatalf("error %d: got field %q, want %q", i, errs[i].Field, field)
		}
	}
}

func TestValidateEmailShapes(t *testing.T) {
	good := []string{"bob@x.com", "a.b+c@sub.domain.org", "user_1%x@mail.co"}
	bad := []string{"bob", "bob@", "@x.com", "bob@x", "bob@x.c", "bob@@x.com", "bob @x.com"}

	for _, email := range good {
		fields := validFields()
		fields.ReceiverEmail = email
		if errs := Validate(fields, money.FromCents(10000)); len(errs) != 0 {
			t.Fatalf("email %q rejected: %v", email, errs)
		}
	}
	for _, email := range bad {
		fields := validFields()
		fields.ReceiverEmail = email
		errs := Validate(fields, money.FromCents(10000))
		if len(errs) != 1 || errs[0].Field != "receiverEmail" {
			t.Fatalf("email %q: expected one receiverEmail error, got %v", email, errs)
		}
	}
}

func TestValidateUnconfirmed(t *testing.T) {
	fields := validFields()
	fields.Confirmed = false

	errs := Validate(fields, money.FromCents(10000))
	if len(errs) != 1 || errs[0].Field != "confirmed" {
		t.Fatalf("expected one confirmed error, got %v", errs)
	}
}

func TestValidateAmountEqualToBalance(t *testing.T) {
	fields := validFields()
	fields.Amount = "100"

	if errs := Validate(fields, money.FromCents(10000)); len(errs) != 0 {
		t.Fatalf("amount equal to balance should pass, got %v", errs)
	}
}
