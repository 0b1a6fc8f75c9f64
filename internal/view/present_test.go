package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/money"
	"github.com/mybank/mybank/internal/session"
)

func TestPresentSignLaw(t *testing.T) {
	records := []ledger.Record{{
		Remarks: "Transfer of $50.00 from Alice to Bob",
		Amount:  money.FromCents(5000),
		Status:  "success",
	}}

	asAlice := Present(records, session.Identity{Name: "Alice"})
	if asAlice[0].Amount != "-$50.00" {
		t.Fatalf("sender view amount = %q, want -$50.00", asAlice[0].Amount)
	}

	asBob := Present(records, session.Identity{Name: "Bob"})
	if asBob[0].Amount != "$50.00" {
		t.Fatalf("receiver view amount = %q, want $50.00", asBob[0].Amount)
	}
}

func TestPresentStatusGlyphs(t *testing.T) {
	records := []ledger.Record{
		{Remarks: "Deposit", Amount: money.FromCents(100), Status: "completed"},
		{Remarks: "Deposit", Amount: money.FromCents(100), Status: "success"},
		{Remarks: "Deposit", Amount: money.FromCents(100), Status: "failed"},
		{Remarks: "Deposit", Amount: money.FromCents(100), Status: "Completed"},
		{Remarks: "Deposit", Amount: money.FromCents(100)},
	}

	rows := Present(records, session.Identity{Name: "Alice"})
	want := []string{"✓", "✓", "✗", "✗", "✗"}
	for i, glyph := range want {
		if rows[i].Status != glyph {
			t.Fatalf("row %d glyph = %q, want %q", i, rows[i].Status, glyph)
		}
	}
}

func TestPresentDates(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local).Unix()
	records := []ledger.Record{
		{Remarks: "Deposit", Amount: money.FromCents(100), DateTimeStamp: ts, Status: "completed"},
		{Remarks: "Deposit", Amount: money.FromCents(100), Date: "2024-01-01", Status: "completed"},
	}

	rows := Present(records, session.Identity{Name: "Alice"})
	if rows[0].Date != "15 Mar 2024" {
		t.Fatalf("timestamp date = %q, want 15 Mar 2024", rows[0].Date)
	}
	if rows[1].Date != "2024-01-01" {
		t.Fatalf("fallback date = %q, want 2024-01-01", rows[1].Date)
	}
}

func TestPresentIsPureAndIdempotent(t *testing.T) {
	records := []ledger.Record{
		{Remarks: "Transfer of $50.00 from Alice to Bob", Amount: money.FromCents(5000), DateTimeStamp: 1700000000, Status: "success"},
		{Remarks: "Deposit", Amount: money.FromCents(100), Date: "2024-01-01", Status: "completed"},
	}
	identity := session.Identity{Name: "Alice"}

	snapshot := append([]ledger.Record(nil), records...)
	first := Present(records, identity)
	second := Present(records, identity)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("present is not idempotent")
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Fatal("present mutated its input")
	}
}

func TestPresentPlaceholderList(t *testing.T) {
	rows := Present(ledger.Placeholder(), session.Identity{Name: "Alice"})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Date != "2024-01-01" || rows[0].Description != "Deposit" || rows[0].Amount != "$500.00" {
		t.Fatalf("unexpected first placeholder row: %+v", rows[0])
	}
	if rows[1].Date != "2024-01-02" || rows[1].Description != "Withdrawal" || rows[1].Amount != "$100.00" {
		t.Fatalf("unexpected second placeholder row: %+v", rows[1])
	}
}
