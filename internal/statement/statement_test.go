package statement

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDownload(t *testing.T) {
	const csvBody = "Sender ID,Receiver ID,Amount,Remarks,Date,Status\n1,7,50.00,Transfer of $50.00 from Alice to Bob,15 Mar 2024,success\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/statements" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("user_id") != "1" || q.Get("month") != "3" || q.Get("year") != "2024" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	client := NewClient(srv.URL, time.Second)
	if err := client.Download(context.Background(), 1, 3, 2024, &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != csvBody {
		t.Fatalf("unexpected statement body: %q", buf.String())
	}
}

func TestDownloadEmptyMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.Download(context.Background(), 1, 1, 2020, &bytes.Buffer{})
	if !errors.Is(err, ErrNoTransactions) {
		t.Fatalf("err = %v, want ErrNoTransactions", err)
	}
}
