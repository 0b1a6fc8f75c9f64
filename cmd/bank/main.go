// Command bank is the interactive banking client. It logs a user in against
// the ledger service, renders the account dashboard and drives the transfer
// pipeline from the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mybank/mybank/internal/auth"
	"github.com/mybank/mybank/internal/config"
	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/logging"
	"github.com/mybank/mybank/internal/money"
	"github.com/mybank/mybank/internal/session"
	"github.com/mybank/mybank/internal/statement"
	"github.com/mybank/mybank/internal/transfer"
	"github.com/mybank/mybank/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	app := &shell{
		cfg:        cfg,
		in:         bufio.NewScanner(os.Stdin),
		out:        os.Stdout,
		session:    session.New(),
		auth:       auth.NewClient(cfg.LedgerURL, cfg.RequestTimeout),
		statements: statement.NewClient(cfg.LedgerURL, cfg.RequestTimeout),
	}
	app.pipeline = transfer.NewPipeline(
		app.session,
		ledger.NewHTTPClient(cfg.LedgerURL, cfg.RequestTimeout),
		app,
		logger,
		transfer.WithTimeout(cfg.RequestTimeout),
	)

	if err := app.run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type shell struct {
	cfg        config.Config
	in         *bufio.Scanner
	out        io.Writer
	session    *session.Session
	auth       *auth.Client
	statements *statement.Client
	pipeline   *transfer.Pipeline
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to MyBank")

	for {
		if _, ok := s.session.Identity(); !ok {
			if err := s.login(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				fmt.Fprintln(s.out, "Invalid login credentials. Please try again.")
				continue
			}
			// First render after login; a fetch failure falls back to the
			// built-in placeholder list.
			if err := s.pipeline.RefreshDashboard(ctx); err != nil {
				fmt.Fprintf(s.out, "dashboard unavailable: %v\n", err)
			}
		}

		fmt.Fprint(s.out, "\n[dashboard | transfer | statement <month> <year> | logout | quit] > ")
		line, err := s.readLine()
		if err != nil {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "dashboard":
			if err := s.pipeline.RefreshDashboard(ctx); err != nil {
				fmt.Fprintf(s.out, "dashboard unavailable: %v\n", err)
			}
		case "transfer":
			s.transfer(ctx)
		case "statement":
			s.statement(ctx, fields[1:])
		case "logout":
			s.session.Clear()
			fmt.Fprintln(s.out, "Logged out.")
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(s.out, "unknown command %q\n", fields[0])
		}
	}
}

func (s *shell) login(ctx context.Context) error {
	fmt.Fprint(s.out, "User ID: ")
	idText, err := s.readLine()
	if err != nil {
		return io.EOF
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
	if err != nil {
		return fmt.Errorf("user id must be a number")
	}

	fmt.Fprint(s.out, "Email: ")
	email, err := s.readLine()
	if err != nil {
		return io.EOF
	}

	fmt.Fprint(s.out, "Password: ")
	password, err := s.readPassword()
	if err != nil {
		return io.EOF
	}
	fmt.Fprintln(s.out)

	identity, balance, err := s.auth.Login(ctx, userID, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}

	s.session.SetIdentity(identity, balance)
	fmt.Fprintf(s.out, "Welcome, %s\n", identity.Name)
	return nil
}

// transfer walks one draft through the pipeline: collect fields, validate,
// confirm, submit. The pipeline re-renders the dashboard itself on success.
func (s *shell) transfer(ctx context.Context) {
	if s.pipeline.CanOpen() {
		if err := s.pipeline.Open(); err != nil {
			fmt.Fprintf(s.out, "cannot open transfer: %v\n", err)
			return
		}
	}

	fields, err := s.collectDraft()
	if err != nil {
		return
	}

	confirmation, err := s.pipeline.Submit(fields)
	if err != nil {
		var verrs transfer.ValidationErrors
		if errors.As(err, &verrs) {
			// Already surfaced through the renderer; draft stays open.
			return
		}
		fmt.Fprintf(s.out, "submit failed: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Send %s to %s? (y/n): ", confirmation.Amount.USD(), confirmation.ReceiverName)
	answer, err := s.readLine()
	if err != nil {
		return
	}
	accept := strings.EqualFold(strings.TrimSpace(answer), "y")

	if err := s.pipeline.Confirm(ctx, accept); err != nil {
		var serr *transfer.SubmissionError
		if errors.As(err, &serr) {
			return // notice already shown, draft kept
		}
		fmt.Fprintf(s.out, "transfer aborted: %v\n", err)
	}
}

func (s *shell) collectDraft() (transfer.DraftFields, error) {
	var fields transfer.DraftFields
	prompts := []struct {
		label string
		dest  *string
	}{
		{"Receiver name", &fields.ReceiverName},
		{"Receiver ID", &fields.ReceiverID},
		{"Receiver email", &fields.ReceiverEmail},
		{"Receiver account number", &fields.ReceiverAccount},
		{"Amount", &fields.Amount},
	}
	for _, p := range prompts {
		fmt.Fprintf(s.out, "%s: ", p.label)
		value, err := s.readLine()
		if err != nil {
			return fields, err
		}
		*p.dest = strings.TrimSpace(value)
	}

	fmt.Fprint(s.out, "I confirm the details above are correct (y/n): ")
	answer, err := s.readLine()
	if err != nil {
		return fields, err
	}
	fields.Confirmed = strings.EqualFold(strings.TrimSpace(answer), "y")
	return fields, nil
}

func (s *shell) statement(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "usage: statement <month> <year>")
		return
	}
	month, err := strconv.Atoi(args[0])
	if err != nil || month < 1 || month > 12 {
		fmt.Fprintln(s.out, "invalid month")
		return
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(s.out, "invalid year")
		return
	}

	identity, ok := s.session.Identity()
	if !ok {
		fmt.Fprintln(s.out, "not logged in")
		return
	}

	name := fmt.Sprintf("statement-%04d-%02d.csv", year, month)
	f, err := os.Create(name)
	if err != nil {
		fmt.Fprintf(s.out, "create %s: %v\n", name, err)
		return
	}
	defer f.Close()

	if err := s.statements.Download(ctx, identity.UserID, month, year, f); err != nil {
		os.Remove(name)
		if errors.Is(err, statement.ErrNoTransactions) {
			fmt.Fprintln(s.out, "No transactions found for that month.")
			return
		}
		fmt.Fprintf(s.out, "statement download failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Saved %s\n", name)
}

// RenderDashboard implements transfer.Renderer.
func (s *shell) RenderDashboard(balance money.Amount, rows []view.Row) {
	identity, _ := s.session.Identity()
	fmt.Fprintf(s.out, "\nAccount %s | balance %s\n", identity.AccountNumber, balance.USD())
	fmt.Fprintf(s.out, "%-12s  %-48s  %12s  %s\n", "Date", "Description", "Amount", "")
	for _, row := range rows {
		fmt.Fprintf(s.out, "%-12s  %-48s  %12s  %s\n", row.Date, row.Description, row.Amount, row.Status)
	}
}

// ShowValidationErrors implements transfer.Renderer.
func (s *shell) ShowValidationErrors(errs transfer.ValidationErrors) {
	fmt.Fprintln(s.out, "Please fix the following:")
	for _, fe := range errs {
		fmt.Fprintf(s.out, "  %s: %s\n", fe.Field, fe.Reason)
	}
}

// ShowNotice implements transfer.Renderer.
func (s *shell) ShowNotice(message string) {
	fmt.Fprintln(s.out, message)
}

func (s *shell) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *shell) readPassword() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}
	return s.readLine()
}
