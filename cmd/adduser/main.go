// Command adduser seeds an account holder into the ledger store.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/mybank/mybank/internal/config"
	"github.com/mybank/mybank/internal/infra"
	"github.com/mybank/mybank/internal/ledgerd/store"
	"github.com/mybank/mybank/internal/money"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	userID := fs.Int64("id", 0, "Numeric user ID")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	account := fs.Int64("account", 0, "Account number")
	balance := fs.String("balance", "0", "Opening balance, e.g. 500 or 499.99")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID <= 0 || *name == "" || *email == "" || *account <= 0 {
		fmt.Fprintln(stdout, "Usage: adduser -id <n> -name <name> -email <email> -account <n> [-balance <amount>] [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: id, name, email, account")
	}

	opening, err := money.Parse(*balance)
	if err != nil || opening < 0 {
		return fmt.Errorf("invalid balance %q", *balance)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	user := store.User{
		ID:            *userID,
		Name:          *name,
		Email:         *email,
		AccountNumber: *account,
		PasswordHash:  hash,
		Balance:       opening,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s (id %d) created with opening balance %s\n", user.Name, user.ID, user.Balance.USD())
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	}

	db, err := infra.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return st, func() { db.Close() }, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
