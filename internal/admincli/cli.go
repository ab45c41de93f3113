// Package admincli implements the blogctl maintenance commands.
package admincli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/iudanet/blogauth/internal/crypto"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/storage"
	"github.com/iudanet/blogauth/internal/validation"
)

// EnvAdminPassword supplies the password non-interactively
const EnvAdminPassword = "BLOG_ADMIN_PASSWORD"

// ErrUsage means the command line was malformed
var ErrUsage = errors.New("usage error")

// Store is the storage the commands need
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// Cli runs one command
type Cli struct {
	io     IO
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Cli
func New(logger *slog.Logger, console IO) *Cli {
	return &Cli{
		io:     console,
		logger: logger,
		now:    time.Now,
	}
}

// NeedsStore reports whether command touches the database
func NeedsStore(command string) bool {
	switch command {
	case "create-admin", "prune-sessions":
		return true
	}
	return false
}

// Run dispatches args[0]. store may be nil for commands that do not need it.
func (c *Cli) Run(ctx context.Context, store Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "hash-password":
		return c.runHashPassword(args[1:])
	case "create-admin":
		return c.runCreateAdmin(ctx, store, args[1:])
	case "prune-sessions":
		return c.runPruneSessions(ctx, store)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (c *Cli) runHashPassword(args []string) error {
	fset := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	passwordFile := fset.String("password-file", "", "read the password from a file")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	password, err := c.password(*passwordFile, strings.Join(fset.Args(), " "), false)
	if err != nil {
		return err
	}

	record, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	c.io.Println(record)
	return nil
}

func (c *Cli) runCreateAdmin(ctx context.Context, store Store, args []string) error {
	fset := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	username := fset.String("username", "admin", "admin username")
	email := fset.String("email", "", "optional email address")
	passwordFile := fset.String("password-file", "", "read the password from a file")
	ifEmpty := fset.Bool("if-empty", false, "do nothing when any user already exists")
	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := validation.ValidateUsername(*username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	if *ifEmpty {
		n, err := store.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if n > 0 {
			c.io.Printf("%d user(s) already exist, nothing to do\n", n)
			return nil
		}
	}

	password, err := c.password(*passwordFile, "", true)
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	record, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     *username,
		Role:         models.RoleAdmin,
		PasswordHash: &record,
	}
	if *email != "" {
		user.Email = email
	}

	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return fmt.Errorf("user %q already exists", *username)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	c.logger.InfoContext(ctx, "admin user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	c.io.Printf("created admin %q (id %d)\n", user.Username, user.ID)
	return nil
}

func (c *Cli) runPruneSessions(ctx context.Context, store Store) error {
	n, err := store.DeleteExpiredSessions(ctx, c.now())
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}

	c.logger.InfoContext(ctx, "expired sessions pruned", slog.Int("count", n))
	c.io.Printf("deleted %d expired session(s)\n", n)
	return nil
}

// password picks the first non-empty source: environment, file, argument,
// then an interactive prompt. confirm asks twice on the prompt path.
func (c *Cli) password(file, arg string, confirm bool) (string, error) {
	if env := os.Getenv(EnvAdminPassword); env != "" {
		return env, nil
	}

	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		password := strings.TrimRight(string(content), "\r\n")
		if password == "" {
			return "", errors.New("password file is empty")
		}
		return password, nil
	}

	if arg != "" {
		return arg, nil
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	if confirm {
		again, err := c.io.ReadPassword("Repeat password: ")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if again != password {
			return "", errors.New("passwords do not match")
		}
	}

	return password, nil
}

// PrintUsage writes command help to w
func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `blogctl - blog maintenance commands

Usage:
  blogctl [OPTIONS] COMMAND [ARGS]

Options:
  -db PATH        SQLite database path (default from BLOG_DB_PATH, else blog.db)
  -log-level LVL  debug, info, warn or error
  -version        Show version information

Commands:
  hash-password [-password-file PATH] [PASSWORD]
                  Print a PBKDF2 password record
  create-admin [-username NAME] [-email EMAIL] [-password-file PATH] [-if-empty]
                  Create an admin account
  prune-sessions  Delete expired sessions

Password sources, highest priority first:
  1. BLOG_ADMIN_PASSWORD environment variable
  2. -password-file
  3. PASSWORD argument (hash-password only)
  4. Interactive prompt
`)
}
