// Command dogs searches adoptable dogs from the terminal, either
// interactively (browse) or as one-shot commands (search, match).
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/pawmatch/internal/app/workspace"
	fetchclient "github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
	authapp "github.com/Apurer/pawmatch/internal/domains/auth/application"
	"github.com/Apurer/pawmatch/internal/platform/config"
	platformobservability "github.com/Apurer/pawmatch/internal/platform/observability"
)

const serviceName = "pawmatch-cli"

var (
	baseURL string
	logFile string
	name    string
	email   string
)

var rootCmd = &cobra.Command{
	Use:   "dogs",
	Short: "Find an adoptable dog",
	Long: `Search shelter dogs, build a shortlist and ask for a match.

Commands:
  browse  - interactive terminal browser
  search  - print one or more result pages
  match   - pick a match from a shortlist`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Dog service base URL (default: FETCH_API_BASE_URL or config file)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append structured logs to this file")
	rootCmd.PersistentFlags().StringVar(&name, "name", os.Getenv("PAWMATCH_NAME"), "Name used to log in (or set PAWMATCH_NAME)")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("PAWMATCH_EMAIL"), "Email used to log in (or set PAWMATCH_EMAIL)")

	bindCriteriaFlags(searchCmd, &searchFlags)
	searchCmd.Flags().IntVar(&searchPages, "pages", 1, "Number of result pages to print")
	bindCriteriaFlags(matchCmd, &matchFlags)

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(matchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// session is the per-invocation wiring shared by every subcommand.
type session struct {
	ws     *workspace.Workspace
	logger *slog.Logger
	close  func()
}

func openSession(ctx context.Context, opts ...workspace.Option) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logOut, closeLog, err := openLogWriter(logFile)
	if err != nil {
		return nil, err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithLogWriter(logOut),
		platformobservability.WithTraceWriter(io.Discard),
	)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := instruments.Logger

	base := []workspace.Option{
		workspace.WithLogger(logger),
		workspace.WithTracer(instruments.Tracer("internal.dogs.catalog")),
		workspace.WithMeter(instruments.Meter("internal.dogs.catalog")),
		workspace.WithClientOptions(
			fetchclient.WithTimeout(cfg.Timeout()),
			fetchclient.WithBreaker(fetchclient.NewBreaker(cfg.BreakerSettings(), logger)),
		),
	}
	ws, err := workspace.New(cfg.API.BaseURL, append(base, opts...)...)
	if err != nil {
		_ = shutdown(context.Background())
		closeLog()
		return nil, err
	}

	return &session{
		ws:     ws,
		logger: logger,
		close: func() {
			ws.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shutdown observability", slog.String("error", err.Error()))
			}
			closeLog()
		},
	}, nil
}

// login authenticates with the --name/--email flags and loads the first page.
func (s *session) login(ctx context.Context) error {
	if err := s.ws.Auth.Login(ctx, name, email); err != nil {
		return fmt.Errorf("login failed: %s", authapp.UserMessage(err))
	}
	return s.ws.Browser.Query.Load(ctx)
}

func openLogWriter(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
