package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"heroes/internal/config"
	"heroes/internal/gateway"
	"heroes/internal/logger"
	"heroes/internal/messages"
	"heroes/internal/storage"
)

const presignExpiry = 15 * time.Minute

var (
	apiURL     string
	timeoutSec int
	archive    bool
	verbose    bool
)

// session is what every hero command works with. It is built once per invocation.
type session struct {
	cfg  *config.AppConfig
	lggr *zap.Logger
	log  *messages.Log
	gw   *gateway.Gateway
}

var sess *session

var rootCmd = &cobra.Command{
	Use:   "heroctl",
	Short: "Manage heroes through the heroes API",
	Long: `heroctl talks to a heroes API and prints what happened.

Every command prints its result followed by the Messages panel. A failed
request is never an error exit: the command prints "(none)" and the panel
says what went wrong.

Environment:
  HEROES_API_URL          API base URL (default http://localhost:8080)
  HEROES_API_TIMEOUT_SEC  per-request timeout in seconds (default 10)
  MINIO_*                 object store used by --archive`,
	SilenceUsage:      true,
	PersistentPreRunE: openSession,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if err := messages.Render(cmd.OutOrStdout(), sess.log); err != nil {
			return err
		}
		if archive {
			return archiveMessages(cmd)
		}
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides HEROES_API_URL)")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 0, "request timeout in seconds (overrides HEROES_API_TIMEOUT_SEC)")
	rootCmd.PersistentFlags().BoolVar(&archive, "archive", false, "upload the message log to object storage afterwards")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

func openSession(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if apiURL != "" {
		cfg.HeroesAPI.BaseURL = apiURL
	}
	if timeoutSec > 0 {
		cfg.HeroesAPI.TimeoutSec = timeoutSec
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	lggr, err := logger.New(level, cfg.Location())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	log := messages.New()
	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.HeroesAPI.BaseURL,
		Timeout: cfg.HeroesAPI.Timeout(),
	}, log, gateway.WithLogger(lggr))
	if err != nil {
		return err
	}

	sess = &session{cfg: cfg, lggr: lggr, log: log, gw: gw}
	return nil
}

func archiveMessages(cmd *cobra.Command) error {
	if !sess.cfg.MinIO.Enabled() {
		return fmt.Errorf("--archive needs MINIO_ENDPOINT and MINIO_BUCKET")
	}
	store, err := storage.NewMinIO(cmd.Context(), sess.cfg.MinIO)
	if err != nil {
		return err
	}
	return writeArchive(cmd, store, time.Now())
}

func writeArchive(cmd *cobra.Command, store storage.Storage, now time.Time) error {
	ctx := cmd.Context()
	key, err := messages.Archive(ctx, store, sess.log, now)
	if err != nil {
		return err
	}
	url, err := store.PresignGet(ctx, key, presignExpiry)
	if err != nil {
		return fmt.Errorf("presign %s: %w", key, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "archived: %s\n", key)
	fmt.Fprintf(out, "download: %s\n", url)
	return nil
}
