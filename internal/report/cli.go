package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/handicap/internal/adapters/source"
	service "github.com/okian/handicap/internal/app"
	"github.com/okian/handicap/internal/config"
	"github.com/okian/handicap/pkg/logger"
)

// Default flag values.
const (
	DefaultURL     = "http://localhost:9080"
	DefaultTimeout = 10 * time.Second
)

// ErrChecksFailed is returned by the check command when a property does not hold.
var ErrChecksFailed = errors.New("consistency checks failed")

// NewRootCommand builds the hcp-report command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hcp-report",
		Short:         "Render handicap tables or verify a running handicap service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.AddCommand(newRenderCommand())
	cmd.AddCommand(newCheckCommand())
	return cmd
}

func newRenderCommand() *cobra.Command {
	var (
		player  string
		dataDir string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Load player documents with the service configuration and print the tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			src, err := source.FromConfig(cfg)
			if err != nil {
				return err
			}
			svc := service.New(
				service.WithLogger(logger.Nop()),
				service.WithSource(src),
				service.WithPlayers(cfg.Players...),
				service.WithCollisionPolicy(cfg.CollisionPolicy),
			)
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()
			return Render(cmd.Context(), cmd.OutOrStdout(), svc, player)
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Also print the entries of this player (name or slug)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Override the configured document directory")
	return cmd
}

// Render prints the overview and yearly tables of svc, plus the detail of player when set.
func Render(ctx context.Context, w io.Writer, svc *service.Service, player string) error {
	overview, err := svc.Overview(ctx)
	if err != nil {
		return err
	}
	if err := RenderOverview(w, overview); err != nil {
		return err
	}
	yearly, err := svc.Yearly(ctx)
	if err != nil {
		return err
	}
	if err := RenderYearly(w, yearly); err != nil {
		return err
	}
	if player == "" {
		return nil
	}
	d, err := svc.Player(ctx, player)
	if err != nil {
		return err
	}
	return RenderPlayer(w, d)
}

func newCheckCommand() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the views of a running service agree with one another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := Check(cmd.Context(), NewClient(baseURL, timeout))
			if err != nil {
				return err
			}
			if err := RenderResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if n := res.Failed(); n > 0 {
				return fmt.Errorf("%w: %d of %d", ErrChecksFailed, n, len(res.Findings))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", DefaultURL, "Base URL of the service")
	cmd.Flags().DurationVar(&timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	return cmd
}
