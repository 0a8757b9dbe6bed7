// Package cli implements rotactl, the operator command line for dutyrota.
// Commands work directly on the configured store. Only the nats backend
// detects a write racing a running server; with file or sqlite the later
// write wins.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/dutyrota/internal/app"
	"github.com/okian/dutyrota/internal/config"
	"github.com/okian/dutyrota/pkg/logger"
)

// session carries what every subcommand needs once the root has started.
type session struct {
	configPath string
	driver     string
	path       string
	verbose    bool

	cfg *config.Config
	svc *app.Service
}

// NewRootCommand builds the rotactl command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *session) {
	rt := &session{}

	root := &cobra.Command{
		Use:   "rotactl",
		Short: "Manage the duty rotation roster and run allocations",
		Long: `rotactl manages the people on the duty roster, runs the daily
allocation and inspects or resets the rotation history.

Configuration is read like the server's: defaults, then the YAML file
named by --config or ROTA_CONFIG, then ROTA_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "config file (default is $ROTA_CONFIG)")
	root.PersistentFlags().StringVar(&rt.driver, "store", "", "store driver override: memory, file, sqlite or nats")
	root.PersistentFlags().StringVar(&rt.path, "store-path", "", "store path override for the file and sqlite drivers")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log service activity to stderr")

	root.AddCommand(
		newPeopleCmd(rt),
		newAllocateCmd(rt),
		newHistoryCmd(rt),
		newResetCmd(rt),
		newSlotsCmd(rt),
	)
	return root, rt
}

// Execute runs rotactl with os.Args.
func Execute(ctx context.Context) error {
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes one command line and always releases the store, also when
// the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, rt := newRootCommand()
	defer rt.close()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (rt *session) open(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load(ctx, rt.configPath)
	if err != nil {
		return err
	}
	if rt.driver != "" {
		cfg.StoreDriver = rt.driver
	}
	if rt.path != "" {
		cfg.StorePath = rt.path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.InitWithFormat(logOut, cfg.LogFormat); err != nil {
		return err
	}
	level := "warn"
	if rt.verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	svc, err := app.Open(ctx, cfg, logger.Named("rotactl"))
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.svc = svc
	return nil
}

func (rt *session) close() {
	if rt.svc != nil {
		rt.svc.Stop()
		rt.svc = nil
	}
}

// Main runs rotactl and returns the process exit code.
func Main(ctx context.Context) int {
	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		return 1
	}
	return 0
}
