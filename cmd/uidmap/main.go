package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jet/uidmap/identity"
	"github.com/jet/uidmap/log"
	"github.com/jet/uidmap/metrics"
	"github.com/jet/uidmap/sid"
	"github.com/jet/uidmap/version"
	"github.com/jet/uidmap/win32"
)

func main() {
	cfg, err := ConfigFromEnvironment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCommand(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(cfg *Config) *cobra.Command {
	vinfo := version.GetInfo()
	root := &cobra.Command{
		Use:           "uidmap",
		Short:         "Map Windows security identifiers to POSIX-style uid and gid values",
		Version:       vinfo.FullString(true),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cfg.AddFlags(root.PersistentFlags())
	root.AddCommand(
		newWhoamiCommand(cfg),
		newLookupCommand(cfg),
		newSIDCommand(cfg),
		newServeCommand(cfg),
		&cobra.Command{
			Use:   "version",
			Short: "Show uidmap version information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), vinfo.FullString(true))
				return nil
			},
		},
	)
	return root
}

// consoleResolver builds a resolver logging to stderr for one-shot commands
func consoleResolver(cmd *cobra.Command, cfg *Config) (*identity.Resolver, log.Logger, error) {
	logger, err := log.NewConsoleLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, log.Logger{}, err
	}
	win32.SetLogger(logger)
	return newResolver(*cfg, logger, nil), logger, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %T", v)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newWhoamiCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the current process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := consoleResolver(cmd, cfg)
			if err != nil {
				return err
			}
			me, err := whoami(r, processElevated, logger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), me)
		},
	}
}

func newLookupCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup NAME...",
		Short: `Resolve account names such as "alice" or "DOMAIN\alice"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := consoleResolver(cmd, cfg)
			if err != nil {
				return err
			}
			var accounts []identity.Account
			var failed int
			for _, name := range args {
				acct, err := r.ResolveAccount(name)
				if err != nil {
					logger.Error(err, "lookup failed")
					failed++
					continue
				}
				accounts = append(accounts, acct)
			}
			if err := printJSON(cmd.OutOrStdout(), accounts); err != nil {
				return err
			}
			if failed > 0 {
				return errors.Errorf("%d of %d accounts could not be resolved", failed, len(args))
			}
			return nil
		},
	}
}

func newSIDCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sid S-1-...",
		Short: "Resolve the account of a security identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sid.Parse(args[0])
			if err != nil {
				return err
			}
			r, _, err := consoleResolver(cmd, cfg)
			if err != nil {
				return err
			}
			acct, err := r.AccountForSID(s)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}
}

func newServeCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve account identities and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := log.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLogger(logger)
			vinfo := version.GetInfo()
			logger.WithFields(map[string]interface{}{
				"version":  vinfo.String(),
				"revision": version.GitCommit,
				"cmdline":  os.Args,
			}).Logln("uidmap starting")
			win32.SetLogger(logger)
			m := &metrics.Metrics{
				Namespace: MetricsNamespace,
				Labels:    MetricLabels(),
			}
			m.Init()
			s := &server{
				resolver: newResolver(*cfg, logger, m),
				metrics:  m,
				logger:   logger,
				elevated: processElevated,
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err = s.serve(ctx, cfg.Address, cfg.MetricsEndpoint)
			logger.Error(err, "uidmap exiting")
			if err == nil {
				logger.Logln("uidmap exiting")
			}
			return err
		},
	}
	cfg.AddServeFlags(cmd.Flags())
	return cmd
}

// closeLogger closes the log file, reporting a failure on stderr
func closeLogger(l log.Logger) {
	if err := l.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "unable to close log file:", err)
	}
}
