// Cfgnet - bulk network interface configuration over SSH
//
// Cfgnet reads a pool of hosts, assigns each one an address from a network
// segment (or a manual stepping rule) and applies address, gateway and DNS
// settings to the host's NetworkManager connection profile with nmcli,
// many hosts at a time.
//
// Examples:
//
//	cfgnet -p hosts -n 10.30.200.0/24 -g 10.30.200.1      # address + gateway
//	cfgnet -p hosts -n 10.30.200.0/24 -I                  # print allocation only
//	cfgnet -p hosts -t 6 -d "2400:3200::1"                # IPv6 DNS only
//	cfgnet -p hosts -T                                    # connectivity test
//	cfgnet sort addresses.txt                             # sort address literals
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/newtron-network/cfgnet/pkg/audit"
	"github.com/newtron-network/cfgnet/pkg/cli"
	"github.com/newtron-network/cfgnet/pkg/netcfg"
	"github.com/newtron-network/cfgnet/pkg/pipeline"
	"github.com/newtron-network/cfgnet/pkg/remote"
	"github.com/newtron-network/cfgnet/pkg/report"
	"github.com/newtron-network/cfgnet/pkg/settings"
	"github.com/newtron-network/cfgnet/pkg/util"
	"github.com/newtron-network/cfgnet/pkg/version"
)

var (
	// Run flags, merged with settings into netcfg.Options
	opts netcfg.Options

	// Global option flags
	askpass   bool
	debug     bool
	logJSON   bool
	sortFile  string
	timeout   time.Duration
	queueSize int
	auditLog  string

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "cfgnet -p <pool> [flags]",
	Short:             "Bulk network interface configuration over SSH",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Cfgnet assigns addresses from a network segment to every host in a pool
and applies address, gateway and DNS settings with nmcli over SSH.

Without -e/-c the interface carrying the default route is configured.
Run 'cfgnet example' for annotated examples.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.SetupLogging(debug, logJSON)
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			cli.SetColor(false)
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		return nil
	},
	RunE: runConfigure,
}

func init() {
	f := rootCmd.Flags()

	// Pool selection
	f.StringVarP(&opts.PoolFile, "pool", "p", "", "Pool file, one [user@]host[:port] per line")
	f.StringVarP(&opts.User, "user", "u", "", "SSH user for entries without user@ (default root)")
	f.BoolVarP(&askpass, "askpass", "A", false, "Prompt for the SSH password")
	f.BoolVar(&opts.Descending, "desc", false, "Sort the pool in descending order")
	f.BoolVar(&opts.NoSort, "nsort", false, "Keep the pool in file order")

	// Addressing
	f.IntVarP(&opts.Family, "type", "t", 0, "Address type, 4 or 6 (inferred when omitted)")
	f.StringVarP(&opts.Network, "network", "n", "", "Network segment in CIDR form")
	f.StringVarP(&opts.Gateway, "gateway", "g", "", "Gateway address")
	f.StringVarP(&opts.Start, "start", "s", "", "First address to allocate")
	f.StringVarP(&opts.ManualAsc, "manual-asc", "m", "", "Allocate upward from this address")
	f.StringVar(&opts.ManualDesc, "manual-desc", "", "Allocate downward from this address")
	f.StringVarP(&opts.DNS, "dns", "d", "", `DNS servers, comma separated ("-" skips DNS, empty uses defaults)`)
	f.StringVarP(&opts.Exclude, "lexclude", "E", "", "Addresses never to allocate, comma separated")
	f.StringVarP(&opts.ExcludeFile, "fexclude", "F", "", "File of addresses never to allocate")

	// Target profile
	f.StringVarP(&opts.Device, "eth", "e", "", "Network device name")
	f.StringVarP(&opts.Connection, "cname", "c", "", "nmcli connection name")
	f.BoolVar(&opts.Add, "add", false, "Add to the existing values instead of replacing them")
	f.BoolVar(&opts.Sub, "sub", false, "Remove the given values")
	f.BoolVar(&opts.NoUp, "noup", false, "Do not bring the connection up after modifying it")

	// Execution
	f.IntVarP(&opts.Concurrency, "concurrency", "C", netcfg.DefaultConcurrency, "Number of hosts configured at once")
	f.DurationVar(&timeout, "timeout", remote.DefaultConnectTimeout, "Connect and authentication timeout per host")
	f.IntVar(&queueSize, "queue-size", pipeline.DefaultQueueSize, "Capacity of the task and result queues")
	f.BoolVarP(&opts.ListOnly, "ipaddr", "I", false, "Print host => address and exit")
	f.BoolVarP(&opts.TestOnly, "test", "T", false, "Run uptime on every host instead of configuring")
	f.StringVarP(&sortFile, "sort", "S", "", "Print the IP addresses found in a file, sorted, and exit")
	f.StringVar(&auditLog, "audit-log", "", `Journal file for per-host results ("-" disables)`)

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Debug logging and full result dumps")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write diagnostics to stderr as JSON lines")

	rootCmd.AddCommand(sortCmd, exampleCmd, settingsCmd, auditCmd, versionCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	if sortFile != "" {
		return printSorted(cmd.OutOrStdout(), sortFile)
	}

	applySettings(cmd, &opts, userSettings)
	if askpass && !opts.ListOnly {
		password, err := readPassword()
		if err != nil {
			return err
		}
		opts.Password = password
	}

	plan, err := opts.Resolve()
	if err != nil {
		return err
	}

	rep := report.New(report.Options{Out: cmd.OutOrStdout(), Debug: debug})
	tasks, err := plan.Tasks()
	if err != nil {
		if plan.ListOnly && errors.Is(err, util.ErrAllocationExhausted) {
			for _, t := range tasks {
				rep.Mapping(t)
			}
		}
		return err
	}

	cfg := pipeline.Config{
		Workers:   plan.Concurrency,
		QueueSize: queueSize,
		Reporter:  rep,
		ListOnly:  plan.ListOnly,
	}
	if !plan.ListOnly {
		if path := auditLogPath(cmd); path != "" {
			logger, err := audit.NewFileLogger(path, audit.DefaultRotation)
			if err != nil {
				util.Warnf("Audit journal disabled: %v", err)
			} else {
				defer logger.Close()
				cfg.Reporter = audit.NewRecorder(rep, logger, operator())
			}
		}

		dialer, err := remote.NewSSHDialer(remote.SSHConfig{Timeout: timeout, UseAgent: true})
		if err != nil {
			return fmt.Errorf("ssh: %w", err)
		}
		defer dialer.Close()
		cfg.Executor = remote.NewExecutor(dialer)
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := p.Run(ctx, tasks)
	if plan.ListOnly {
		return err
	}
	if serr := rep.Summary(summary); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		util.Warnf("%d of %d hosts failed", summary.Failed, summary.Total)
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			util.WithField("signal", sig.String()).Warn("Received signal, abandoning in-flight hosts")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// auditLogPath returns the journal file for this run, or "" when disabled.
func auditLogPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("audit-log") {
		if auditLog == "-" {
			return ""
		}
		return auditLog
	}
	if userSettings == nil {
		return settings.DefaultAuditLogPath()
	}
	return userSettings.AuditLogPath()
}

// operator names the local user running cfgnet, for the journal.
func operator() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Banner("cfgnet"))
	},
}
