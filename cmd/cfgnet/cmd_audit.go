package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cfgnet/pkg/audit"
	"github.com/newtron-network/cfgnet/pkg/cli"
	"github.com/newtron-network/cfgnet/pkg/settings"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the per-host journal",
	Long: `View the journal of configuration runs.

Every configured or tested host is recorded with:
  - Timestamp
  - Local user who ran cfgnet
  - Host and the address, gateway and DNS applied
  - nmcli commands issued
  - Success/failure status

The journal lives next to the settings file unless audit_log or
--audit-log says otherwise.

Examples:
  cfgnet audit list --host 10.0.0.5
  cfgnet audit list --last 24h
  cfgnet audit list --failures --limit 20`,
}

var (
	auditFile     string
	auditHost     string
	auditUser     string
	auditLast     string
	auditLimit    int
	auditFailures bool
	auditJSON     bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Host:        auditHost,
			User:        auditUser,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		// Parse --last duration
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		path := auditFile
		if path == "" {
			path = settings.DefaultAuditLogPath()
			if userSettings != nil {
				path = userSettings.AuditLogPath()
			}
		}
		if path == "" {
			return fmt.Errorf("audit journal is disabled (audit_log is \"-\")")
		}

		events, err := audit.Query(path, filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}
		return printAuditEvents(cmd.OutOrStdout(), events, auditJSON)
	},
}

func printAuditEvents(w io.Writer, events []*audit.Event, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(events)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "No audit events found")
		return nil
	}

	t := cli.NewTableTo(w, "TIMESTAMP", "USER", "HOST", "OPERATION", "ADDRESS", "STATUS")
	for _, event := range events {
		address := event.Address
		if address == "" {
			address = "-"
		}
		t.Row(
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.User,
			event.Host,
			event.Operation,
			address,
			cli.Status(event.Success),
		)
	}
	return t.Flush()
}

func init() {
	auditListCmd.Flags().StringVar(&auditFile, "file", "", "Journal file (default from settings)")
	auditListCmd.Flags().StringVar(&auditHost, "host", "", "Filter by host")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h, 90m)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed hosts")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "Print events as JSON")

	auditCmd.AddCommand(auditListCmd)
}
