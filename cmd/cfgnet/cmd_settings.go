package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cfgnet/pkg/cli"
	"github.com/newtron-network/cfgnet/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.cfgnet/settings.ini
(or the file named by $CFGNET_SETTINGS).

Settings provide defaults for flags that are not given explicitly:
  - user:        SSH user for pool entries without user@ (-u)
  - concurrency: Number of hosts configured at once (-C)
  - timeout:     Connect and authentication timeout, e.g. 20s (--timeout)
  - dns4:        IPv4 DNS servers used when -d is empty
  - dns6:        IPv6 DNS servers used when -d is empty
  - queue_size:  Capacity of the task and result queues (--queue-size)
  - audit_log:   Journal file, "-" to disable (--audit-log)

Examples:
  cfgnet settings show
  cfgnet settings set user deploy
  cfgnet settings set dns4 10.0.0.53,10.0.1.53
  cfgnet settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")
		for _, k := range settings.Keys {
			value, _ := s.Get(k)
			if value == "" {
				value = "(not set)"
			}
			t.Row(k, value)
		}
		return t.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value. An empty value unsets it.

Available settings: ` + strings.Join(settings.Keys, ", ") + `

Examples:
  cfgnet settings set concurrency 20
  cfgnet settings set timeout 30s`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		if err := s.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", strings.ToLower(args[0]), args[1])
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		value, err := s.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
