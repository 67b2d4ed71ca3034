package main

import (
	"github.com/spf13/cobra"

	"github.com/newtron-network/cfgnet/pkg/netcfg"
	"github.com/newtron-network/cfgnet/pkg/settings"
)

// applySettings fills options the operator did not pass explicitly from
// persistent settings. Flags win over settings, settings over built-ins.
func applySettings(cmd *cobra.Command, o *netcfg.Options, s *settings.Settings) {
	if s == nil {
		return
	}
	flags := cmd.Flags()

	if !flags.Changed("user") && s.User != "" {
		o.User = s.User
	}
	if !flags.Changed("concurrency") && s.Concurrency > 0 {
		o.Concurrency = s.Concurrency
	}
	if !flags.Changed("timeout") && s.Timeout > 0 {
		timeout = s.Timeout
	}
	if !flags.Changed("queue-size") && s.QueueSize > 0 {
		queueSize = s.QueueSize
	}
	o.DefaultDNS4 = s.DNS4
	o.DefaultDNS6 = s.DNS6
}
