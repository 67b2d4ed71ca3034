package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cfgnet/pkg/addr"
)

var sortCmd = &cobra.Command{
	Use:   "sort <file>",
	Short: "Print the IP addresses found in a file, sorted",
	Long: `Scan a file for dotted IPv4 and full-form IPv6 literals, drop duplicates
and print IPv4 addresses in order followed by IPv6 addresses in order.

Equivalent to 'cfgnet -S <file>'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSorted(cmd.OutOrStdout(), args[0])
	},
}

func printSorted(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	v4, v6 := addr.ScanLiterals(string(data))
	for _, ip := range append(v4, v6...) {
		if _, err := fmt.Fprintln(w, ip); err != nil {
			return err
		}
	}
	return nil
}
