package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/newtron-network/cfgnet/pkg/cli"
)

type example struct {
	about    string
	commands []string
}

var examples = []example{
	{"Configure an address on every host's default-route interface, replacing old addresses",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24"}},
	{"Configure address and gateway",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24 -g 10.30.200.1"}},
	{"Configure addresses, never handing out 10.30.200.1",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24 -E 10.30.200.1"}},
	{"Only print the host => address allocation",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24 -I"}},
	{"Dump full results",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24 -D"}},
	{"Configure only the gateway",
		[]string{"cfgnet -p hosts -g 10.30.200.1"}},
	{"Add an address next to the existing ones",
		[]string{"cfgnet -p hosts -n 10.30.200.0/24 --add"}},
	{"Add addresses from 10.30.220.100 up, no gateway, skip DNS",
		[]string{`cfgnet -p hosts -n 10.30.220.0/24 -s 10.30.220.100 -d "-" --add`}},
	{"Configure IPv6 address and gateway",
		[]string{"cfgnet -p hosts -t 6 -n 2201:8aab:7be1:200::/56 -g 2201:8aab:7be1:200::1"}},
	{"Configure only IPv6 DNS",
		[]string{"cfgnet -p hosts -t 6", `cfgnet -p hosts -t 6 -d "2400:3200::1,2400:3200:baba::1"`}},
	{"Configure only IPv4 DNS",
		[]string{"cfgnet -p hosts -t 4", `cfgnet -p hosts -t 4 -d "114.114.114.114"`}},
	{"Check that every host is reachable",
		[]string{"cfgnet -p hosts -T"}},
	{"Find the IP addresses in a file and print them sorted",
		[]string{"cfgnet -S addr_file"}},
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print annotated usage examples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printExamples(cmd.OutOrStdout())
	},
}

func printExamples(w io.Writer) error {
	for _, e := range examples {
		if _, err := fmt.Fprintln(w, cli.Dim("# "+e.about)); err != nil {
			return err
		}
		for _, c := range e.commands {
			fmt.Fprintln(w, cli.Yellow(c))
		}
	}
	return nil
}
