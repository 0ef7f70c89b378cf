package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/compute"
)

var devicesJSON bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List OpenCL platforms and devices",
	Long: `Counts and discovers every OpenCL platform and prints its devices.
The platform and device indices shown are the ones setup expects.`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesJSON, "json", false, "Print the topology as JSON")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) (err error) {
	mgr, err := newManager(nil)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, mgr.Close()) }()

	if err := discover(mgr); err != nil {
		return err
	}

	topology := mgr.Topology()
	if devicesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(topology)
	}
	printTopology(cmd.OutOrStdout(), topology)
	return nil
}

// printTopology writes one row per device, grouped by platform.
func printTopology(out io.Writer, topology []compute.PlatformInfo) {
	if len(topology) == 0 {
		fmt.Fprintln(out, "No OpenCL platforms found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tDEVICE\tTYPE\tNAME\tVERSION")
	fmt.Fprintln(w, "--------\t------\t----\t----\t-------")
	for _, p := range topology {
		fmt.Fprintf(w, "%d\t-\t-\t%s\t%s\n", p.Index, p.Name, p.Version)
		for _, d := range p.Devices {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", p.Index, d.Index, d.Type, d.Name, d.Version)
		}
	}
	w.Flush()

	devices := 0
	for _, p := range topology {
		devices += len(p.Devices)
	}
	fmt.Fprintf(out, "\nTotal: %d platform(s), %d device(s)\n", len(topology), devices)
}
