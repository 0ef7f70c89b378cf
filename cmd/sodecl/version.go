package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sodecl/internal/cl"
)

var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and OpenCL build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sodecl version %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "OpenCL runtime: %s\n", runtimeSupport())
	},
}

// runtimeSupport reports whether this binary links an OpenCL runtime.
func runtimeSupport() string {
	_, err := openRuntime()
	switch {
	case err == nil:
		return "linked"
	case errors.Is(err, cl.ErrNotBuilt):
		return "not built (" + err.Error() + ")"
	default:
		return "unavailable: " + err.Error()
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
