// Command gbcore-romtest drives the core over a ROM image the same way
// the testable-properties section of the core's specification requires:
// run it to a breakpoint or serial pass/fail, hash the resulting
// framebuffer for determinism checks, or compare it byte-for-byte
// against a reference PNG (the Acid2/Mealybug-class scenarios). It is
// deliberately narrow - no GUI, no audio device, no interactive
// controls - those all live outside the core's scope.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gbcore-romtest",
		Short: "Drive the gbcore emulation core over a ROM for test-harness use",
		Long: "gbcore-romtest runs a cartridge image against the core and reports " +
			"pass/fail, a determinism hash, or a pixel-diff against a reference PNG. " +
			"It exists to give the Blargg/Mooneye/Acid2 end-to-end scenarios a " +
			"command-line surface without pulling GUI or audio concerns into the core.",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newHashCmd())
	root.AddCommand(newCompareCmd())
	return root
}
