package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remind-me-later/gbcore/internal/core"
	"github.com/remind-me-later/gbcore/internal/romtest"
)

func newHashCmd() *cobra.Command {
	var frames int

	cmd := &cobra.Command{
		Use:   "hash <rom>",
		Short: "Run a ROM for a fixed number of frames and print a determinism hash",
		Long: "hash runs the core for a fixed frame count (no breakpoint, no serial " +
			"check) and prints an xxhash of the final framebuffer, so two runs of the " +
			"same inputs can be diffed for the determinism property without comparing " +
			"raw pixel dumps.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadFile(args[0])
			if err != nil {
				return err
			}
			c, _ := core.New(rom)
			if c == nil {
				return fmt.Errorf("failed to construct core")
			}
			for i := 0; i < frames; i++ {
				c.RunFrame()
			}
			fmt.Printf("%#016x\n", romtest.HashFramebuffer(c.PixelData()))
			return nil
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 60, "number of frames to run before hashing")
	return cmd
}
