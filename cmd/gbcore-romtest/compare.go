package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/remind-me-later/gbcore/internal/core"
	"github.com/remind-me-later/gbcore/internal/ppu"
	"github.com/remind-me-later/gbcore/internal/romtest"
)

func newCompareCmd() *cobra.Command {
	var (
		frames  int
		diffOut string
	)

	cmd := &cobra.Command{
		Use:   "compare <rom> <reference.png>",
		Short: "Run a ROM to its breakpoint and diff the framebuffer against a reference PNG",
		Long: "compare is the harness for the byte-for-byte Acid2/Mealybug scenarios: " +
			"it runs the ROM to its LD B,B breakpoint (or a fixed frame budget), then " +
			"reports the root-sum-square pixel error against a reference image. Zero error means an " +
			"exact match.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadFile(args[0])
			if err != nil {
				return err
			}
			refData, err := loadFile(args[1])
			if err != nil {
				return err
			}
			ref, err := romtest.DecodePNG(refData)
			if err != nil {
				return fmt.Errorf("decoding reference PNG: %w", err)
			}

			c, _ := core.New(rom, core.WithModel(true))
			if c == nil {
				return fmt.Errorf("failed to construct core")
			}
			result := romtest.RunToCompletion(c, frames)

			got := romtest.FramebufferToImage(c.PixelData(), ppu.ScreenWidth, ppu.ScreenHeight)
			cmp, err := romtest.CompareImages(got, ref)
			if err != nil {
				return err
			}

			fmt.Printf("frames=%d outcome=%s error=%d\n", result.Frames, outcomeString(result.Outcome), cmp.Error)
			if diffOut != "" {
				f, err := os.Create(diffOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := png.Encode(f, cmp.Diff); err != nil {
					return err
				}
			}
			if cmp.Error != 0 {
				return fmt.Errorf("framebuffer did not match reference (error=%d)", cmp.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 2200, "frame budget before giving up")
	cmd.Flags().StringVar(&diffOut, "diff-out", "", "optional path to write a highlighted diff PNG")
	return cmd
}
