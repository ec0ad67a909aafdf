package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remind-me-later/gbcore/internal/core"
	"github.com/remind-me-later/gbcore/internal/romtest"
)

func newRunCmd() *cobra.Command {
	var (
		bootROMPath string
		model       string
		frames      int
	)

	cmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Run a ROM to its LD B,B breakpoint or a serial Passed/Failed line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadFile(args[0])
			if err != nil {
				return err
			}

			var opts []core.Option
			if bootROMPath != "" {
				boot, err := loadFile(bootROMPath)
				if err != nil {
					return err
				}
				opts = append(opts, core.WithBootROM(boot))
			}
			switch model {
			case "auto":
			case "dmg":
				opts = append(opts, core.WithModel(false))
			case "cgb":
				opts = append(opts, core.WithModel(true))
			default:
				return fmt.Errorf("unknown --model %q (want auto, dmg or cgb)", model)
			}

			c, warn := core.New(rom, opts...)
			if warn != nil {
				fmt.Fprintln(os.Stderr, "warning:", warn)
			}
			if c == nil {
				return fmt.Errorf("failed to construct core")
			}

			result := romtest.RunToCompletion(c, frames)
			fmt.Printf("frames=%d outcome=%s hash=%#016x\n", result.Frames, outcomeString(result.Outcome), result.FrameHash)
			if len(result.SerialOutput) > 0 {
				fmt.Printf("serial: %q\n", string(result.SerialOutput))
			}

			switch result.Outcome {
			case romtest.OutcomeSerialFail:
				return fmt.Errorf("ROM reported failure over serial")
			case romtest.OutcomeTimeout:
				return fmt.Errorf("ROM did not complete within %d frames", frames)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bootROMPath, "boot", "", "optional boot ROM image")
	cmd.Flags().StringVar(&model, "model", "auto", "auto, dmg or cgb")
	cmd.Flags().IntVar(&frames, "frames", 2200, "frame budget before giving up")
	return cmd
}

func outcomeString(o romtest.Outcome) string {
	switch o {
	case romtest.OutcomeBreakpoint:
		return "breakpoint"
	case romtest.OutcomeSerialPass:
		return "serial-pass"
	case romtest.OutcomeSerialFail:
		return "serial-fail"
	default:
		return "timeout"
	}
}

func loadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
