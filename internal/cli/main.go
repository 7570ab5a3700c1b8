package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vsplit [input.mp4...]",
		Short: "Split videos into 5-minute parts with mp3 audio and vertical crops",
		Long: `vsplit cuts each input into 300-second parts next to the input file:

  split/partN.mp4            stream-copied video parts
  split/mp3s/audioN.mp3      mp3 audio of each part
  Resized/partN-resized.mp4  centered 9:16 crop of each part

Without arguments an interactive picker lists the .mp4 files of --dir.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	f := root.Flags()
	f.String("config", "", "TOML config file (default ./vsplit.toml when present)")
	f.Int("workers", 0, "Concurrent crop jobs (0 = one per CPU)")
	f.Duration("timeout", 0, "Timeout for each ffmpeg/ffprobe call (0 = none)")
	f.Bool("abort-on-segment-error", false, "Stop an input at its first failed segment")
	f.String("dir", "", "Directory listed by the interactive picker")
	f.String("report", "", "Write a JSON run report to this path")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: console or json")

	return root
}
