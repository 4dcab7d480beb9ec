package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/termcore/internal/vterm"
)

type replayOptions struct {
	cols, rows int
	ansi       bool
	scrollback bool
}

func buildReplayCommand(e *env) *cobra.Command {
	var opts replayOptions
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Feed a captured byte stream through a screen and print the result",
		Long:  "Feed a captured byte stream through a screen and print the result. Use - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cols <= 0 {
				opts.cols = e.cfg.Cols
			}
			if opts.rows <= 0 {
				opts.rows = e.cfg.Rows
			}
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			vt := vterm.NewWithScrollback(opts.cols, opts.rows, e.cfg.Scrollback)
			if _, err := io.Copy(vt, in); err != nil {
				return fmt.Errorf("replay %s: %w", args[0], err)
			}
			return printScreen(cmd.OutOrStdout(), vt, opts.ansi, opts.scrollback)
		},
	}
	cmd.Flags().IntVar(&opts.cols, "cols", 0, "screen width (default from config)")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "screen height (default from config)")
	cmd.Flags().BoolVar(&opts.ansi, "ansi", false, "keep colors and attributes in the output")
	cmd.Flags().BoolVar(&opts.scrollback, "scrollback", false, "print scrollback above the screen")
	return cmd
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// printScreen writes the scrollback (optionally) and the visible screen.
func printScreen(w io.Writer, vt *vterm.VTerm, ansi, withScrollback bool) error {
	if withScrollback {
		for i := 0; i < vt.ScrollbackLen(); i++ {
			row, ok := vt.ScrollbackRow(i)
			if !ok {
				break
			}
			if _, err := fmt.Fprintln(w, row.Text()); err != nil {
				return err
			}
		}
	}
	snap := vt.Snapshot()
	out := snap.Text()
	if ansi {
		out = snap.ANSI()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
