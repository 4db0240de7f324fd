package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/docpack"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <input.pack>",
	Short: "Show per-frame layout and integrity of a buffer",
	Long: `Inspect walks a frame buffer backward through its footers and prints
one line per frame: its byte range, data size, checksum state, and on
intact frames the document id and field count.

Example:
  docpack inspect docs.pack`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return runInspect(buf, cmd.OutOrStdout())
	},
}

type frameInfo struct {
	start, end int
	err        error
	id         uint64
	fields     int
}

func runInspect(buf []byte, out io.Writer) error {
	buf, err := maybeDecompress(buf)
	if err != nil {
		return err
	}

	// The walker yields last frame first; collect, then report in
	// encode order.
	var infos []frameInfo
	w := docpack.NewBufferWalker(buf)
	for {
		end := w.Offset()
		data, err := w.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, docpack.ErrTruncatedFrame) {
			return fmt.Errorf("inspect: offset %d: %w", end, err)
		}
		info := frameInfo{start: w.Offset(), end: end, err: err}
		if err == nil {
			view, aerr := docpack.Access(data)
			if aerr != nil {
				info.err = aerr
			} else {
				info.id = view.ID()
				info.fields = view.Len()
			}
		}
		infos = append(infos, info)
	}

	fmt.Fprintf(out, "%d bytes, %d frames\n", len(buf), len(infos))
	for i := len(infos) - 1; i >= 0; i-- {
		f := infos[i]
		idx := len(infos) - 1 - i
		if f.err != nil {
			fmt.Fprintf(out, "frame %d  [%d:%d)  %d data bytes  BAD: %v\n",
				idx, f.start, f.end, f.end-f.start-docpack.FooterSize, f.err)
			continue
		}
		fmt.Fprintf(out, "frame %d  [%d:%d)  %d data bytes  ok  id=%d fields=%d\n",
			idx, f.start, f.end, f.end-f.start-docpack.FooterSize, f.id, f.fields)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
