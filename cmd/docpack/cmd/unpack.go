package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rawbytedev/docpack"
	"github.com/rawbytedev/docpack/pkg/jsondoc"
)

var (
	unpackOut     string
	unpackTrusted bool
	unpackSkipBad bool
)

// unpackCmd represents the unpack command
var unpackCmd = &cobra.Command{
	Use:   "unpack <input.pack>",
	Short: "Unpack a frame buffer back into JSON documents",
	Long: `Unpack reads a frame buffer, zstd-compressed or raw, and writes one
JSON object per document in encode order. Frames are checksum-verified
and structurally validated unless --trusted is set.

Example:
  docpack unpack docs.pack -o docs.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := os.Stdout
		if unpackOut != "" {
			f, err := os.Create(unpackOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return runUnpack(buf, out)
	},
}

func runUnpack(buf []byte, out io.Writer) error {
	buf, err := maybeDecompress(buf)
	if err != nil {
		return err
	}

	var it *docpack.ArchiveIter
	if unpackTrusted {
		it, err = docpack.IterArchivedUnchecked(buf)
	} else {
		it, err = docpack.IterArchived(buf)
	}
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}

	w := bufio.NewWriter(out)
	var idx, bad int
	for it.Next() {
		view, err := it.Document()
		if err != nil {
			if !unpackSkipBad {
				return fmt.Errorf("unpack: frame %d: %w", idx, err)
			}
			log.Warn().Int("frame", idx).Err(err).Msg("skipping bad frame")
			bad++
			idx++
			continue
		}
		if err := jsondoc.EncodeArchived(w, view); err != nil {
			return err
		}
		idx++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log.Info().Int("documents", idx-bad).Int("skipped", bad).Msg("unpacked")
	return nil
}

func init() {
	unpackCmd.Flags().StringVarP(&unpackOut, "output", "o", "", "Output file (default stdout)")
	unpackCmd.Flags().BoolVar(&unpackTrusted, "trusted", false, "Skip checksum and structural validation")
	unpackCmd.Flags().BoolVar(&unpackSkipBad, "skip-bad", false, "Skip corrupt frames instead of failing")
	rootCmd.AddCommand(unpackCmd)
}
