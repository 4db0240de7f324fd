package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rawbytedev/docpack"
	"github.com/rawbytedev/docpack/pkg/jsondoc"
)

var (
	packOut    string
	packBaseID uint64
)

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack [input.json]",
	Short: "Pack JSON documents into a frame buffer",
	Long: `Pack reads a stream of JSON objects, one document each, and writes
them as concatenated binary frames. Documents get sequential ids
starting at --base-id. With compression enabled in the config the
whole output buffer is zstd-compressed.

Example:
  docpack pack docs.json -o docs.pack`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return runPack(in, packOut)
	},
}

func runPack(in io.Reader, outPath string) error {
	docs, err := jsondoc.DecodeAll(in)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	var buf []byte
	enc := docpack.NewEncoderSize(opts.ScratchCapacity)
	for i, doc := range docs {
		doc.SetID(packBaseID + uint64(i))
		buf, err = enc.EncodeAppend(buf, doc)
		if err != nil {
			return fmt.Errorf("pack: document %d: %w", i, err)
		}
	}

	raw := len(buf)
	if opts.Compress {
		if buf, err = compressBuffer(buf, opts.Level); err != nil {
			return err
		}
	}

	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return err
	}
	log.Info().
		Int("documents", len(docs)).
		Int("raw_bytes", raw).
		Int("written_bytes", len(buf)).
		Str("path", outPath).
		Msg("packed")
	return nil
}

func init() {
	packCmd.Flags().StringVarP(&packOut, "output", "o", "out.pack", "Output file")
	packCmd.Flags().Uint64Var(&packBaseID, "base-id", 1, "Id assigned to the first document")
	rootCmd.AddCommand(packCmd)
}
