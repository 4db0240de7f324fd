package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rawbytedev/docpack"
)

var (
	benchCount  int
	benchRounds int
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure encode and decode throughput on synthetic documents",
	Long: `Bench generates synthetic documents and reports wall-clock
throughput for encoding, validated access, and materialization.

Example:
  docpack bench --count 10000 --rounds 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.OutOrStdout())
	},
}

func benchDocument(i int) *docpack.Document {
	doc := docpack.NewDocument(6)
	doc.SetID(uint64(i))
	doc.Insert("name", docpack.String(fmt.Sprintf("record-%06d", i)))
	doc.Insert("score", docpack.F64(float64(i)*0.5))
	doc.Insert("tags", docpack.ArrayString([]string{"alpha", "beta", "gamma"}))
	doc.Insert("samples", docpack.ArrayU64([]uint64{1, 2, 3, 5, 8, 13, 21, 34}))
	doc.Insert("active", docpack.Bool(i%2 == 0))
	doc.Insert("meta", docpack.Object(
		docpack.F("created", docpack.DateMillis(int64(1700000000000+i))),
	))
	return doc
}

func runBench(out io.Writer) error {
	docs := make([]*docpack.Document, benchCount)
	for i := range docs {
		docs[i] = benchDocument(i)
	}

	enc := docpack.NewEncoderSize(opts.ScratchCapacity)
	var buf []byte
	var encodeTotal, accessTotal, deserTotal time.Duration

	for round := 0; round < benchRounds; round++ {
		buf = buf[:0]
		start := time.Now()
		for _, doc := range docs {
			var err error
			buf, err = enc.EncodeAppend(buf, doc)
			if err != nil {
				return err
			}
		}
		encodeTotal += time.Since(start)

		start = time.Now()
		it, err := docpack.IterArchived(buf)
		if err != nil {
			return err
		}
		for it.Next() {
			if _, err := it.Document(); err != nil {
				return err
			}
		}
		accessTotal += time.Since(start)

		start = time.Now()
		it, err = docpack.IterArchivedUnchecked(buf)
		if err != nil {
			return err
		}
		for it.Next() {
			view, err := it.Document()
			if err != nil {
				return err
			}
			_ = view.Deserialize()
		}
		deserTotal += time.Since(start)
	}

	n := benchCount * benchRounds
	report := func(name string, d time.Duration) {
		perDoc := d / time.Duration(n)
		fmt.Fprintf(out, "%-12s %12v total  %10v/doc  %8.0f docs/s\n",
			name, d, perDoc, float64(n)/d.Seconds())
	}
	fmt.Fprintf(out, "%d documents x %d rounds, %d bytes/buffer\n",
		benchCount, benchRounds, len(buf))
	report("encode", encodeTotal)
	report("access", accessTotal)
	report("deserialize", deserTotal)
	log.Debug().Int("documents", n).Msg("bench complete")
	return nil
}

func init() {
	benchCmd.Flags().IntVar(&benchCount, "count", 10000, "Documents per round")
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 3, "Measurement rounds")
	rootCmd.AddCommand(benchCmd)
}
