package commands

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/waveform"
	"github.com/haivivi/voicematch/pkg/dataset"
)

var (
	statsOut     string
	statsWorkers int
)

var statsCmd = &cobra.Command{
	Use:   "stats <manifest>",
	Short: "Compute global normalization statistics over a manifest",
	Long: `Run every manifest entry through the inference pipeline (load, segment,
features) and accumulate the per-bin mean and standard deviation. The
result is written as a msgpack file usable with --stats.

The manifest has one "<audio path>\t<label>" entry per line.

Examples:
  voicematch stats train.tsv -o stats.msgpack
  voicematch stats s3://corpus/train.tsv -o s3://corpus/stats.msgpack`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	addAudioFlags(statsCmd)
	statsCmd.Flags().StringVarP(&statsOut, "out", "o", "", "statistics output file (required)")
	statsCmd.Flags().IntVar(&statsWorkers, "workers", 0, "concurrent loads (default GOMAXPROCS)")
	rootCmd.AddCommand(statsCmd)
}

type statsSummary struct {
	Manifest   string         `json:"manifest" yaml:"manifest"`
	Output     string         `json:"output" yaml:"output"`
	Method     feature.Method `json:"method" yaml:"method"`
	Utterances int            `json:"utterances" yaml:"utterances"`
	Frames     int64          `json:"frames" yaml:"frames"`
	Bins       int            `json:"bins" yaml:"bins"`
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsOut == "" {
		return errors.New("--out is required")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, false, args[0], statsOut)
	if err != nil {
		return err
	}
	defer p.Close()

	entries, err := dataset.ReadManifest(ctx, p.store, args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("manifest %s has no entries", args[0])
	}
	ds := dataset.New(entries, p.loader, p.extractor,
		dataset.WithMode(waveform.ModeInfer),
		dataset.WithDuration(cfg.Duration),
	)

	method := p.extractor.Config().Method
	acc := feature.NewAccumulator(method)
	var mu sync.Mutex

	workers := statsWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ds.Len() {
		g.Go(func() error {
			s, err := ds.Get(gctx, i)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return acc.Add(s.Features)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := acc.Stats()
	w, err := p.store.Write(ctx, statsOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", statsOut, err)
	}
	if err := stats.Save(w); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", statsOut, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", statsOut, err)
	}

	return printResult(statsSummary{
		Manifest:   args[0],
		Output:     statsOut,
		Method:     method,
		Utterances: ds.Len(),
		Frames:     acc.Frames(),
		Bins:       stats.Bins(),
	})
}
