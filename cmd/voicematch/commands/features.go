package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/waveform"
	"github.com/haivivi/voicematch/pkg/cli"
)

var featuresRaw bool

var featuresCmd = &cobra.Command{
	Use:   "features <audio>",
	Short: "Print the feature matrix summary of a clip",
	Long: `Load a clip, cut the inference segment and print the feature matrix
shape with a per-bin summary.

With --raw the per-utterance normalization (and --stats) is skipped and the
dB values are summarized instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	addPipelineFlags(featuresCmd, false)
	featuresCmd.Flags().BoolVar(&featuresRaw, "raw", false, "summarize dB values before normalization")
	rootCmd.AddCommand(featuresCmd)
}

type binSummary struct {
	Bin  int     `json:"bin" yaml:"bin"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

type featureSummary struct {
	Path     string         `json:"path" yaml:"path"`
	Method   feature.Method `json:"method" yaml:"method"`
	Duration string         `json:"duration" yaml:"duration"`
	Bins     int            `json:"bins" yaml:"bins"`
	Frames   int            `json:"frames" yaml:"frames"`
	Summary  []binSummary   `json:"summary" yaml:"summary"`
}

func (s featureSummary) Table() ([]string, [][]string) {
	rows := make([][]string, len(s.Summary))
	for i, b := range s.Summary {
		rows[i] = []string{
			strconv.Itoa(b.Bin),
			strconv.FormatFloat(b.Min, 'f', 3, 64),
			strconv.FormatFloat(b.Max, 'f', 3, 64),
			strconv.FormatFloat(b.Mean, 'f', 3, 64),
			strconv.FormatFloat(b.Std, 'f', 3, 64),
		}
	}
	return []string{"bin", "min", "max", "mean", "std"}, rows
}

func runFeatures(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd.Context(), cfg, false, args...)
	if err != nil {
		return err
	}
	defer p.Close()

	w, err := p.loader.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	w = waveform.Select(w, cfg.Duration, waveform.ModeInfer, nil)

	var m *feature.Matrix
	if featuresRaw {
		m = p.extractor.Raw(w.Samples)
	} else {
		if m, err = p.extractor.Extract(w); err != nil {
			return err
		}
		if p.stats != nil {
			if err := p.stats.Apply(m); err != nil {
				return err
			}
		}
	}

	return printResult(featureSummary{
		Path:     args[0],
		Method:   p.extractor.Config().Method,
		Duration: cli.FormatDuration(w.Duration()),
		Bins:     m.Bins,
		Frames:   m.Frames,
		Summary:  summarize(m),
	})
}

func summarize(m *feature.Matrix) []binSummary {
	out := make([]binSummary, m.Bins)
	row := make([]float64, m.Frames)
	for b := range m.Bins {
		for t, v := range m.Row(b) {
			row[t] = float64(v)
		}
		mean, std := stat.PopMeanStdDev(row, nil)
		out[b] = binSummary{
			Bin:  b,
			Min:  floats.Min(row),
			Max:  floats.Max(row),
			Mean: mean,
			Std:  std,
		}
	}
	return out
}
