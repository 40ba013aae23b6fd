package commands

import (
	"fmt"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haivivi/voicematch/pkg/voiceprint"
)

var matrixGroup bool

var matrixCmd = &cobra.Command{
	Use:   "matrix <audio>...",
	Short: "Pairwise similarity of many clips",
	Long: `Embed every clip and print the cosine similarity matrix.

With --group the speaker is taken from the file name, as the field before
the last underscore:

  2026_02_08_19_00_38_alice_8b62a440.wav -> alice

and the similarities are summarized for same-speaker and
different-speaker pairs.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatrix,
}

func init() {
	addPipelineFlags(matrixCmd, true)
	matrixCmd.Flags().BoolVar(&matrixGroup, "group", false, "group clips by the speaker encoded in the file name")
	rootCmd.AddCommand(matrixCmd)
}

type matrixClip struct {
	Path    string `json:"path" yaml:"path"`
	Speaker string `json:"speaker,omitempty" yaml:"speaker,omitempty"`
}

type pairSummary struct {
	Mean  float64 `json:"mean" yaml:"mean"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Pairs int     `json:"pairs" yaml:"pairs"`
}

type similarityMatrix struct {
	Clips      []matrixClip `json:"clips" yaml:"clips"`
	Similarity [][]float64  `json:"similarity" yaml:"similarity"`
	Same       *pairSummary `json:"same,omitempty" yaml:"same,omitempty"`
	Diff       *pairSummary `json:"diff,omitempty" yaml:"diff,omitempty"`
	// Gap is Same.Mean - Diff.Mean.
	Gap *float64 `json:"gap,omitempty" yaml:"gap,omitempty"`
}

func (m similarityMatrix) Table() ([]string, [][]string) {
	headers := []string{""}
	for i := range m.Clips {
		headers = append(headers, strconv.Itoa(i))
	}
	rows := make([][]string, len(m.Clips))
	for i, c := range m.Clips {
		label := fmt.Sprintf("[%d] %s", i, displayName(c.Path))
		if c.Speaker != "" {
			label = fmt.Sprintf("[%d] %s", i, c.Speaker)
		}
		row := []string{label}
		for j, s := range m.Similarity[i] {
			if i == j {
				row = append(row, "----")
				continue
			}
			row = append(row, strconv.FormatFloat(s, 'f', 2, 64))
		}
		rows[i] = row
	}
	return headers, rows
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := newPipeline(cmd.Context(), cfg, true, args...)
	if err != nil {
		return err
	}
	defer p.Close()

	v, err := p.verifier()
	if err != nil {
		return err
	}

	clips := make([]matrixClip, len(args))
	for i, a := range args {
		clips[i].Path = a
		if matrixGroup {
			clips[i].Speaker = speakerFromName(a)
		}
	}
	if matrixGroup {
		sort.SliceStable(clips, func(i, j int) bool {
			if clips[i].Speaker != clips[j].Speaker {
				return clips[i].Speaker < clips[j].Speaker
			}
			return clips[i].Path < clips[j].Path
		})
	}

	embs := make([][]float32, len(clips))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range clips {
		g.Go(func() (err error) {
			embs[i], err = v.Embed(ctx, c.Path)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out, err := buildMatrix(clips, embs)
	if err != nil {
		return err
	}
	return printResult(out)
}

func buildMatrix(clips []matrixClip, embs [][]float32) (similarityMatrix, error) {
	n := len(clips)
	out := similarityMatrix{Clips: clips, Similarity: make([][]float64, n)}
	for i := range n {
		out.Similarity[i] = make([]float64, n)
	}
	var same, diff []float64
	for i := range n {
		out.Similarity[i][i] = 1
		for j := i + 1; j < n; j++ {
			s, err := voiceprint.CosineSimilarity(embs[i], embs[j])
			if err != nil {
				return out, fmt.Errorf("%s vs %s: %w", clips[i].Path, clips[j].Path, err)
			}
			out.Similarity[i][j] = s
			out.Similarity[j][i] = s
			if clips[i].Speaker == "" || clips[j].Speaker == "" {
				continue
			}
			if clips[i].Speaker == clips[j].Speaker {
				same = append(same, s)
			} else {
				diff = append(diff, s)
			}
		}
	}
	out.Same = summarizePairs(same)
	out.Diff = summarizePairs(diff)
	if out.Same != nil && out.Diff != nil {
		gap := out.Same.Mean - out.Diff.Mean
		out.Gap = &gap
	}
	return out, nil
}

func summarizePairs(sims []float64) *pairSummary {
	if len(sims) == 0 {
		return nil
	}
	return &pairSummary{
		Mean:  stat.Mean(sims, nil),
		Min:   floats.Min(sims),
		Max:   floats.Max(sims),
		Pairs: len(sims),
	}
}

// speakerFromName extracts the speaker from a file name like
// "2026_02_08_19_00_38_alice_8b62a440.wav". It returns "" when the name
// has no underscore.
func speakerFromName(p string) string {
	name := path.Base(strings.ReplaceAll(p, `\`, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
