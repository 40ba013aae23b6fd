package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/voicematch/pkg/cli"
	"github.com/haivivi/voicematch/pkg/voiceprint"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <audio1> <audio2>",
	Short: "Decide whether two clips come from the same speaker",
	Long: `Embed both clips and compare the embeddings by cosine similarity.
The clips match when the similarity is strictly above the threshold.

Examples:
  voicematch verify --model ecapa.onnx a.wav b.wav
  voicematch verify --threshold 0.75 --stats stats.msgpack a.flac s3://clips/b.mp3`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	addPipelineFlags(verifyCmd, true)
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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
	res, err := v.Verify(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return printResult(verifyView{*res})
}

type verifyView struct {
	voiceprint.Result `yaml:",inline"`
}

func (v verifyView) Table() ([]string, [][]string) {
	return []string{"clip 1", "clip 2", "similarity", "threshold", "verdict"}, [][]string{{
		displayName(v.Path1),
		displayName(v.Path2),
		cli.FormatSimilarity(v.Similarity),
		cli.FormatSimilarity(v.Threshold),
		cli.VerdictText(v.Match),
	}}
}
