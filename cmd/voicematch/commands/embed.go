package commands

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

var embedCmd = &cobra.Command{
	Use:   "embed <audio>",
	Short: "Print the speaker embedding of a clip",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	addPipelineFlags(embedCmd, true)
	rootCmd.AddCommand(embedCmd)
}

type embedding struct {
	Path      string    `json:"path" yaml:"path"`
	Dimension int       `json:"dimension" yaml:"dimension"`
	Norm      float64   `json:"norm" yaml:"norm"`
	Embedding []float32 `json:"embedding" yaml:"embedding,flow"`
}

func runEmbed(cmd *cobra.Command, args []string) error {
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
	emb, err := v.Embed(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	wide := make([]float64, len(emb))
	for i, x := range emb {
		wide[i] = float64(x)
	}
	return printResult(embedding{
		Path:      args[0],
		Dimension: len(emb),
		Norm:      floats.Norm(wide, 2),
		Embedding: emb,
	})
}
