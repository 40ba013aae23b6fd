package commands

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/voicematch/pkg/cli"
	"github.com/haivivi/voicematch/pkg/voiceprint"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <speaker> <audio>...",
	Short: "Add labeled clips to the speaker registry",
	Long: `Embed each clip and store it as an enrollment of the speaker. The
registry is a badger database under registry_dir (default: the voicematch
config directory).

Examples:
  voicematch enroll alice alice1.wav alice2.flac`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

var identifyCmd = &cobra.Command{
	Use:   "identify <audio>",
	Short: "Find the closest enrolled speaker",
	Long: `Embed the clip and compare it with the centroid of every enrolled
speaker. The best speaker matches when its similarity is above the
threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

var speakersCmd = &cobra.Command{
	Use:   "speakers",
	Short: "List enrolled speakers",
	Args:  cobra.NoArgs,
	RunE:  runSpeakers,
}

var speakersRemoveCmd = &cobra.Command{
	Use:   "remove <speaker>",
	Short: "Remove every enrollment of a speaker",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpeakersRemove,
}

func init() {
	addPipelineFlags(enrollCmd, true)
	addPipelineFlags(identifyCmd, true)

	speakersCmd.AddCommand(speakersRemoveCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(speakersCmd)
}

type enrollmentList []voiceprint.Enrollment

func (l enrollmentList) Table() ([]string, [][]string) {
	rows := make([][]string, len(l))
	for i, e := range l {
		voice := ""
		if e.Hash != "" {
			voice = voiceprint.VoiceLabel(e.Hash)
		}
		rows[i] = []string{e.Speaker, e.ID, voice, displayName(e.Source), e.CreatedAt.Format(time.DateTime)}
	}
	return []string{"speaker", "id", "voice", "source", "created"}, rows
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	speaker, clips := args[0], args[1:]

	p, err := newPipeline(ctx, cfg, true, clips...)
	if err != nil {
		return err
	}
	defer p.Close()
	v, err := p.verifier()
	if err != nil {
		return err
	}

	embs := make([][]float32, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range clips {
		g.Go(func() (err error) {
			embs[i], err = v.Embed(gctx, c)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	reg, store, err := openRegistry(cfg, len(embs[0]))
	if err != nil {
		return err
	}
	defer store.Close()

	out := make(enrollmentList, 0, len(clips))
	for i, c := range clips {
		e, err := reg.Enroll(ctx, speaker, c, embs[i])
		if err != nil {
			return err
		}
		out = append(out, *e)
	}
	return printResult(out)
}

type identifyView struct {
	voiceprint.Identification `yaml:",inline"`
}

func (v identifyView) Table() ([]string, [][]string) {
	rows := make([][]string, len(v.Scores))
	for i, s := range v.Scores {
		verdict := ""
		if i == 0 {
			verdict = cli.VerdictText(v.Match)
		}
		rows[i] = []string{s.Speaker, cli.FormatSimilarity(s.Similarity), strconv.Itoa(s.Enrollments), verdict}
	}
	return []string{"speaker", "similarity", "enrollments", "verdict"}, rows
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p, err := newPipeline(ctx, cfg, true, args...)
	if err != nil {
		return err
	}
	defer p.Close()
	v, err := p.verifier()
	if err != nil {
		return err
	}
	emb, err := v.Embed(ctx, args[0])
	if err != nil {
		return err
	}

	reg, store, err := openRegistry(cfg, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := reg.Identify(ctx, emb)
	if err != nil {
		return err
	}
	return printResult(identifyView{*id})
}

type speakerInfo struct {
	Speaker     string `json:"speaker" yaml:"speaker"`
	Enrollments int    `json:"enrollments" yaml:"enrollments"`
}

type speakerList []speakerInfo

func (l speakerList) Table() ([]string, [][]string) {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{s.Speaker, strconv.Itoa(s.Enrollments)}
	}
	return []string{"speaker", "enrollments"}, rows
}

func runSpeakers(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	reg, store, err := openRegistry(cfg, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := reg.Speakers(ctx)
	if err != nil {
		return err
	}
	out := make(speakerList, 0, len(names))
	for _, name := range names {
		es, err := reg.Enrollments(ctx, name)
		if err != nil {
			return err
		}
		out = append(out, speakerInfo{Speaker: name, Enrollments: len(es)})
	}
	return printResult(out)
}

func runSpeakersRemove(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	reg, store, err := openRegistry(cfg, 0)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := reg.Remove(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("speaker %q is not enrolled", args[0])
	}
	return printResult(speakerInfo{Speaker: args[0], Enrollments: n})
}
