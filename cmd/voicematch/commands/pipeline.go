package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/haivivi/voicematch/pkg/audio/feature"
	"github.com/haivivi/voicematch/pkg/audio/loader"
	"github.com/haivivi/voicematch/pkg/cli"
	"github.com/haivivi/voicematch/pkg/storage"
	"github.com/haivivi/voicematch/pkg/voiceprint"
)

// hashSeed fixes the voice hash projection so hashes are comparable across
// runs.
const hashSeed = 0x766f6963

// Pipeline flags, shared by the commands that load audio.
var (
	flagModel      string
	flagStats      string
	flagThreshold  float64
	flagDuration   float64
	flagMethod     string
	flagSampleRate int
)

// addAudioFlags adds the loading and feature flags.
func addAudioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&flagDuration, "duration", 0, "segment length in seconds (default from config)")
	f.StringVar(&flagMethod, "method", "", "feature method: melspectrogram, spectrogram")
	f.IntVar(&flagSampleRate, "sample-rate", 0, "pipeline sample rate in Hz")
}

// addPipelineFlags adds the audio flags plus the stats flag, and the model
// flags when withModel is set.
func addPipelineFlags(cmd *cobra.Command, withModel bool) {
	addAudioFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&flagStats, "stats", "", "global normalization statistics file")
	if withModel {
		f.StringVar(&flagModel, "model", "", "ONNX speaker embedding model")
		f.Float64Var(&flagThreshold, "threshold", 0, "match threshold (default from config)")
	}
}

// resolveConfig returns a copy of the global config with flag overrides.
func resolveConfig(cmd *cobra.Command) (*cli.Config, error) {
	global, err := GetConfig()
	if err != nil {
		return nil, err
	}
	cfg := *global
	f := cmd.Flags()
	if f.Changed("model") {
		cfg.Model.Path = flagModel
	}
	if f.Changed("stats") {
		cfg.Stats = flagStats
	}
	if f.Changed("threshold") {
		cfg.Threshold = flagThreshold
	}
	if f.Changed("duration") {
		cfg.Duration = flagDuration
	}
	if f.Changed("method") {
		cfg.Method = flagMethod
	}
	if f.Changed("sample-rate") {
		cfg.SampleRate = flagSampleRate
	}
	return &cfg, nil
}

// pipeline holds the components built from a resolved config.
type pipeline struct {
	cfg       *cli.Config
	store     storage.FileStore
	loader    *loader.Loader
	extractor *feature.Extractor
	stats     *feature.Stats
	model     voiceprint.Model
}

// newPipeline builds the store, loader, extractor and stats. The model is
// opened only when withModel is set. paths are the audio or manifest
// arguments; any s3:// path enables the S3 client.
func newPipeline(ctx context.Context, cfg *cli.Config, withModel bool, paths ...string) (*pipeline, error) {
	store, err := newStore(ctx, cfg, paths...)
	if err != nil {
		return nil, err
	}

	method, err := feature.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	fc := feature.DefaultConfig(method)
	if cfg.SampleRate > 0 {
		fc.SampleRate = cfg.SampleRate
	}
	ext, err := feature.New(fc)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:       cfg,
		store:     store,
		loader:    loader.New(store, loader.WithSampleRate(fc.SampleRate), loader.WithLogger(slog.Default())),
		extractor: ext,
	}

	if cfg.Stats != "" {
		p.stats, err = loadStats(ctx, store, cfg.Stats)
		if err != nil {
			return nil, err
		}
		if p.stats.Method != method {
			return nil, fmt.Errorf("stats %s were computed for %s, pipeline uses %s", cfg.Stats, p.stats.Method, method)
		}
	}

	if withModel {
		p.model, err = openModel(cfg.Model)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// verifier wraps the pipeline into a Verifier.
func (p *pipeline) verifier() (*voiceprint.Verifier, error) {
	return voiceprint.NewVerifier(voiceprint.VerifierConfig{
		Loader:    p.loader,
		Extractor: p.extractor,
		Model:     p.model,
		Stats:     p.stats,
		Duration:  p.cfg.Duration,
		Threshold: p.cfg.Threshold,
		Logger:    slog.Default(),
	})
}

func (p *pipeline) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

func newStore(ctx context.Context, cfg *cli.Config, paths ...string) (storage.FileStore, error) {
	local, err := storage.NewLocal(".")
	if err != nil {
		return nil, err
	}
	needS3 := cfg.S3.Region != "" || cfg.S3.Endpoint != ""
	for _, p := range paths {
		if storage.IsS3URI(p) {
			needS3 = true
		}
	}
	if !needS3 {
		return storage.NewMux(local, nil), nil
	}
	client, err := newS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return storage.NewMux(local, client), nil
}

func newS3Client(ctx context.Context, c cli.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	}), nil
}

func loadStats(ctx context.Context, store storage.FileStore, path string) (*feature.Stats, error) {
	r, err := store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open stats: %w", err)
	}
	defer r.Close()
	s, err := feature.LoadStats(r)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", path, err)
	}
	return s, nil
}

func openModel(mc cli.ModelConfig) (voiceprint.Model, error) {
	if mc.Path == "" {
		return nil, errors.New("no model configured: set model.path in the config or pass --model")
	}
	layout, err := voiceprint.ParseLayout(mc.Layout)
	if err != nil {
		return nil, err
	}
	opts := []voiceprint.ONNXModelOption{
		voiceprint.WithONNXLayout(layout),
		voiceprint.WithONNXTensorNames(mc.Input, mc.Output),
	}
	if mc.Library != "" {
		opts = append(opts, voiceprint.WithONNXLibrary(mc.Library))
	}
	if mc.Dim > 0 {
		opts = append(opts, voiceprint.WithONNXEmbeddingDim(mc.Dim))
	}
	return voiceprint.NewONNXModel(mc.Path, opts...)
}

// openRegistry opens the badger-backed registry. The caller closes the
// returned store.
func openRegistry(cfg *cli.Config, dim int) (*voiceprint.Registry, voiceprint.Store, error) {
	dir, err := cfg.ResolveRegistryDir()
	if err != nil {
		return nil, nil, err
	}
	store, err := voiceprint.NewBadgerStore(voiceprint.BadgerOptions{
		Dir:    dir,
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open registry %s: %w", dir, err)
	}

	opts := []voiceprint.RegistryOption{voiceprint.WithIdentifyThreshold(cfg.Threshold)}
	if cfg.HashBits > 0 && dim > 0 {
		h, err := voiceprint.NewHasher(dim, cfg.HashBits, hashSeed)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		opts = append(opts, voiceprint.WithHasher(h))
	}
	return voiceprint.NewRegistry(store, opts...), store, nil
}

// displayName shortens a clip path for table output.
func displayName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 && i < len(p)-1 {
		return p[i+1:]
	}
	return p
}
