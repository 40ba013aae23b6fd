// Package audio is the umbrella for the audio front end of speaker
// verification:
//
//   - codec: WAV, MP3 and FLAC decoding to mono float32 samples
//   - resampler: sample rate conversion
//   - loader: path to Waveform at the pipeline rate
//   - waveform: fixed-length segment selection
//   - feature: log-mel and log-spectrogram feature matrices
//
// Example usage:
//
//	import (
//	    "github.com/haivivi/voicematch/pkg/audio/feature"
//	    "github.com/haivivi/voicematch/pkg/audio/loader"
//	    "github.com/haivivi/voicematch/pkg/audio/waveform"
//	)
//
//	l := loader.New(store)
//	w, err := l.Load(ctx, "clip.wav")
//	w = waveform.Select(w, 3, waveform.ModeInfer, nil)
//
//	ext, err := feature.New(feature.DefaultConfig(feature.MelSpectrogram))
//	m, err := ext.Extract(w)
package audio
