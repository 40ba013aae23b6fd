// Package resampler converts mono float32 waveforms between sample rates
// using the pure Go polyphase resampler from
// github.com/tphakala/go-audio-resampling (no cgo).
//
// The output of Resample always holds exactly ceil(len(in)*dst/src)
// samples, so the duration of a clip is preserved across rates:
//
//	out, err := resampler.Resample(samples, 44100, 16000)
package resampler
