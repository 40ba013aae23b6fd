// Package dataset reads training manifests, turns manifest entries into
// feature samples, and collates samples into zero-padded batches.
//
// A manifest is a text file with one "<audio path>\t<integer label>" entry
// per line:
//
//	data/spk001/utt1.wav	0
//	data/spk002/utt1.wav	1
//
// Collate sorts samples by descending frame count, pads every sample on the
// right along the time axis to the longest one, and records the true
// lengths so downstream consumers can mask the padding.
package dataset
