package feature

import "math"

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melFSP      = 200.0 / 3
	melMinLogHz = 1000.0
	melMinLog   = melMinLogHz / melFSP // 15
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLog + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melFSP
}

func melToHz(mel float64) float64 {
	if mel >= melMinLog {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLog))
	}
	return melFSP * mel
}

// periodicHann returns a periodic Hann window of length n.
func periodicHann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// melFilterBank builds numMels triangular filters over fftSize/2+1 bins
// spanning 0 Hz to sampleRate/2, each scaled to unit area (Slaney norm).
// Returns [numMels][fftSize/2+1].
func melFilterBank(numMels, fftSize, sampleRate int) [][]float64 {
	halfFFT := fftSize/2 + 1
	fmax := float64(sampleRate) / 2

	fftFreqs := make([]float64, halfFFT)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	// numMels + 2 points equally spaced on the mel scale.
	lo, hi := hzToMel(0), hzToMel(fmax)
	melF := make([]float64, numMels+2)
	for i := range melF {
		melF[i] = melToHz(lo + (hi-lo)*float64(i)/float64(numMels+1))
	}

	bank := make([][]float64, numMels)
	for m := range numMels {
		lower, center, upper := melF[m], melF[m+1], melF[m+2]
		enorm := 2 / (upper - lower)
		row := make([]float64, halfFFT)
		for k, f := range fftFreqs {
			rise := (f - lower) / (center - lower)
			fall := (upper - f) / (upper - center)
			if w := min(rise, fall); w > 0 {
				row[k] = w * enorm
			}
		}
		bank[m] = row
	}
	return bank
}
