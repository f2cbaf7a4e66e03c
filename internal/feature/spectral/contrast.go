package spectral

import (
	"math"
	"slices"
)

// ContrastOptions configures octave-band spectral contrast.
type ContrastOptions struct {
	MinHz    float64 // upper edge of the first band
	Bands    int     // octave bands above MinHz; one more band covers [0, MinHz]
	Quantile float64 // fraction of a band averaged for its peak and valley
	TopDB    float64 // dynamic range kept below the loudest peak and valley
}

// DefaultContrast returns 6 octaves from 200 Hz, 2% quantiles and an 80 dB floor.
func DefaultContrast() ContrastOptions {
	return ContrastOptions{MinHz: 200, Bands: 6, Quantile: 0.02, TopDB: 80}
}

const amin = 1e-10

// Contrast returns, per frame, the mean over bands of the dB difference between band peaks and valleys.
func Contrast(magnitude [][]float64, freqs []float64, opts ContrastOptions) []float64 {
	bands := contrastBands(freqs, opts)

	peaks := make([][]float64, len(bands))
	valleys := make([][]float64, len(bands))

	sorted := make([]float64, 0, len(freqs))

	for b, band := range bands {
		peaks[b] = make([]float64, len(magnitude))
		valleys[b] = make([]float64, len(magnitude))

		if band.lo >= band.hi {
			continue
		}

		take := max(int(math.RoundToEven(opts.Quantile*float64(band.count))), 1)
		take = min(take, band.hi-band.lo)

		for t, bins := range magnitude {
			sorted = append(sorted[:0], bins[band.lo:band.hi]...)
			slices.Sort(sorted)

			valleys[b][t] = mean(sorted[:take])
			peaks[b][t] = mean(sorted[len(sorted)-take:])
		}
	}

	toDB(peaks, opts.TopDB)
	toDB(valleys, opts.TopDB)

	out := make([]float64, len(magnitude))

	for t := range magnitude {
		var sum float64
		for b := range bands {
			sum += peaks[b][t] - valleys[b][t]
		}

		out[t] = sum / float64(len(bands))
	}

	return out
}

type contrastBand struct {
	lo, hi int // bins [lo, hi) that are sorted
	count  int // bins selected before the upper edge is dropped, sizes the quantile
}

func contrastBands(freqs []float64, opts ContrastOptions) []contrastBand {
	edges := make([]float64, opts.Bands+2)
	for k := 1; k < len(edges); k++ {
		edges[k] = opts.MinHz * math.Pow(2, float64(k-1))
	}

	bands := make([]contrastBand, 0, opts.Bands+1)

	for k := range opts.Bands + 1 {
		lo, hi := -1, -1

		for bin, freq := range freqs {
			if freq >= edges[k] && freq <= edges[k+1] {
				if lo < 0 {
					lo = bin
				}

				hi = bin + 1
			}
		}

		if lo < 0 {
			bands = append(bands, contrastBand{})

			continue
		}

		// Bands share their boundary bin with the band below.
		if k > 0 && lo > 0 {
			lo--
		}

		// The top band runs to Nyquist.
		if k == opts.Bands {
			hi = len(freqs)
		}

		band := contrastBand{lo: lo, hi: hi, count: hi - lo}
		if k < opts.Bands && band.hi-band.lo > 1 {
			band.hi--
		}

		bands = append(bands, band)
	}

	return bands
}

// toDB converts magnitudes in place to dB and clips them to topDB below the overall maximum.
func toDB(values [][]float64, topDB float64) {
	peak := math.Inf(-1)

	for _, row := range values {
		for i, v := range row {
			row[i] = 10 * math.Log10(max(v, amin))
			peak = max(peak, row[i])
		}
	}

	if topDB <= 0 || math.IsInf(peak, -1) {
		return
	}

	floor := peak - topDB

	for _, row := range values {
		for i := range row {
			row[i] = max(row[i], floor)
		}
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
