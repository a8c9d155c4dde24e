package mash

import (
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/dataset"
)

// Header is the column order of the distance table.
var Header = []string{"baps_acc", "min_dist_to_genophi_train", "approx_ani"}

// Fixed6 is a float written with six decimals.
type Fixed6 float64

// MarshalCSV renders the value with six decimals.
func (f Fixed6) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 6, 64), nil
}

// Distance is one row of the output table.
type Distance struct {
	Accession string `csv:"baps_acc"`
	MinDist   Fixed6 `csv:"min_dist_to_genophi_train"`
	ApproxANI Fixed6 `csv:"approx_ani"`
}

// Write stores the distance table as CSV at path.
func (r *Result) Write(fs afero.Fs, path string) error {
	return dataset.WriteAtomic(fs, path, func(w io.Writer) error {
		return dataset.MarshalDelimited(w, r.Distances, Header, ',')
	})
}

// Summary describes the distribution of minimum distances.
type Summary struct {
	N    int
	Min  float64
	P25  float64
	P50  float64
	P75  float64
	Max  float64
	Mean float64
}

// Summarize computes the distance summary. Quartiles use the nearest-rank
// method so they are always observed distances. ok is false when there are
// no distances.
func (r *Result) Summarize() (summary Summary, ok bool, err error) {
	if len(r.Distances) == 0 {
		return Summary{}, false, nil
	}

	data := make(stats.Float64Data, len(r.Distances))
	for i, d := range r.Distances {
		data[i] = float64(d.MinDist)
	}

	summary.N = len(data)
	if summary.Min, err = stats.Min(data); err != nil {
		return Summary{}, false, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return Summary{}, false, err
	}
	if summary.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, false, err
	}
	if summary.P25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return Summary{}, false, err
	}
	if summary.P50, err = stats.Median(data); err != nil {
		return Summary{}, false, err
	}
	if summary.P75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return Summary{}, false, err
	}
	return summary, true, nil
}
