package report

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Plot draws a bar chart of the number of variants of each amplicon. The
// image format follows the file extension.
func Plot(file string, s Summary) error {
	if len(s.VariantsPerAmplicon) == 0 {
		return errors.New("no variants to plot")
	}
	names := make([]string, 0, len(s.VariantsPerAmplicon))
	for name := range s.VariantsPerAmplicon {
		names = append(names, name)
	}
	sort.Strings(names)
	vals := make(plotter.Values, len(names))
	for i := range names {
		vals[i] = float64(s.VariantsPerAmplicon[names[i]])
	}

	p := plot.New()
	p.Title.Text = "Variants per amplicon"
	p.Y.Label.Text = "Variants"
	bars, err := plotter.NewBarChart(vals, vg.Points(10))
	if err != nil {
		return errors.Wrap(err, "building bar chart")
	}
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.YAlign = -0.35
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.Font.Size = 6

	width := vg.Length(math.Max(15, float64(len(names))*0.4)) * vg.Centimeter
	return errors.Wrapf(p.Save(width, 12*vg.Centimeter, file), "saving %s", file)
}
