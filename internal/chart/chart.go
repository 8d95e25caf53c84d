package chart

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rickgao/coinanalysis/internal/model"
)

// HistorySource supplies the price series to draw. *market.Snapshot implements it.
type HistorySource interface {
	Name() string
	Pair() model.TradingPair
	PriceTimeSeries(ctx context.Context) ([]model.PricePoint, error)
}

// Options controls rendering.
type Options struct {
	Window int     // Rolling mean window in trades; <= 1 disables the overlay
	Width  float64 // Inches
	Height float64 // Inches
	Output string  // Image path; the extension selects the format
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Width:  10,
		Height: 5,
		Output: "price.png",
	}
}

var (
	priceColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	meanColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Render draws price over time for src and saves it to opts.Output.
func Render(ctx context.Context, src HistorySource, opts Options) error {
	if opts.Output == "" {
		return errors.New("render chart: output path is required")
	}
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}

	points, err := src.PriceTimeSeries(ctx)
	if err != nil {
		return fmt.Errorf("render chart %s: %w", src.Name(), err)
	}
	if len(points) == 0 {
		return fmt.Errorf("render chart %s: no trade history", src.Name())
	}

	// The exchange lists trades newest first.
	points = slices.Clone(points)
	slices.SortStableFunc(points, func(a, b model.PricePoint) int {
		return a.Time.Compare(b.Time)
	})

	p := plot.New()
	p.Title.Text = src.Name()
	p.X.Label.Text = "Time"
	p.Y.Label.Text = fmt.Sprintf("Price [%s]", src.Pair().Basis)
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02\n15:04"}
	p.Add(plotter.NewGrid())

	price, err := plotter.NewLine(toXYs(points))
	if err != nil {
		return fmt.Errorf("render chart %s: %w", src.Name(), err)
	}
	price.Color = priceColor
	p.Add(price)
	p.Legend.Add("Price", price)

	if opts.Window > 1 {
		if smoothed := RollingMean(points, opts.Window); len(smoothed) > 0 {
			mean, err := plotter.NewLine(toXYs(smoothed))
			if err != nil {
				return fmt.Errorf("render chart %s: %w", src.Name(), err)
			}
			mean.Color = meanColor
			mean.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(mean)
			p.Legend.Add(fmt.Sprintf("Mean (%d)", opts.Window), mean)
		}
	}
	p.Legend.Top = true

	if err := p.Save(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, opts.Output); err != nil {
		return fmt.Errorf("save chart %s: %w", opts.Output, err)
	}
	return nil
}

// RollingMean returns the trailing mean over window points. The first output point
// corresponds to input index window-1. window <= 1 returns points unchanged.
func RollingMean(points []model.PricePoint, window int) []model.PricePoint {
	if window <= 1 {
		return points
	}
	if len(points) < window {
		return []model.PricePoint{}
	}

	prices := make([]float64, len(points))
	for i, pt := range points {
		prices[i] = pt.Price.InexactFloat64()
	}

	out := make([]model.PricePoint, 0, len(points)-window+1)
	for i := window - 1; i < len(points); i++ {
		mean := stat.Mean(prices[i-window+1:i+1], nil)
		out = append(out, model.PricePoint{
			Time:  points[i].Time,
			Price: decimal.NewFromFloat(mean),
		})
	}
	return out
}

func toXYs(points []model.PricePoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Time.Unix()) + float64(pt.Time.Nanosecond())/1e9
		xys[i].Y = pt.Price.InexactFloat64()
	}
	return xys
}
