package pivot

import (
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/internal/models"
)

const (
	NoResultsNotice = "No timetables could be generated with the current constraints and data. Please adjust your inputs."
	NoBatchesNotice = "No batches found in the generated timetable."

	perfectText = "This is a perfect timetable with no hard conflicts."
	reviewText  = "This timetable has some soft conflicts. Review carefully."
)

// Pipeline turns a ranked result set into the rendered result area.
type Pipeline struct {
	axes   Axes
	logger *zap.Logger
}

// NewPipeline builds a pipeline over the given axes.
func NewPipeline(axes Axes, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{axes: axes, logger: logger}
}

// Axes returns the grid axes the pipeline renders against.
func (p *Pipeline) Axes() Axes {
	return p.axes
}

// Build keeps the server's order of results; it never re-sorts them.
func (p *Pipeline) Build(results []models.GenerationResult) dto.ResultsView {
	if len(results) == 0 {
		return dto.ResultsView{Notice: &dto.Notice{Level: dto.NoticeInfo, Text: NoResultsNotice}}
	}

	options := make([]dto.OptionView, 0, len(results))
	for _, result := range results {
		option := dto.OptionView{
			Option:  result.Option,
			Fitness: result.Fitness,
			Badge:   BadgeFor(result.Fitness),
		}
		grids := Pivot(result.Timetable, p.axes)
		if len(grids) == 0 {
			option.Notice = &dto.Notice{Level: dto.NoticeWarning, Text: NoBatchesNotice}
		} else {
			option.Grids = grids
		}
		for _, grid := range grids {
			if n := len(grid.Unplaced); n > 0 {
				p.logger.Warn("classes outside the grid axes",
					zap.Int("option", result.Option),
					zap.String("batch", grid.Batch),
					zap.Int("count", n),
				)
			}
		}
		options = append(options, option)
	}
	return dto.ResultsView{Options: options}
}

// BadgeFor maps a fitness score to its verdict: exactly zero is perfect,
// anything above asks for review.
func BadgeFor(fitness int) dto.Badge {
	if fitness == 0 {
		return dto.Badge{Kind: dto.BadgePerfect, Text: perfectText}
	}
	return dto.Badge{Kind: dto.BadgeReview, Text: reviewText}
}

// GridCount totals the batch grids of a results view.
func GridCount(view dto.ResultsView) int {
	n := 0
	for _, option := range view.Options {
		n += len(option.Grids)
	}
	return n
}
