package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
	"github.com/noah-isme/intern-progress-api/pkg/export"
)

// Export formats supported by the rating list.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var ratingHeaders = []string{"Rank", "Name", "Branch", "Grade", "Average stars", "Activity", "Plan %", "Lessons", "Feedbacks", "Rating"}

type ratingSource interface {
	RatingInputs(ctx context.Context, monthStart, monthEnd time.Time) ([]models.RatingInput, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Body        []byte
	ContentType string
	Filename    string
}

// RatingService ranks interns and branches by composite rating.
type RatingService struct {
	source ratingSource
	engine *progression.Engine
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
	now    func() time.Time
}

// NewRatingService constructs the rating service.
func NewRatingService(source ratingSource, engine *progression.Engine, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = progression.NewEngine(nil, nil, "", "", progression.DefaultVisitPolicy())
	}
	return &RatingService{
		source: source,
		engine: engine,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
		now:    time.Now,
	}
}

// List ranks every intern using the current month's activity.
func (s *RatingService) List(ctx context.Context) (*progression.RatingList, error) {
	monthStart := s.engine.Calendar.StartOfMonth(s.now())
	inputs, err := s.source.RatingInputs(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, wrapInternal(err, "failed to load rating inputs")
	}
	list, err := s.engine.Rank(inputs)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrConfigIntegrity) {
			s.logger.Error("rating aborted on unknown grade", zap.Error(err))
		}
		return nil, passThrough(err, "failed to rank interns")
	}
	return &list, nil
}

// Export renders the intern rating list as CSV or PDF.
func (s *RatingService) Export(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: ratingHeaders, Rows: make([]map[string]string, 0, len(list.Interns))}
	for i, e := range list.Interns {
		data.Rows = append(data.Rows, map[string]string{
			"Rank":          fmt.Sprintf("%d", i+1),
			"Name":          e.Name,
			"Branch":        e.Branch,
			"Grade":         string(e.Grade),
			"Average stars": fmt.Sprintf("%.2f", e.AverageStars),
			"Activity":      fmt.Sprintf("%.2f", e.ActivityRate),
			"Plan %":        fmt.Sprintf("%.1f", e.PlanCompletion),
			"Lessons":       fmt.Sprintf("%d", e.Lessons),
			"Feedbacks":     fmt.Sprintf("%d", e.Feedbacks),
			"Rating":        fmt.Sprintf("%.2f", e.RatingScore),
		})
	}

	stamp := s.now().In(s.engine.Calendar.Location()).Format("20060102")
	if format == FormatPDF {
		body, err := s.pdf.Render(data, "Intern rating")
		if err != nil {
			return nil, wrapInternal(err, "failed to render rating list")
		}
		return &ExportFile{Body: body, ContentType: "application/pdf", Filename: "rating-" + stamp + ".pdf"}, nil
	}
	body, err := s.csv.Render(data)
	if err != nil {
		return nil, wrapInternal(err, "failed to render rating list")
	}
	return &ExportFile{Body: body, ContentType: "text/csv; charset=utf-8", Filename: "rating-" + stamp + ".csv"}, nil
}
