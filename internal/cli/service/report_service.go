package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"HealthMate/internal/cli/model"
	"HealthMate/internal/cli/repo"
	"HealthMate/internal/cli/upload"
)

// ReportAPI is the reports part of the backend.
type ReportAPI interface {
	GetReport(ctx context.Context, id string) (*model.ReportDetail, error)
	ListReports(ctx context.Context, limit, page int) ([]model.Report, error)
	AnalyzeReport(ctx context.Context, id string) error
	DeleteReport(ctx context.Context, id string) error
	Feedback(ctx context.Context, id string, liked bool) error
	Pages(ctx context.Context, filePublicID string) ([]model.Page, error)
	ComposePDF(ctx context.Context, tag string) (string, error)
}

// Uploader runs the upload pipeline.
type Uploader interface {
	Run(ctx context.Context, c upload.Candidate) (*upload.Result, error)
}

// ReportService — работа с отчётами: загрузка, просмотр, анализ, локальный кэш.
type ReportService struct {
	api      ReportAPI
	uploader Uploader
	cache    repo.ReportRepository
	log      *zap.SugaredLogger
}

// NewReportService returns the service. cache may be nil.
func NewReportService(a ReportAPI, u Uploader, cache repo.ReportRepository, log *zap.SugaredLogger) *ReportService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ReportService{api: a, uploader: u, cache: cache, log: log}
}

// Upload runs the pipeline and remembers the created report locally.
// A cache failure never fails the upload.
func (s *ReportService) Upload(ctx context.Context, c upload.Candidate) (*upload.Result, error) {
	res, err := s.uploader.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveReport(ctx, *res.Report); err != nil {
			s.log.Warnw("report cache: save failed", "report_id", res.Report.ID, "err", err)
		}
	}
	return res, nil
}

// Get returns the report with its AI insight.
func (s *ReportService) Get(ctx context.Context, id string) (*model.ReportDetail, error) {
	return s.api.GetReport(ctx, id)
}

// List returns one page of remote reports.
func (s *ReportService) List(ctx context.Context, limit, page int) ([]model.Report, error) {
	return s.api.ListReports(ctx, limit, page)
}

// Recent returns the locally cached reports, newest first.
func (s *ReportService) Recent(ctx context.Context, limit int) ([]model.LocalReport, error) {
	if s.cache == nil {
		return nil, errors.New("local cache is not configured")
	}
	return s.cache.ListReports(ctx, limit)
}

func (s *ReportService) Analyze(ctx context.Context, id string) error {
	return s.api.AnalyzeReport(ctx, id)
}

// Delete removes the report remotely, then from the local cache.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteReport(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.DeleteReport(ctx, id); err != nil {
			s.log.Warnw("report cache: delete failed", "report_id", id, "err", err)
		}
	}
	return nil
}

func (s *ReportService) Feedback(ctx context.Context, id string, liked bool) error {
	return s.api.Feedback(ctx, id, liked)
}

// Pages lists the extracted pages of a report's file. No pages is not an error.
func (s *ReportService) Pages(ctx context.Context, id string) ([]model.Page, error) {
	d, err := s.api.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Report.FilePublicID == "" {
		return nil, nil
	}
	return s.api.Pages(ctx, d.Report.FilePublicID)
}

// ComposePDF joins the extracted pages of a report back into one PDF.
func (s *ReportService) ComposePDF(ctx context.Context, id string) (string, error) {
	d, err := s.api.GetReport(ctx, id)
	if err != nil {
		return "", err
	}
	if d.Report.FilePublicID == "" {
		return "", errors.New("report has no stored file")
	}
	return s.api.ComposePDF(ctx, upload.PagesTag(d.Report.FilePublicID))
}
