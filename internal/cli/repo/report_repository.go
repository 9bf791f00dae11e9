package repo

import (
	"context"

	"HealthMate/internal/cli/model"
)

// ReportRepository определяет порт локального кэша созданных отчётов.
type ReportRepository interface {
	// SaveReport сохраняет (или обновляет по ReportID) запись кэша.
	SaveReport(ctx context.Context, r model.Report) error

	// ListReports возвращает последние записи, новые первыми. limit <= 0 — без ограничения.
	ListReports(ctx context.Context, limit int) ([]model.LocalReport, error)

	// DeleteReport удаляет запись по идентификатору отчёта на сервере.
	DeleteReport(ctx context.Context, reportID string) error
}
