package view

import (
	"encoding/json"
	"strings"

	"HealthMate/internal/cli/model"
)

// ReportCard — DTO для отображения отчёта в CLI.
type ReportCard struct {
	ID        string
	Title     string
	Kind      string // PDF | IMAGE
	DateTaken string
	Tags      string
	FileURL   string
	Summary   string
}

// NewReportCard builds the display form of a report detail in the given language.
func NewReportCard(d model.ReportDetail, lang string) ReportCard {
	return ReportCard{
		ID:        d.Report.ID,
		Title:     d.Report.Title,
		Kind:      strings.ToUpper(string(d.Report.FileType)),
		DateTaken: d.Report.DateTaken,
		Tags:      strings.Join(d.Report.Tags, ", "),
		FileURL:   d.Report.FileURL,
		Summary:   PlainSummary(d.AIInsight, lang),
	}
}

// PlainSummary returns the human-readable summary of an insight.
// The language falls back to "en". The model sometimes returns the whole
// insight as a JSON string, in which case the nested summary (or the
// assessment) is unwrapped.
func PlainSummary(insight *model.AIInsight, lang string) string {
	if insight == nil {
		return ""
	}
	text := strings.TrimSpace(pick(insight.LanguageSummaries, lang))
	if text == "" {
		return ""
	}
	var nested model.AIInsight
	if err := json.Unmarshal([]byte(text), &nested); err == nil {
		if inner := pick(nested.LanguageSummaries, lang); inner != "" {
			return inner
		}
		if nested.Assessment != "" {
			return nested.Assessment
		}
	}
	return text
}

func pick(m map[string]string, lang string) string {
	if s := m[lang]; s != "" {
		return s
	}
	return m["en"]
}
