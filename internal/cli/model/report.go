package model

import (
	"strings"
	"time"
)

// Kind is the reconciled classification of a stored file.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// Report is the backend-owned record referencing an uploaded asset.
type Report struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	FileURL      string    `json:"fileUrl"`
	FilePublicID string    `json:"filePublicId"`
	FileType     Kind      `json:"fileType"`
	DateTaken    string    `json:"dateTaken"`
	Tags         []string  `json:"tags"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// AIInsight is the analysis attached to a report by the backend.
type AIInsight struct {
	ID                string            `json:"_id,omitempty"`
	LanguageSummaries map[string]string `json:"languageSummaries,omitempty"`
	Assessment        string            `json:"assessment,omitempty"`
}

// ReportDetail is the response of GET /api/reports/{id}.
type ReportDetail struct {
	Report    Report     `json:"report"`
	AIInsight *AIInsight `json:"aiInsight,omitempty"`
}

// Page is one extracted page of a multi-page document.
type Page struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
	Page     int    `json:"page,omitempty"`
}

// LocalReport — запись локального кэша созданных отчётов (SQLite).
type LocalReport struct {
	ID           string `gorm:"primaryKey"`
	ReportID     string `gorm:"uniqueIndex;not null"`
	Title        string `gorm:"not null"`
	FileURL      string
	FilePublicID string
	FileType     string
	DateTaken    string
	Tags         string // через запятую
	CreatedAt    time.Time
}

// NewLocalReport maps a backend report into a cache row without an ID.
func NewLocalReport(r Report) LocalReport {
	return LocalReport{
		ReportID:     r.ID,
		Title:        r.Title,
		FileURL:      r.FileURL,
		FilePublicID: r.FilePublicID,
		FileType:     string(r.FileType),
		DateTaken:    r.DateTaken,
		Tags:         strings.Join(r.Tags, ","),
	}
}
