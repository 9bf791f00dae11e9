package model

import "encoding/json"

// Grant is a short-lived, server-issued authorization for one upload to the object store.
type Grant struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Timestamp Number `json:"timestamp"`
	Signature string `json:"signature"`
	Folder    string `json:"folder"`
}

// Number keeps a JSON number or numeric string verbatim (timestamps come as either).
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = Number(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num.String())
	return nil
}

func (n Number) String() string { return string(n) }

// StoredAsset is the object store response to a successful upload.
type StoredAsset struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	Pages     int    `json:"pages,omitempty"`
}

// ExtractPagesRequest asks the backend to split an asset into addressable pages.
type ExtractPagesRequest struct {
	FilePublicID string `json:"filePublicId"`
	FileURL      string `json:"fileUrl"`
	Folder       string `json:"folder"`
	Pages        int    `json:"pages"`
	Tag          string `json:"tag"`
}

// CreateReportRequest is the body of POST /api/reports/upload.
type CreateReportRequest struct {
	Title        string   `json:"title"`
	FileURL      string   `json:"fileUrl"`
	FilePublicID string   `json:"filePublicId"`
	FileType     Kind     `json:"fileType"`
	DateTaken    string   `json:"dateTaken"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
	Analyze      bool     `json:"analyze"`
}
