package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"HealthMate/internal/cli/model"
)

// SignedParams fetches a fresh upload grant. Grants are never cached.
func (c *Client) SignedParams(ctx context.Context) (model.Grant, error) {
	var g model.Grant
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/signed-params"}, &g); err != nil {
		return model.Grant{}, err
	}
	if g.CloudName == "" || g.Signature == "" {
		return model.Grant{}, fmt.Errorf("%w: incomplete upload grant", ErrMalformed)
	}
	return g, nil
}

// ExtractPages asks the backend to split an uploaded document into pages.
// The response body is not needed.
func (c *Client) ExtractPages(ctx context.Context, in model.ExtractPagesRequest) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/files/extract-pdf-pages", payload: in}, nil)
}

type reportEnvelope struct {
	Report *model.Report `json:"report"`
}

// CreateReport stores the report record; with Analyze set the backend runs the analysis before answering.
func (c *Client) CreateReport(ctx context.Context, in model.CreateReportRequest) (*model.Report, error) {
	var out reportEnvelope
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/reports/upload", payload: in}, &out); err != nil {
		return nil, err
	}
	if out.Report == nil || out.Report.ID == "" {
		return nil, fmt.Errorf("%w: report without id", ErrMalformed)
	}
	return out.Report, nil
}

// GetReport returns a report with its AI insight.
func (c *Client) GetReport(ctx context.Context, id string) (*model.ReportDetail, error) {
	var out model.ReportDetail
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/reports/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports returns one page of the user's reports.
func (c *Client) ListReports(ctx context.Context, limit, page int) ([]model.Report, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	var out struct {
		Items []model.Report `json:"items"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/reports", query: q}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AnalyzeReport re-runs the AI analysis of a report.
func (c *Client) AnalyzeReport(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/reports/" + url.PathEscape(id) + "/analyze"}, nil)
}

// DeleteReport removes a report on the backend.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/reports/" + url.PathEscape(id)}, nil)
}

// Feedback records whether the user found the analysis useful.
func (c *Client) Feedback(ctx context.Context, id string, liked bool) error {
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/reports/" + url.PathEscape(id) + "/feedback",
		payload: map[string]bool{"liked": liked},
	}, nil)
}

// Pages lists the extracted pages of an asset.
func (c *Client) Pages(ctx context.Context, filePublicID string) ([]model.Page, error) {
	var out struct {
		Items []model.Page `json:"items"`
	}
	q := url.Values{"filePublicId": {filePublicID}}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/files/pages", query: q}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ComposePDF joins the pages tagged with tag into one PDF and returns its URL.
func (c *Client) ComposePDF(ctx context.Context, tag string) (string, error) {
	var out struct {
		PDFURL string `json:"pdfUrl"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/files/compose-pdf", payload: map[string]string{"tag": tag}}, &out); err != nil {
		return "", err
	}
	if out.PDFURL == "" {
		return "", fmt.Errorf("%w: no pdf url", ErrMalformed)
	}
	return out.PDFURL, nil
}
