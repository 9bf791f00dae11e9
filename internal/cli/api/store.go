package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"HealthMate/internal/cli/model"
)

// Resource types accepted by the object store upload API.
const (
	ResourceImage = "image"
	ResourceRaw   = "raw"
)

// Uploadable is a local file that can be streamed more than once.
type Uploadable interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// StoreClient uploads binaries directly to the external object store.
// It must not carry the backend bearer token.
type StoreClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewStoreClient returns a store client; timeout bounds each upload attempt.
func NewStoreClient(baseURL string, httpClient *http.Client, timeout time.Duration) *StoreClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StoreClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, timeout: timeout}
}

// Endpoint returns the upload URL for the given cloud and resource type.
func (s *StoreClient) Endpoint(cloudName, resource string) string {
	return fmt.Sprintf("%s/%s/%s/upload", s.baseURL, url.PathEscape(cloudName), resource)
}

// Upload sends f as multipart form data {file, api_key, timestamp, signature, folder}.
func (s *StoreClient) Upload(ctx context.Context, endpoint string, g model.Grant, f Uploadable) (*model.StoredAsset, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	src, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name(), err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	err = writeUploadForm(mw, g, f.Name(), src)
	_ = src.Close()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: storeErrorMessage(data)}
	}
	var asset model.StoredAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if asset.SecureURL == "" || asset.PublicID == "" {
		return nil, fmt.Errorf("%w: asset without url or public id", ErrMalformed)
	}
	return &asset, nil
}

func writeUploadForm(mw *multipart.Writer, g model.Grant, name string, src io.Reader) error {
	fields := [][2]string{
		{"api_key", g.APIKey},
		{"timestamp", g.Timestamp.String()},
		{"signature", g.Signature},
		{"folder", g.Folder},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return mw.Close()
}

// storeErrorMessage reads {"error": {"message": "..."}} as returned by the store.
func storeErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return errorMessage(body)
}
