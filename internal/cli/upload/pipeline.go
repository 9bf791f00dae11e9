// Package upload turns a selected local file into a stored, analyzed report.
package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"HealthMate/internal/cli/api"
	"HealthMate/internal/cli/model"
)

// DefaultPagesRoot is the folder under which extracted pages are stored.
const DefaultPagesRoot = "healthmate/pages"

// ErrBusy is returned when a run is already in progress on the pipeline.
var ErrBusy = errors.New("upload already in progress")

// Step names a pipeline step.
type Step string

const (
	StepGrant   Step = "grant"
	StepUpload  Step = "upload"
	StepExtract Step = "extract"
	StepCreate  Step = "create"
)

// FatalError aborts the pipeline. The user only sees "upload failed".
type FatalError struct {
	Step Step
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("upload failed at %s: %v", e.Step, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Warning is a tolerated failure of a best-effort step.
type Warning struct {
	Step Step
	Err  error
}

func (w Warning) String() string { return fmt.Sprintf("%s: %v", w.Step, w.Err) }

// Result is the outcome of a successful run.
type Result struct {
	Report   *model.Report
	Kind     model.Kind
	Warnings []Warning
}

// Backend is the part of the backend API the pipeline calls.
type Backend interface {
	SignedParams(ctx context.Context) (model.Grant, error)
	ExtractPages(ctx context.Context, in model.ExtractPagesRequest) error
	CreateReport(ctx context.Context, in model.CreateReportRequest) (*model.Report, error)
}

// ObjectStore uploads binaries with a grant.
type ObjectStore interface {
	Endpoint(cloudName, resource string) string
	Upload(ctx context.Context, endpoint string, g model.Grant, f api.Uploadable) (*model.StoredAsset, error)
}

// Attempt is one upload endpoint with the condition under which it is tried.
type Attempt struct {
	Resource string
	Applies  func(intended model.Kind) bool
}

// Attempts is the upload policy: the image endpoint first (documents too, some
// accounts route them through it), then the raw endpoint for pdf only.
var Attempts = []Attempt{
	{Resource: api.ResourceImage, Applies: func(model.Kind) bool { return true }},
	{Resource: api.ResourceRaw, Applies: func(k model.Kind) bool { return k == model.KindPDF }},
}

// Pipeline runs uploads one at a time.
type Pipeline struct {
	backend   Backend
	store     ObjectStore
	log       *zap.SugaredLogger
	pagesRoot string
	attempts  []Attempt

	running atomic.Bool
}

// NewPipeline returns a pipeline. An empty pagesRoot means DefaultPagesRoot.
func NewPipeline(backend Backend, store ObjectStore, log *zap.SugaredLogger, pagesRoot string) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	pagesRoot = strings.Trim(pagesRoot, "/")
	if pagesRoot == "" {
		pagesRoot = DefaultPagesRoot
	}
	return &Pipeline{backend: backend, store: store, log: log, pagesRoot: pagesRoot, attempts: Attempts}
}

// Busy reports whether a run is in progress.
func (p *Pipeline) Busy() bool { return p.running.Load() }

// Run validates c and executes grant, upload, page extraction and record creation in order.
func (p *Pipeline) Run(ctx context.Context, c Candidate) (*Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// новый grant на каждый запуск, не кэшируется
	grant, err := p.backend.SignedParams(ctx)
	if err != nil {
		return nil, p.fatal(StepGrant, err)
	}

	intended := IntendedKind(c.File)
	asset, err := p.upload(ctx, grant, c.File, intended)
	if err != nil {
		return nil, p.fatal(StepUpload, err)
	}
	kind := ReconcileKind(intended, asset.Format)

	res := &Result{Kind: kind}
	if w := p.extract(ctx, asset); w != nil {
		res.Warnings = append(res.Warnings, *w)
	}

	rep, err := p.backend.CreateReport(ctx, model.CreateReportRequest{
		Title:        c.Title,
		FileURL:      asset.SecureURL,
		FilePublicID: asset.PublicID,
		FileType:     kind,
		DateTaken:    c.DateTaken,
		Tags:         []string{c.Category},
		Notes:        c.Notes,
		Analyze:      true,
	})
	if err != nil {
		// ассет в хранилище остаётся без записи, это допустимо
		p.log.Warnw("upload: report not created, asset left in store", "public_id", asset.PublicID)
		return nil, p.fatal(StepCreate, err)
	}
	res.Report = rep
	p.log.Infow("upload: report created", "report_id", rep.ID, "kind", string(kind), "warnings", len(res.Warnings))
	return res, nil
}

// upload tries the applicable attempts in order until one succeeds.
func (p *Pipeline) upload(ctx context.Context, g model.Grant, f File, intended model.Kind) (*model.StoredAsset, error) {
	var errs []error
	for _, a := range p.attempts {
		if !a.Applies(intended) {
			continue
		}
		asset, err := p.store.Upload(ctx, p.store.Endpoint(g.CloudName, a.Resource), g, f)
		if err == nil {
			return asset, nil
		}
		p.log.Infow("upload: attempt failed", "resource", a.Resource, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", a.Resource, err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, errors.New("no upload endpoint applies")
	}
	return nil, errors.Join(errs...)
}

// extract is best-effort: a failure becomes a Warning and the run continues.
func (p *Pipeline) extract(ctx context.Context, asset *model.StoredAsset) *Warning {
	pages := asset.Pages
	if pages <= 0 {
		pages = 1
	}
	err := p.backend.ExtractPages(ctx, model.ExtractPagesRequest{
		FilePublicID: asset.PublicID,
		FileURL:      asset.SecureURL,
		Folder:       p.pagesRoot + "/" + asset.PublicID,
		Pages:        pages,
		Tag:          PagesTag(asset.PublicID),
	})
	if err == nil {
		return nil
	}
	p.log.Warnw("upload: page extraction failed", "public_id", asset.PublicID, "err", err)
	return &Warning{Step: StepExtract, Err: err}
}

func (p *Pipeline) fatal(step Step, err error) error {
	p.log.Errorw("upload failed", "step", string(step), "err", err)
	return &FatalError{Step: step, Err: err}
}

// PagesTag is the tag extracted pages of an asset are stored under.
func PagesTag(publicID string) string { return "pages:" + publicID }
