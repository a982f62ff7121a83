// Package bulk implements the CSV vehicle import: organization and location
// selection, file-type checking, submission and result reporting.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetpass/fleetctl/internal/api"
	"github.com/fleetpass/fleetctl/internal/model"
)

// Stage is the workflow's position
type Stage int

const (
	StageIdle Stage = iota
	StageOrganizationSelected
	StageLocationSelected
	StageFileSelected
	StageSubmitting
	StageResultReceived
	StageFailed
)

func (s Stage) String() string {
	return [...]string{
		"idle", "organization-selected", "location-selected", "file-selected",
		"submitting", "result-received", "failed",
	}[s]
}

// DefaultRedirectDelay is how long a fully successful import stays on screen
const DefaultRedirectDelay = 2 * time.Second

// RedirectRoute is where a fully successful import navigates
const RedirectRoute = "vehicles"

// User-facing messages
const (
	MsgNotCSV          = "Please select a CSV file"
	MsgMissingInputs   = "Please select organization, location, and CSV file"
	MsgUploadFailed    = "Failed to upload vehicles"
	MsgUnknownLocation = "Please select a location of the selected organization"
)

var (
	// ErrNotCSV rejects a file whose declared type is not text/csv
	ErrNotCSV = errors.New("not a csv file")
	// ErrIncomplete refuses submission without organization, location and file
	ErrIncomplete = errors.New("organization, location and file are required")
	// ErrUnknownLocation rejects a location outside the candidate set
	ErrUnknownLocation = errors.New("location not in selected organization")
	// ErrBusy refuses a second submission while one is outstanding
	ErrBusy = errors.New("upload already in progress")
)

// Uploader sends the multipart upload
type Uploader interface {
	BulkUpload(ctx context.Context, req api.BulkUploadRequest) (model.BulkUploadResult, error)
}

// Outcome tells the caller what to show after a successful submission
type Outcome struct {
	Result model.BulkUploadResult
	// RedirectTo is set only when every row was imported
	RedirectTo string
	After      time.Duration
}

// Option configures a Workflow
type Option func(*Workflow)

// WithRedirectDelay overrides DefaultRedirectDelay
func WithRedirectDelay(d time.Duration) Option {
	return func(w *Workflow) { w.redirectDelay = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// Workflow is one bulk import screen
type Workflow struct {
	uploader      Uploader
	organizations []model.Organization
	locations     []model.Location
	redirectDelay time.Duration
	logger        *slog.Logger

	mu         sync.Mutex
	orgID      string
	locationID string
	file       *File
	submitting bool
	failed     bool
	result     *model.BulkUploadResult
	errMsg     string
}

// New creates a workflow over the already fetched organizations and locations
func New(uploader Uploader, orgs []model.Organization, locs []model.Location, opts ...Option) *Workflow {
	w := &Workflow{
		uploader:      uploader,
		organizations: orgs,
		locations:     locs,
		redirectDelay: DefaultRedirectDelay,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Candidates returns the locations belonging to orgID; empty orgID yields none
func Candidates(all []model.Location, orgID string) []model.Location {
	if orgID == "" {
		return nil
	}
	var out []model.Location
	for _, l := range all {
		if l.OrganizationID == orgID {
			out = append(out, l)
		}
	}
	return out
}

// Organizations returns the selectable organizations
func (w *Workflow) Organizations() []model.Organization {
	return w.organizations
}

// Candidates returns the selectable locations for the current organization
func (w *Workflow) Candidates() []model.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Candidates(w.locations, w.orgID)
}

// SelectOrganization sets the organization and always resets the location
func (w *Workflow) SelectOrganization(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.orgID = id
	w.locationID = ""
	w.resetOutcome()
}

// SelectLocation sets the location; it must belong to the selected organization
func (w *Workflow) SelectLocation(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetOutcome()
	if id == "" {
		w.locationID = ""
		return nil
	}
	for _, l := range Candidates(w.locations, w.orgID) {
		if l.ID == id {
			w.locationID = id
			return nil
		}
	}
	w.locationID = ""
	w.errMsg = MsgUnknownLocation
	return ErrUnknownLocation
}

// SelectFile validates the declared type. A non-CSV file is rejected and the
// selection cleared. A nil file clears the selection.
func (w *Workflow) SelectFile(f *File) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetOutcome()
	if f != nil && f.DeclaredType != CSVType {
		w.file = nil
		w.errMsg = MsgNotCSV
		return ErrNotCSV
	}
	w.file = f
	return nil
}

func (w *Workflow) resetOutcome() {
	w.errMsg = ""
	w.result = nil
	w.failed = false
}

// Selection returns the current organization and location ids
func (w *Workflow) Selection() (orgID, locationID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orgID, w.locationID
}

// HasFile reports whether a file is selected
func (w *Workflow) HasFile() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file != nil
}

// Stage derives the workflow position from its fields
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.submitting:
		return StageSubmitting
	case w.result != nil:
		return StageResultReceived
	case w.failed:
		return StageFailed
	case w.orgID != "" && w.locationID != "" && w.file != nil:
		return StageFileSelected
	case w.orgID != "" && w.locationID != "":
		return StageLocationSelected
	case w.orgID != "":
		return StageOrganizationSelected
	}
	return StageIdle
}

// Err returns the screen's error slot
func (w *Workflow) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// Result returns the last received result
func (w *Workflow) Result() (model.BulkUploadResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return model.BulkUploadResult{}, false
	}
	return *w.result, true
}

// Submit uploads the file. It is refused locally, without any network call,
// unless organization, location and file are all selected.
func (w *Workflow) Submit(ctx context.Context) (Outcome, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	w.resetOutcome()
	if w.file == nil || w.orgID == "" || w.locationID == "" {
		w.errMsg = MsgMissingInputs
		w.mu.Unlock()
		return Outcome{}, ErrIncomplete
	}
	file := *w.file
	req := api.BulkUploadRequest{
		OrganizationID: w.orgID,
		LocationID:     w.locationID,
		FileName:       file.Name,
	}
	w.submitting = true
	w.mu.Unlock()

	res, err := w.upload(ctx, file, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.failed = true
		w.errMsg = failureMessage(err)
		w.logger.Debug("bulk upload failed", "file", file.Name, "error", err)
		return Outcome{}, err
	}

	w.result = &res
	w.file = nil
	out := Outcome{Result: res}
	if res.Complete() {
		out.RedirectTo = RedirectRoute
		out.After = w.redirectDelay
	}
	w.logger.Debug("bulk upload finished",
		"file", file.Name, "total", res.Total, "success", res.Success, "failed", res.Failed)
	return out, nil
}

func (w *Workflow) upload(ctx context.Context, file File, req api.BulkUploadRequest) (model.BulkUploadResult, error) {
	rc, err := file.Open()
	if err != nil {
		return model.BulkUploadResult{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()
	req.File = rc

	res, err := w.uploader.BulkUpload(ctx, req)
	if err != nil {
		return model.BulkUploadResult{}, err
	}
	if err := res.Validate(); err != nil {
		return model.BulkUploadResult{}, err
	}
	return res, nil
}

func failureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgUploadFailed
}
