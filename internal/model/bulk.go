package model

import (
	"errors"
	"fmt"
)

// ErrInconsistentResult is returned when a bulk upload result's counters disagree
var ErrInconsistentResult = errors.New("inconsistent bulk upload result")

// BulkUploadResult is the per-file report returned by the bulk-upload endpoint
type BulkUploadResult struct {
	Total      int      `json:"total"`
	Success    int      `json:"success"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	VehicleIDs []string `json:"vehicle_ids,omitempty"`
}

// Validate enforces success + failed == total
func (r BulkUploadResult) Validate() error {
	if r.Total < 0 || r.Success < 0 || r.Failed < 0 {
		return fmt.Errorf("%w: negative counter (total=%d success=%d failed=%d)",
			ErrInconsistentResult, r.Total, r.Success, r.Failed)
	}
	if r.Success+r.Failed != r.Total {
		return fmt.Errorf("%w: success %d + failed %d != total %d",
			ErrInconsistentResult, r.Success, r.Failed, r.Total)
	}
	return nil
}

// Complete reports whether every row was imported
func (r BulkUploadResult) Complete() bool {
	return r.Failed == 0
}
