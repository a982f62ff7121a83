package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/fleetpass/fleetctl/internal/model"
)

// BulkUploadRequest is one CSV file destined for an organization/location pair
type BulkUploadRequest struct {
	OrganizationID string
	LocationID     string
	FileName       string
	File           io.Reader
}

// BulkUpload posts the CSV as multipart/form-data with the fields
// file, organization_id and location_id.
func (c *Client) BulkUpload(ctx context.Context, req BulkUploadRequest) (model.BulkUploadResult, error) {
	var (
		body bytes.Buffer
		out  model.BulkUploadResult
	)
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, req.FileName))
	h.Set("Content-Type", "text/csv")
	part, err := w.CreatePart(h)
	if err != nil {
		return out, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return out, fmt.Errorf("read %s: %w", req.FileName, err)
	}
	if err := w.WriteField("organization_id", req.OrganizationID); err != nil {
		return out, fmt.Errorf("write organization_id: %w", err)
	}
	if err := w.WriteField("location_id", req.LocationID); err != nil {
		return out, fmt.Errorf("write location_id: %w", err)
	}
	if err := w.Close(); err != nil {
		return out, fmt.Errorf("finish multipart body: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, "/api/vehicles/bulk-upload", &body, w.FormDataContentType())
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := decode(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}
