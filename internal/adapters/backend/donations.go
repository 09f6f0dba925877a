package backend

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"llavedesol/internal/domain/donation"
)

const donationsPath = "/api/donaciones/"

// ExportFileName is used when the backend does not name the export.
const ExportFileName = "donaciones.xlsx"

// ListDonations returns one backend page of donations.
// PRE: page >= 1
func (cl *Caller) ListDonations(ctx context.Context, page, limit int) (donation.Page, error) {
	if page < 1 {
		page = 1
	}
	limit = donation.NormalizePageSize(limit)
	r := request{
		method: http.MethodGet,
		path:   fmt.Sprintf("%s?page=%d&limit=%d", donationsPath, page, limit),
		label:  donationsPath,
	}
	var wire donationPageWire
	if err := cl.do(ctx, r, &wire); err != nil {
		return donation.Page{}, err
	}
	out := donation.Page{Count: wire.Count, Results: make([]donation.Donation, 0, len(wire.Results))}
	for _, w := range wire.Results {
		out.Results = append(out.Results, w.toDomain())
	}
	return out, nil
}

// Export is a spreadsheet streamed from the backend.
type Export struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
}

// ExportDonations opens the xlsx export.
// POST: the caller must close Export.Body
func (cl *Caller) ExportDonations(ctx context.Context) (Export, error) {
	path := donationsPath + "exportar/"
	resp, err := cl.send(ctx, request{method: http.MethodGet, path: path, label: path})
	if err != nil {
		return Export{}, err
	}
	exp := Export{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		FileName:    ExportFileName,
	}
	if exp.ContentType == "" {
		exp.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		exp.FileName = params["filename"]
	}
	return exp, nil
}
