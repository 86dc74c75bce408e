// Package debitnote turns a Policy Record into a debit note document.
//
// It assembles the JSON payload, posts it to the remote document service,
// names the returned PDF and hands it to a Deliverer. A Submitter allows
// at most one submission in flight at a time.
package debitnote

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/utilitycover/debitnote/pkg/models"
	"github.com/utilitycover/debitnote/pkg/utils"
)

// Payload is the request body sent to the document service.
type Payload struct {
	models.PolicyRecord
	DateIssued string `json:"date_issued"` // DD/MM/YYYY
}

// NewPayload builds the payload for rec issued at the given time.
// generated_by is only carried when it is present and non-empty.
func NewPayload(rec models.PolicyRecord, issued time.Time) Payload {
	p := Payload{
		PolicyRecord: rec.Clone(),
		DateIssued:   utils.FormatDateIssued(issued),
	}
	if !rec.HasGeneratedBy() {
		p.GeneratedBy = nil
	}
	return p
}

// BuildPayload returns the JSON encoding of NewPayload(rec, issued).
func BuildPayload(rec models.PolicyRecord, issued time.Time) ([]byte, error) {
	return json.Marshal(NewPayload(rec, issued))
}

// Filename returns the download name for a debit note:
// DebitNote_<vehicle without whitespace>_<DD-MM-YYYY>.pdf
// Whitespace is anything unicode.IsSpace accepts, including NBSP.
func Filename(vehicle string, issued time.Time) string {
	return "DebitNote_" + strings.Join(strings.Fields(vehicle), "") + "_" + utils.FormatFileDate(issued) + ".pdf"
}
