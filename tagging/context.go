package tagging

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ContextRequest describes the XBRL context a fact is reported in.
type ContextRequest struct {
	EntityName       string
	EntityIdentifier string
	// PeriodStart is zero for an instant context.
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Consolidated bool
	Dimensions   map[string]string
}

// Period is the reporting period of a context.
type Period struct {
	Type      string `json:"type"`
	Instant   string `json:"instant,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Context is a generated XBRL context.
type Context struct {
	ID               string            `json:"id"`
	EntityName       string            `json:"entity_name"`
	EntityIdentifier string            `json:"entity_identifier"`
	Scheme           string            `json:"scheme"`
	Period           Period            `json:"period"`
	Consolidated     bool              `json:"consolidated"`
	Dimensions       map[string]string `json:"dimensions,omitempty"`
}

// IdentifierScheme is the scheme entity identifiers (UENs) are issued under.
const IdentifierScheme = "http://www.acra.gov.sg/uen"

// ContextInfo builds the context for req. The id encodes the period, the
// consolidation basis and every dimension sorted by name, so equal requests
// always produce equal ids.
func ContextInfo(req ContextRequest) Context {
	var id strings.Builder
	period := Period{}
	if req.PeriodStart.IsZero() {
		period.Type = "instant"
		period.Instant = req.PeriodEnd.Format(time.DateOnly)
		fmt.Fprintf(&id, "ctx_i%s", req.PeriodEnd.Format("20060102"))
	} else {
		period.Type = "duration"
		period.StartDate = req.PeriodStart.Format(time.DateOnly)
		period.EndDate = req.PeriodEnd.Format(time.DateOnly)
		fmt.Fprintf(&id, "ctx_d%sto%s", req.PeriodStart.Format("20060102"), req.PeriodEnd.Format("20060102"))
	}

	if req.Consolidated {
		id.WriteString("_c")
	} else {
		id.WriteString("_s")
	}

	dims := maps.Keys(req.Dimensions)
	slices.Sort(dims)
	for _, dim := range dims {
		fmt.Fprintf(&id, "_%s-%s", dim, req.Dimensions[dim])
	}

	var dimensions map[string]string
	if len(req.Dimensions) > 0 {
		dimensions = maps.Clone(req.Dimensions)
	}
	return Context{
		ID:               id.String(),
		EntityName:       req.EntityName,
		EntityIdentifier: req.EntityIdentifier,
		Scheme:           IdentifierScheme,
		Period:           period,
		Consolidated:     req.Consolidated,
		Dimensions:       dimensions,
	}
}
