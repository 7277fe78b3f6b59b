// Package pipeline runs a document through every stage: extraction,
// canonical assembly, translation to storage names, validation and tagging.
//
//	wf := pipeline.New(tables)
//	result := wf.Run(ctx, doc)
//	if !result.Valid() {
//		...
//	}
//
// Run never returns an error for content problems; they are reported on the
// Result. Each run gets a task id that appears on every log line.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robinvdvleuten/xbrl/extract"
	"github.com/robinvdvleuten/xbrl/jsonvalue"
	"github.com/robinvdvleuten/xbrl/logging"
	"github.com/robinvdvleuten/xbrl/matcher"
	"github.com/robinvdvleuten/xbrl/reference"
	"github.com/robinvdvleuten/xbrl/tagging"
	"github.com/robinvdvleuten/xbrl/telemetry"
	"github.com/robinvdvleuten/xbrl/translate"
	"github.com/robinvdvleuten/xbrl/validation"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusCompleted means every stage ran and validation passed.
	StatusCompleted Status = "completed"
	// StatusInvalid means every stage ran and validation found errors.
	StatusInvalid Status = "invalid"
	// StatusRejected means the input shape check failed and nothing else ran.
	StatusRejected Status = "rejected"
	// StatusCancelled means the context ended between stages.
	StatusCancelled Status = "cancelled"
)

// Result is everything a run produced. Stages that did not run leave their
// fields nil.
type Result struct {
	TaskID     string                   `json:"task_id"`
	Status     Status                   `json:"status"`
	Shape      *validation.Report       `json:"shape,omitempty"`
	Extracted  *extract.Result          `json:"extracted,omitempty"`
	Canonical  *jsonvalue.Object        `json:"canonical,omitempty"`
	Mapping    *translate.MappingReport `json:"mapping,omitempty"`
	Storage    *jsonvalue.Object        `json:"storage,omitempty"`
	Validation *validation.Report       `json:"validation,omitempty"`
	Tagged     *tagging.Document        `json:"tagged,omitempty"`
	TagIssues  []tagging.TagIssue       `json:"tag_issues,omitempty"`
	Duration   time.Duration            `json:"duration_ns"`
}

// Valid reports whether the run completed without validation errors.
func (r *Result) Valid() bool {
	return r.Status == StatusCompleted
}

// Workflow wires the stages together. It is safe for concurrent use; runs
// share the tag cache.
type Workflow struct {
	extractor  *extract.Extractor
	translator *translate.Translator
	validator  *validation.Validator
	tagger     *tagging.Tagger

	checkShape      bool
	storageDefaults bool
	cache           *tagging.Cache
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithCache shares c between runs. A nil cache disables caching.
func WithCache(c *tagging.Cache) Option {
	return func(w *Workflow) {
		w.cache = c
	}
}

// WithShapeCheck rejects input that fails the raw input shape check before
// anything else runs. The check only applies to input that is not already
// in canonical form.
func WithShapeCheck() Option {
	return func(w *Workflow) {
		w.checkShape = true
	}
}

// WithStorageDefaults fills the storage layer defaults into Result.Storage.
func WithStorageDefaults() Option {
	return func(w *Workflow) {
		w.storageDefaults = true
	}
}

// New creates a workflow over tables.
func New(tables *reference.Tables, opts ...Option) *Workflow {
	w := &Workflow{
		extractor:  extract.New(matcher.New(tables)),
		translator: translate.New(tables),
		validator:  validation.New(tables),
		cache:      tagging.NewCache(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if tables != nil && tables.Taxonomy != nil {
		w.tagger = tagging.New(tables.Taxonomy, w.cache)
	}
	return w
}

// Cache returns the tag cache shared by runs, which may be nil.
func (w *Workflow) Cache() *tagging.Cache {
	return w.cache
}

// Run processes doc.
func (w *Workflow) Run(ctx context.Context, doc *jsonvalue.Object) *Result {
	start := time.Now()
	result := &Result{TaskID: uuid.NewString()}
	log := logging.FromContext(ctx)

	timer := telemetry.StartTimer(ctx, "pipeline.run")
	defer timer.End()

	finish := func(status Status) *Result {
		result.Status = status
		result.Duration = time.Since(start)
		log.Info().
			Str("task_id", result.TaskID).
			Str("status", string(status)).
			Dur("duration", result.Duration).
			Msg("pipeline finished")
		return result
	}
	stage := func(name string, fn func()) bool {
		if ctx.Err() != nil {
			log.Warn().Str("task_id", result.TaskID).Str("stage", name).Err(ctx.Err()).Msg("pipeline cancelled")
			return false
		}
		t := telemetry.StartTimer(ctx, "pipeline."+name)
		fn()
		t.End()
		log.Debug().Str("task_id", result.TaskID).Str("stage", name).Msg("stage done")
		return true
	}

	canonicalInput := IsCanonical(doc)

	if w.checkShape && !canonicalInput {
		ok := stage("shape", func() {
			result.Shape = validation.CheckShape(doc)
		})
		if !ok {
			return finish(StatusCancelled)
		}
		if !result.Shape.Valid() {
			return finish(StatusRejected)
		}
	}

	if !stage("extract", func() {
		result.Extracted = w.extractor.Extract(doc)
	}) {
		return finish(StatusCancelled)
	}

	if !stage("assemble", func() {
		if canonicalInput {
			result.Canonical = doc.Clone()
		} else {
			result.Canonical = Assemble(doc, result.Extracted)
		}
	}) {
		return finish(StatusCancelled)
	}

	if !stage("translate", func() {
		mapping := w.translator.ReportMapping(result.Canonical)
		result.Mapping = &mapping
		result.Storage = translate.SanitizeInput(w.translator.ToStorageNames(result.Canonical))
		if w.storageDefaults {
			result.Storage = translate.ApplyStorageDefaults(result.Storage)
		}
	}) {
		return finish(StatusCancelled)
	}

	if !stage("validate", func() {
		result.Validation = w.validator.Validate(ctx, result.Canonical)
	}) {
		return finish(StatusCancelled)
	}

	if w.tagger != nil {
		if !stage("tag", func() {
			result.Tagged = w.tagger.TagDocument(ctx, result.Canonical)
			result.TagIssues = w.tagger.CheckTagged(result.Tagged)
		}) {
			return finish(StatusCancelled)
		}
	}

	if !result.Validation.Valid() {
		return finish(StatusInvalid)
	}
	return finish(StatusCompleted)
}

// IsCanonical reports whether doc already uses canonical section names.
func IsCanonical(doc *jsonvalue.Object) bool {
	for _, node := range reference.Layout() {
		if doc.Has(node.Name) {
			return true
		}
	}
	return false
}

// rawSections maps the descriptive sections of raw agent output onto their
// canonical names. They carry text, not amounts, so extraction skips them.
var rawSections = []struct{ raw, canonical string }{
	{"filingInformation", "FilingInformation"},
	{"directorsStatement", "DirectorsStatement"},
	{"auditReport", "AuditReport"},
}

// Assemble folds raw agent output into a canonical document. The
// descriptive sections of raw are copied across; amounts come from the
// extracted buckets. Position fields qualified as "section.Field" land in
// their sub-section; unknown values are dropped.
func Assemble(raw *jsonvalue.Object, extracted *extract.Result) *jsonvalue.Object {
	doc := jsonvalue.NewObject(5)
	for _, s := range rawSections {
		if section, ok := raw.Object(s.raw); ok {
			doc.Set(s.canonical, section.Clone())
		}
	}
	if extracted == nil {
		return doc
	}

	if b := extracted.FinancialPosition; b.Len() > 0 {
		position := jsonvalue.NewObject(b.Len())
		for _, key := range b.Keys() {
			value, _ := b.Get(key)
			qualifier, field, nested := strings.Cut(key, ".")
			if !nested {
				position.Set(key, jsonvalue.Number(value))
				continue
			}
			name, ok := reference.PositionSubsection(qualifier)
			if !ok {
				continue
			}
			sub, ok := position.Object(name)
			if !ok {
				sub = jsonvalue.NewObject(4)
				position.Set(name, sub)
			}
			sub.Set(field, jsonvalue.Number(value))
		}
		doc.Set("StatementOfFinancialPosition", position)
	}

	if b := extracted.IncomeStatement; b.Len() > 0 {
		doc.Set("IncomeStatement", b.Object())
	}
	return doc
}
