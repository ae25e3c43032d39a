// Package service runs the analysis flow behind the HTTP API and the CLI:
// gather evidence, build the prompt, generate, parse.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/perception/internal/adapters/llm"
	"github.com/okian/perception/internal/domain/model"
	"github.com/okian/perception/internal/domain/prompt"
	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
	"github.com/okian/perception/pkg/metrics"
)

const maxSubjectRunes = 100

// Report outcomes used as metric labels.
const (
	outcomeSuccess    = "success"
	outcomeInvalid    = "invalid_input"
	outcomeRetrieval  = "retrieval_failure"
	outcomeGeneration = "generation_failure"
)

// Searcher gathers evidence about a subject.
type Searcher interface {
	Gather(ctx context.Context, subject string) ([]model.EvidenceItem, error)
}

// Generator turns a prompt into a completion.
type Generator interface {
	Complete(ctx context.Context, req model.CompletionRequest) (string, error)
	Provider() string
}

// Report is one finished analysis.
type Report struct {
	ID        string               `json:"id"`
	Subject   string               `json:"subject"`
	CreatedAt time.Time            `json:"createdAt"`
	Parsed    report.ParsedReport  `json:"report"`
	Evidence  []model.EvidenceItem `json:"evidence"`
	// Raw is the unparsed model output.
	Raw string `json:"raw,omitempty"`
}

// Service implements the analysis flow. It keeps no per-request state.
type Service struct {
	searcher  Searcher
	generator Generator

	defaultStyle report.StyleName
	temperature  float32
	countTokens  func(string) int
	now          func() time.Time
	logger       logger.Logger

	startedAt          time.Time
	reports            atomic.Int64
	retrievalFailures  atomic.Int64
	generationFailures atomic.Int64
	sectionsDefaulted  atomic.Int64
	lastReportUnix     atomic.Int64
}

// New constructs a Service over the given searcher and generator.
func New(searcher Searcher, generator Generator, opts ...Option) *Service {
	s := &Service{
		searcher:     searcher,
		generator:    generator,
		defaultStyle: report.DefaultStyle,
		temperature:  prompt.Temperature,
		countTokens:  llm.CountTokens,
		now:          time.Now,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// Styles lists the report styles a caller may request.
func (s *Service) Styles() []report.PromptSpec {
	return report.Styles()
}

// Analyze produces a report for subject in the named style; an empty name
// selects the default style. Malformed model output never fails: missing
// sections are filled with defaults.
func (s *Service) Analyze(ctx context.Context, subject string, style report.StyleName) (*Report, error) {
	start := s.now()
	subject = strings.TrimSpace(subject)

	if style == "" {
		style = s.defaultStyle
	}
	spec, err := report.Lookup(style)
	if err != nil {
		metrics.RecordReport(string(style), outcomeInvalid)
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	if err := validateSubject(subject); err != nil {
		metrics.RecordReport(string(style), outcomeInvalid)
		return nil, err
	}

	log := s.logger.With(logger.String("subject", subject), logger.String("style", string(style)))

	evidence, err := s.searcher.Gather(ctx, subject)
	if err != nil {
		s.retrievalFailures.Add(1)
		metrics.RecordReport(string(style), outcomeRetrieval)
		log.Error(ctx, "evidence gathering failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	if len(evidence) == 0 {
		s.retrievalFailures.Add(1)
		metrics.RecordReport(string(style), outcomeRetrieval)
		log.Warn(ctx, "no evidence found")
		return nil, fmt.Errorf("%w for %q", ErrRetrieval, subject)
	}

	req := prompt.Request(subject, evidence, spec)
	req.Temperature = s.temperature
	metrics.RecordPromptTokens(s.countTokens(req.System + "\n" + req.Prompt))

	provider := s.generator.Provider()
	genStart := s.now()
	raw, err := s.generator.Complete(ctx, req)
	metrics.RecordGenerationLatency(provider, float64(s.now().Sub(genStart).Milliseconds()))
	if err != nil {
		s.generationFailures.Add(1)
		metrics.RecordGenerationError(provider)
		metrics.RecordReport(string(style), outcomeGeneration)
		log.Error(ctx, "generation failed", logger.String("provider", provider), logger.Error(err))
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	parsed := report.Parse(spec, raw)
	for _, token := range parsed.Defaulted {
		metrics.RecordSectionDefaulted(string(style), token)
	}
	if n := len(parsed.Defaulted); n > 0 {
		s.sectionsDefaulted.Add(int64(n))
		log.Warn(ctx, "model output missing sections; defaults applied",
			logger.Int("defaulted", n),
			logger.Any("sections", parsed.Defaulted),
		)
	}

	now := s.now()
	s.reports.Add(1)
	s.lastReportUnix.Store(now.Unix())
	metrics.RecordReport(string(style), outcomeSuccess)
	metrics.RecordReportLatency(string(style), float64(now.Sub(start).Milliseconds()))
	log.Info(ctx, "report generated",
		logger.Int("evidence", len(evidence)),
		logger.Duration("took", now.Sub(start)),
	)

	return &Report{
		ID:        uuid.NewString(),
		Subject:   subject,
		CreatedAt: now.UTC(),
		Parsed:    parsed,
		Evidence:  evidence,
		Raw:       raw,
	}, nil
}

func validateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidSubject)
	}
	if utf8.RuneCountInString(subject) > maxSubjectRunes {
		return fmt.Errorf("%w: subject longer than %d characters", ErrInvalidSubject, maxSubjectRunes)
	}
	for _, r := range subject {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: subject contains control characters", ErrInvalidSubject)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"provider":           s.generator.Provider(),
		"defaultStyle":       string(s.defaultStyle),
		"uptimeSeconds":      int64(s.now().Sub(s.startedAt).Seconds()),
		"reports":            s.reports.Load(),
		"retrievalFailures":  s.retrievalFailures.Load(),
		"generationFailures": s.generationFailures.Load(),
		"sectionsDefaulted":  s.sectionsDefaulted.Load(),
	}
	if last := s.lastReportUnix.Load(); last > 0 {
		stats["lastReportAt"] = time.Unix(last, 0).UTC().Format(time.RFC3339)
	}
	return stats
}
