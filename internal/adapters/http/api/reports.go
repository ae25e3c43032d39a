package api

import (
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/perception/internal/app"
	"github.com/okian/perception/internal/domain/model"
	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
)

// maxRequestBytes bounds the POST /api/reports body.
const maxRequestBytes = 4 << 10

type reportRequest struct {
	Subject string `json:"subject"`
	Style   string `json:"style"`
}

type sectionView struct {
	Text        string `json:"text"`
	HTML        string `json:"html"`
	Score       *int   `json:"score,omitempty"`
	Title       string `json:"title,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Defaulted   bool   `json:"defaulted,omitempty"`
}

type categoryView struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
	Defaulted   bool   `json:"defaulted,omitempty"`
}

type reportResponse struct {
	ID                 string                  `json:"id"`
	Subject            string                  `json:"subject"`
	Style              string                  `json:"style"`
	CreatedAt          string                  `json:"createdAt"`
	OverallScore       *int                    `json:"overallScore,omitempty"`
	OverallExplanation string                  `json:"overallExplanation,omitempty"`
	Order              []string                `json:"order"`
	Sections           map[string]sectionView  `json:"sections"`
	Categories         map[string]categoryView `json:"categories,omitempty"`
	Defaulted          []string                `json:"defaulted,omitempty"`
	Evidence           []model.EvidenceItem    `json:"evidence"`
	Raw                string                  `json:"raw,omitempty"`
}

type styleView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Sections    []string `json:"sections"`
	Default     bool     `json:"default,omitempty"`
}

// ReportsHandler serves report generation and style listing.
type ReportsHandler struct {
	analyzer     Analyzer
	defaultStyle report.StyleName
	log          logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(analyzer Analyzer, defaultStyle report.StyleName, log logger.Logger) *ReportsHandler {
	if defaultStyle == "" {
		defaultStyle = report.DefaultStyle
	}
	return &ReportsHandler{analyzer: analyzer, defaultStyle: defaultStyle, log: nopIfNil(log).Named("reports")}
}

// HandleCreateReport handles POST /api/reports requests.
func (h *ReportsHandler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_report"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req reportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rep, err := h.analyzer.Analyze(r.Context(), req.Subject, report.StyleName(req.Style))
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "report failed", logger.Error(Wrap(op, err)))
		}
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(rep))
}

// HandleStyles handles GET /api/styles requests.
func (h *ReportsHandler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	specs := h.analyzer.Styles()
	out := make([]styleView, 0, len(specs))
	for _, s := range specs {
		out = append(out, styleView{
			Name:        string(s.Name),
			Label:       s.Label,
			Description: s.Description,
			Sections:    s.Tokens(),
			Default:     s.Name == h.defaultStyle,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func newReportResponse(rep *service.Report) reportResponse {
	p := rep.Parsed
	defaulted := make(map[string]bool, len(p.Defaulted))
	for _, t := range p.Defaulted {
		defaulted[t] = true
	}

	// Order carries display order; the maps are keyed for lookup.
	sections := make(map[string]sectionView, len(p.Order))
	for _, token := range p.Order {
		res := p.Sections[token]
		sections[token] = sectionView{
			Text:        res.Text,
			HTML:        renderMarkdown(res.Text),
			Score:       res.Score,
			Title:       res.Title,
			Explanation: res.Explanation,
			Defaulted:   defaulted[token],
		}
	}

	var categories map[string]categoryView
	if len(p.Categories) > 0 {
		categories = make(map[string]categoryView, len(p.Categories))
		for c, row := range p.Categories {
			categories[string(c)] = categoryView{
				Score:       row.Score,
				Explanation: row.Explanation,
				Defaulted:   row.Defaulted,
			}
		}
	}

	evidence := rep.Evidence
	if evidence == nil {
		evidence = []model.EvidenceItem{}
	}
	return reportResponse{
		ID:                 rep.ID,
		Subject:            rep.Subject,
		Style:              string(p.Style),
		CreatedAt:          rep.CreatedAt.Format(time.RFC3339),
		OverallScore:       p.OverallScore,
		OverallExplanation: p.OverallExplanation,
		Order:              p.Order,
		Sections:           sections,
		Categories:         categories,
		Defaulted:          p.Defaulted,
		Evidence:           evidence,
		Raw:                rep.Raw,
	}
}
