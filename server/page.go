package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/etnz/stress"
	"github.com/etnz/stress/renderer"
	"github.com/etnz/stress/sheet"
)

//go:embed templates/page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html"))

// markdown converts the renderer output to HTML. Raw HTML in the input is
// not rendered.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// form is the state of the upload form, echoed back on every page.
type form struct {
	Kind       stress.Kind
	Name       string
	Multiplier float64
	Shocks     string
	From, To   string
	Currency   string
}

// page is the data of the single page template.
type page struct {
	Form  form
	Kinds []stress.Kind
	Names []string

	MinMultiplier, MaxMultiplier, MultiplierStep float64

	Preview template.HTML
	Report  template.HTML

	Info, Error, Warning string
	DownloadID           string
}

func (s *Server) newPage() *page {
	return &page{
		Form: form{
			Kind:       stress.Specified,
			Multiplier: stress.DefaultMultiplier,
			Currency:   s.currency,
		},
		Kinds:          stress.Kinds(),
		Names:          s.registry.Names(),
		MinMultiplier:  stress.MinMultiplier,
		MaxMultiplier:  stress.MaxMultiplier,
		MultiplierStep: stress.MultiplierStep,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, p *page) {
	var b bytes.Buffer
	if err := pageTemplate.Execute(&b, p); err != nil {
		s.log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(b.Bytes())
}

// html converts markdown to HTML.
func (s *Server) html(md string) template.HTML {
	var b bytes.Buffer
	if err := markdown.Convert([]byte(md), &b); err != nil {
		s.log.Error().Err(err).Msg("Failed to convert markdown")
		return ""
	}
	return template.HTML(b.String())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.newPage()
	p.Info = "Please upload a portfolio Excel file to begin."
	s.renderPage(w, http.StatusOK, p)
}

// handleEvaluate evaluates the uploaded portfolio against the selected
// scenario and renders the result page.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	p := s.newPage()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			p.Error = fmt.Sprintf("The file is too large, the limit is %d MiB.", s.maxUpload>>20)
			s.renderPage(w, http.StatusRequestEntityTooLarge, p)
			return
		}
		p.Error = fmt.Sprintf("Invalid form: %v", err)
		s.renderPage(w, http.StatusBadRequest, p)
		return
	}

	f, sel, err := readForm(r, p.Form)
	p.Form = f
	if err != nil {
		p.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, p)
		return
	}

	file, header, err := r.FormFile("portfolio")
	if err != nil {
		p.Info = "Please upload a portfolio Excel file to begin."
		s.renderPage(w, http.StatusBadRequest, p)
		return
	}
	defer file.Close()

	log := s.log.With().Str("file", header.Filename).Str("kind", sel.Kind.String()).Logger()

	portfolio, err := sheet.Read(file, header.Filename)
	if err != nil {
		log.Debug().Err(err).Msg("Unreadable portfolio")
		p.Error = fmt.Sprintf("Cannot read %s: %v", header.Filename, err)
		s.renderPage(w, http.StatusBadRequest, p)
		return
	}
	p.Preview = s.html(renderer.RenderPreview(renderer.NewPreview(portfolio, renderer.PreviewRows)))

	scenario, err := sel.Scenario(s.registry)
	if err != nil {
		p.Error = err.Error()
		s.renderPage(w, http.StatusUnprocessableEntity, p)
		return
	}

	res, err := stress.Evaluate(portfolio, scenario)
	var unsupported *stress.UnsupportedScenarioError
	switch {
	case errors.As(err, &unsupported):
		p.Warning = err.Error()
		s.renderPage(w, http.StatusUnprocessableEntity, p)
		return
	case err != nil:
		p.Error = err.Error()
		s.renderPage(w, http.StatusUnprocessableEntity, p)
		return
	}

	p.Report = s.html(renderer.ResultMarkdown(res, f.Currency))
	p.DownloadID = s.sessions.put(res)
	log.Info().Int("rows", len(res.Rows)).Float64("total", res.Total).Msg("Portfolio evaluated")
	s.renderPage(w, http.StatusOK, p)
}

// readForm reads the scenario fields of the form. Fields that are not set
// keep their value from def.
func readForm(r *http.Request, def form) (form, stress.Selection, error) {
	f := def
	var sel stress.Selection

	if v := r.FormValue("scenario"); v != "" {
		k, err := stress.ParseKind(v)
		if err != nil {
			return f, sel, err
		}
		f.Kind = k
	}
	f.Name = r.FormValue("name")
	f.Shocks = r.FormValue("shocks")
	f.From = r.FormValue("from")
	f.To = r.FormValue("to")
	if v := r.FormValue("multiplier"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, sel, fmt.Errorf("invalid multiplier %q", v)
		}
		f.Multiplier = stress.ClampMultiplier(m)
	}
	if v := strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))); v != "" {
		if money.GetCurrency(v) == nil {
			return f, sel, fmt.Errorf("unknown currency %q", v)
		}
		f.Currency = v
	}

	sel = stress.Selection{Kind: f.Kind, Name: f.Name, Multiplier: f.Multiplier}
	switch f.Kind {
	case stress.Specified:
		shocks, err := stress.ParseShocks(f.Shocks)
		if err != nil {
			return f, sel, err
		}
		sel.Shocks = shocks
	case stress.DateRange:
		var err error
		if sel.From, err = parseDate(f.From); err != nil {
			return f, sel, err
		}
		if sel.To, err = parseDate(f.To); err != nil {
			return f, sel, err
		}
	}
	return f, sel, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// handleDownload streams the spreadsheet of an evaluated result.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	res, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "result not found or expired", http.StatusNotFound)
		return
	}

	var b bytes.Buffer
	if err := sheet.WriteXLSX(&b, res); err != nil {
		s.log.Error().Err(err).Msg("Failed to write results")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", sheet.XLSXMime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sheet.ResultFileName))
	w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
	w.Write(b.Bytes())
}
