// Package render turns city views into HTML: the full city page and the
// embeddable table, company and form fragments.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/octobees/rolloff-rates/internal/entity"
	"github.com/octobees/rolloff-rates/internal/viewmodel"
)

// Template names accepted by Render.
const (
	TemplateTable     = "table"
	TemplateCompanies = "companies"
	TemplateForm      = "form"
	TemplateCityPage  = "city_page"
)

//go:embed templates/*.html
var templateFS embed.FS

var numberPrinter = message.NewPrinter(language.English)

// Renderer executes the embedded templates. It is safe for concurrent use.
type Renderer struct {
	tmpl     *template.Template
	markdown goldmark.Markdown
	opts     Options
}

// New parses the templates and binds the default options.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{markdown: goldmark.New(), opts: opts}
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"price":    viewmodel.FormatPrice,
		"markdown": r.renderMarkdown,
		"deref":    deref,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Options returns the defaults the renderer was built with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

// TableRow is one rendered line of the price table.
type TableRow struct {
	Company      string
	SizeYards    int
	Price        string
	RentalPeriod string
	WeightLimit  string
}

// TableData feeds the table template.
type TableData struct {
	Options   TableOptions
	Available bool
	Rows      []TableRow
	Columns   int
	CTAURL    string
}

// TableData joins the bundle into rows filtered by opts.
func (r *Renderer) TableData(view viewmodel.CityView, opts TableOptions) TableData {
	data := TableData{Options: opts, Available: !view.Unavailable && view.Data != nil, CTAURL: opts.CTAURL}
	if data.CTAURL == "" {
		data.CTAURL = "#rolloff-rates-form"
	}
	for _, show := range []bool{opts.ShowCompany, opts.ShowSize, opts.ShowPrice, opts.ShowRentalPeriod, opts.ShowWeightLimit, opts.ShowCTA} {
		if show {
			data.Columns++
		}
	}
	if !data.Available {
		return data
	}

	rows := viewmodel.PriceTable(*view.Data, viewmodel.TableFilter{Company: opts.Company, SizeYards: opts.SizeYards})
	data.Rows = make([]TableRow, 0, len(rows))
	for _, row := range rows {
		data.Rows = append(data.Rows, TableRow{
			Company:      row.Company.Name,
			SizeYards:    row.Size.SizeYards,
			Price:        viewmodel.FormatPrice(row.Price.BasePrice),
			RentalPeriod: formatDays(row.Price.RentalPeriodDays),
			WeightLimit:  formatPounds(row.Size.WeightLimitLbs),
		})
	}
	return data
}

// Table writes the price table fragment.
func (r *Renderer) Table(w io.Writer, view viewmodel.CityView, opts TableOptions) error {
	return r.tmpl.ExecuteTemplate(w, TemplateTable, r.TableData(view, opts))
}

// CompanyCard is a company with its lowest price in the city, if it has one.
type CompanyCard struct {
	entity.Company
	StartingAt string
}

// CompaniesData feeds the companies template.
type CompaniesData struct {
	Options   CompaniesOptions
	Companies []CompanyCard
}

// CompaniesData lists every company of the bundle in bundle order.
func (r *Renderer) CompaniesData(view viewmodel.CityView, opts CompaniesOptions) CompaniesData {
	opts.Layout = normalizeLayout(opts.Layout)
	data := CompaniesData{Options: opts, Companies: make([]CompanyCard, 0)}
	if view.Unavailable || view.Data == nil {
		return data
	}

	lowest := make(map[string]float64, len(view.Companies))
	for _, cp := range view.Companies {
		lowest[cp.Company.ID] = cp.Price
	}
	for _, company := range view.Data.Companies {
		card := CompanyCard{Company: company}
		if p, ok := lowest[company.ID]; ok {
			card.StartingAt = viewmodel.FormatPrice(p)
		}
		data.Companies = append(data.Companies, card)
	}
	return data
}

// Companies writes the company cards fragment.
func (r *Renderer) Companies(w io.Writer, view viewmodel.CityView, opts CompaniesOptions) error {
	return r.tmpl.ExecuteTemplate(w, TemplateCompanies, r.CompaniesData(view, opts))
}

// FormData feeds the quote form template.
type FormData struct {
	Options     FormOptions
	City        string
	State       string
	SizeOptions []int
}

// FormData prefills the form with the view's city and sizes.
func (r *Renderer) FormData(view viewmodel.CityView, opts FormOptions) FormData {
	if opts.Action == "" {
		opts.Action = "/leads"
	}
	sizes := view.SizeOptions
	if len(sizes) == 0 {
		sizes = viewmodel.DefaultSizeOptions
	}
	return FormData{Options: opts, City: view.City, State: view.State, SizeOptions: sizes}
}

// Form writes the quote request form.
func (r *Renderer) Form(w io.Writer, view viewmodel.CityView, opts FormOptions) error {
	return r.tmpl.ExecuteTemplate(w, TemplateForm, r.FormData(view, opts))
}

// SizeCard is a priced size on the city page.
type SizeCard struct {
	SizeYards   int
	Description string
	SuitableFor []string
	StartingAt  string
	Range       string
}

// PageData feeds the city page template.
type PageData struct {
	Title        string
	Description  string
	CanonicalURL string
	City         string
	State        string
	Site         SiteOptions
	Sizes        []SizeCard
	PriceRange   string
	Schema       template.JS
	Table        TableData
	Companies    CompaniesData
	Form         FormData
}

// PageData assembles everything the city page needs. canonicalURL may be empty.
func (r *Renderer) PageData(view viewmodel.CityView, canonicalURL string) (PageData, error) {
	place := view.City
	if view.State != "" {
		place += ", " + view.State
	}
	data := PageData{
		Title:        fmt.Sprintf("Dumpster Rental in %s - Compare Prices & Book Online", place),
		Description:  fmt.Sprintf("Compare dumpster rental prices in %s from top providers. Find the best deals on roll-off dumpsters and book online today.", place),
		CanonicalURL: canonicalURL,
		City:         view.City,
		State:        view.State,
		Site:         r.opts.Site,
		Sizes:        make([]SizeCard, 0, len(view.Sizes)),
		Table:        r.TableData(view, r.opts.Table),
		Companies:    r.CompaniesData(view, CompaniesOptions{Layout: LayoutGrid, ShowLogo: true, ShowDescription: true, ShowPhone: true, ShowWebsite: true}),
		Form:         r.FormData(view, r.opts.Form),
	}

	var lo, hi float64
	for i, s := range view.Sizes {
		card := SizeCard{
			SizeYards:   s.Size.SizeYards,
			SuitableFor: s.Size.SuitableFor,
			StartingAt:  viewmodel.FormatPrice(s.PriceRange.Min),
			Range:       s.PriceRange.String(),
		}
		if s.Size.Description != nil {
			card.Description = *s.Size.Description
		}
		data.Sizes = append(data.Sizes, card)

		if i == 0 || s.PriceRange.Min < lo {
			lo = s.PriceRange.Min
		}
		if i == 0 || s.PriceRange.Max > hi {
			hi = s.PriceRange.Max
		}
	}
	if len(view.Sizes) > 0 {
		data.PriceRange = viewmodel.PriceRange{Min: lo, Max: hi}.String()
	}

	schema, err := json.Marshal(serviceSchema(data))
	if err != nil {
		return PageData{}, fmt.Errorf("encode page schema: %w", err)
	}
	data.Schema = template.JS(schema)
	return data, nil
}

// CityPage writes the full HTML document for a city.
func (r *Renderer) CityPage(w io.Writer, view viewmodel.CityView, canonicalURL string) error {
	data, err := r.PageData(view, canonicalURL)
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, TemplateCityPage, data)
}

func serviceSchema(page PageData) map[string]any {
	provider := map[string]any{
		"@type": "LocalBusiness",
		"name":  page.Site.Name,
	}
	if page.Site.Phone != "" {
		provider["telephone"] = page.Site.Phone
	}
	if page.Site.URL != "" {
		provider["url"] = page.Site.URL
	}
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Service",
		"name":        strings.TrimSuffix(page.Title, " - Compare Prices & Book Online"),
		"description": page.Description,
		"areaServed": map[string]any{
			"@type": "City",
			"name":  page.City,
			"address": map[string]any{
				"@type":           "PostalAddress",
				"addressLocality": page.City,
				"addressRegion":   page.State,
				"addressCountry":  "US",
			},
		},
		"provider": provider,
	}
}

func (r *Renderer) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDays(days *int) string {
	if days == nil {
		return "-"
	}
	return strconv.Itoa(*days) + " days"
}

func formatPounds(lbs *int) string {
	if lbs == nil {
		return "-"
	}
	return numberPrinter.Sprintf("%d lbs", *lbs)
}

var _ echo.Renderer = (*Renderer)(nil)
