package render

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Company list layouts.
const (
	LayoutList = "list"
	LayoutGrid = "grid"
)

// TableOptions controls the price table fragment.
type TableOptions struct {
	Company          string `yaml:"company"`
	SizeYards        int    `yaml:"size"`
	ShowHeader       bool   `yaml:"show_header"`
	ShowCompany      bool   `yaml:"show_company"`
	ShowSize         bool   `yaml:"show_size"`
	ShowPrice        bool   `yaml:"show_price"`
	ShowRentalPeriod bool   `yaml:"show_rental_period"`
	ShowWeightLimit  bool   `yaml:"show_weight_limit"`
	ShowCTA          bool   `yaml:"show_cta"`
	CTAText          string `yaml:"cta_text"`
	CTAURL           string `yaml:"cta_url"`
	Class            string `yaml:"class"`
}

// CompaniesOptions controls the company cards fragment.
type CompaniesOptions struct {
	Layout          string `yaml:"layout"`
	ShowLogo        bool   `yaml:"show_logo"`
	ShowDescription bool   `yaml:"show_description"`
	ShowPhone       bool   `yaml:"show_phone"`
	ShowWebsite     bool   `yaml:"show_website"`
	Class           string `yaml:"class"`
}

// FormOptions controls the quote request form.
type FormOptions struct {
	Title          string `yaml:"title"`
	SubmitText     string `yaml:"submit_text"`
	SuccessMessage string `yaml:"success_message"`
	Action         string `yaml:"action"`
	Class          string `yaml:"class"`
}

// SiteOptions describe the publisher shown in page metadata.
type SiteOptions struct {
	Name  string `yaml:"name"`
	Phone string `yaml:"phone"`
	URL   string `yaml:"url"`
}

// Options groups the defaults for every fragment.
type Options struct {
	Site      SiteOptions      `yaml:"site"`
	Table     TableOptions     `yaml:"table"`
	Companies CompaniesOptions `yaml:"companies"`
	Form      FormOptions      `yaml:"form"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Site: SiteOptions{Name: "RollOff Rates"},
		Table: TableOptions{
			ShowHeader:       true,
			ShowCompany:      true,
			ShowSize:         true,
			ShowPrice:        true,
			ShowRentalPeriod: true,
			ShowWeightLimit:  true,
			ShowCTA:          true,
			CTAText:          "Get a Quote",
		},
		Companies: CompaniesOptions{
			Layout:          LayoutList,
			ShowLogo:        true,
			ShowDescription: true,
			ShowPhone:       true,
			ShowWebsite:     true,
		},
		Form: FormOptions{
			Title:          "Get a Dumpster Rental Quote",
			SubmitText:     "Submit",
			SuccessMessage: "Thank you for your submission! We will contact you shortly.",
			Action:         "/leads",
		},
	}
}

// LoadOptions overlays the YAML file at path onto the defaults. An empty path
// or a missing file yields the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if strings.TrimSpace(path) == "" {
		return opts, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return opts, fmt.Errorf("read render config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("parse render config: %w", err)
	}
	opts.Companies.Layout = normalizeLayout(opts.Companies.Layout)
	return opts, nil
}

// WithQuery returns a copy of o with any attributes present in q applied.
func (o TableOptions) WithQuery(q url.Values) TableOptions {
	if v := q.Get("company"); v != "" {
		o.Company = strings.TrimSpace(v)
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			o.SizeYards = n
		}
	}
	o.ShowHeader = queryBool(q, "show_header", o.ShowHeader)
	o.ShowCompany = queryBool(q, "show_company", o.ShowCompany)
	o.ShowSize = queryBool(q, "show_size", o.ShowSize)
	o.ShowPrice = queryBool(q, "show_price", o.ShowPrice)
	o.ShowRentalPeriod = queryBool(q, "show_rental_period", o.ShowRentalPeriod)
	o.ShowWeightLimit = queryBool(q, "show_weight_limit", o.ShowWeightLimit)
	o.ShowCTA = queryBool(q, "show_cta", o.ShowCTA)
	o.CTAText = queryString(q, "cta_text", o.CTAText)
	o.CTAURL = queryString(q, "cta_url", o.CTAURL)
	o.Class = queryString(q, "class", o.Class)
	return o
}

// WithQuery returns a copy of o with any attributes present in q applied.
func (o CompaniesOptions) WithQuery(q url.Values) CompaniesOptions {
	if v := q.Get("layout"); v != "" {
		o.Layout = normalizeLayout(v)
	}
	o.ShowLogo = queryBool(q, "show_logo", o.ShowLogo)
	o.ShowDescription = queryBool(q, "show_description", o.ShowDescription)
	o.ShowPhone = queryBool(q, "show_phone", o.ShowPhone)
	o.ShowWebsite = queryBool(q, "show_website", o.ShowWebsite)
	o.Class = queryString(q, "class", o.Class)
	return o
}

// WithQuery returns a copy of o with any attributes present in q applied.
func (o FormOptions) WithQuery(q url.Values) FormOptions {
	o.Title = queryString(q, "title", o.Title)
	o.SubmitText = queryString(q, "submit_text", o.SubmitText)
	o.SuccessMessage = queryString(q, "success_message", o.SuccessMessage)
	o.Class = queryString(q, "class", o.Class)
	return o
}

func normalizeLayout(layout string) string {
	if strings.EqualFold(strings.TrimSpace(layout), LayoutGrid) {
		return LayoutGrid
	}
	return LayoutList
}

func queryString(q url.Values, key, fallback string) string {
	if _, ok := q[key]; !ok {
		return fallback
	}
	return strings.TrimSpace(q.Get(key))
}

// queryBool reads a boolean attribute. yes/no and on/off are accepted next to
// the strconv forms; anything unparseable counts as false.
func queryBool(q url.Values, key string, fallback bool) bool {
	if _, ok := q[key]; !ok {
		return fallback
	}
	v := strings.ToLower(strings.TrimSpace(q.Get(key)))
	switch v {
	case "yes", "on":
		return true
	case "no", "off", "":
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
