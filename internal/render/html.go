package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/noah-isme/timetable-console/internal/dto"
	"github.com/noah-isme/timetable-console/pkg/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every console page template receives.
type Page struct {
	Title    string
	Username string
	Flash    []dto.Notice

	Manage      *dto.ManageView
	Generation  *dto.GenerationView
	Busy        bool
	ExportReady bool
	Formats     []string
	Exports     []ExportLink
	Confirm     *ConfirmView
}

// ConfirmView backs the delete confirmation page.
type ConfirmView struct {
	Message string
	Action  string
	Cancel  string
}

// ExportLink is one saved export listed on the dashboard.
type ExportLink struct {
	Name string
	Size string
	Age  string
}

type listData struct {
	Resource string
	View     dto.ListView
}

type selectData struct {
	Name string
	View dto.SelectView
}

// Templates parses the embedded console templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("console").Funcs(template.FuncMap{
		"entry":       EntryText,
		"noticeClass": noticeClass,
		"upper":       strings.ToUpper,
		"listOf":      func(resource string, view dto.ListView) listData { return listData{Resource: resource, View: view} },
		"selectOf":    func(name string, view dto.SelectView) selectData { return selectData{Name: name, View: view} },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse console templates: %w", err)
	}
	return tmpl, nil
}

// ResultsDocument renders a standalone HTML page of a generation view.
func ResultsDocument(view dto.GenerationView) ([]byte, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(buf, "results_document", view); err != nil {
		return nil, fmt.Errorf("render results document: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportLinks formats stored exports for the dashboard.
func ExportLinks(files []storage.StoredFile, now time.Time) []ExportLink {
	links := make([]ExportLink, 0, len(files))
	for _, f := range files {
		links = append(links, ExportLink{
			Name: f.Name,
			Size: humanize.Bytes(uint64(f.Size)),
			Age:  humanize.RelTime(f.ModTime, now, "ago", "from now"),
		})
	}
	return links
}

func noticeClass(level string) string {
	switch level {
	case dto.NoticeWarning:
		return "alert-warning"
	case dto.NoticeSuccess:
		return "alert-success"
	default:
		return "alert-info"
	}
}
