package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cv-apply/internal/model"

	"golang.org/x/net/publicsuffix"
)

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Default font tiers in points. A heading always renders larger than a body
// section unless the descriptor pins an explicit size.
const (
	headingFontSize = 16
	bodyFontSize    = 11
)

type DocumentBuilder struct {
	renderer Renderer
	tplDir   string
}

func NewDocumentBuilder(r Renderer, tplDir string) *DocumentBuilder {
	return &DocumentBuilder{renderer: r, tplDir: tplDir}
}

type renderSection struct {
	Text       string
	FontSize   int
	Indent     int
	Heading    bool
	BreakAfter bool
}

type renderLink struct {
	URL   string
	Label string
}

func sectionFontSize(s model.Section) int {
	if s.FontSize > 0 {
		return s.FontSize
	}
	if s.Level == model.LevelHeading {
		return headingFontSize
	}
	return bodyFontSize
}

// linkLabel derives a compact display label from a raw URL, preferring the
// eTLD+1 so links read as "example.com" rather than a full address.
func linkLabel(raw string) string {
	if raw == "" {
		return ""
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

// BuildHTML renders the document sections through the HTML template and
// inlines the stylesheet so the artifact is self-contained.
func (b *DocumentBuilder) BuildHTML(doc model.Document) (string, error) {
	tplPath := filepath.Join(b.tplDir, "cv.html")
	tpl, err := template.ParseFiles(tplPath)
	if err != nil {
		return "", err
	}

	sections := make([]renderSection, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		sections = append(sections, renderSection{
			Text:       s.Text,
			FontSize:   sectionFontSize(s),
			Indent:     s.Indent,
			Heading:    s.Level == model.LevelHeading,
			BreakAfter: s.BreakAfter,
		})
	}
	links := make([]renderLink, 0, len(doc.Links))
	for _, l := range doc.Links {
		links = append(links, renderLink{URL: l, Label: linkLabel(l)})
	}

	var buf bytes.Buffer
	data := map[string]interface{}{
		"Title":    doc.Title,
		"Sections": sections,
		"Links":    links,
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	html := buf.String()

	// Inline local stylesheet from templates so saved HTML shows styling
	candidates := []string{
		filepath.Join(b.tplDir, "cv.css"),
		"templates/cv.css",
		"/app/templates/cv.css",
	}
	var cssContent string
	for _, c := range candidates {
		if cb, err := os.ReadFile(c); err == nil {
			cssContent = string(cb)
			break
		}
	}
	if cssContent != "" {
		cssBlock := "<style>" + cssContent + "</style>"
		if strings.Contains(strings.ToLower(html), "<head>") {
			html = strings.Replace(html, "<head>", "<head>"+cssBlock, 1)
		} else {
			html = cssBlock + html
		}
	}

	return html, nil
}

// Generate builds the document and writes the PDF to sinkPath. The HTML
// artifact is saved first so it survives a rendering failure; an unwritable
// sink aborts the whole operation.
func (b *DocumentBuilder) Generate(ctx context.Context, doc model.Document, sinkPath string) error {
	html, err := b.BuildHTML(doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(sinkPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	htmlPath := strings.TrimSuffix(sinkPath, filepath.Ext(sinkPath)) + ".html"
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return err
	}

	// produce PDF with retry and validation
	var pdfBytes []byte
	var renderErr error
	attempts := 3
	for i := 0; i < attempts; i++ {
		pdfBytes, renderErr = b.renderer.RenderHTMLToPDF(ctx, html)
		if renderErr == nil {
			if len(pdfBytes) > 0 && strings.HasPrefix(string(pdfBytes), "%PDF") {
				break
			}
			renderErr = fmt.Errorf("invalid PDF output (len=%d)", len(pdfBytes))
		}
		fmt.Printf("document: render attempt %d failed: %v\n", i+1, renderErr)
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if renderErr != nil {
		return fmt.Errorf("rendering failed after %d attempts: %w", attempts, renderErr)
	}

	if err := os.WriteFile(sinkPath, pdfBytes, 0o644); err != nil {
		return err
	}
	return nil
}
