package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/templates"
	"rental-quotes/utils"
)

// PDFRenderer prints an HTML document to PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// QuoteDocument is a rendered quote PDF
type QuoteDocument struct {
	PDF      []byte
	Filename string
}

// Base64 returns the PDF encoded for JSON transport
func (d QuoteDocument) Base64() string {
	return base64.StdEncoding.EncodeToString(d.PDF)
}

// quoteTemplateData is passed to every quote template
type quoteTemplateData struct {
	Quote    models.QuoteRequest
	Pricing  models.PricingBreakdown
	IssuedOn string
}

// QuoteDocumentService renders quote documents. All totals come from the pricing engine.
type QuoteDocumentService struct {
	engine   *pricing.Engine
	tmpl     *template.Template
	renderer PDFRenderer
	now      func() time.Time
}

// NewQuoteDocumentService parses the embedded templates
func NewQuoteDocumentService(engine *pricing.Engine, renderer PDFRenderer) (*QuoteDocumentService, error) {
	tmpl, err := template.New("quotes").Funcs(template.FuncMap{
		"money":       utils.FormatMoney,
		"percent":     utils.FormatPercent,
		"statusLabel": utils.StatusLabel,
	}).ParseFS(templates.FS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &QuoteDocumentService{engine: engine, tmpl: tmpl, renderer: renderer, now: time.Now}, nil
}

func (s *QuoteDocumentService) render(name string, quote models.QuoteRequest) (string, error) {
	data := quoteTemplateData{
		Quote:    quote,
		Pricing:  s.engine.Calculate(pricing.InputFromQuote(quote)),
		IssuedOn: models.DateOf(s.now()).String(),
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderHTML renders the printable quote
func (s *QuoteDocumentService) RenderHTML(quote models.QuoteRequest) (string, error) {
	return s.render(templates.QuoteDocument, quote)
}

// RenderEmail renders the customer email body
func (s *QuoteDocumentService) RenderEmail(quote models.QuoteRequest) (string, error) {
	return s.render(templates.QuoteEmail, quote)
}

// RenderNotice renders the internal notification body
func (s *QuoteDocumentService) RenderNotice(quote models.QuoteRequest) (string, error) {
	return s.render(templates.QuoteNotice, quote)
}

// GeneratePDF renders the quote and prints it to PDF
func (s *QuoteDocumentService) GeneratePDF(ctx context.Context, quote models.QuoteRequest) (*QuoteDocument, error) {
	log.Printf("📄 GeneratePDF: Rendering quote id=%d", quote.ID)
	html, err := s.RenderHTML(quote)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		log.Printf("❌ GeneratePDF: Error printing quote id=%d: %v", quote.ID, err)
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	doc := &QuoteDocument{PDF: pdf, Filename: utils.QuotePDFFileName(quote.ID, quote.Company, quote.JobName)}
	log.Printf("✅ GeneratePDF: Quote id=%d printed (%d bytes, %s)", quote.ID, len(pdf), doc.Filename)
	return doc, nil
}

// ChromePDFRenderer prints HTML with headless Chrome
type ChromePDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

// NewChromePDFRenderer uses chromePath, or a detected Chrome/Chromium when empty
func NewChromePDFRenderer(chromePath string) *ChromePDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &ChromePDFRenderer{chromePath: chromePath, timeout: 30 * time.Second}
}

// detectChromePath checks common installation paths
func detectChromePath() string {
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// RenderPDF loads html as a data URL and prints it on US Letter paper
func (r *ChromePDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.fonts.ready`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0). // padding is in CSS
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome print failed: %w", err)
	}
	return pdfBuf, nil
}
