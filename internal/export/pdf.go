package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	pageMargin = 18.0
	lineHeight = 6.0
)

// PDFExporter writes results as a paginated A4 PDF into Dir.
type PDFExporter struct {
	Dir    string
	logger *zap.Logger
}

// NewPDFExporter creates an exporter that writes into dir.
func NewPDFExporter(dir string, logger *zap.Logger) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExporter{Dir: dir, logger: logger.Named("export")}
}

// DefaultDir returns the directory exports go to when none is configured:
// the user's Documents folder if it exists, else the home directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	docs := filepath.Join(home, "Documents")
	if fi, err := os.Stat(docs); err == nil && fi.IsDir() {
		return docs
	}
	return home
}

// Export renders res and writes it to Dir/FileName(res.Topic).
func (e *PDFExporter) Export(res Results) (string, error) {
	if strings.TrimSpace(res.Analysis) == "" {
		return "", fmt.Errorf("export: no analysis to render")
	}

	dir := e.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create directory: %w", err)
	}

	path := filepath.Join(dir, FileName(res.Topic))
	pdf := render(res)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}

	e.logger.Info("wrote results document",
		zap.String("path", path),
		zap.Int("pages", pdf.PageCount()))
	return path, nil
}

// Write renders res to w.
func Write(w io.Writer, res Results) (pages int, err error) {
	pdf := render(res)
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("export: render: %w", err)
	}
	return pdf.PageCount(), nil
}

func render(res Results) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := res.Topic + " Test Results"
	pdf.SetTitle(title, true)
	pdf.SetCreator("mindcheck", true)
	if !res.GeneratedAt.IsZero() {
		pdf.SetCreationDate(res.GeneratedAt)
	}

	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(124, 58, 237)
	pdf.MultiCell(0, 9, tr(title), "", "L", false)
	if !res.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, res.GeneratedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	heading := func(s string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.SetTextColor(30, 30, 30)
		pdf.CellFormat(0, 8, tr(s), "", 1, "L", false, 0, "")
	}
	body := func(s string) {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(50, 50, 50)
		for _, para := range strings.Split(strings.TrimSpace(s), "\n") {
			if strings.TrimSpace(para) == "" {
				pdf.Ln(2)
				continue
			}
			pdf.MultiCell(0, lineHeight, tr(para), "", "L", false)
		}
	}

	if len(res.Stability) > 0 {
		heading("Stability")
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(50, 50, 50)
		for _, cat := range analysis.Categories {
			lv, ok := res.Stability[cat]
			if !ok {
				continue
			}
			// The core fonts have no emoji glyphs; only the label is printed.
			pdf.CellFormat(40, lineHeight, tr(cat.Label()), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, lineHeight, tr(lv.Level), "", 1, "L", false, 0, "")
		}
	}

	heading("Analysis")
	body(res.Analysis)

	if strings.TrimSpace(res.Advice) != "" {
		heading("Advice")
		body(res.Advice)
	}

	if len(res.Items) > 0 {
		heading("Your answers")
		for i, it := range res.Items {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(50, 50, 50)
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, it.Question)), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(0, lineHeight, tr("   "+it.Answer), "", "L", false)
			pdf.Ln(1)
		}
	}

	return pdf
}
