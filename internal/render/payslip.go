package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
)

var (
	ErrEmptyName     = errors.New("employee name is empty")
	ErrUnsafeName    = errors.New("employee name cannot be used as a file name")
	ErrDuplicateName = errors.New("a payslip with this name was already rendered in this run")
	ErrUnknownPolicy = errors.New("unknown duplicate policy")
)

const (
	fileSuffix = "_Payslip.pdf"
	fontFamily = "Helvetica"
)

// DuplicatePolicy decides what happens when two records derive the same payslip file name.
type DuplicatePolicy string

const (
	DuplicateOverwrite DuplicatePolicy = "overwrite" // later record replaces the earlier file
	DuplicateSuffixID  DuplicatePolicy = "suffix-id" // later record gets its ID in the file name
	DuplicateFail      DuplicatePolicy = "fail"      // later record fails to render
)

// ParseDuplicatePolicy validates a configured policy name.
func ParseDuplicatePolicy(name string) (DuplicatePolicy, error) {
	switch policy := DuplicatePolicy(strings.ToLower(strings.TrimSpace(name))); policy {
	case DuplicateOverwrite, DuplicateSuffixID, DuplicateFail:
		return policy, nil
	case "":
		return DuplicateOverwrite, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownPolicy, name)
	}
}

// Options configures a PayslipRenderer.
type Options struct {
	OutputDir  string
	IssuerName string
	Duplicates DuplicatePolicy
	Compress   bool // Compress enables deflate on page streams.
}

type PayslipRendererIface interface {
	Render(ctx context.Context, record models.EmployeeRecord) (string, error)
}

// PayslipRenderer writes one PDF payslip per record into the output directory.
// It is not safe for concurrent use.
type PayslipRenderer struct {
	opts     Options
	metrics  *metrics.Metrics
	rendered map[string]bool // base file names produced in this run
}

func NewPayslipRenderer(opts Options, metrics *metrics.Metrics) *PayslipRenderer {
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateOverwrite
	}

	return &PayslipRenderer{opts: opts, metrics: metrics, rendered: make(map[string]bool)}
}

// FileName derives the payslip file name from an employee name.
func FileName(name string) string {
	return strings.ReplaceAll(name, " ", "_") + fileSuffix
}

// Render draws the payslip of record and writes it to the output directory, returning the file path.
func (r *PayslipRenderer) Render(ctx context.Context, record models.EmployeeRecord) (string, error) {
	startTime := time.Now()
	defer func() {
		r.metrics.RenderDuration.Observe(time.Since(startTime).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := checkName(record.Name); err != nil {
		return "", err
	}

	base := FileName(record.Name)
	fileName, err := r.resolveFileName(base, record)
	if err != nil {
		return "", err
	}

	pdf, err := drawPayslip(NewPayslip(record, r.opts.IssuerName), r.opts.Compress)
	if err != nil {
		return "", fmt.Errorf("failed to draw payslip: %w", err)
	}

	if err = os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory '%s': %w", r.opts.OutputDir, err)
	}

	path := filepath.Join(r.opts.OutputDir, fileName)
	if err = pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write payslip '%s': %w", path, err)
	}

	r.rendered[base] = true

	return path, nil
}

func (r *PayslipRenderer) resolveFileName(base string, record models.EmployeeRecord) (string, error) {
	if !r.rendered[base] {
		return base, nil
	}

	switch r.opts.Duplicates {
	case DuplicateSuffixID:
		id := record.EmployeeID
		if id == "" {
			id = fmt.Sprintf("row%d", record.Row)
		}
		id = strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(id)
		return strings.TrimSuffix(base, fileSuffix) + "_" + id + fileSuffix, nil
	case DuplicateFail:
		return "", fmt.Errorf("%w: '%s'", ErrDuplicateName, base)
	default:
		return base, nil
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`+"\x00") || name == "." || name == ".." {
		return fmt.Errorf("%w: '%s'", ErrUnsafeName, name)
	}

	return nil
}

// Payslip is the text content of one payslip, already formatted for display.
type Payslip struct {
	Issuer      string
	Title       string
	EmployeeID  string
	Name        string
	BasicSalary string
	Allowance   string
	Deductions  string
	NetSalary   string
}

// NewPayslip formats record for display. The net salary is computed here.
func NewPayslip(record models.EmployeeRecord, issuer string) Payslip {
	return Payslip{
		Issuer:      issuer,
		Title:       "Payslip for the Month",
		EmployeeID:  record.EmployeeID,
		Name:        record.Name,
		BasicSalary: FormatCurrency(record.BasicSalary),
		Allowance:   FormatCurrency(record.Allowance),
		Deductions:  FormatCurrency(record.Deductions),
		NetSalary:   FormatCurrency(record.NetSalary()),
	}
}

// FormatCurrency renders an amount with two decimals, negative amounts keep their minus sign.
func FormatCurrency(amount decimal.Decimal) string {
	return "$ " + amount.StringFixed(2)
}

// cp1252 converts UTF-8 text to the code page of the core PDF fonts and
// keeps the first conversion error.
type cp1252 struct {
	err error
}

func (c *cp1252) text(s string) string {
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("text %q cannot be encoded for the payslip font: %w", s, err)
		}
		return ""
	}

	return out
}

func drawPayslip(slip Payslip, compress bool) (*fpdf.Fpdf, error) {
	var enc cp1252
	issuer := enc.text(slip.Issuer)
	title := enc.text(slip.Title)
	employeeID := enc.text(slip.EmployeeID)
	name := enc.text(slip.Name)
	if enc.err != nil {
		return nil, enc.err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(slip.Title+" - "+slip.Name, true)
	pdf.SetAuthor(slip.Issuer, true)
	pdf.SetCreator("plutus", false)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 18)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 10, issuer, "", 1, "C", false, 0, "")
		pdf.SetFont(fontFamily, "I", 12)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
		separator(pdf)
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)

	section(pdf, "Employee Details:")
	line(pdf, "Employee ID", employeeID)
	line(pdf, "Name", name)
	pdf.Ln(2)

	section(pdf, "Salary Details:")
	line(pdf, "Basic Salary", slip.BasicSalary)
	line(pdf, "Allowance", slip.Allowance)
	line(pdf, "Deductions", slip.Deductions)
	pdf.Ln(2)
	separator(pdf)
	pdf.Ln(2)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 10, "Net Salary: "+slip.NetSalary, "", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	return pdf, nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
}

func line(pdf *fpdf.Fpdf, label, value string) {
	const labelWidth = 40

	pdf.SetFont(fontFamily, "", 12)
	pdf.CellFormat(labelWidth, 8, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, ": "+value, "", 1, "L", false, 0, "")
}

// separator draws a red rule across the printable width at the current position.
func separator(pdf *fpdf.Fpdf) {
	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	y := pdf.GetY()

	pdf.SetDrawColor(255, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(left, y, pageWidth-right, y)
}
