package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/mail"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/parser"
	"github.com/UnknownOlympus/plutus/internal/render"
)

const payslipSubject = "Your Monthly Payslip"

type Payroll struct {
	log      *slog.Logger
	parser   parser.EmployeeParserIface
	renderer render.PayslipRendererIface
	sender   mail.SenderIface
	metrics  *metrics.Metrics
	issuer   string
}

func NewPayroll(
	log *slog.Logger,
	parser parser.EmployeeParserIface,
	renderer render.PayslipRendererIface,
	sender mail.SenderIface,
	metrics *metrics.Metrics,
	issuer string,
) *Payroll {
	return &Payroll{
		log:      log,
		parser:   parser,
		renderer: renderer,
		sender:   sender,
		metrics:  metrics,
		issuer:   issuer,
	}
}

func (p *Payroll) initLogger(opn string) *slog.Logger {
	return p.log.With(
		slog.String("op", opn),
		slog.String("division", "payroll"),
	)
}

// Start loads the payroll sheet at path and processes every record in it.
// Only a load failure is returned, per-record failures end up in the summary.
func (p *Payroll) Start(ctx context.Context, path string) (models.BatchSummary, error) {
	records, err := p.parser.ParseEmployees(ctx, path)
	if err != nil {
		p.metrics.Runs.WithLabelValues("failure").Inc()
		return models.BatchSummary{}, fmt.Errorf("failed to load employees: %w", err)
	}

	return p.ProcessRecords(ctx, records), nil
}

// ProcessRecords renders and dispatches the payslip of every record, one at a time and in order.
// A failing record is logged and recorded, and the batch moves on to the next one.
// When ctx is cancelled the remaining records are recorded as skipped.
func (p *Payroll) ProcessRecords(ctx context.Context, records []models.EmployeeRecord) models.BatchSummary {
	const opn = "Payroll.ProcessRecords"
	log := p.initLogger(opn)

	startTime := time.Now()
	summary := models.BatchSummary{Results: make([]models.RecordResult, 0, len(records))}

	for idx, record := range records {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Batch cancelled, remaining records are skipped", "remaining", len(records)-idx)
			for _, rest := range records[idx:] {
				res := newResult(rest)
				res.Status = models.StatusSkipped
				summary.Results = append(summary.Results, res)
				p.metrics.RecordsProcessed.WithLabelValues(string(models.StatusSkipped)).Inc()
			}
			break
		}

		res := p.processRecord(ctx, log, record)
		summary.Results = append(summary.Results, res)
		p.metrics.RecordsProcessed.WithLabelValues(string(res.Status)).Inc()
	}

	p.metrics.RunDuration.Observe(time.Since(startTime).Seconds())
	if len(summary.Failed()) == 0 && summary.Count(models.StatusSkipped) == 0 {
		p.metrics.Runs.WithLabelValues("success").Inc()
		p.metrics.LastSuccessfulRun.SetToCurrentTime()
	} else {
		p.metrics.Runs.WithLabelValues("failure").Inc()
	}

	log.InfoContext(ctx, "All payslips processed",
		"total", summary.Total(),
		"sent", summary.Count(models.StatusSent),
		"without_email", summary.Count(models.StatusRendered),
		"failed", summary.Count(models.StatusFailed),
		"skipped", summary.Count(models.StatusSkipped),
		"duration", time.Since(startTime).String(),
	)

	return summary
}

// processRecord is the failure boundary of a single record: render and dispatch errors,
// and panics raised by either, end up in the returned result.
func (p *Payroll) processRecord(
	ctx context.Context,
	log *slog.Logger,
	record models.EmployeeRecord,
) (res models.RecordResult) {
	res = newResult(record)
	stage := models.StageRender

	defer func() {
		if recovered := recover(); recovered != nil {
			res = p.fail(ctx, log, res, stage, fmt.Errorf("panic: %v", recovered))
		}
	}()

	log.InfoContext(ctx, "Processing", sl.Employee(record.EmployeeID, record.Name), "email", record.Email)

	path, err := p.renderer.Render(ctx, record)
	if err != nil {
		return p.fail(ctx, log, res, stage, err)
	}
	res.Path = path

	if strings.TrimSpace(record.Email) == "" {
		log.InfoContext(ctx, "No email address, payslip was not sent",
			sl.Employee(record.EmployeeID, record.Name), "path", path)
		res.Status = models.StatusRendered
		return res
	}

	stage = models.StageDispatch
	if err = p.sender.Send(ctx, PayslipMessage(record, path, p.issuer)); err != nil {
		return p.fail(ctx, log, res, stage, err)
	}

	log.DebugContext(ctx, "Payslip sent", sl.Employee(record.EmployeeID, record.Name), "path", path)
	res.Status = models.StatusSent

	return res
}

func (p *Payroll) fail(
	ctx context.Context,
	log *slog.Logger,
	res models.RecordResult,
	stage models.Stage,
	err error,
) models.RecordResult {
	log.ErrorContext(ctx, "Error processing employee",
		sl.Employee(res.EmployeeID, res.Name), "stage", string(stage), sl.Err(err))

	res.Status = models.StatusFailed
	res.Stage = stage
	res.Err = err

	return res
}

func newResult(record models.EmployeeRecord) models.RecordResult {
	return models.RecordResult{
		Row:        record.Row,
		EmployeeID: record.EmployeeID,
		Name:       record.Name,
		Email:      record.Email,
	}
}

// PayslipMessage builds the mail that carries the payslip at path to the employee.
func PayslipMessage(record models.EmployeeRecord, path, issuer string) mail.Message {
	body := fmt.Sprintf("Dear %s,\n\nPlease find attached your payslip for this month.\n\nRegards,\n%s\n",
		record.Name, issuer)

	return mail.Message{
		To:             strings.TrimSpace(record.Email),
		Subject:        payslipSubject,
		Body:           body,
		AttachmentPath: path,
	}
}
