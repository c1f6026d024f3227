package payroll_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnknownOlympus/plutus/internal/mail"
	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/parser"
	"github.com/UnknownOlympus/plutus/internal/services/payroll"
	mocks "github.com/UnknownOlympus/plutus/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func employee(row int, id, name, email string, basic, allowance, deductions int64) models.EmployeeRecord {
	return models.EmployeeRecord{
		Row:         row,
		EmployeeID:  id,
		Name:        name,
		BasicSalary: decimal.NewFromInt(basic),
		Allowance:   decimal.NewFromInt(allowance),
		Deductions:  decimal.NewFromInt(deductions),
		Email:       email,
	}
}

type fixture struct {
	parser   *mocks.EmployeeParserIface
	renderer *mocks.PayslipRendererIface
	sender   *mocks.SenderIface
	metrics  *metrics.Metrics
	logs     *bytes.Buffer
	service  *payroll.Payroll
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx := &fixture{
		parser:   mocks.NewEmployeeParserIface(t),
		renderer: mocks.NewPayslipRendererIface(t),
		sender:   mocks.NewSenderIface(t),
		metrics:  metrics.NewMetrics(prometheus.NewRegistry()),
		logs:     logs,
	}
	fx.service = payroll.NewPayroll(logger, fx.parser, fx.renderer, fx.sender, fx.metrics, "Acme Payroll")

	return fx
}

func TestProcessRecords(t *testing.T) {
	t.Run("should render and send a payslip", func(t *testing.T) {
		fx := newFixture(t)
		rec := employee(2, "101", "John Doe", " john@example.com ", 3500, 250, 120)

		fx.renderer.On("Render", mock.Anything, rec).Return("out/John_Doe_Payslip.pdf", nil).Once()
		fx.sender.On("Send", mock.Anything, mail.Message{
			To:             "john@example.com",
			Subject:        "Your Monthly Payslip",
			Body:           "Dear John Doe,\n\nPlease find attached your payslip for this month.\n\nRegards,\nAcme Payroll\n",
			AttachmentPath: "out/John_Doe_Payslip.pdf",
		}).Return(nil).Once()

		summary := fx.service.ProcessRecords(t.Context(), []models.EmployeeRecord{rec})

		require.Len(t, summary.Results, 1)
		assert.Equal(t, models.StatusSent, summary.Results[0].Status)
		assert.Equal(t, "out/John_Doe_Payslip.pdf", summary.Results[0].Path)
		require.NoError(t, summary.Results[0].Err)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Runs.WithLabelValues("success")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.RecordsProcessed.WithLabelValues("sent")), 0)
	})

	t.Run("should skip dispatch when email is blank", func(t *testing.T) {
		fx := newFixture(t)
		rec := employee(2, "102", "Jane Smith", "   ", 1000, 0, 0)

		fx.renderer.On("Render", mock.Anything, rec).Return("out/Jane_Smith_Payslip.pdf", nil).Once()

		summary := fx.service.ProcessRecords(t.Context(), []models.EmployeeRecord{rec})

		require.Len(t, summary.Results, 1)
		assert.Equal(t, models.StatusRendered, summary.Results[0].Status)
		require.NoError(t, summary.Results[0].Err)
		fx.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Runs.WithLabelValues("success")), 0)
	})

	t.Run("should continue after a render failure", func(t *testing.T) {
		fx := newFixture(t)
		broken := employee(2, "7", "Broken Row", "broken@example.com", 1, 0, 0)
		next := employee(3, "8", "Next Row", "next@example.com", 1, 0, 0)

		fx.renderer.On("Render", mock.Anything, broken).Return("", assert.AnError).Once()
		fx.renderer.On("Render", mock.Anything, next).Return("out/Next_Row_Payslip.pdf", nil).Once()
		fx.sender.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
			return msg.To == "next@example.com"
		})).Return(nil).Once()

		summary := fx.service.ProcessRecords(t.Context(), []models.EmployeeRecord{broken, next})

		require.Len(t, summary.Results, 2)
		assert.Equal(t, models.StatusFailed, summary.Results[0].Status)
		assert.Equal(t, models.StageRender, summary.Results[0].Stage)
		require.ErrorIs(t, summary.Results[0].Err, assert.AnError)
		assert.Equal(t, models.StatusSent, summary.Results[1].Status)

		assert.Contains(t, fx.logs.String(), "Error processing employee")
		assert.Contains(t, fx.logs.String(), `employee.name="Broken Row"`)
		assert.Contains(t, fx.logs.String(), "employee.id=7")
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Runs.WithLabelValues("failure")), 0)
	})

	t.Run("should continue after a dispatch failure", func(t *testing.T) {
		fx := newFixture(t)
		first := employee(2, "1", "First", "first@example.com", 1, 0, 0)
		second := employee(3, "2", "Second", "", 1, 0, 0)

		fx.renderer.On("Render", mock.Anything, first).Return("out/First_Payslip.pdf", nil).Once()
		fx.renderer.On("Render", mock.Anything, second).Return("out/Second_Payslip.pdf", nil).Once()
		fx.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("535 authentication failed")).Once()

		summary := fx.service.ProcessRecords(t.Context(), []models.EmployeeRecord{first, second})

		require.Len(t, summary.Failed(), 1)
		assert.Equal(t, models.StageDispatch, summary.Results[0].Stage)
		assert.Equal(t, "out/First_Payslip.pdf", summary.Results[0].Path)
		assert.Equal(t, models.StatusRendered, summary.Results[1].Status)
		assert.Contains(t, fx.logs.String(), "535 authentication failed")
	})

	t.Run("should recover a panicking renderer", func(t *testing.T) {
		fx := newFixture(t)
		first := employee(2, "1", "Panics", "", 1, 0, 0)
		second := employee(3, "2", "Fine", "", 1, 0, 0)

		fx.renderer.On("Render", mock.Anything, first).Return("", nil).Run(func(_ mock.Arguments) {
			panic("font table corrupted")
		}).Once()
		fx.renderer.On("Render", mock.Anything, second).Return("out/Fine_Payslip.pdf", nil).Once()

		summary := fx.service.ProcessRecords(t.Context(), []models.EmployeeRecord{first, second})

		require.Len(t, summary.Results, 2)
		assert.Equal(t, models.StatusFailed, summary.Results[0].Status)
		require.ErrorContains(t, summary.Results[0].Err, "font table corrupted")
		assert.Equal(t, models.StatusRendered, summary.Results[1].Status)
	})

	t.Run("should skip remaining records when cancelled", func(t *testing.T) {
		fx := newFixture(t)
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		records := []models.EmployeeRecord{
			employee(2, "1", "One", "one@example.com", 1, 0, 0),
			employee(3, "2", "Two", "two@example.com", 1, 0, 0),
		}

		summary := fx.service.ProcessRecords(ctx, records)

		assert.Equal(t, 2, summary.Count(models.StatusSkipped))
		fx.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Runs.WithLabelValues("failure")), 0)
	})

	t.Run("should report completion for an empty batch", func(t *testing.T) {
		fx := newFixture(t)

		summary := fx.service.ProcessRecords(t.Context(), nil)

		assert.Equal(t, 0, summary.Total())
		assert.Contains(t, fx.logs.String(), "All payslips processed")
	})
}

func TestStart(t *testing.T) {
	t.Run("should process loaded records", func(t *testing.T) {
		fx := newFixture(t)
		rec := employee(2, "1", "One", "", 1, 0, 0)

		fx.parser.On("ParseEmployees", mock.Anything, "employees.xlsx").Return([]models.EmployeeRecord{rec}, nil).Once()
		fx.renderer.On("Render", mock.Anything, rec).Return("out/One_Payslip.pdf", nil).Once()

		summary, err := fx.service.Start(t.Context(), "employees.xlsx")

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Count(models.StatusRendered))
	})

	t.Run("should return a load failure before processing", func(t *testing.T) {
		fx := newFixture(t)
		loadErr := &parser.LoadError{Path: "missing.xlsx", Err: os.ErrNotExist}

		fx.parser.On("ParseEmployees", mock.Anything, "missing.xlsx").Return(nil, loadErr).Once()

		summary, err := fx.service.Start(t.Context(), "missing.xlsx")

		require.Error(t, err)
		var target *parser.LoadError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, 0, summary.Total())
		fx.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Runs.WithLabelValues("failure")), 0)
	})
}

func TestPayslipMessage(t *testing.T) {
	t.Parallel()

	msg := payroll.PayslipMessage(employee(2, "1", "Ann Lee", "  ann@example.com", 1, 0, 0),
		filepath.Join("payslips", "Ann_Lee_Payslip.pdf"), "Mitchell Mukwaruwa")

	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Your Monthly Payslip", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Ann Lee,")
	assert.Contains(t, msg.Body, "Regards,\nMitchell Mukwaruwa")
	assert.Equal(t, filepath.Join("payslips", "Ann_Lee_Payslip.pdf"), msg.AttachmentPath)
}
