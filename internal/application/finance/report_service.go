package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/finance"
)

// ReportService produces read-side rollups over the finance data
type ReportService struct {
	invoiceRepo finance.InvoiceRepository
	billRepo    finance.BillRepository
	paymentRepo finance.PaymentRepository
}

// NewReportService creates a new ReportService
func NewReportService(invoiceRepo finance.InvoiceRepository, billRepo finance.BillRepository, paymentRepo finance.PaymentRepository) *ReportService {
	return &ReportService{
		invoiceRepo: invoiceRepo,
		billRepo:    billRepo,
		paymentRepo: paymentRepo,
	}
}

// ReceivablesSummary rolls up the open customer invoices
type ReceivablesSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalOverdue     decimal.Decimal `json:"total_overdue"`
	UnpaidCount      int64           `json:"unpaid_count"`
	PartialCount     int64           `json:"partial_count"`
	PaidCount        int64           `json:"paid_count"`
	AsOf             time.Time       `json:"as_of"`
}

// GetReceivablesSummary rolls up outstanding and overdue balances across all
// invoices as of now
func (s *ReportService) GetReceivablesSummary(ctx context.Context) (*ReceivablesSummary, error) {
	now := time.Now()

	totalOutstanding, err := s.invoiceRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	totalOverdue, err := s.invoiceRepo.SumOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	counts, err := s.invoiceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &ReceivablesSummary{
		TotalOutstanding: totalOutstanding,
		TotalOverdue:     totalOverdue,
		UnpaidCount:      counts[finance.DocumentStatusUnpaid],
		PartialCount:     counts[finance.DocumentStatusPartial],
		PaidCount:        counts[finance.DocumentStatusPaid],
		AsOf:             now,
	}, nil
}

// PayablesSummary rolls up the open supplier bills
type PayablesSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	AsOf             time.Time       `json:"as_of"`
}

// GetPayablesSummary rolls up outstanding balances across all bills
func (s *ReportService) GetPayablesSummary(ctx context.Context) (*PayablesSummary, error) {
	totalOutstanding, err := s.billRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	return &PayablesSummary{
		TotalOutstanding: totalOutstanding,
		AsOf:             time.Now(),
	}, nil
}

// PaymentsSummary rolls up payment activity in a period
type PaymentsSummary struct {
	From            time.Time                  `json:"from"`
	To              time.Time                  `json:"to"`
	TotalByMethod   map[string]decimal.Decimal `json:"total_by_method"`
	TotalReceived   decimal.Decimal            `json:"total_received"`
	UndepositedSum  decimal.Decimal            `json:"undeposited_sum"`
}

// GetPaymentsSummary rolls up completed payments per method for the period
// plus the current undeposited funds total
func (s *ReportService) GetPaymentsSummary(ctx context.Context, from, to time.Time) (*PaymentsSummary, error) {
	byMethod, err := s.paymentRepo.SumByMethodBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	undeposited, err := s.paymentRepo.SumUndeposited(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, len(byMethod))
	received := decimal.Zero
	for method, sum := range byMethod {
		totals[string(method)] = sum
		received = received.Add(sum)
	}

	return &PaymentsSummary{
		From:           from,
		To:             to,
		TotalByMethod:  totals,
		TotalReceived:  received,
		UndepositedSum: undeposited,
	}, nil
}
