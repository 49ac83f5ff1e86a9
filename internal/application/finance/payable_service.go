package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/partner"
	"github.com/smberp/backend/internal/domain/shared"
	"github.com/smberp/backend/internal/domain/shared/valueobject"
)

// PayableService records payments made to suppliers against a single bill or
// purchase order. Unlike the customer side there is no allocation spread: one
// payment settles one document, and overpaying it is allowed with the excess
// carried as supplier credit.
type PayableService struct {
	supplierRepo partner.SupplierRepository
	billRepo     finance.BillRepository
	orderRepo    finance.PurchaseOrderRepository
	scope        TransactionScope
	events       shared.EventPublisher
}

// PayableServiceOption is a functional option for configuring PayableService
type PayableServiceOption func(*PayableService)

// WithPayableEvents sets the publisher for payable domain events
func WithPayableEvents(events shared.EventPublisher) PayableServiceOption {
	return func(s *PayableService) {
		s.events = events
	}
}

// NewPayableService creates a new PayableService
func NewPayableService(supplierRepo partner.SupplierRepository, billRepo finance.BillRepository, orderRepo finance.PurchaseOrderRepository, scope TransactionScope, opts ...PayableServiceOption) *PayableService {
	s := &PayableService{
		supplierRepo: supplierRepo,
		billRepo:     billRepo,
		orderRepo:    orderRepo,
		scope:        scope,
		events:       shared.NopEventPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PaySupplierDocumentRequest records a payment against one supplier document
type PaySupplierDocumentRequest struct {
	SupplierID   uuid.UUID
	DocumentType finance.SourceDocumentType
	DocumentID   uuid.UUID
	Amount       decimal.Decimal
	PaymentDate  time.Time
	Method       finance.PaymentMethod
	Reference    string
	Memo         string
	ActorID      *uuid.UUID
}

// PaySupplierDocumentResult is the outcome of a supplier payment
type PaySupplierDocumentResult struct {
	PaymentID      uuid.UUID       `json:"payment_id"`
	PaymentNumber  string          `json:"payment_number"`
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	SupplierCredit decimal.Decimal `json:"supplier_credit"`
	Status         string          `json:"status"`
}

// PaySupplierDocument applies a payment to the named bill or purchase order
// and records the payment in one transaction
func (s *PayableService) PaySupplierDocument(ctx context.Context, req PaySupplierDocumentRequest) (*PaySupplierDocumentResult, error) {
	if req.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown payment method")
	}

	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	var result *PaySupplierDocumentResult
	var events []shared.DomainEvent
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Payments().GeneratePaymentNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		amount := valueobject.NewMoneyUSD(req.Amount)
		payment, err := finance.NewSupplierPayment(number, req.SupplierID, amount,
			req.PaymentDate, req.Method, req.DocumentType, req.DocumentID)
		if err != nil {
			return err
		}
		payment.Memo = req.Memo
		payment.TransactionID = req.Reference
		if req.ActorID != nil {
			payment.SetCreatedBy(*req.ActorID)
		}
		if err := payment.Complete(); err != nil {
			return err
		}

		var document shared.AggregateRoot
		switch req.DocumentType {
		case finance.SourceDocumentTypeBill:
			result, document, err = s.payBill(ctx, repos, req, payment, amount)
		case finance.SourceDocumentTypePurchaseOrder:
			result, document, err = s.payPurchaseOrder(ctx, repos, req, payment, amount)
		default:
			return shared.NewDomainError("INVALID_INPUT", "Supplier payments must reference a bill or purchase order")
		}
		if err != nil {
			return err
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		events = shared.CollectEvents(document, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events...)
	return result, nil
}

func (s *PayableService) payBill(ctx context.Context, repos TransactionalRepositories, req PaySupplierDocumentRequest, payment *finance.Payment, amount valueobject.Money) (*PaySupplierDocumentResult, shared.AggregateRoot, error) {
	bill, err := repos.Bills().FindByID(ctx, req.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	if bill == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	if bill.SupplierID != req.SupplierID {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Bill does not belong to the supplier")
	}

	if err := bill.ApplyPayment(amount, payment.ID); err != nil {
		return nil, nil, err
	}
	if err := repos.Bills().SaveWithLock(ctx, bill); err != nil {
		return nil, nil, err
	}

	return &PaySupplierDocumentResult{
		PaymentID:      payment.ID,
		PaymentNumber:  payment.PaymentNumber,
		DocumentID:     bill.ID,
		DocumentNumber: bill.BillNumber,
		Amount:         req.Amount,
		BalanceDue:     bill.BalanceDue,
		SupplierCredit: bill.SupplierCredit(),
		Status:         bill.Status.String(),
	}, bill, nil
}

func (s *PayableService) payPurchaseOrder(ctx context.Context, repos TransactionalRepositories, req PaySupplierDocumentRequest, payment *finance.Payment, amount valueobject.Money) (*PaySupplierDocumentResult, shared.AggregateRoot, error) {
	po, err := repos.PurchaseOrders().FindByID(ctx, req.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	if po == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Purchase order not found")
	}
	if po.SupplierID != req.SupplierID {
		return nil, nil, shared.NewDomainError("INVALID_INPUT", "Purchase order does not belong to the supplier")
	}

	if err := po.ApplyPayment(amount, payment.ID); err != nil {
		return nil, nil, err
	}
	if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
		return nil, nil, err
	}

	return &PaySupplierDocumentResult{
		PaymentID:      payment.ID,
		PaymentNumber:  payment.PaymentNumber,
		DocumentID:     po.ID,
		DocumentNumber: po.OrderNumber,
		Amount:         req.Amount,
		BalanceDue:     po.BalanceDue,
		SupplierCredit: po.SupplierCredit(),
		Status:         po.Status.String(),
	}, po, nil
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID              uuid.UUID       `json:"id"`
	BillNumber      string          `json:"bill_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	BillDate        time.Time       `json:"bill_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	SupplierCredit  decimal.Decimal `json:"supplier_credit"`
	Status          string          `json:"status"`
	EffectiveStatus string          `json:"effective_status"`
	Reference       string          `json:"reference,omitempty"`
	Memo            string          `json:"memo,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreateBillRequest creates a new supplier bill
type CreateBillRequest struct {
	SupplierID uuid.UUID
	BillDate   time.Time
	DueDate    *time.Time
	Total      decimal.Decimal
	Reference  string
	Memo       string
	ActorID    *uuid.UUID
}

// CreateBill creates and approves a bill for a supplier. When no due date is
// given the supplier's payment terms fill it in.
func (s *PayableService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	dueDate := req.DueDate
	if dueDate == nil {
		d := supplier.DefaultDueDate(req.BillDate)
		dueDate = &d
	}

	var response *BillResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.Bills().GenerateBillNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate bill number: %w", err)
		}

		total, err := valueobject.NewMoney(req.Total, supplier.Currency)
		if err != nil {
			return err
		}
		bill, err := finance.NewBill(number, supplier.ID, supplier.Name, req.BillDate, dueDate, total)
		if err != nil {
			return err
		}
		bill.Reference = req.Reference
		bill.Memo = req.Memo
		if req.ActorID != nil {
			bill.SetCreatedBy(*req.ActorID)
		}
		if err := bill.Approve(); err != nil {
			return err
		}
		if err := repos.Bills().Save(ctx, bill); err != nil {
			return err
		}
		response = toBillResponse(bill, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetBillByID gets a bill by ID with its effective status
func (s *PayableService) GetBillByID(ctx context.Context, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	return toBillResponse(bill, time.Now()), nil
}

// ListBills lists bills with pagination
func (s *PayableService) ListBills(ctx context.Context, filter shared.Filter) ([]BillResponse, int64, error) {
	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = *toBillResponse(&bills[i], now)
	}
	return responses, total, nil
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	OrderDate       time.Time       `json:"order_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	SupplierCredit  decimal.Decimal `json:"supplier_credit"`
	Status          string          `json:"status"`
	EffectiveStatus string          `json:"effective_status"`
	Memo            string          `json:"memo,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreatePurchaseOrderRequest creates a new purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID
	OrderDate  time.Time
	DueDate    *time.Time
	Total      decimal.Decimal
	Memo       string
	ActorID    *uuid.UUID
}

// CreatePurchaseOrder creates and approves a purchase order for a supplier
func (s *PayableService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	var response *PurchaseOrderResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.PurchaseOrders().GenerateOrderNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}

		total, err := valueobject.NewMoney(req.Total, supplier.Currency)
		if err != nil {
			return err
		}
		order, err := finance.NewPurchaseOrder(number, supplier.ID, supplier.Name, req.OrderDate, req.DueDate, total)
		if err != nil {
			return err
		}
		order.Memo = req.Memo
		if req.ActorID != nil {
			order.SetCreatedBy(*req.ActorID)
		}
		if err := order.Approve(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}
		response = toPurchaseOrderResponse(order, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetPurchaseOrderByID gets a purchase order by ID with its effective status
func (s *PayableService) GetPurchaseOrderByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Purchase order not found")
	}
	return toPurchaseOrderResponse(order, time.Now()), nil
}

// ListPurchaseOrders lists purchase orders with pagination
func (s *PayableService) ListPurchaseOrders(ctx context.Context, filter shared.Filter) ([]PurchaseOrderResponse, int64, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = *toPurchaseOrderResponse(&orders[i], now)
	}
	return responses, total, nil
}

// OpenSupplierDocumentsResponse lists a supplier's open bills and orders
type OpenSupplierDocumentsResponse struct {
	Bills          []BillResponse          `json:"bills"`
	PurchaseOrders []PurchaseOrderResponse `json:"purchase_orders"`
}

// ListOpenSupplierDocuments lists the bills and purchase orders of a supplier
// that still carry a balance
func (s *PayableService) ListOpenSupplierDocuments(ctx context.Context, supplierID uuid.UUID) (*OpenSupplierDocumentsResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if supplier == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Supplier not found")
	}

	bills, err := s.billRepo.FindOpenBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindOpenBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	response := &OpenSupplierDocumentsResponse{
		Bills:          make([]BillResponse, len(bills)),
		PurchaseOrders: make([]PurchaseOrderResponse, len(orders)),
	}
	for i := range bills {
		response.Bills[i] = *toBillResponse(&bills[i], now)
	}
	for i := range orders {
		response.PurchaseOrders[i] = *toPurchaseOrderResponse(&orders[i], now)
	}
	return response, nil
}

func toPurchaseOrderResponse(po *finance.PurchaseOrder, now time.Time) *PurchaseOrderResponse {
	return &PurchaseOrderResponse{
		ID:              po.ID,
		OrderNumber:     po.OrderNumber,
		SupplierID:      po.SupplierID,
		SupplierName:    po.SupplierName,
		OrderDate:       po.OrderDate,
		DueDate:         po.DueDate,
		TotalAmount:     po.TotalAmount,
		PaidAmount:      po.PaidAmount,
		BalanceDue:      po.BalanceDue,
		SupplierCredit:  po.SupplierCredit(),
		Status:          po.Status.String(),
		EffectiveStatus: po.EffectiveStatus(now).String(),
		Memo:            po.Memo,
		PaidAt:          po.PaidAt,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		Version:         po.GetVersion(),
	}
}

func toBillResponse(b *finance.Bill, now time.Time) *BillResponse {
	return &BillResponse{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		SupplierID:      b.SupplierID,
		SupplierName:    b.SupplierName,
		BillDate:        b.BillDate,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount,
		PaidAmount:      b.PaidAmount,
		BalanceDue:      b.BalanceDue,
		SupplierCredit:  b.SupplierCredit(),
		Status:          b.Status.String(),
		EffectiveStatus: b.EffectiveStatus(now).String(),
		Reference:       b.Reference,
		Memo:            b.Memo,
		PaidAt:          b.PaidAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.GetVersion(),
	}
}
