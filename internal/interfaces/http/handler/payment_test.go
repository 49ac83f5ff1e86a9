package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	financeapp "github.com/smberp/backend/internal/application/finance"
	"github.com/smberp/backend/internal/domain/finance"
	"github.com/smberp/backend/internal/domain/partner"
)

func newPaymentTestServer(customerRepo *MockCustomerRepository, invoiceRepo *MockInvoiceRepository, paymentRepo *MockPaymentRepository) *gin.Engine {
	repos := &financeapp.StaticRepositories{
		InvoiceRepo: invoiceRepo,
		PaymentRepo: paymentRepo,
	}
	service := financeapp.NewPaymentService(customerRepo, paymentRepo, invoiceRepo, financeapp.NewNoOpTransactionScope(repos))
	h := NewPaymentHandler(service)

	engine := gin.New()
	engine.POST("/api/v1/finance/payments/apply", h.Apply)
	engine.GET("/api/v1/finance/payments/undeposited", h.ListUndeposited)
	return engine
}

func openInvoice(t *testing.T, customerID uuid.UUID, number string, total float64) finance.Invoice {
	t.Helper()
	invoiceDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dueDate := invoiceDate.AddDate(0, 0, 30)
	inv, err := finance.NewInvoice(number, customerID, "Acme Corp", invoiceDate, &dueDate)
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(nil, "Services", decimal.NewFromInt(1), decimal.NewFromFloat(total)))
	require.NoError(t, inv.Finalize())
	return *inv
}

func TestApplyPaymentEndpointAllocatesFIFO(t *testing.T) {
	customer, err := partner.NewCustomer("ACME-01", "Acme Corp")
	require.NoError(t, err)
	invoice := openInvoice(t, customer.ID, "INV-20250601-00001", 300)

	customerRepo := new(MockCustomerRepository)
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)

	customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	invoiceRepo.On("FindOpenByCustomer", mock.Anything, customer.ID).Return([]finance.Invoice{invoice}, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Invoice")).Return(nil)
	paymentRepo.On("GeneratePaymentNumber", mock.Anything).Return("PAY-20250610-00001", nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)

	engine := newPaymentTestServer(customerRepo, invoiceRepo, paymentRepo)

	body, _ := json.Marshal(gin.H{
		"customer_id":           customer.ID,
		"payment_amount":        "300",
		"payment_date":          "2025-06-10T00:00:00Z",
		"payment_method":        "CHECK",
		"ar_account_id":         uuid.New(),
		"deposit_to_account_id": uuid.New(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/payments/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool                           `json:"success"`
		Data    financeapp.ApplyPaymentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "PAY-20250610-00001", resp.Data.PaymentNumber)
	require.Len(t, resp.Data.Allocations, 1)
	assert.True(t, resp.Data.UnallocatedAmount.IsZero())
	invoiceRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestApplyPaymentEndpointManualInvoiceSplit(t *testing.T) {
	customer, err := partner.NewCustomer("ACME-01", "Acme Corp")
	require.NoError(t, err)
	invoiceA := openInvoice(t, customer.ID, "INV-A", 300)
	invoiceB := openInvoice(t, customer.ID, "INV-B", 150)
	arAccount := uuid.New()
	depositAccount := uuid.New()

	customerRepo := new(MockCustomerRepository)
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)

	customerRepo.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	invoiceRepo.On("FindByIDs", mock.Anything, []uuid.UUID{invoiceA.ID, invoiceB.ID}).
		Return([]finance.Invoice{invoiceA, invoiceB}, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Invoice")).Return(nil)
	paymentRepo.On("GeneratePaymentNumber", mock.Anything).Return("PAY-20250610-00002", nil)
	paymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *finance.Payment) bool {
		return p.ARAccountID != nil && *p.ARAccountID == arAccount &&
			p.DepositToAccountID != nil && *p.DepositToAccountID == depositAccount
	})).Return(nil)

	engine := newPaymentTestServer(customerRepo, invoiceRepo, paymentRepo)

	body, _ := json.Marshal(gin.H{
		"customer_id":           customer.ID,
		"payment_amount":        "450",
		"payment_date":          "2025-06-10T00:00:00Z",
		"payment_method":        "CHECK",
		"reference_number":      "CHK-1042",
		"ar_account_id":         arAccount,
		"deposit_to_account_id": depositAccount,
		"invoices": []gin.H{
			{"invoice_id": invoiceA.ID, "payment_amount": "300"},
			{"invoice_id": invoiceB.ID, "payment_amount": "150"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/payments/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data financeapp.ApplyPaymentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Allocations, 2)
	assert.True(t, resp.Data.UnallocatedAmount.IsZero())
	paymentRepo.AssertExpectations(t)
}

func TestApplyPaymentEndpointRequiresAccountTags(t *testing.T) {
	engine := newPaymentTestServer(new(MockCustomerRepository), new(MockInvoiceRepository), new(MockPaymentRepository))

	body, _ := json.Marshal(gin.H{
		"customer_id":    uuid.New(),
		"payment_amount": "100",
		"payment_date":   "2025-06-10T00:00:00Z",
		"payment_method": "CASH",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/payments/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyPaymentEndpointUnknownCustomer(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)

	missing := uuid.New()
	customerRepo.On("FindByID", mock.Anything, missing).Return(nil, nil)

	engine := newPaymentTestServer(customerRepo, invoiceRepo, paymentRepo)

	body, _ := json.Marshal(gin.H{
		"customer_id":           missing,
		"payment_amount":        "100",
		"payment_date":          "2025-06-10T00:00:00Z",
		"payment_method":        "CASH",
		"ar_account_id":         uuid.New(),
		"deposit_to_account_id": uuid.New(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/payments/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestApplyPaymentEndpointRejectsBadMethod(t *testing.T) {
	engine := newPaymentTestServer(new(MockCustomerRepository), new(MockInvoiceRepository), new(MockPaymentRepository))

	body, _ := json.Marshal(gin.H{
		"customer_id":           uuid.New(),
		"payment_amount":        "100",
		"payment_date":          "2025-06-10T00:00:00Z",
		"payment_method":        "BARTER",
		"ar_account_id":         uuid.New(),
		"deposit_to_account_id": uuid.New(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/finance/payments/apply", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUndepositedEndpoint(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)

	paymentRepo.On("FindUndeposited", mock.Anything).Return([]finance.Payment{}, nil)

	engine := newPaymentTestServer(customerRepo, invoiceRepo, paymentRepo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/finance/payments/undeposited", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	paymentRepo.AssertExpectations(t)
}
