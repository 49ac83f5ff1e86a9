package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Returns "DESC" if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"code":               true,
	"name":               true,
	"status":             true,
	"payment_terms_days": true,
	"credit_limit":       true,
}

// ItemSortFields contains allowed sort fields for catalog items
var ItemSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"code":        true,
	"name":        true,
	"type":        true,
	"cost":        true,
	"sales_price": true,
	"on_hand":     true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"customer_id":    true,
	"customer_name":  true,
	"invoice_date":   true,
	"due_date":       true,
	"total_amount":   true,
	"balance_due":    true,
	"status":         true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"bill_number":   true,
	"supplier_id":   true,
	"supplier_name": true,
	"bill_date":     true,
	"due_date":      true,
	"total_amount":  true,
	"balance_due":   true,
	"status":        true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"supplier_id":   true,
	"supplier_name": true,
	"order_date":    true,
	"due_date":      true,
	"total_amount":  true,
	"balance_due":   true,
	"status":        true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"customer_id":    true,
	"supplier_id":    true,
	"payment_date":   true,
	"amount":         true,
	"method":         true,
	"status":         true,
	"is_deposited":   true,
}

// DepositSortFields contains allowed sort fields for deposits
var DepositSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"deposit_number": true,
	"deposit_date":   true,
	"total_amount":   true,
	"status":         true,
}
