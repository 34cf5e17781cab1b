package screens

import (
	"encoding/json"
	"fmt"
	"strconv"
)

var (
	actionNew    = Action{ObjectID: "btnNew", Label: "New", Key: "n"}
	actionDelete = Action{ObjectID: "btnDelete", Label: "Delete", Key: "x"}
	actionExport = Action{ObjectID: "btnExcel", Label: "Export", Key: "e"}
)

// Catalog returns the built-in finance, master data and administration
// screens.
func Catalog() []Definition {
	return []Definition{
		{
			Route:    "/app/fcm/gl/slip",
			Title:    "GL Slips",
			Endpoint: "/api/fcm/gl/slips/search",
			Columns: []Column{
				{Key: "slipNo", Title: "Slip No", Width: 14},
				{Key: "slipDate", Title: "Date", Width: 10},
				{Key: "description", Title: "Description", Width: 28},
				{Key: "debitAmount", Title: "Debit", Width: 14, Right: true},
				{Key: "creditAmount", Title: "Credit", Width: 14, Right: true},
				{Key: "status", Title: "Status", Width: 8},
			},
			Actions: []Action{
				actionNew,
				{ObjectID: "btnPost", Label: "Post", Key: "p"},
				actionDelete,
				actionExport,
			},
			Required:   []string{"period"},
			CountLabel: "slips",
		},
		{
			Route:    "/app/fcm/ap/invoice",
			Title:    "AP Invoices",
			Endpoint: "/api/fcm/ap/invoices/search",
			Columns: []Column{
				{Key: "invoiceNo", Title: "Invoice", Width: 14},
				{Key: "vendorName", Title: "Vendor", Width: 24},
				{Key: "dueDate", Title: "Due", Width: 10},
				{Key: "currency", Title: "Cur", Width: 4},
				{Key: "amount", Title: "Amount", Width: 14, Right: true},
			},
			Actions:    []Action{actionNew, {ObjectID: "btnApprove", Label: "Approve", Key: "a"}, actionExport},
			CountLabel: "invoices",
		},
		{
			Route:    "/app/fcm/ar/receipt",
			Title:    "AR Receipts",
			Endpoint: "/api/fcm/ar/receipts/search",
			Columns: []Column{
				{Key: "receiptNo", Title: "Receipt", Width: 14},
				{Key: "customerName", Title: "Customer", Width: 24},
				{Key: "receiptDate", Title: "Date", Width: 10},
				{Key: "amount", Title: "Amount", Width: 14, Right: true},
			},
			Actions: []Action{actionNew, actionExport},
		},
		{
			Route:    "/app/mdm/account",
			Title:    "Chart of Accounts",
			Endpoint: "/api/mdm/accounts/search",
			Columns: []Column{
				{Key: "accountCode", Title: "Code", Width: 10},
				{Key: "accountName", Title: "Name", Width: 30},
				{Key: "accountType", Title: "Type", Width: 10},
				{Key: "useYn", Title: "Use", Width: 3},
			},
			Actions:    []Action{actionNew, actionDelete},
			CountLabel: "accounts",
		},
		{
			Route:    "/app/system/user",
			Title:    "Users",
			Endpoint: "/api/system/users/search",
			Columns: []Column{
				{Key: "loginId", Title: "Login", Width: 14},
				{Key: "userName", Title: "Name", Width: 20},
				{Key: "deptName", Title: "Department", Width: 18},
				{Key: "useYn", Title: "Use", Width: 3},
			},
			Actions: []Action{actionNew, {ObjectID: "btnResetPw", Label: "Reset password", Key: "r"}},
		},
	}
}

// Default is the registry over Catalog.
func Default() *Registry {
	r, err := NewRegistry(Catalog()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Cell formats one row value for display.
func Cell(row Row, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "Y"
		}
		return "N"
	default:
		return fmt.Sprint(v)
	}
}
