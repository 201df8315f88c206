// Package models defines data structures for feed ingestion and normalization.
package models

import (
	"strconv"
	"time"
)

// Storage bounds for text fields, in runes.
const (
	MaxCodeLen = 50
	MaxNameLen = 255
)

// Sentinel labels.
const (
	StatusFormalized = "FORMALIZED"
	StatusCancelled  = "CANCELLED"
	UnknownParty     = "UNKNOWN"
	NotAvailable     = "N/A"
)

// CanonicalProcurementEntry is one delivery line of one accepted purchase order.
// Entries are built once per ingestion run and never mutated afterwards.
type CanonicalProcurementEntry struct {
	PublicationDate   time.Time `json:"publication_date"`
	AcceptanceDate    time.Time `json:"acceptance_date"`
	DeliveryStartDate time.Time `json:"delivery_start_date"`
	DeliveryEndDate   time.Time `json:"delivery_end_date"`

	// Identity and classification.
	FrameworkAgreementCode string `json:"framework_agreement_code"`
	ProcurementMethod      string `json:"procurement_method"`
	PurchaseType           string `json:"purchase_type"`
	ElectronicOrderID      string `json:"electronic_order_id"`
	OrderStatus            string `json:"order_status"`
	PhysicalOrderRef       string `json:"physical_order_ref"`
	ScannedOrderLink       string `json:"scanned_order_link"`

	// Counterparties.
	SupplierTaxID   string `json:"supplier_tax_id"`
	SupplierName    string `json:"supplier_name"`
	SupplierAddress string `json:"supplier_address"`
	BuyerTaxID      string `json:"buyer_tax_id"`
	BuyerName       string `json:"buyer_name"`
	ExecutingUnit   string `json:"executing_unit"`

	// Catalog and product.
	CatalogID          string `json:"catalog_id"`
	Category           string `json:"category"`
	ProductDescription string `json:"product_description"`
	Brand              string `json:"brand"`
	PartNumber         string `json:"part_number"`
	ProductSheetLink   string `json:"product_sheet_link"`

	// Delivery location.
	DeliveryDepartment string `json:"delivery_department"`
	DeliveryProvince   string `json:"delivery_province"`
	DeliveryDistrict   string `json:"delivery_district"`
	DeliveryAddress    string `json:"delivery_address"`

	// Commercial quantities.
	QuantityDelivered float64 `json:"quantity_delivered"`
	UnitPrice         float64 `json:"unit_price"`
	Subtotal          float64 `json:"subtotal"`
	TaxAmount         float64 `json:"tax_amount"`
	TotalAmount       float64 `json:"total_amount"`
	DeliveryNumber    int     `json:"delivery_number"`
	TotalDeliveries   int     `json:"total_deliveries"`
	DeliveryTermDays  int     `json:"delivery_term_days"`
}

// EntryKey identifies one delivery of one electronic order. It mirrors the
// unique index the persistence layer upserts on, minus the tenant.
type EntryKey struct {
	ElectronicOrderID string
	DeliveryNumber    int
}

// String renders the key for logs.
func (k EntryKey) String() string {
	return k.ElectronicOrderID + "#" + strconv.Itoa(k.DeliveryNumber)
}

// Key returns the business key the persistence layer upserts on.
func (e *CanonicalProcurementEntry) Key() EntryKey {
	return EntryKey{ElectronicOrderID: e.ElectronicOrderID, DeliveryNumber: e.DeliveryNumber}
}
