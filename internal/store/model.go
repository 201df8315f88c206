// Package store persists accepted procurement entries into PostgreSQL.
package store

import (
	"time"

	"procfeed/internal/models"
)

// OrderRecord maps to the procurement_entries table. One row per tenant, electronic
// order and delivery number.
type OrderRecord struct {
	ID                uint   `gorm:"primaryKey"`
	TenantID          string `gorm:"column:tenant_id;type:varchar(64);not null;uniqueIndex:idx_entry_key,priority:1"`
	ElectronicOrderID string `gorm:"column:electronic_order_id;type:varchar(50);not null;uniqueIndex:idx_entry_key,priority:2"`
	DeliveryNumber    int    `gorm:"column:delivery_number;not null;uniqueIndex:idx_entry_key,priority:3"`

	FrameworkAgreementCode string `gorm:"column:framework_agreement_code;type:varchar(50)"`
	ProcurementMethod      string `gorm:"column:procurement_method;type:varchar(255)"`
	PurchaseType           string `gorm:"column:purchase_type;type:varchar(255)"`
	OrderStatus            string `gorm:"column:order_status;type:varchar(50);index"`
	PhysicalOrderRef       string `gorm:"column:physical_order_ref;type:varchar(50)"`
	ScannedOrderLink       string `gorm:"column:scanned_order_link;type:text"`

	SupplierTaxID   string `gorm:"column:supplier_tax_id;type:varchar(50);index"`
	SupplierName    string `gorm:"column:supplier_name;type:varchar(255)"`
	SupplierAddress string `gorm:"column:supplier_address;type:text"`
	BuyerTaxID      string `gorm:"column:buyer_tax_id;type:varchar(50);index"`
	BuyerName       string `gorm:"column:buyer_name;type:varchar(255)"`
	ExecutingUnit   string `gorm:"column:executing_unit;type:varchar(255)"`

	CatalogID          string `gorm:"column:catalog_id;type:varchar(50)"`
	Category           string `gorm:"column:category;type:varchar(255)"`
	ProductDescription string `gorm:"column:product_description;type:text"`
	Brand              string `gorm:"column:brand;type:varchar(255)"`
	PartNumber         string `gorm:"column:part_number;type:varchar(50)"`
	ProductSheetLink   string `gorm:"column:product_sheet_link;type:text"`

	DeliveryDepartment string `gorm:"column:delivery_department;type:varchar(255)"`
	DeliveryProvince   string `gorm:"column:delivery_province;type:varchar(255)"`
	DeliveryDistrict   string `gorm:"column:delivery_district;type:varchar(255)"`
	DeliveryAddress    string `gorm:"column:delivery_address;type:text"`

	QuantityDelivered float64 `gorm:"column:quantity_delivered;type:decimal(18,4)"`
	UnitPrice         float64 `gorm:"column:unit_price;type:decimal(18,2)"`
	Subtotal          float64 `gorm:"column:subtotal;type:decimal(18,2)"`
	TaxAmount         float64 `gorm:"column:tax_amount;type:decimal(18,2)"`
	TotalAmount       float64 `gorm:"column:total_amount;type:decimal(18,2)"`
	TotalDeliveries   int     `gorm:"column:total_deliveries"`
	DeliveryTermDays  int     `gorm:"column:delivery_term_days"`

	PublicationDate   time.Time `gorm:"column:publication_date;index"`
	AcceptanceDate    time.Time `gorm:"column:acceptance_date"`
	DeliveryStartDate time.Time `gorm:"column:delivery_start_date"`
	DeliveryEndDate   time.Time `gorm:"column:delivery_end_date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name.
func (OrderRecord) TableName() string {
	return "procurement_entries"
}

// NewOrderRecord copies an entry into a row owned by tenantID.
func NewOrderRecord(tenantID string, e *models.CanonicalProcurementEntry) OrderRecord {
	return OrderRecord{
		TenantID:               tenantID,
		ElectronicOrderID:      e.ElectronicOrderID,
		DeliveryNumber:         e.DeliveryNumber,
		FrameworkAgreementCode: e.FrameworkAgreementCode,
		ProcurementMethod:      e.ProcurementMethod,
		PurchaseType:           e.PurchaseType,
		OrderStatus:            e.OrderStatus,
		PhysicalOrderRef:       e.PhysicalOrderRef,
		ScannedOrderLink:       e.ScannedOrderLink,
		SupplierTaxID:          e.SupplierTaxID,
		SupplierName:           e.SupplierName,
		SupplierAddress:        e.SupplierAddress,
		BuyerTaxID:             e.BuyerTaxID,
		BuyerName:              e.BuyerName,
		ExecutingUnit:          e.ExecutingUnit,
		CatalogID:              e.CatalogID,
		Category:               e.Category,
		ProductDescription:     e.ProductDescription,
		Brand:                  e.Brand,
		PartNumber:             e.PartNumber,
		ProductSheetLink:       e.ProductSheetLink,
		DeliveryDepartment:     e.DeliveryDepartment,
		DeliveryProvince:       e.DeliveryProvince,
		DeliveryDistrict:       e.DeliveryDistrict,
		DeliveryAddress:        e.DeliveryAddress,
		QuantityDelivered:      e.QuantityDelivered,
		UnitPrice:              e.UnitPrice,
		Subtotal:               e.Subtotal,
		TaxAmount:              e.TaxAmount,
		TotalAmount:            e.TotalAmount,
		TotalDeliveries:        e.TotalDeliveries,
		DeliveryTermDays:       e.DeliveryTermDays,
		PublicationDate:        e.PublicationDate,
		AcceptanceDate:         e.AcceptanceDate,
		DeliveryStartDate:      e.DeliveryStartDate,
		DeliveryEndDate:        e.DeliveryEndDate,
	}
}
