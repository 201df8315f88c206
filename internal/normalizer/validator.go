package normalizer

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"procfeed/internal/models"
)

// Validation errors.
var (
	ErrNilEntry           = errors.New("entry is nil")
	ErrMissingOrderID     = errors.New("missing electronic order id")
	ErrNegativeAmount     = errors.New("monetary field is negative")
	ErrNonFiniteAmount    = errors.New("monetary field is not finite")
	ErrZeroDate           = errors.New("date field is not set")
	ErrFieldTooLong       = errors.New("field exceeds maximum length")
	ErrNegativeDeliveries = errors.New("delivery counters are negative")
)

// Validator checks the invariants every accepted entry must satisfy. The mappers
// already produce conforming entries; the validator guards custom schemas and
// future mappers.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks entry.
func (v *Validator) Validate(entry *models.CanonicalProcurementEntry) error {
	if entry == nil {
		return ErrNilEntry
	}

	if entry.ElectronicOrderID == "" {
		return ErrMissingOrderID
	}

	money := []struct {
		name  string
		value float64
	}{
		{"unit_price", entry.UnitPrice},
		{"subtotal", entry.Subtotal},
		{"tax_amount", entry.TaxAmount},
		{"total_amount", entry.TotalAmount},
	}

	for _, m := range money {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return fmt.Errorf("%w: %s", ErrNonFiniteAmount, m.name)
		}

		if m.value < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, m.name)
		}
	}

	dates := []struct {
		name string
		zero bool
	}{
		{"publication_date", entry.PublicationDate.IsZero()},
		{"acceptance_date", entry.AcceptanceDate.IsZero()},
		{"delivery_start_date", entry.DeliveryStartDate.IsZero()},
		{"delivery_end_date", entry.DeliveryEndDate.IsZero()},
	}

	for _, d := range dates {
		if d.zero {
			return fmt.Errorf("%w: %s", ErrZeroDate, d.name)
		}
	}

	if entry.DeliveryNumber < 0 || entry.TotalDeliveries < 0 {
		return ErrNegativeDeliveries
	}

	if err := checkLengths(models.MaxCodeLen, []textField{
		{"framework_agreement_code", entry.FrameworkAgreementCode},
		{"electronic_order_id", entry.ElectronicOrderID},
		{"order_status", entry.OrderStatus},
		{"physical_order_ref", entry.PhysicalOrderRef},
		{"catalog_id", entry.CatalogID},
		{"supplier_tax_id", entry.SupplierTaxID},
		{"buyer_tax_id", entry.BuyerTaxID},
		{"part_number", entry.PartNumber},
	}); err != nil {
		return err
	}

	return checkLengths(models.MaxNameLen, []textField{
		{"supplier_name", entry.SupplierName},
		{"buyer_name", entry.BuyerName},
		{"executing_unit", entry.ExecutingUnit},
		{"procurement_method", entry.ProcurementMethod},
		{"purchase_type", entry.PurchaseType},
		{"category", entry.Category},
		{"brand", entry.Brand},
		{"delivery_department", entry.DeliveryDepartment},
		{"delivery_province", entry.DeliveryProvince},
		{"delivery_district", entry.DeliveryDistrict},
	})
}

type textField struct {
	name  string
	value string
}

func checkLengths(limit int, fields []textField) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > limit {
			return fmt.Errorf("%w: %s", ErrFieldTooLong, f.name)
		}
	}

	return nil
}
