package normalizer

import (
	"strings"
	"time"

	"procfeed/internal/models"
	"procfeed/pkg/utils"
)

// Field names a canonical entry field addressable from tabular sources.
type Field string

// Canonical fields.
const (
	FieldFrameworkAgreement Field = "framework_agreement_code"
	FieldProcurementMethod  Field = "procurement_method"
	FieldPurchaseType       Field = "purchase_type"
	FieldOrderID            Field = "electronic_order_id"
	FieldOrderStatus        Field = "order_status"
	FieldPhysicalOrder      Field = "physical_order_ref"
	FieldScannedOrder       Field = "scanned_order_link"
	FieldSupplierTaxID      Field = "supplier_tax_id"
	FieldSupplierName       Field = "supplier_name"
	FieldSupplierAddress    Field = "supplier_address"
	FieldBuyerTaxID         Field = "buyer_tax_id"
	FieldBuyerName          Field = "buyer_name"
	FieldExecutingUnit      Field = "executing_unit"
	FieldCatalogID          Field = "catalog_id"
	FieldCategory           Field = "category"
	FieldProductDescription Field = "product_description"
	FieldBrand              Field = "brand"
	FieldPartNumber         Field = "part_number"
	FieldProductSheetLink   Field = "product_sheet_link"
	FieldDeliveryNumber     Field = "delivery_number"
	FieldTotalDeliveries    Field = "total_deliveries"
	FieldQuantity           Field = "quantity_delivered"
	FieldUnitPrice          Field = "unit_price"
	FieldSubtotal           Field = "subtotal"
	FieldTaxAmount          Field = "tax_amount"
	FieldTotalAmount        Field = "total_amount"
	FieldPublicationDate    Field = "publication_date"
	FieldAcceptanceDate     Field = "acceptance_date"
	FieldDeliveryStart      Field = "delivery_start_date"
	FieldDeliveryTerm       Field = "delivery_term_days"
	FieldDeliveryEnd        Field = "delivery_end_date"
	FieldDepartment         Field = "delivery_department"
	FieldProvince           Field = "delivery_province"
	FieldDistrict           Field = "delivery_district"
	FieldDeliveryAddress    Field = "delivery_address"
)

// FieldSpec lists the keyword fragments identifying a canonical field in an arbitrary
// column set. Exclude fragments disqualify a column that would otherwise match.
type FieldSpec struct {
	Field    Field
	Keywords []string
	Exclude  []string
}

// DefaultTabularSchema covers the column vocabularies seen in Peruvian open-data
// exports of electronic-catalog purchase orders.
var DefaultTabularSchema = []FieldSpec{
	{Field: FieldFrameworkAgreement, Keywords: []string{"ACUERDO MARCO", "CODIGO ACUERDO", "FRAMEWORK"}},
	{Field: FieldProcurementMethod, Keywords: []string{"PROCEDIMIENTO", "METODO CONTRATACION", "MODALIDAD"}},
	{Field: FieldPurchaseType, Keywords: []string{"TIPO COMPRA", "TIPO DE COMPRA", "PURCHASE TYPE"}},
	{
		Field:    FieldOrderID,
		Keywords: []string{"ORDEN ELECTRONICA", "NRO ORDEN", "NUMERO ORDEN", "ORDEN DE COMPRA", "ORDER ID"},
		Exclude:  []string{"ESTADO", "FISICA", "DIGITALIZADA", "FECHA", "LINK", "URL"},
	},
	{Field: FieldOrderStatus, Keywords: []string{"ESTADO ORDEN", "ESTADO", "STATUS"}},
	{Field: FieldPhysicalOrder, Keywords: []string{"ORDEN FISICA"}},
	{Field: FieldScannedOrder, Keywords: []string{"ORDEN DIGITALIZADA", "DIGITALIZADA"}},
	{Field: FieldSupplierTaxID, Keywords: []string{"RUC PROVEEDOR", "RUC CONTRATISTA", "SUPPLIER TAX"}},
	{
		Field:    FieldSupplierName,
		Keywords: []string{"RAZON SOCIAL PROVEEDOR", "PROVEEDOR", "CONTRATISTA", "SUPPLIER"},
		Exclude:  []string{"RUC", "DIRECCION", "DOMICILIO", "TAX"},
	},
	{Field: FieldSupplierAddress, Keywords: []string{"DIRECCION PROVEEDOR", "DOMICILIO PROVEEDOR"}},
	{Field: FieldBuyerTaxID, Keywords: []string{"RUC ENTIDAD", "RUC COMPRADOR", "BUYER TAX"}},
	{
		Field:    FieldBuyerName,
		Keywords: []string{"RAZON SOCIAL ENTIDAD", "ENTIDAD", "COMPRADOR", "BUYER"},
		Exclude:  []string{"RUC", "TAX"},
	},
	{Field: FieldExecutingUnit, Keywords: []string{"UNIDAD EJECUTORA", "EJECUTORA"}},
	{Field: FieldCatalogID, Keywords: []string{"CATALOGO"}},
	{Field: FieldCategory, Keywords: []string{"CATEGORIA"}},
	{
		Field:    FieldProductDescription,
		Keywords: []string{"DESCRIPCION FICHA", "DESCRIPCION PRODUCTO", "DESCRIPCION", "PRODUCTO"},
		Exclude:  []string{"MARCA", "LINK", "URL", "NRO PARTE"},
	},
	{Field: FieldBrand, Keywords: []string{"MARCA"}},
	{Field: FieldPartNumber, Keywords: []string{"NRO PARTE", "NRO DE PARTE", "NUMERO PARTE", "PART NUMBER"}},
	{
		Field:    FieldProductSheetLink,
		Keywords: []string{"LINK FICHA", "FICHA PRODUCTO", "FICHA TECNICA"},
		Exclude:  []string{"DESCRIPCION", "MARCA"},
	},
	{Field: FieldDeliveryNumber, Keywords: []string{"NRO ENTREGA", "NUMERO ENTREGA", "SECUENCIA ENTREGA"}},
	{Field: FieldTotalDeliveries, Keywords: []string{"TOTAL ENTREGAS", "NRO ENTREGAS", "CANTIDAD ENTREGAS"}},
	{Field: FieldQuantity, Keywords: []string{"CANTIDAD ENTREGA", "CANTIDAD", "QUANTITY"}, Exclude: []string{"ENTREGAS"}},
	{Field: FieldUnitPrice, Keywords: []string{"PRECIO UNITARIO", "PRECIO UNIT", "UNIT PRICE"}},
	{Field: FieldSubtotal, Keywords: []string{"SUB TOTAL", "SUBTOTAL"}},
	{Field: FieldTaxAmount, Keywords: []string{"IGV", "IMPUESTO", "TAX AMOUNT"}},
	{
		Field:    FieldTotalAmount,
		Keywords: []string{"MONTO TOTAL", "TOTAL ENTREGA", "IMPORTE TOTAL", "TOTAL AMOUNT", "MONTO"},
		Exclude:  []string{"ENTREGAS", "SUB"},
	},
	{Field: FieldPublicationDate, Keywords: []string{"FECHA PUBLICACION", "PUBLICACION"}},
	{Field: FieldAcceptanceDate, Keywords: []string{"FECHA ACEPTACION", "ACEPTACION"}},
	{Field: FieldDeliveryStart, Keywords: []string{"FECHA INICIO", "INICIO ENTREGA"}},
	{Field: FieldDeliveryTerm, Keywords: []string{"PLAZO ENTREGA", "PLAZO"}},
	{Field: FieldDeliveryEnd, Keywords: []string{"FECHA FIN", "FIN ENTREGA", "FECHA TERMINO"}},
	{Field: FieldDepartment, Keywords: []string{"DEPARTAMENTO", "REGION"}},
	{Field: FieldProvince, Keywords: []string{"PROVINCIA"}},
	{Field: FieldDistrict, Keywords: []string{"DISTRITO"}},
	{
		Field:    FieldDeliveryAddress,
		Keywords: []string{"DIRECCION ENTREGA", "LUGAR ENTREGA", "DIRECCION"},
		Exclude:  []string{"PROVEEDOR"},
	},
}

// TabularMapper maps rows with unpredictable column names onto canonical entries.
type TabularMapper struct {
	schema []FieldSpec
}

// NewTabularMapper creates a mapper for schema. A nil schema uses DefaultTabularSchema.
func NewTabularMapper(schema []FieldSpec) *TabularMapper {
	if schema == nil {
		schema = DefaultTabularSchema
	}

	prepared := make([]FieldSpec, len(schema))
	for i, fs := range schema {
		prepared[i] = FieldSpec{
			Field:    fs.Field,
			Keywords: foldAll(fs.Keywords),
			Exclude:  foldAll(fs.Exclude),
		}
	}

	return &TabularMapper{schema: prepared}
}

// Map converts one row. Rows without an electronic order id are rejected.
func (m *TabularMapper) Map(row models.Row, runDate time.Time) Outcome {
	lookup := m.match(row)
	b := newBuilder(runDate)

	entry := &models.CanonicalProcurementEntry{
		FrameworkAgreementCode: b.code(lookup[FieldFrameworkAgreement]),
		ProcurementMethod:      b.name(lookup[FieldProcurementMethod]),
		PurchaseType:           b.name(lookup[FieldPurchaseType]),
		ElectronicOrderID:      b.code(lookup[FieldOrderID]),
		OrderStatus:            b.code(lookup[FieldOrderStatus]),
		PhysicalOrderRef:       b.code(b.link(lookup[FieldPhysicalOrder])),
		ScannedOrderLink:       b.link(lookup[FieldScannedOrder]),

		SupplierTaxID:   b.code(lookup[FieldSupplierTaxID]),
		SupplierName:    b.name(lookup[FieldSupplierName]),
		SupplierAddress: b.text(lookup[FieldSupplierAddress]),
		BuyerTaxID:      b.code(lookup[FieldBuyerTaxID]),
		BuyerName:       b.name(lookup[FieldBuyerName]),
		ExecutingUnit:   b.name(lookup[FieldExecutingUnit]),

		CatalogID:          b.code(lookup[FieldCatalogID]),
		Category:           b.name(lookup[FieldCategory]),
		ProductDescription: b.text(lookup[FieldProductDescription]),
		Brand:              b.name(lookup[FieldBrand]),
		PartNumber:         b.code(lookup[FieldPartNumber]),
		ProductSheetLink:   b.link(lookup[FieldProductSheetLink]),

		DeliveryNumber:    b.integer(lookup[FieldDeliveryNumber]),
		TotalDeliveries:   b.integer(lookup[FieldTotalDeliveries]),
		QuantityDelivered: b.number(lookup[FieldQuantity]),
		UnitPrice:         b.money(lookup[FieldUnitPrice]),
		Subtotal:          b.money(lookup[FieldSubtotal]),
		TaxAmount:         b.money(lookup[FieldTaxAmount]),
		TotalAmount:       b.money(lookup[FieldTotalAmount]),

		PublicationDate:   b.date(lookup[FieldPublicationDate]),
		AcceptanceDate:    b.date(lookup[FieldAcceptanceDate]),
		DeliveryStartDate: b.date(lookup[FieldDeliveryStart]),
		DeliveryTermDays:  b.integer(lookup[FieldDeliveryTerm]),
		DeliveryEndDate:   b.date(lookup[FieldDeliveryEnd]),

		DeliveryDepartment: b.name(lookup[FieldDepartment]),
		DeliveryProvince:   b.name(lookup[FieldProvince]),
		DeliveryDistrict:   b.name(lookup[FieldDistrict]),
		DeliveryAddress:    b.text(lookup[FieldDeliveryAddress]),
	}

	if entry.ElectronicOrderID == "" {
		if _, found := lookup[FieldOrderID]; !found {
			return Rejected(RejectMissingOrderID, "no column matches the order id keywords")
		}

		return Rejected(RejectMissingOrderID, "order id column is empty")
	}

	return Accepted(entry, b.defaulted)
}

// Lookup returns the value of the column that best matches field, and whether any
// column matched.
func (m *TabularMapper) Lookup(row models.Row, field Field) (any, bool) {
	v, ok := m.match(row)[field]

	return v, ok
}

// match resolves every schema field to the value of the first row key, in row order,
// whose folded form contains one of the field's keywords.
func (m *TabularMapper) match(row models.Row) map[Field]any {
	folded := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		folded[i] = utils.FoldSeparators(utils.NormalizeKey(f.Key))
	}

	found := make(map[Field]any, len(m.schema))

	for _, fs := range m.schema {
		for i, key := range folded {
			if key == "" || containsAny(key, fs.Exclude) || !containsAny(key, fs.Keywords) {
				continue
			}

			found[fs.Field] = row.Fields[i].Value

			break
		}
	}

	return found
}

func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(s, fragment) {
			return true
		}
	}

	return false
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := utils.FoldSeparators(utils.NormalizeKey(s)); f != "" {
			out = append(out, f)
		}
	}

	return out
}
