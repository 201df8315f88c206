package normalizer

import (
	"strings"
	"time"

	"procfeed/internal/models"
)

// ReleaseTransformer converts OCDS-style releases into canonical entries. Only the
// first award, contract and tender item of a release are read.
type ReleaseTransformer struct {
	parties *PartyResolver
}

// NewReleaseTransformer creates a transformer resolving parties with resolver.
// A nil resolver uses the default id prefixes.
func NewReleaseTransformer(resolver *PartyResolver) *ReleaseTransformer {
	if resolver == nil {
		resolver = NewPartyResolver(nil)
	}

	return &ReleaseTransformer{parties: resolver}
}

// Transform converts one release. Non-catalog purchases and releases without an
// ocid are rejected.
func (t *ReleaseTransformer) Transform(rel *models.Release, runDate time.Time) Outcome {
	if rel == nil {
		return Rejected(RejectMalformedElement, "release is null")
	}

	tender := rel.Tender
	if tender == nil {
		tender = &models.Tender{}
	}

	if !IsFrameworkCatalogPurchase(tender.ProcurementMethodDetails, tender.ProcurementMethod) {
		return Rejected(RejectNotCatalog, describeMethod(tender))
	}

	ocid := strings.TrimSpace(rel.OCID)
	if ocid == "" {
		return Rejected(RejectMissingReleaseID, "release has no ocid")
	}

	award := rel.FirstAward()
	contract := rel.FirstContract()
	item := rel.FirstItem()

	if award == nil {
		award = &models.Award{}
	}

	if contract == nil {
		contract = &models.Contract{}
	}

	if item == nil {
		item = &models.Item{}
	}

	b := newBuilder(runDate)

	supplierRef := ""
	if len(award.Suppliers) > 0 {
		supplierRef = award.Suppliers[0].ID.String()
	}

	buyerRef := ""
	if rel.Buyer != nil {
		buyerRef = rel.Buyer.ID.String()
	}

	supplierName := t.parties.ResolveName(rel.Parties, supplierRef, "supplier")
	buyerName := t.parties.ResolveName(rel.Parties, buyerRef, "buyer")

	supplierAddress := ""
	if party, ok := t.parties.Lookup(rel.Parties, supplierRef, "supplier"); ok && party.Address != nil {
		supplierAddress = party.Address.StreetAddress
	}

	executingUnit := buyerName
	if tender.ProcuringEntity != nil && strings.TrimSpace(tender.ProcuringEntity.Name) != "" {
		executingUnit = tender.ProcuringEntity.Name
	}

	method := tender.ProcurementMethod
	if strings.TrimSpace(method) == "" {
		method = tender.ProcurementMethodDetails
	}

	total := b.money(amountOf(contract.Value, award.Value))

	var category, partNumber any
	if item.Classification != nil {
		category = item.Classification.Description
		partNumber = item.Classification.ID
	}

	var unitPrice any
	if item.Unit != nil && item.Unit.Value != nil {
		unitPrice = item.Unit.Value.Amount
	}

	period := contract.Period
	if period == nil {
		period = &models.Period{}
	}

	acceptance := contract.DateSigned
	if strings.TrimSpace(acceptance) == "" {
		acceptance = award.Date
	}

	location := item.DeliveryAddress
	if location == nil {
		location = &models.Address{}
	}

	entry := &models.CanonicalProcurementEntry{
		FrameworkAgreementCode: b.code(tender.ID.String()),
		ProcurementMethod:      b.name(method),
		PurchaseType:           b.name(tender.MainProcurementCategory),
		ElectronicOrderID:      b.code(ocid),
		OrderStatus:            orderStatus(rel, contract),
		PhysicalOrderRef:       b.code(b.link(contract.ID.String())),
		ScannedOrderLink:       models.NotAvailable,

		SupplierTaxID:   b.code(t.parties.StripPrefix(supplierRef)),
		SupplierName:    b.name(supplierName),
		SupplierAddress: b.text(supplierAddress),
		BuyerTaxID:      b.code(t.parties.StripPrefix(buyerRef)),
		BuyerName:       b.name(buyerName),
		ExecutingUnit:   b.name(executingUnit),

		CatalogID:          b.code(tender.ProcurementMethodDetails),
		Category:           b.name(category),
		ProductDescription: b.text(item.Description),
		PartNumber:         b.code(partNumber),
		ProductSheetLink:   models.NotAvailable,

		DeliveryNumber:    1,
		TotalDeliveries:   1,
		QuantityDelivered: b.number(item.Quantity),
		UnitPrice:         b.money(unitPrice),
		Subtotal:          total,
		TotalAmount:       total,

		PublicationDate:   b.date(rel.Date),
		AcceptanceDate:    b.date(acceptance),
		DeliveryStartDate: b.date(period.StartDate),
		DeliveryTermDays:  b.integer(period.DurationInDays),
		DeliveryEndDate:   b.date(period.EndDate),

		DeliveryDepartment: b.name(location.Region),
		DeliveryProvince:   b.name(location.Locality),
		DeliveryDistrict:   b.name(location.District),
		DeliveryAddress:    b.text(location.StreetAddress),
	}

	return Accepted(entry, b.defaulted)
}

// amountOf returns the first declared amount: contract value, then award value.
func amountOf(values ...*models.Value) any {
	for _, v := range values {
		if v != nil && v.Amount != nil {
			return v.Amount
		}
	}

	return nil
}

func orderStatus(rel *models.Release, contract *models.Contract) string {
	if strings.EqualFold(strings.TrimSpace(contract.Status), "cancelled") {
		return models.StatusCancelled
	}

	for _, tag := range rel.Tag {
		if strings.Contains(strings.ToLower(tag), "cancel") {
			return models.StatusCancelled
		}
	}

	return models.StatusFormalized
}

func describeMethod(tender *models.Tender) string {
	switch {
	case tender.ProcurementMethodDetails != "":
		return "procurement method: " + tender.ProcurementMethodDetails
	case tender.ProcurementMethod != "":
		return "procurement method: " + tender.ProcurementMethod
	default:
		return "procurement method is empty"
	}
}
