package models

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Release is one OCDS-style release. Only the parts read by the transformer are modelled.
// Numeric fields that publishers emit either as numbers or as formatted strings are kept
// as `any` and coerced later.
type Release struct {
	Buyer     *PartyRef  `json:"buyer"`
	Tender    *Tender    `json:"tender"`
	OCID      string     `json:"ocid"`
	ID        FlexID     `json:"id"`
	Date      string     `json:"date"`
	Tag       []string   `json:"tag"`
	Parties   []Party    `json:"parties"`
	Awards    []Award    `json:"awards"`
	Contracts []Contract `json:"contracts"`
}

// Tender describes the procurement process.
type Tender struct {
	ProcuringEntity          *PartyRef `json:"procuringEntity"`
	ID                       FlexID    `json:"id"`
	Title                    string    `json:"title"`
	ProcurementMethod        string    `json:"procurementMethod"`
	ProcurementMethodDetails string    `json:"procurementMethodDetails"`
	MainProcurementCategory  string    `json:"mainProcurementCategory"`
	Items                    []Item    `json:"items"`
}

// Award is an award decision with its suppliers.
type Award struct {
	Value     *Value     `json:"value"`
	ID        FlexID     `json:"id"`
	Date      string     `json:"date"`
	Status    string     `json:"status"`
	Suppliers []PartyRef `json:"suppliers"`
}

// Contract is a signed contract.
type Contract struct {
	Value      *Value  `json:"value"`
	Period     *Period `json:"period"`
	ID         FlexID  `json:"id"`
	AwardID    FlexID  `json:"awardID"`
	Status     string  `json:"status"`
	DateSigned string  `json:"dateSigned"`
}

// Item is a tender line item.
type Item struct {
	Quantity        any             `json:"quantity"`
	Classification  *Classification `json:"classification"`
	Unit            *Unit           `json:"unit"`
	DeliveryAddress *Address        `json:"deliveryAddress"`
	ID              any             `json:"id"`
	Description     string          `json:"description"`
}

// Classification is an item classification entry.
type Classification struct {
	Scheme      string `json:"scheme"`
	ID          any    `json:"id"`
	Description string `json:"description"`
}

// Unit is the unit of measure of an item.
type Unit struct {
	Value *Value `json:"value"`
	Name  string `json:"name"`
}

// Value is a monetary amount.
type Value struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

// Period is a date range.
type Period struct {
	DurationInDays any    `json:"durationInDays"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

// PartyRef references an entry of Release.Parties by id.
type PartyRef struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// Party is an organization in the release's party registry.
type Party struct {
	Address    *Address    `json:"address"`
	Identifier *Identifier `json:"identifier"`
	ID         FlexID      `json:"id"`
	Name       string      `json:"name"`
	Roles      []string    `json:"roles"`
}

// Identifier is the primary legal identifier of a party.
type Identifier struct {
	ID        any    `json:"id"`
	Scheme    string `json:"scheme"`
	LegalName string `json:"legalName"`
}

// Address is a postal address. District is a publisher extension.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	District      string `json:"district"`
	CountryName   string `json:"countryName"`
}

// FirstAward returns the first award or nil.
func (r *Release) FirstAward() *Award {
	if len(r.Awards) == 0 {
		return nil
	}

	return &r.Awards[0]
}

// FirstContract returns the first contract or nil.
func (r *Release) FirstContract() *Contract {
	if len(r.Contracts) == 0 {
		return nil
	}

	return &r.Contracts[0]
}

// FirstItem returns the first tender item or nil.
func (r *Release) FirstItem() *Item {
	if r.Tender == nil || len(r.Tender.Items) == 0 {
		return nil
	}

	return &r.Tender.Items[0]
}

// FlexID is an identifier published either as a JSON string or a JSON number.
// Numbers keep their literal text, so 20100070970 stays "20100070970".
type FlexID string

// UnmarshalJSON accepts a string, a number or null.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)

	switch v.Type {
	case gjson.Null:
		*id = ""
	case gjson.String:
		*id = FlexID(v.Str)
	case gjson.Number:
		*id = FlexID(strings.TrimSpace(v.Raw))
	default:
		return fmt.Errorf("id must be a string or a number, got %s", strings.TrimSpace(string(data)))
	}

	return nil
}

// String returns the id with surrounding whitespace removed.
func (id FlexID) String() string {
	return strings.TrimSpace(string(id))
}
