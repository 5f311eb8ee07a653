package importer

import (
	"strings"
	"time"

	"github.com/fooddept/fdbms/internal/models"
)

// Contract fields.
const (
	fieldSanctionedNo   = "sanctioned_no"
	fieldContractorID   = "contractor_id"
	fieldContractorName = "contractor_name"
	fieldFromLocation   = "from_location"
	fieldToLocation     = "to_location"
	fieldRatePerKg      = "rate_per_kg"
	fieldEffectiveDate  = "effective_date"
	fieldStatus         = "status"
)

// ContractSchema lists the column names accepted for each contract field.
var ContractSchema = Schema{
	{Name: fieldSanctionedNo, Synonyms: []string{"sanctioned no", "sanctioned_no", "sanction no"}},
	{Name: fieldContractorID, Synonyms: []string{"contractor id", "contractor_id"}},
	{Name: fieldContractorName, Synonyms: []string{"contractor name", "contractor_name", "contractor"}},
	{Name: fieldFromLocation, Synonyms: []string{"from location", "from_location", "from"}},
	{Name: fieldToLocation, Synonyms: []string{"to location", "to_location", "to"}},
	{Name: fieldRatePerKg, Synonyms: []string{"rate per kg", "rate_per_kg", "rate", "rate/kg"}},
	{Name: fieldEffectiveDate, Synonyms: []string{"effective date", "effective_date", "date"}},
	{Name: fieldStatus, Synonyms: []string{"status"}},
}

// ContractKey is the natural key of a contract: contractor and route,
// case-insensitive.
func ContractKey(c models.Contract) string {
	return naturalKey(c.ContractorName, c.FromLocation, c.ToLocation)
}

func naturalKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Contracts is the import kind for contracts. New contracts are numbered
// after the highest existing id.
var Contracts = Kind[models.Contract]{
	Name:   "contracts",
	Schema: ContractSchema,
	Key:    ContractKey,
	RecordKey: func(rec Record) (string, bool) {
		if !rec.Has(fieldContractorName) || !rec.Has(fieldFromLocation) || !rec.Has(fieldToLocation) {
			return "", false
		}
		return naturalKey(
			rec[fieldContractorName].String(),
			rec[fieldFromLocation].String(),
			rec[fieldToLocation].String(),
		), true
	},
	Build: func(rec Record) (models.Contract, bool) {
		return applyContract(models.Contract{Status: models.ContractActive}, rec), true
	},
	Apply: applyContract,
	IDs: func(existing []models.Contract) func(models.Contract) models.Contract {
		var next int64 = 1
		for _, c := range existing {
			if c.ContractID >= next {
				next = c.ContractID + 1
			}
		}
		return func(c models.Contract) models.Contract {
			c.ContractID = next
			next++
			return c
		}
	},
}

func applyContract(c models.Contract, rec Record) models.Contract {
	if rec.Has(fieldSanctionedNo) {
		c.SanctionedNo = rec[fieldSanctionedNo].String()
	}
	if rec.Has(fieldContractorID) {
		c.ContractorID = int64(rec[fieldContractorID].Int())
	}
	if rec.Has(fieldContractorName) {
		c.ContractorName = strings.TrimSpace(rec[fieldContractorName].String())
	}
	if rec.Has(fieldFromLocation) {
		c.FromLocation = strings.TrimSpace(rec[fieldFromLocation].String())
	}
	if rec.Has(fieldToLocation) {
		c.ToLocation = strings.TrimSpace(rec[fieldToLocation].String())
	}
	if rec.Has(fieldRatePerKg) {
		c.RatePerKg = rec[fieldRatePerKg].Float()
	}
	if rec.Has(fieldEffectiveDate) {
		if d, ok := ParseDate(rec[fieldEffectiveDate]); ok {
			c.EffectiveDate = d
		}
	}
	if rec.Has(fieldStatus) {
		switch s := strings.TrimSpace(rec[fieldStatus].String()); s {
		case models.ContractActive, models.ContractInactive:
			c.Status = s
		default:
			c.Status = models.ContractActive
		}
	}
	return c
}

// excelEpoch is day zero of spreadsheet date serials.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02 Jan, 2006",
	"2 Jan, 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Serials are only taken as dates from 1990-01-01 up to 2100-01-01.
const (
	minSerial = 32874
	maxSerial = 73051
)

// ParseDate reads a spreadsheet date as YYYY-MM-DD. Number cells are day
// serials counted from 1899-12-30; text is tried against common layouts.
func ParseDate(c Cell) (string, bool) {
	if n, ok := c.Strict(); ok && c.Kind() == KindNumber && n >= minSerial && n < maxSerial {
		return excelEpoch.AddDate(0, 0, int(n)).Format("2006-01-02"), true
	}
	s := strings.TrimSpace(c.String())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}
	return "", false
}
