package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

func TestExtractFieldsEIN(t *testing.T) {
	assert.Equal(t, models.ExtractedFields{FieldTaxID: "123456789"}, ExtractFields("EIN: 12-3456789"))
}

func TestExtractFieldsFormationDocument(t *testing.T) {
	text := `ARTICLES OF ORGANIZATION
Legal Business Name: Acme Widgets LLC
EIN: 12-3456789
D-U-N-S No. 08-146-7789
Date of Formation: March 15, 2019
Business Address: 100 Main Street
Dover, DE 19901
Telephone: (302) 555-0100
Email: filings@acmewidgets.com
`

	assert.Equal(t, models.ExtractedFields{
		FieldTaxID:                 "123456789",
		FieldDUNSNumber:            "081467789",
		FieldLegalBusinessName:     "Acme Widgets LLC",
		FieldDateEstablished:       "2019-03-15",
		FieldBusinessAddressStreet: "100 Main Street",
		FieldBusinessAddressCity:   "Dover",
		FieldBusinessAddressState:  "DE",
		FieldBusinessAddressZip:    "19901",
		FieldBusinessPhone:         "3025550100",
		FieldBusinessEmail:         "filings@acmewidgets.com",
	}, ExtractFields(text))
}

func TestExtractFieldsSingleField(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
		want  string
	}{
		{"tax id without dash", "Employer ID 123456789", FieldTaxID, "123456789"},
		{"duns with number label", "D-U-N-S Number: 12-345-6789", FieldDUNSNumber, "123456789"},
		{"duns with hash", "d-u-n-s # 123456789", FieldDUNSNumber, "123456789"},
		{"legal name", "legal name:   Blue Harbor Holdings Inc.  ", FieldLegalBusinessName, "Blue Harbor Holdings Inc."},
		{"company name", "Company Name Northwind Traders\nOther: x", FieldLegalBusinessName, "Northwind Traders"},
		{"date established iso", "Date Established: 2018-07-04", FieldDateEstablished, "2018-07-04"},
		{"incorporated on", "Incorporated on 01/02/2020", FieldDateEstablished, "2020-01-02"},
		{"formed with trailing period", "Formed: June 1, 2021.", FieldDateEstablished, "2021-06-01"},
		{"location", "LOCATION: 9 Elm Ave Suite 4", FieldBusinessAddressStreet, "9 Elm Ave Suite 4"},
		{"place of business", "Place of Business 1 Market St", FieldBusinessAddressStreet, "1 Market St"},
		{"city state zip plus four", "Springfield, il 62704-1234", FieldBusinessAddressZip, "62704-1234"},
		{"state is uppercased", "Springfield, il 62704", FieldBusinessAddressState, "IL"},
		{"phone with country code", "Tel: +1 302.555.0100", FieldBusinessPhone, "3025550100"},
		{"email", "Contact Info@Acme.com today", FieldBusinessEmail, "Info@Acme.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ExtractFields(tt.text)
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestExtractFieldsFirstMatchWins(t *testing.T) {
	fields := ExtractFields("EIN: 11-1111111\nPrior EIN: 22-2222222\nBusiness Name: First\nCompany Name: Second")

	assert.Equal(t, "111111111", fields[FieldTaxID])
	assert.Equal(t, "First", fields[FieldLegalBusinessName])
}

func TestExtractFieldsLeavesUnparseableDatesUnset(t *testing.T) {
	tests := []string{
		"Date of Incorporation: sometime last spring",
		"Date of Formation: 1/2",
		"Formed: 1.2.3.4",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			fields := ExtractFields(text)

			_, ok := fields[FieldDateEstablished]
			assert.False(t, ok)
		})
	}
}

func TestExtractFieldsEmptyCaptureIsUnset(t *testing.T) {
	fields := ExtractFields("Business Name:\nAddress:   \n")

	assert.NotContains(t, fields, FieldLegalBusinessName)
	assert.NotContains(t, fields, FieldBusinessAddressStreet)
}

func TestExtractFieldsEmptyText(t *testing.T) {
	assert.Equal(t, models.ExtractedFields{}, ExtractFields(""))
	assert.Equal(t, models.ExtractedFields{}, ExtractFields("   \n\t"))
	assert.Equal(t, models.ExtractedFields{}, ExtractFields("nothing useful here"))
}

func TestExtractFieldsIsDeterministic(t *testing.T) {
	text := "Legal Name: Acme\nEIN 12-3456789\nFormed: 2020-02-02"
	assert.Equal(t, ExtractFields(text), ExtractFields(text))
}
