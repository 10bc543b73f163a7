// Package spreadsheet converts catalog offers to and from XLSX workbooks for
// the admin back office.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/peptidedeals/peptidedeals_api/internal/models"
	"github.com/peptidedeals/peptidedeals_api/pkg/peptideapi"
)

// SheetName is the worksheet written by Export.
const SheetName = "Offers"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column headers, one row per offer.
const (
	colPeptideID       = "Peptide ID"
	colName            = "Name"
	colCategory        = "Category"
	colUnit            = "Unit"
	colDosages         = "Dosages"
	colRetailerID      = "Retailer ID"
	colRetailerName    = "Retailer Name"
	colSize            = "Size"
	colPrice           = "Price"
	colDiscountedPrice = "Discounted Price"
	colDiscountPct     = "Discount %"
	colInStock         = "In Stock"
	colAffiliateURL    = "Affiliate URL"
	colCouponCode      = "Coupon Code"
)

var headers = []string{
	colPeptideID, colName, colCategory, colUnit, colDosages,
	colRetailerID, colRetailerName, colSize, colPrice, colDiscountedPrice,
	colDiscountPct, colInStock, colAffiliateURL, colCouponCode,
}

// RowError reports a spreadsheet row that could not be imported.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Reason) }

// Export writes one row per offer. Peptides without offers get a single row
// with empty offer columns.
func Export(peptides []models.Peptide) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return nil, err
	}

	row := 2
	for _, p := range peptides {
		offers := p.Retailers
		if len(offers) == 0 {
			offers = []models.RetailerOffer{{}}
		}
		for _, o := range offers {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := []interface{}{
				p.ID.String(), p.Name, p.Category, p.Unit, strings.Join(p.Dosages, ", "),
				o.RetailerID.String(), o.RetailerName, o.Size, priceCell(o.Price, o.RetailerID != ""),
				optionalCell(o.DiscountedPrice), optionalCell(o.DiscountPercentage),
				stockCell(o), o.AffiliateURL, stringCell(o.CouponCode),
			}
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func priceCell(v float64, hasOffer bool) interface{} {
	if !hasOffer {
		return ""
	}
	return v
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stockCell(o models.RetailerOffer) string {
	if o.RetailerID == "" {
		return ""
	}
	if o.Stock {
		return "yes"
	}
	return "no"
}

// Import reads the first worksheet and groups consecutive rows by peptide name
// into create payloads. Columns are matched by header text, case-insensitively.
// Rows that fail to parse are skipped and reported.
func Import(r io.Reader) ([]peptideapi.PeptideInput, []RowError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	cols := indexHeaders(rows[0])
	if _, ok := cols[strings.ToLower(colName)]; !ok {
		return nil, nil, fmt.Errorf("missing %q column", colName)
	}

	var (
		out     []peptideapi.PeptideInput
		rowErrs []RowError
		byName  = make(map[string]int)
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		get := func(col string) string {
			idx, ok := cols[strings.ToLower(col)]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := get(colName)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		pi, ok := byName[key]
		if !ok {
			pi = len(out)
			byName[key] = pi
			out = append(out, peptideapi.PeptideInput{
				Name:     name,
				Category: get(colCategory),
				Unit:     strings.ToLower(get(colUnit)),
				Dosages:  splitList(get(colDosages)),
			})
		}

		retailerID := get(colRetailerID)
		if retailerID == "" {
			continue
		}
		offer, err := parseOffer(retailerID, get)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		out[pi].Retailers = append(out[pi].Retailers, offer)
	}

	for i := range out {
		if out[i].Unit == "" {
			out[i].Unit = "mg"
		}
		if out[i].Retailers == nil {
			out[i].Retailers = []models.RetailerOffer{}
		}
	}
	return out, rowErrs, nil
}

func parseOffer(retailerID string, get func(string) string) (models.RetailerOffer, error) {
	o := models.RetailerOffer{
		RetailerID:   models.FlexibleID(retailerID),
		RetailerName: get(colRetailerName),
		Size:         get(colSize),
		AffiliateURL: get(colAffiliateURL),
		Stock:        parseBool(get(colInStock), true),
	}

	price, ok := parseAmount(get(colPrice))
	if !ok {
		return o, fmt.Errorf("invalid price %q", get(colPrice))
	}
	o.Price = price

	if v := get(colDiscountedPrice); v != "" {
		dp, ok := parseAmount(v)
		if !ok {
			return o, fmt.Errorf("invalid discounted price %q", v)
		}
		o.DiscountedPrice = &dp
	}
	if v := strings.TrimSuffix(get(colDiscountPct), "%"); v != "" {
		pct, ok := parseAmount(v)
		if !ok {
			return o, fmt.Errorf("invalid discount percentage %q", v)
		}
		o.DiscountPercentage = &pct
	}
	if v := get(colCouponCode); v != "" {
		o.CouponCode = &v
	}
	return o, nil
}

// parseAmount accepts finite non-negative numbers only; NaN and Inf do not encode as JSON.
func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func indexHeaders(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "in stock":
		return true
	case "no", "n", "false", "0", "out of stock":
		return false
	}
	return def
}
