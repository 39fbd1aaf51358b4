package export

import (
	"strconv"

	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

// Header is the fixed RSPL column set, in order.
var Header = []string{
	"SPARE PART NAME",
	"SUPPLIER PART NUMBER",
	"CAGE CODE NO. SUPPLIER",
	"HS CODE",
	"COO",
	"QUANTITY PER ASSEMBLY",
	"TYPE (Pr/Cr/Con)",
	"NO. RECOM. SPARES 0-2 YEARS",
	"NO. RECOM. SPARES 0-6 YEARS",
	"UNIT OF ISSUE",
	"REASON FOR SELECTION",
	"MIN. SALES QTY",
	"STANDARD PACKAGE QUANTITY",
	"DIMENSION ITEM L x W x H (CM)",
	"WEIGHT ITEM (KG)",
	"DIMENSION PACKAGING L x W x H (CM)",
	"WEIGHT PACKAGING (KG)",
	"SHELF LIFE (DAYS)",
	"SPECIAL STORAGE (Y/N)",
	"REPAIR LEVEL",
	"REQUIRED FOR HAT/SAT (Y/N)",
	"REMARKS",
}

// RecordRow renders one record in Header order.
func RecordRow(r entity.PartRecord) []string {
	return []string{
		r.Name,
		r.SupplierPartNumber,
		r.CageCode,
		r.HSCode,
		r.CountryOfOrigin,
		strconv.Itoa(r.QuantityPerAssembly),
		string(r.Classification),
		strconv.Itoa(r.RecommendedQty2Y),
		strconv.Itoa(r.RecommendedQty6Y),
		r.UnitOfIssue,
		r.Reason,
		strconv.Itoa(r.MinSalesQty),
		strconv.Itoa(r.StandardPackageQty),
		r.ItemDimensions,
		weight(r.ItemWeight),
		r.PackagingDimensions,
		weight(r.PackagingWeight),
		strconv.Itoa(r.ShelfLifeDays),
		yesNo(r.SpecialStorage),
		r.RepairLevel,
		yesNo(r.RequiredForAcceptanceTest),
		r.Remarks,
	}
}

// Rows returns the header followed by one row per result, in result order.
func Rows(job *entity.Job) [][]string {
	rows := make([][]string, 0, len(job.Results)+1)
	rows = append(rows, append([]string(nil), Header...))
	for _, r := range job.Results {
		rows = append(rows, RecordRow(r))
	}
	return rows
}

func weight(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
