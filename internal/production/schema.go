package production

import (
	"strconv"

	"github.com/sgmi/proddash/internal/tableview"
)

// Report table column names, usable with --sort.
const (
	ColDate     = "date"
	ColShift    = "shift"
	ColProduct  = "product"
	ColBatches  = "batches"
	ColApproxKg = "approxKg"
	ColTotalKg  = "totalKg"
	ColName     = "name"
	ColUnit     = "unit"
	ColActive   = "active"
)

// ReportSchema describes TableRow for sorting and rendering. Kilogram cells
// are formatted with f.
func ReportSchema(f *Formatter) tableview.Schema[TableRow] {
	return tableview.MustSchema(
		tableview.Column[TableRow]{
			Name: ColDate, Title: "Data", Kind: tableview.KindDate, Width: 12,
			Value: func(r TableRow) any { return r.Date },
		},
		tableview.Column[TableRow]{
			Name: ColShift, Title: "Turno", Kind: tableview.KindString, Width: 8,
			Value: func(r TableRow) any { return r.Shift.Label() },
		},
		tableview.Column[TableRow]{
			Name: ColProduct, Title: "Produto", Kind: tableview.KindString, Width: 24,
			Value: func(r TableRow) any { return r.Product },
		},
		tableview.Column[TableRow]{
			Name: ColBatches, Title: "Lotes", Kind: tableview.KindNumber, Align: tableview.AlignRight, Width: 7,
			Value:  func(r TableRow) any { return r.Batches },
			Format: func(r TableRow) string { return strconv.Itoa(r.Batches) },
		},
		tableview.Column[TableRow]{
			Name: ColApproxKg, Title: "Kg aprox.", Kind: tableview.KindNumber, Align: tableview.AlignRight, Width: 12,
			Value:  func(r TableRow) any { return r.ApproxKg },
			Format: func(r TableRow) string { return f.Kg(r.ApproxKg) },
		},
	)
}

// TotalSchema describes Total.
func TotalSchema(f *Formatter) tableview.Schema[Total] {
	return tableview.MustSchema(
		tableview.Column[Total]{
			Name: ColProduct, Title: "Produto", Kind: tableview.KindString, Width: 28,
			Value: func(t Total) any { return t.Product },
		},
		tableview.Column[Total]{
			Name: ColTotalKg, Title: "Total (kg)", Kind: tableview.KindNumber, Align: tableview.AlignRight, Width: 14,
			Value:  func(t Total) any { return t.TotalKg },
			Format: func(t Total) string { return f.Kg(t.TotalKg) },
		},
	)
}

// ProductSchema describes Product.
func ProductSchema() tableview.Schema[Product] {
	return tableview.MustSchema(
		tableview.Column[Product]{
			Name: "id", Title: "ID", Kind: tableview.KindString, Width: 36,
			Value: func(p Product) any { return p.ID },
		},
		tableview.Column[Product]{
			Name: ColName, Title: "Nome", Kind: tableview.KindString, Width: 24,
			Value: func(p Product) any { return p.Name },
		},
		tableview.Column[Product]{
			Name: ColUnit, Title: "Unidade", Kind: tableview.KindString, Width: 8,
			Value: func(p Product) any { return string(p.Unit) },
		},
		tableview.Column[Product]{
			Name: ColActive, Title: "Ativo", Kind: tableview.KindString, Width: 6,
			Value: func(p Product) any { return yesNo(p.Active) },
		},
	)
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
