package csvcodec

import (
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/pkg/errors"
)

const xlsxSheet = "Sheet1"

// ExportXLSX writes the same columns as Export as a single-sheet workbook.
func ExportXLSX(products []domain.Product, w io.Writer) error {
	f := excelize.NewFile()
	for c, h := range Header {
		f.SetCellValue(xlsxSheet, cellName(c, 1), h)
	}
	for i, p := range products {
		rowNo := i + 2
		for c, v := range Row(p) {
			switch c {
			case 0:
				f.SetCellValue(xlsxSheet, cellName(c, rowNo), p.ID)
			case 4:
				f.SetCellValue(xlsxSheet, cellName(c, rowNo), p.Price)
			default:
				f.SetCellValue(xlsxSheet, cellName(c, rowNo), v)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}

// cellName converts a zero-based column and one-based row into an A1 reference.
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name + strconv.Itoa(row)
}
