// Package export 报表导出为Excel工作簿
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/xiebiao/scrapledger/internal/domain/report"
)

// 工作表名称
const (
	SheetStock       = "Stock"
	SheetUnallocated = "Unallocated"
	SheetProfit      = "Profit"
)

const dateLayout = "2006-01-02"

// Workbook 一次导出包含的报表
// 为nil的报表不生成对应工作表;全部为nil时只保留库存表头
type Workbook struct {
	Stock       []report.MaterialStock
	Unallocated []report.UnallocatedPurchase
	Profit      []report.ProfitPoint
}

// sheet 一张工作表:表头 + 数据行
type sheet struct {
	name    string
	headers []interface{}
	rows    [][]interface{}
}

// Write 生成xlsx写入w
func Write(w io.Writer, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("写入Excel失败: %w", err)
	}
	return nil
}

// SaveAs 生成xlsx写入文件
func SaveAs(path string, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel失败: %w", err)
	}
	return nil
}

func build(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range wb.sheets() {
		if i == 0 {
			// 新文件自带一张默认工作表,改名复用
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("重命名工作表失败: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("创建工作表%s失败: %w", s.name, err)
		}
		if err := writeSheet(f, s); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s sheet) error {
	if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for i := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.rows[i]); err != nil {
			return fmt.Errorf("写入%s第%d行失败: %w", s.name, i+2, err)
		}
	}
	return nil
}

func (wb Workbook) sheets() []sheet {
	var out []sheet
	if wb.Stock != nil || (wb.Unallocated == nil && wb.Profit == nil) {
		out = append(out, stockSheet(wb.Stock))
	}
	if wb.Unallocated != nil {
		out = append(out, unallocatedSheet(wb.Unallocated))
	}
	if wb.Profit != nil {
		out = append(out, profitSheet(wb.Profit))
	}
	return out
}

// 重量和金额以decimal字符串写入,保持精度
func stockSheet(rows []report.MaterialStock) sheet {
	s := sheet{
		name:    SheetStock,
		headers: []interface{}{"MaterialID", "Material", "Unit", "Batches", "NetWeight"},
	}
	for _, r := range rows {
		s.rows = append(s.rows, []interface{}{r.MaterialID, r.MaterialName, r.Unit, r.Batches, r.NetWeight.String()})
	}
	return s
}

func unallocatedSheet(rows []report.UnallocatedPurchase) sheet {
	s := sheet{
		name:    SheetUnallocated,
		headers: []interface{}{"LineItemID", "TransactionID", "Date", "Counterparty", "Material", "Weight", "Allocated", "Remaining"},
	}
	for _, r := range rows {
		s.rows = append(s.rows, []interface{}{
			r.LineItemID, r.TransactionID, r.TransactionDate.Format(dateLayout), r.Counterparty,
			r.MaterialName, r.Weight.String(), r.Allocated.String(), r.Remaining.String(),
		})
	}
	return s
}

func profitSheet(rows []report.ProfitPoint) sheet {
	s := sheet{
		name:    SheetProfit,
		headers: []interface{}{"Date", "Revenue", "Cost", "Profit"},
	}
	for _, r := range rows {
		s.rows = append(s.rows, []interface{}{
			r.Date.Format(dateLayout), r.Revenue.String(), r.Cost.String(), r.Profit.String(),
		})
	}
	return s
}
