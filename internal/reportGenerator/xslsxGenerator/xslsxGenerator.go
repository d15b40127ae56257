package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/stock_risk_client/internal/resultRenderer"
	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Analysis"

var ErrEmptyView = errors.New("error nothing to report")

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate writes the rendered analysis into a single-sheet workbook:
// the request parameters and VaR figure on the left, the plot next to them.
func (g *XSLSXGenerator) Generate(ctx context.Context, view resultRenderer.View) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if view.Empty() {
		return nil, "", ErrEmptyView
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", view.Symbol))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", sheetName); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillParameters(f, view); err != nil {
		slog.Error("got error while filling parameters", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if view.ShowPlot() {
		if err = g.addPlot(f, view); err != nil {
			slog.Error("got error while adding plot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillParameters(f *excelize.File, view resultRenderer.View) error {
	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		return err
	}
	_ = f.SetCellStr(sheetName, "A1", "Analysis")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(sheetName, "A1", "A1", headerStyle); err != nil {
		return fmt.Errorf("can't apply header style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", view.Symbol)
	_ = f.SetCellStr(sheetName, "A3", "interval")
	_ = f.SetCellStr(sheetName, "B3", string(view.Interval))

	if !view.ShowVar() {
		return f.SetColWidth(sheetName, "A", "B", 20)
	}

	p := view.Var
	rows := []struct {
		label string
		value any
	}{
		{"method", p.Method.Title()},
		{"portfolio value", p.PortfolioValue.InexactFloat64()},
		{"confidence, %", p.ConfidencePct.InexactFloat64()},
		{"historical days", p.HistoricalDays},
		{"horizon days", p.HorizonDays},
		{"value at risk", p.Value.InexactFloat64()},
	}

	for i, row := range rows {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", i+5), row.label)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+5), row.value)
	}

	varStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#f4cccc"},
		},
	})
	if err != nil {
		return err
	}
	last := fmt.Sprintf("B%d", len(rows)+4)
	if err = f.SetCellStyle(sheetName, last, last, varStyle); err != nil {
		return fmt.Errorf("can't apply value at risk style: %w", err)
	}

	return f.SetColWidth(sheetName, "A", "B", 20)
}

func (g *XSLSXGenerator) addPlot(f *excelize.File, view resultRenderer.View) error {
	img, err := view.PlotImage()
	if err != nil {
		return err
	}

	return f.AddPictureFromBytes(sheetName, "D2", &excelize.Picture{
		Extension: ".png",
		File:      img,
		Format:    &excelize.GraphicOptions{AltText: view.Symbol, AutoFit: true},
	})
}
