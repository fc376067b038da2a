package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"counsel-dispatch/internal/entities"
	"counsel-dispatch/internal/services"
	"counsel-dispatch/pkg/api"
	"counsel-dispatch/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetWorkloadReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter, format := c.parseFilters(ctx)
	c.logger.Debug("workload report requested", zap.Any("filter", filter), zap.String("format", format))

	if format == "xlsx" {
		data, _, err := c.reportService.GetWorkloadReport(reqCtx, filter)
		if err != nil {
			return api.ErrorResponse(ctx, err)
		}
		return c.respondWithXLSX(ctx, data)
	}

	data, total, err := c.reportService.GetWorkloadReportDTOs(reqCtx, filter)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	page := 1
	if filter.Limit > 0 {
		page = (filter.Offset / filter.Limit) + 1
	}
	return api.SuccessList(ctx, "workload report", data, total, page, filter.Limit)
}

func (c *ReportController) parseFilters(ctx echo.Context) (entities.ReportFilter, string) {
	stdFilter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter := entities.ReportFilter{
		Region: ctx.QueryParam("region"),
		Limit:  stdFilter.Limit,
		Offset: stdFilter.Offset,
	}
	format := strings.ToLower(ctx.QueryParam("format"))

	if format == "xlsx" {
		// exports carry the whole report, not one page
		filter.Limit = 100000
		filter.Offset = 0
	}

	return filter, format
}

var workloadHeaders = []string{
	"Counselor ID", "Full Name", "Home Region", "Rating",
	"Active Requests", "Total Cases", "Completed Cases",
}

func workloadRowToSlice(item entities.WorkloadReportItem) []interface{} {
	return []interface{}{
		item.CounselorID, item.FullName, item.HomeRegion,
		fmt.Sprintf("%.2f", item.Rating),
		item.ActiveRequests, item.TotalCases, item.CompletedCases,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []entities.WorkloadReportItem) error {
	f := excelize.NewFile()
	sheet := "Counselor Workload"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &workloadHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "G1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := workloadRowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "G", 16)

	fileName := fmt.Sprintf("workload_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
