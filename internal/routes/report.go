package routes

import (
	"github.com/labstack/echo/v4"

	"counsel-dispatch/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, reportCtrl *controllers.ReportController) {
	secureGroup.GET("/report/workload", reportCtrl.GetWorkloadReport)
}
