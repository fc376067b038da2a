package routes

import (
	"github.com/labstack/echo/v4"

	"counsel-dispatch/internal/controllers"
)

func runRequestRouter(secureGroup *echo.Group, requestCtrl *controllers.RequestController) {
	{
		secureGroup.POST("/requests", requestCtrl.CreateRequest)
		secureGroup.GET("/requests", requestCtrl.ListOpen)
		secureGroup.GET("/requests/notified", requestCtrl.ListNotified)
		secureGroup.GET("/requests/mine", requestCtrl.ListMine)
		secureGroup.GET("/requests/:id", requestCtrl.FindRequest)
		secureGroup.POST("/requests/:id/accept", requestCtrl.Accept)
		secureGroup.POST("/requests/:id/complete", requestCtrl.Complete)
		secureGroup.POST("/requests/:id/cancel", requestCtrl.Cancel)
	}
}
