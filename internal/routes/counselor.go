package routes

import (
	"github.com/labstack/echo/v4"

	"counsel-dispatch/internal/controllers"
)

func runCounselorRouter(secureGroup *echo.Group, counselorCtrl *controllers.CounselorController) {
	{
		secureGroup.POST("/counselors", counselorCtrl.Register)
		secureGroup.GET("/counselors", counselorCtrl.GetCounselors)
		secureGroup.GET("/counselors/:id", counselorCtrl.FindCounselor)
		secureGroup.PUT("/counselors/:id", counselorCtrl.Update)
		secureGroup.POST("/counselors/:id/rating", counselorCtrl.ApplyRating)
		secureGroup.POST("/counselors/heartbeat", counselorCtrl.Heartbeat)
		secureGroup.PUT("/counselors/availability", counselorCtrl.SetAvailability)
	}
}
