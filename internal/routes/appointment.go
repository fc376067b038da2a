package routes

import (
	"github.com/labstack/echo/v4"

	"counsel-dispatch/internal/controllers"
)

func runAppointmentRouter(secureGroup *echo.Group, appointmentCtrl *controllers.AppointmentController) {
	{
		secureGroup.POST("/appointments", appointmentCtrl.ScheduleBooking)
		secureGroup.GET("/appointments/queue", appointmentCtrl.ListQueued)
		secureGroup.GET("/appointments/mine", appointmentCtrl.ListMine)
		secureGroup.POST("/appointments/:id/accept", appointmentCtrl.AcceptQueued)
	}
}
