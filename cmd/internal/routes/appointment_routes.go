package routes

import (
	"net/http"
	"strconv"

	"amigella/cmd/internal/service"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	GetAppointments(userID int, from, to string) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetToday(userID int) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(req *service.AppointmentRequest, userID int) (*service.OutcomeResponse, apierror.ErrorResponse)
	UpdateAppointment(id, userID int, req *service.UpdateAppointmentRequest) (*service.AppointmentResponse, apierror.ErrorResponse)
	DeleteAppointment(id, userID int) apierror.ErrorResponse
	GetFreeSlots(userID int, from, to string, minDurationMinutes int) (*service.FreeSlotsResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appts, apierr := a.AppointmentService.GetAppointments(data.UserID, c.QueryParam("from"), c.QueryParam("to"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetToday(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appts, apierr := a.AppointmentService.GetToday(data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	outcome, apierr := a.AppointmentService.CreateAppointment(&req, data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	// A created appointment is a 201; warnings are still successful calls.
	if outcome.Appointment != nil {
		return c.JSON(http.StatusCreated, outcome)
	}
	return c.JSON(http.StatusOK, outcome)
}

func (a *DefaultAppointmentRoute) UpdateAppointment(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	var req service.UpdateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	appt, apierr := a.AppointmentService.UpdateAppointment(id, data.UserID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, appt)
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errResp := apierror.NewSimple(400, "ID is not a number")
		return c.JSON(errResp.Code(), errResp)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	serr := a.AppointmentService.DeleteAppointment(id, data.UserID)
	if serr != nil {
		return c.JSON(serr.Code(), serr)
	}
	return c.NoContent(http.StatusOK)
}

func (a *DefaultAppointmentRoute) GetFreeSlots(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		apierr := apierror.NewMissingParamError("from/to")
		return c.JSON(apierr.Code(), apierr)
	}

	minDuration := 0
	if raw := c.QueryParam("min_duration"); raw != "" {
		minDuration, err = strconv.Atoi(raw)
		if err != nil {
			apierr := apierror.NewInvalidParamTypeError("min_duration", "int")
			return c.JSON(apierr.Code(), apierr)
		}
	}

	slots, apierr := a.AppointmentService.GetFreeSlots(data.UserID, from, to, minDuration)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, slots)
}
