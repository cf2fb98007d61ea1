package routes

import (
	"net/http"

	"amigella/cmd/internal/service"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type SentinelService interface {
	Check(userID int, req *service.SentinelCheckRequest) (*service.SentinelCheckResponse, apierror.ErrorResponse)
	ForceAdd(userID int, req *service.ForceAddRequest) (*service.OutcomeResponse, apierror.ErrorResponse)
}

type DefaultSentinelRoute struct {
	SentinelService SentinelService
}

func NewSentinelDefault(sentinelService SentinelService) *DefaultSentinelRoute {
	return &DefaultSentinelRoute{SentinelService: sentinelService}
}

func (s *DefaultSentinelRoute) Check(c echo.Context) error {
	var req service.SentinelCheckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	resp, apierr := s.SentinelService.Check(data.UserID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSentinelRoute) ForceAdd(c echo.Context) error {
	var req service.ForceAddRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	resp, apierr := s.SentinelService.ForceAdd(data.UserID, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}
