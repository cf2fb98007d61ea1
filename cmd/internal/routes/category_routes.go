package routes

import (
	"net/http"

	"amigella/cmd/internal/service"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetCategories(userID int) ([]*service.CategoryResponse, apierror.ErrorResponse)
}

type DefaultCategoryRoute struct {
	CategoryService CategoryService
}

func NewCategoryDefault(catService CategoryService) *DefaultCategoryRoute {
	return &DefaultCategoryRoute{CategoryService: catService}
}

func (r *DefaultCategoryRoute) GetCategories(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	cats, apierr := r.CategoryService.GetCategories(data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"categories": cats}
	return c.JSON(http.StatusOK, &resp)
}
