// Package handlers contains the gin handlers for the report, screening,
// analytics, and health endpoints.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// APIResponse is the uniform envelope for every JSON response.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *common.ErrorDetail `json:"error,omitempty"`
	Meta    *Meta               `json:"meta,omitempty"`
}

// Meta carries pagination information for list responses.
type Meta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

func respondList(c *gin.Context, data any, page common.Pagination, total int64) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page.Page, PageSize: page.PageSize, Total: total},
	})
}

func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	detail := &common.ErrorDetail{Code: string(code), Message: err.Error()}
	if appErr, ok := err.(*errors.AppError); ok {
		detail.Message = appErr.Message
	}
	c.AbortWithStatusJSON(errors.HTTPStatus(code), APIResponse{Success: false, Error: detail})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, errors.New(errors.CodeInvalidParam, message))
}

// pageFromQuery reads page/page_size query parameters, applying defaults of
// page 1 and 20 items.
func pageFromQuery(c *gin.Context) (common.Pagination, error) {
	page := common.Pagination{Page: 1, PageSize: 20}
	var err error
	if page.Page, err = intQuery(c, "page", page.Page); err != nil {
		return page, err
	}
	if page.PageSize, err = intQuery(c, "page_size", page.PageSize); err != nil {
		return page, err
	}
	if err := page.Validate(); err != nil {
		return page, errors.Wrap(err, errors.CodeInvalidParam, "invalid pagination parameters")
	}
	return page, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.CodeInvalidParam, "%s must be an integer", name)
	}
	return n, nil
}
