package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/udeshare/internal/courses"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type course struct {
	catalog *courses.Catalog
	log     logrus.FieldLogger
}

// List returns the courses of the token's owner, served from cache when fresh.
func (h *course) List(c echo.Context) error {
	var params struct {
		AuthToken    string `json:"authToken"`
		ForceRefresh bool   `json:"forceRefresh"`
	}
	if err := c.Bind(&params); err != nil {
		return err
	}
	if params.AuthToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing auth token")
	}

	list, err := h.catalog.Courses(c.Request().Context(), params.AuthToken, params.ForceRefresh)
	if err != nil {
		h.log.WithError(err).Warn("could not fetch courses")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"error":   errors.Cause(err).Error(),
		})
	}
	if list == nil {
		list = []model.Course{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"courses": list,
	})
}
