package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/udeshare/internal/apperror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler returns an error handler that renders errors as `{"error":{"message":"..."}}`.
// Unexpected errors are logged with a reference id given to the caller.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			if herr.Internal != nil {
				log.WithError(herr.Internal).Debug("echo error")
			}
			_ = c.JSON(herr.Code, echo.Map{
				"error": echo.Map{
					"message": herr.Message,
				},
			})
			return
		}

		if status := apperror.StatusCode(err); status < 500 {
			_ = c.JSON(status, echo.Map{
				"error": echo.Map{
					"message": apperror.Message(err),
				},
			})
			return
		}

		id := uuid.Must(uuid.NewV4()).String()
		log.WithField("id", id).WithError(err).Error("unexpected error")

		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"error": echo.Map{
				"message": fmt.Sprintf("Unexpected error (id: %s)", id),
			},
		})
	}
}
