package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/interface/http/response"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// ErrorHandler логирует ошибки запроса. Ошибки приложения клиентского
// уровня пишутся как warn, остальные как error. Если обработчик положил
// ошибку в c.Errors и ничего не ответил, клиент получает 500 без деталей.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": c.Writer.Status(),
		})
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
			entry.WithField("code", appErr.Code).Warn("Request error")
		} else {
			entry.Error("Request error")
		}

		if !c.Writer.Written() {
			response.Internal(c)
		}
	}
}
