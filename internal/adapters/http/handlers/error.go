package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/catalog/internal/core/logger"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
)

// ErrorStage handles a request error. Returning nil stops the chain;
// returning an error hands it to the next stage.
type ErrorStage func(c *gin.Context, err error) error

// ErrorChain runs the remaining handlers and then feeds the last error they
// attached to the context through stages in order.
func ErrorChain(stages ...ErrorStage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		err := last.Err
		for _, stage := range stages {
			if err = stage(c, err); err == nil {
				return
			}
		}
	}
}

// LogError records the error and passes it on.
func LogError(c *gin.Context, err error) error {
	attrs := map[string]any{
		"http.method": c.Request.Method,
		"http.path":   c.Request.URL.Path,
	}

	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", err, attrs)
	} else {
		attrs["http.status_code"] = status
		attrs["error"] = err.Error()
		logger.Warn(c.Request.Context(), "request rejected", attrs)
	}
	return err
}

// ValidationErrors answers validation failures with the offending fields.
func ValidationErrors(c *gin.Context, err error) error {
	if !serviceerrors.IsOfKind(err, serviceerrors.KindValidation) {
		return err
	}

	fields := serviceerrors.FieldsOf(err)
	if fields == nil {
		fields = []serviceerrors.FieldError{}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Message: "validation error", Data: fields})
	return nil
}

// DefaultError renders the error page, or JSON when the client asks for it.
// Error details are only exposed in development.
func DefaultError(devMode bool) ErrorStage {
	return func(c *gin.Context, err error) error {
		status := StatusOf(err)
		view := ErrorResponse{Message: messageOf(err, status, devMode)}
		if devMode {
			view.Error = err.Error()
		}

		if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
			c.AbortWithStatusJSON(status, view)
			return nil
		}

		c.HTML(status, errorTemplate, gin.H{
			"status":  status,
			"title":   http.StatusText(status),
			"message": view.Message,
			"error":   view.Error,
		})
		c.Abort()
		return nil
	}
}

func StatusOf(err error) int {
	var svcErr *serviceerrors.ServiceError
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError
	}

	switch svcErr.Kind {
	case serviceerrors.KindNotFound:
		return http.StatusNotFound
	case serviceerrors.KindConflict:
		return http.StatusConflict
	case serviceerrors.KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case serviceerrors.KindInvalidRequest, serviceerrors.KindValidation:
		return http.StatusBadRequest
	case serviceerrors.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error, status int, devMode bool) string {
	var svcErr *serviceerrors.ServiceError
	if errors.As(err, &svcErr) && svcErr.Kind != serviceerrors.KindInternal {
		return svcErr.Message
	}
	if devMode {
		return err.Error()
	}
	return http.StatusText(status)
}
