package handler

import (
	"go-bank-console/common"
	"go-bank-console/logger"
	"go-bank-console/view"
	"net/http"
)

// ErrorHandlingMiddleware adapts a handler returning *common.AppError and
// renders the error as a page.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Log()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(err.Code)
			if renderErr := view.RenderError(w, err.Message); renderErr != nil {
				logger.Log.WithError(renderErr).Error("Failed to render error page")
			}
		}
	}
}
