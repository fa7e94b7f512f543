package router

import (
	"go-bank-console/handler"
	"go-bank-console/service"
	"net/http"
	"time"
)

// NewRouter builds the console route table. The health endpoint stays
// outside operator auth and sessions.
func NewRouter(accountHandler *handler.AccountHandler, authService *service.AuthService, sessionTTL time.Duration) http.Handler {
	pages := http.NewServeMux()

	pages.Handle("GET /{$}", handler.ErrorHandlingMiddleware(accountHandler.Index))
	pages.Handle("GET /accounts/new", handler.ErrorHandlingMiddleware(accountHandler.NewAccountDialog))
	pages.Handle("POST /accounts", handler.ErrorHandlingMiddleware(accountHandler.CreateAccount))
	pages.Handle("GET /accounts/{id}/edit", handler.ErrorHandlingMiddleware(accountHandler.EditAccountDialog))
	pages.Handle("POST /accounts/{id}", handler.ErrorHandlingMiddleware(accountHandler.UpdateAccount))
	pages.Handle("GET /accounts/{id}/delete", handler.ErrorHandlingMiddleware(accountHandler.DeleteAccountDialog))
	pages.Handle("POST /accounts/{id}/delete", handler.ErrorHandlingMiddleware(accountHandler.DeleteAccount))
	pages.Handle("GET /accounts/{id}/deposit", handler.ErrorHandlingMiddleware(accountHandler.DepositDialog))
	pages.Handle("POST /accounts/{id}/deposit", handler.ErrorHandlingMiddleware(accountHandler.Deposit))
	pages.Handle("GET /accounts/{id}/withdraw", handler.ErrorHandlingMiddleware(accountHandler.WithdrawDialog))
	pages.Handle("POST /accounts/{id}/withdraw", handler.ErrorHandlingMiddleware(accountHandler.Withdraw))

	var console http.Handler = pages
	console = handler.FormTokenMiddleware(authService, console)
	console = handler.SessionMiddleware(authService, sessionTTL, console)
	console = handler.OperatorAuthMiddleware(authService, console)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("/", console)

	return handler.LoggingMiddleware(mux)
}
