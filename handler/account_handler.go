package handler

import (
	"context"
	"errors"
	"go-bank-console/common"
	"go-bank-console/logger"
	"go-bank-console/model"
	"go-bank-console/service"
	"go-bank-console/view"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const activityLimit = 20

// AccountHandler serves the account table page and its dialogs.
type AccountHandler struct {
	service       *service.AccountService
	notifications service.NotificationStore
	auditEnabled  bool
}

func NewAccountHandler(s *service.AccountService, notifications service.NotificationStore, auditEnabled bool) *AccountHandler {
	return &AccountHandler{service: s, notifications: notifications, auditEnabled: auditEnabled}
}

// Index renders the table.
func (h *AccountHandler) Index(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.render(w, r, http.StatusOK, nil, nil)
}

// NewAccountDialog renders the table with the create dialog open.
func (h *AccountHandler) NewAccountDialog(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.render(w, r, http.StatusOK, &view.Dialog{Kind: view.DialogCreate}, nil)
}

// CreateAccount handles the create dialog submit.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	form, formErr := accountForm(r)
	dialog := &view.Dialog{Kind: view.DialogCreate, Form: form}
	if formErr != nil {
		return h.fail(w, r, "create the account", formErr, dialog)
	}

	log := logger.Log.WithField("account_holder_name", form.AccountHolderName)
	log.Info("Create account request received")

	account, err := h.service.CreateAccount(r.Context(), form)
	if err != nil {
		return h.fail(w, r, "create the account", err, dialog)
	}

	log.WithField("account_id", account.ID).Info("Account created")
	return h.succeed(w, r, model.Success("Account created", "The account was added successfully."))
}

// EditAccountDialog renders the edit dialog prefilled from the remote record.
func (h *AccountHandler) EditAccountDialog(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.dialogFor(w, r, view.DialogEdit)
}

// UpdateAccount handles the edit dialog submit.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := accountID(r)
	if appErr != nil {
		return appErr
	}

	form, formErr := accountForm(r)
	dialog := &view.Dialog{Kind: view.DialogEdit, Account: &model.Account{ID: id}, Form: form}
	if formErr != nil {
		return h.fail(w, r, "update the account", formErr, dialog)
	}

	logger.Log.WithField("account_id", id).Info("Update account request received")

	if _, err := h.service.UpdateAccount(r.Context(), id, form); err != nil {
		return h.fail(w, r, "update the account", err, dialog)
	}
	return h.succeed(w, r, model.Success("Account updated", "The account was updated successfully."))
}

// DeleteAccountDialog renders the yes/no confirmation.
func (h *AccountHandler) DeleteAccountDialog(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.dialogFor(w, r, view.DialogDelete)
}

// DeleteAccount deletes only when the form carries confirm=yes.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := accountID(r)
	if appErr != nil {
		return appErr
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	logger.Log.WithFields(logrus.Fields{
		"account_id": id,
		"confirmed":  confirmed,
	}).Info("Delete account request received")

	err := h.service.DeleteAccount(r.Context(), id, confirmed)
	if errors.Is(err, service.ErrNotConfirmed) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil
	}
	if err != nil {
		return h.fail(w, r, "delete the account", err, nil)
	}
	return h.succeed(w, r, model.Success("Account deleted", "The account was deleted successfully."))
}

// DepositDialog renders the deposit dialog with the current balance.
func (h *AccountHandler) DepositDialog(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.dialogFor(w, r, view.DialogDeposit)
}

// Deposit handles the deposit dialog submit.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := accountID(r)
	if appErr != nil {
		return appErr
	}

	form := model.AmountForm{Amount: r.PostFormValue("amount")}
	logger.Log.WithFields(logrus.Fields{"account_id": id, "amount": form.Amount}).Info("Deposit request received")

	if _, err := h.service.Deposit(r.Context(), id, form.Amount); err != nil {
		dialog := &view.Dialog{Kind: view.DialogDeposit, Account: &model.Account{ID: id}, Amount: form.Amount}
		return h.fail(w, r, "deposit", err, dialog)
	}
	return h.succeed(w, r, model.Success("Deposit completed", "The deposit was made successfully."))
}

// WithdrawDialog renders the withdraw dialog with the current balance.
func (h *AccountHandler) WithdrawDialog(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.dialogFor(w, r, view.DialogWithdraw)
}

// Withdraw handles the withdraw dialog submit.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := accountID(r)
	if appErr != nil {
		return appErr
	}

	form := model.AmountForm{Amount: r.PostFormValue("amount")}
	logger.Log.WithFields(logrus.Fields{"account_id": id, "amount": form.Amount}).Info("Withdraw request received")

	if _, err := h.service.Withdraw(r.Context(), id, form.Amount); err != nil {
		dialog := &view.Dialog{Kind: view.DialogWithdraw, Account: &model.Account{ID: id}, Amount: form.Amount}
		return h.fail(w, r, "withdraw", err, dialog)
	}
	return h.succeed(w, r, model.Success("Withdrawal completed", "The withdrawal was made successfully."))
}

func (h *AccountHandler) dialogFor(w http.ResponseWriter, r *http.Request, kind view.DialogKind) *common.AppError {
	id, appErr := accountID(r)
	if appErr != nil {
		return appErr
	}

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		return h.fail(w, r, "load the account", err, nil)
	}

	dialog := &view.Dialog{
		Kind:    kind,
		Account: account,
		Form:    model.AccountForm{AccountHolderName: account.AccountHolderName, Balance: account.Balance},
	}
	return h.render(w, r, http.StatusOK, dialog, nil)
}

// succeed stores the notification for the session and redirects to the
// table, so a reload never repeats the write.
func (h *AccountHandler) succeed(w http.ResponseWriter, r *http.Request, n model.Notification) *common.AppError {
	if err := h.notifications.Push(r.Context(), sessionID(r.Context()), n); err != nil {
		logger.Log.WithError(err).Warn("Failed to store notification")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}

// fail re-renders the page with an error notification and the dialog, if
// any, still open with the operator's input. A dialog for an account that no
// longer exists is closed.
func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error, dialog *view.Dialog) *common.AppError {
	status, message := describeFailure(action, err)
	if status >= http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("action", action).Error("Remote accounts API call failed")
	}
	if errors.Is(err, service.ErrAccountNotFound) {
		dialog = nil
	}
	n := model.Failure(message)
	return h.render(w, r, status, dialog, &n)
}

func (h *AccountHandler) render(w http.ResponseWriter, r *http.Request, status int, dialog *view.Dialog, n *model.Notification) *common.AppError {
	ctx := r.Context()
	page := view.Page{Dialog: dialog, AuditEnabled: h.auditEnabled, FormToken: formToken(ctx)}

	if n == nil {
		pending, err := h.notifications.Pop(ctx, sessionID(ctx))
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to read notification")
		}
		n = pending
	}

	accounts, err := h.service.ListAccounts(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("Could not retrieve accounts")
		if n == nil {
			failure := model.Failure("Could not load the accounts. Please try again.")
			n = &failure
		}
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	}
	page.Accounts = accounts
	page.Notification = n

	if dialog != nil && dialog.Account != nil && dialog.Kind != view.DialogEdit {
		if fresh := findAccount(accounts, dialog.Account.ID); fresh != nil {
			dialog.Account = fresh
		}
	}

	if h.auditEnabled {
		page.Activity = h.recentActivity(ctx)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := view.Render(w, page); err != nil {
		logger.Log.WithError(err).Error("Failed to render page")
	}
	return nil
}

func (h *AccountHandler) recentActivity(ctx context.Context) []*model.Activity {
	activity, err := h.service.RecentActivity(ctx, activityLimit)
	if err != nil {
		logger.Log.WithError(err).Warn("Could not retrieve recent activity")
		return nil
	}
	return activity
}

// describeFailure maps a failed action to the status of the re-rendered
// page and the notification text.
func describeFailure(action string, err error) (int, string) {
	var validationErr *common.ValidationError
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAccountNotFound):
		status = http.StatusNotFound
	}
	return status, service.FailureMessage(action, err)
}

func findAccount(accounts []*model.Account, id int) *model.Account {
	for _, acc := range accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

func accountID(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid account ID in URL path", nil)
	}
	return id, nil
}

// accountForm reads the create/edit dialog fields.
func accountForm(r *http.Request) (model.AccountForm, error) {
	form := model.AccountForm{AccountHolderName: strings.TrimSpace(r.PostFormValue("accountHolderName"))}

	balance, err := service.ParseBalance(r.PostFormValue("balance"))
	if err != nil {
		return form, err
	}
	form.Balance = balance
	return form, nil
}
