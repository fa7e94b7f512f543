package handler

import (
	"context"
	"encoding/json"
	"errors"
	"go-bank-console/common"
	"go-bank-console/model"
	"go-bank-console/repository"
	"go-bank-console/service"
	"go-bank-console/testutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConsole struct {
	api     *testutil.FakeAccountsAPI
	handler *AccountHandler
	store   *service.MemoryNotificationStore
}

func newTestConsole(t *testing.T, accounts ...model.Account) *testConsole {
	t.Helper()
	api := testutil.NewFakeAccountsAPI(accounts...)
	t.Cleanup(api.Close)

	repo := repository.NewAccountRepository(api.BaseURL(), "", 2*time.Second)
	store := service.NewMemoryNotificationStore()
	t.Cleanup(store.Close)
	return &testConsole{
		api:     api,
		handler: NewAccountHandler(service.NewAccountService(repo, nil), store, false),
		store:   store,
	}
}

func (c *testConsole) serve(fn func(http.ResponseWriter, *http.Request) *common.AppError, method, id string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, "/", body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if id != "" {
		req.SetPathValue("id", id)
	}
	req = req.WithContext(context.WithValue(req.Context(), SessionIDKey, "test-session"))

	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(fn)(rr, req)
	return rr
}

func (c *testConsole) pendingNotification(t *testing.T) *model.Notification {
	t.Helper()
	n, err := c.store.Pop(context.Background(), "test-session")
	require.NoError(t, err)
	return n
}

func putBody(t *testing.T, req testutil.RecordedRequest) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

var tableRow = regexp.MustCompile(`data-account-id="(\d+)"`)

func ana() model.Account {
	return model.Account{ID: 1, AccountHolderName: "Ana", Balance: 100}
}

func TestAccountHandler_Index(t *testing.T) {
	t.Run("one row per account", func(t *testing.T) {
		c := newTestConsole(t, ana(), model.Account{ID: 2, AccountHolderName: "Luis", Balance: 20.5})

		rr := c.serve(c.handler.Index, http.MethodGet, "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		rows := tableRow.FindAllStringSubmatch(rr.Body.String(), -1)
		require.Len(t, rows, 2)
		assert.Equal(t, "1", rows[0][1])
		assert.Equal(t, "2", rows[1][1])
		assert.Contains(t, rr.Body.String(), "<td>Luis</td>")
		assert.Contains(t, rr.Body.String(), "<td>20.5</td>")
	})

	t.Run("remote failure is shown", func(t *testing.T) {
		c := newTestConsole(t, ana())
		c.api.FailMethod(http.MethodGet, http.StatusInternalServerError)

		rr := c.serve(c.handler.Index, http.MethodGet, "", nil)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "Could not load the accounts.")
		assert.Empty(t, tableRow.FindAllString(rr.Body.String(), -1))
	})

	t.Run("pending notification is shown once", func(t *testing.T) {
		c := newTestConsole(t)
		require.NoError(t, c.store.Push(context.Background(), "test-session", model.Success("Account deleted", "")))

		first := c.serve(c.handler.Index, http.MethodGet, "", nil)
		second := c.serve(c.handler.Index, http.MethodGet, "", nil)

		assert.Contains(t, first.Body.String(), "Account deleted")
		assert.NotContains(t, second.Body.String(), "Account deleted")
	})
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestConsole(t)

		rr := c.serve(c.handler.CreateAccount, http.MethodPost, "", url.Values{"accountHolderName": {"Ana"}, "balance": {"100"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		posts := c.api.RequestsWithMethod(http.MethodPost)
		require.Len(t, posts, 1)
		assert.Equal(t, map[string]interface{}{"accountHolderName": "Ana", "balance": 100.0}, putBody(t, posts[0]))

		n := c.pendingNotification(t)
		require.NotNil(t, n)
		assert.Equal(t, model.LevelSuccess, n.Level)
		assert.Equal(t, "Account created", n.Title)
	})

	t.Run("missing name keeps dialog open", func(t *testing.T) {
		c := newTestConsole(t)

		rr := c.serve(c.handler.CreateAccount, http.MethodPost, "", url.Values{"accountHolderName": {" "}, "balance": {"5"}})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "AccountHolderName is required")
		assert.Contains(t, rr.Body.String(), `id="formNewAccount"`)
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodPost))
	})

	t.Run("non-numeric balance", func(t *testing.T) {
		c := newTestConsole(t)

		rr := c.serve(c.handler.CreateAccount, http.MethodPost, "", url.Values{"accountHolderName": {"Ana"}, "balance": {"lots"}})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Balance must be a number")
		assert.Contains(t, rr.Body.String(), `value="Ana"`)
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodPost))
	})

	t.Run("remote failure is shown", func(t *testing.T) {
		c := newTestConsole(t)
		c.api.FailMethod(http.MethodPost, http.StatusInternalServerError)

		rr := c.serve(c.handler.CreateAccount, http.MethodPost, "", url.Values{"accountHolderName": {"Ana"}})

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "Could not create the account.")
		assert.Nil(t, c.pendingNotification(t))
	})
}

func TestAccountHandler_EditAndUpdate(t *testing.T) {
	t.Run("dialog is prefilled", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.EditAccountDialog, http.MethodGet, "1", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `action="/accounts/1"`)
		assert.Contains(t, body, `value="Ana"`)
		assert.Contains(t, body, `value="100"`)
	})

	t.Run("unknown account", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.EditAccountDialog, http.MethodGet, "99", nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "The account no longer exists.")
	})

	t.Run("update sends the full record", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.UpdateAccount, http.MethodPost, "1", url.Values{"accountHolderName": {"Ana María"}, "balance": {"80"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		puts := c.api.RequestsWithMethod(http.MethodPut)
		require.Len(t, puts, 1)
		assert.Equal(t, "/api/accounts/1", puts[0].Path)
		assert.Equal(t, map[string]interface{}{"id": 1.0, "accountHolderName": "Ana María", "balance": 80.0}, putBody(t, puts[0]))
		assert.Equal(t, "Account updated", c.pendingNotification(t).Title)
	})

	t.Run("malformed id", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.UpdateAccount, http.MethodPost, "abc", url.Values{"accountHolderName": {"Ana"}})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid account ID in URL path")
		assert.Empty(t, c.api.Requests())
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("confirmation dialog", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.DeleteAccountDialog, http.MethodGet, "1", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Are you sure you want to delete the account of Ana?")
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodDelete))
	})

	t.Run("without confirmation nothing is deleted", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.DeleteAccount, http.MethodPost, "1", url.Values{"confirm": {"no"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodDelete))
		_, stillThere := c.api.Account(1)
		assert.True(t, stillThere)
		assert.Nil(t, c.pendingNotification(t))
	})

	t.Run("confirmed", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.DeleteAccount, http.MethodPost, "1", url.Values{"confirm": {"yes"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		deletes := c.api.RequestsWithMethod(http.MethodDelete)
		require.Len(t, deletes, 1)
		assert.Equal(t, "/api/accounts/1", deletes[0].Path)
		assert.Equal(t, "Account deleted", c.pendingNotification(t).Title)
	})

	t.Run("remote failure is shown", func(t *testing.T) {
		c := newTestConsole(t, ana())
		c.api.FailMethod(http.MethodDelete, http.StatusServiceUnavailable)

		rr := c.serve(c.handler.DeleteAccount, http.MethodPost, "1", url.Values{"confirm": {"yes"}})

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), "Could not delete the account.")
	})
}

func TestAccountHandler_Deposit(t *testing.T) {
	t.Run("dialog shows current balance", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.DepositDialog, http.MethodGet, "1", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Current balance: 100")
		assert.Contains(t, rr.Body.String(), `action="/accounts/1/deposit"`)
	})

	t.Run("deposit 50 writes 150", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.Deposit, http.MethodPost, "1", url.Values{"amount": {"50"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		puts := c.api.RequestsWithMethod(http.MethodPut)
		require.Len(t, puts, 1)
		assert.Equal(t, map[string]interface{}{"id": 1.0, "accountHolderName": "Ana", "balance": 150.0}, putBody(t, puts[0]))
		assert.Equal(t, "Deposit completed", c.pendingNotification(t).Title)
	})

	for _, raw := range []string{"0", "-5", "abc", "", "1e-5000000", "1e400", "0.000000000000000000001"} {
		t.Run("invalid amount "+raw, func(t *testing.T) {
			c := newTestConsole(t, ana())

			rr := c.serve(c.handler.Deposit, http.MethodPost, "1", url.Values{"amount": {raw}})

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), "Enter a valid amount to deposit.")
			assert.Contains(t, rr.Body.String(), "Current balance: 100")
			assert.Empty(t, c.api.RequestsWithMethod(http.MethodPut))
			for _, req := range c.api.Requests() {
				assert.NotEqual(t, "/api/accounts/1", req.Path, "no single-account call for invalid input")
			}
		})
	}
}

func TestAccountHandler_MovementOnMissingAccount(t *testing.T) {
	for name, fn := range map[string]func(*AccountHandler) func(http.ResponseWriter, *http.Request) *common.AppError{
		"deposit":  func(h *AccountHandler) func(http.ResponseWriter, *http.Request) *common.AppError { return h.Deposit },
		"withdraw": func(h *AccountHandler) func(http.ResponseWriter, *http.Request) *common.AppError { return h.Withdraw },
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestConsole(t, ana())

			rr := c.serve(fn(c.handler), http.MethodPost, "9", url.Values{"amount": {"5"}})

			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Contains(t, rr.Body.String(), "The account no longer exists.")
			assert.NotContains(t, rr.Body.String(), "modal-backdrop")
			assert.NotContains(t, rr.Body.String(), "Current balance: 0")
			assert.Empty(t, c.api.RequestsWithMethod(http.MethodPut))
		})
	}
}

func TestAccountHandler_Withdraw(t *testing.T) {
	t.Run("withdraw 150 from 100 is blocked", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.Withdraw, http.MethodPost, "1", url.Values{"amount": {"150"}})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Insufficient balance for this withdrawal.")
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodPut))
		acc, _ := c.api.Account(1)
		assert.Equal(t, 100.0, acc.Balance)
	})

	t.Run("withdraw 40 writes 60", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.Withdraw, http.MethodPost, "1", url.Values{"amount": {"40"}})

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		puts := c.api.RequestsWithMethod(http.MethodPut)
		require.Len(t, puts, 1)
		assert.Equal(t, 60.0, putBody(t, puts[0])["balance"])
		assert.Equal(t, "Withdrawal completed", c.pendingNotification(t).Title)
	})

	t.Run("invalid amount", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.Withdraw, http.MethodPost, "1", url.Values{"amount": {"ten"}})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "Enter a valid amount to withdraw.")
		assert.Empty(t, c.api.RequestsWithMethod(http.MethodPut))
	})

	t.Run("dialog shows current balance", func(t *testing.T) {
		c := newTestConsole(t, ana())

		rr := c.serve(c.handler.WithdrawDialog, http.MethodGet, "1", nil)

		assert.Contains(t, rr.Body.String(), "Current balance: 100")
	})
}

func TestDescribeFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid amount", service.ErrInvalidAmount, http.StatusUnprocessableEntity, "Enter a valid amount to deposit."},
		{"insufficient", service.ErrInsufficientFunds, http.StatusUnprocessableEntity, "Insufficient balance for this withdrawal."},
		{"not found", service.ErrAccountNotFound, http.StatusNotFound, "The account no longer exists."},
		{"validation", &common.ValidationError{Fields: []string{"Balance must be a number"}}, http.StatusUnprocessableEntity, "Balance must be a number"},
		{"remote", errors.New("connection refused"), http.StatusBadGateway, "Could not deposit. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := describeFailure("deposit", tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}
