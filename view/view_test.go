package view

import (
	"bytes"
	"fmt"
	"go-bank-console/model"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rowPattern = regexp.MustCompile(`(?s)<tr class="text-center" data-account-id="(\d+)">\s*<td>([^<]*)</td>\s*<td>([^<]*)</td>\s*<td>([^<]*)</td>`)

func render(t *testing.T, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, page))
	return buf.String()
}

func TestRender_OneRowPerAccount(t *testing.T) {
	accounts := []*model.Account{
		{ID: 1, AccountHolderName: "Ana", Balance: 100},
		{ID: 2, AccountHolderName: "Luis", Balance: 20.5},
		{ID: 30, AccountHolderName: "Eva", Balance: 0},
	}

	html := render(t, Page{Accounts: accounts})

	rows := rowPattern.FindAllStringSubmatch(html, -1)
	require.Len(t, rows, len(accounts))
	for i, acc := range accounts {
		assert.Equal(t, fmt.Sprint(acc.ID), rows[i][1])
		assert.Equal(t, fmt.Sprint(acc.ID), rows[i][2])
		assert.Equal(t, acc.AccountHolderName, rows[i][3])
		assert.Equal(t, FormatBalance(acc.Balance), rows[i][4])

		for _, action := range []string{"edit", "delete", "deposit", "withdraw"} {
			assert.Contains(t, html, fmt.Sprintf(`href="/accounts/%d/%s"`, acc.ID, action))
		}
	}
	assert.NotContains(t, html, "modal-backdrop")
}

func TestRender_EmptyTable(t *testing.T) {
	html := render(t, Page{})

	assert.Empty(t, rowPattern.FindAllString(html, -1))
	assert.Contains(t, html, "No accounts")
}

func TestRender_EscapesNames(t *testing.T) {
	html := render(t, Page{Accounts: []*model.Account{{ID: 1, AccountHolderName: `<script>alert(1)</script>`}}})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_Notification(t *testing.T) {
	html := render(t, Page{Notification: &model.Notification{Level: model.LevelError, Title: "Error", Message: "Insufficient balance for this withdrawal."}})

	assert.Contains(t, html, `class="alert alert-danger"`)
	assert.Contains(t, html, "Insufficient balance for this withdrawal.")

	html = render(t, Page{Notification: &model.Notification{Level: model.LevelSuccess, Title: "Account created"}})
	assert.Contains(t, html, `class="alert alert-success"`)
}

func TestRender_Dialogs(t *testing.T) {
	account := &model.Account{ID: 7, AccountHolderName: "Ana", Balance: 100}

	tests := []struct {
		dialog   *Dialog
		contains []string
	}{
		{
			dialog:   &Dialog{Kind: DialogCreate, Form: model.AccountForm{AccountHolderName: "Draft"}},
			contains: []string{`action="/accounts"`, `value="Draft"`, `id="formNewAccount"`},
		},
		{
			dialog:   &Dialog{Kind: DialogEdit, Account: account, Form: model.AccountForm{AccountHolderName: "Ana", Balance: 100}},
			contains: []string{`action="/accounts/7"`, `value="Ana"`, `value="100"`},
		},
		{
			dialog:   &Dialog{Kind: DialogDelete, Account: account},
			contains: []string{`action="/accounts/7/delete"`, `name="confirm" value="yes"`, `name="confirm" value="no"`},
		},
		{
			dialog:   &Dialog{Kind: DialogDeposit, Account: account, Amount: "abc"},
			contains: []string{`action="/accounts/7/deposit"`, "Current balance: 100", `value="abc"`},
		},
		{
			dialog:   &Dialog{Kind: DialogWithdraw, Account: account},
			contains: []string{`action="/accounts/7/withdraw"`, "Current balance: 100"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialog.Kind), func(t *testing.T) {
			html := render(t, Page{Accounts: []*model.Account{account}, Dialog: tt.dialog, FormToken: "tok-123"})

			assert.Equal(t, 1, strings.Count(html, "<form method=\"post\""), "exactly one dialog form")
			assert.Contains(t, html, `<input type="hidden" name="csrf_token" value="tok-123">`)
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
		})
	}
}

func TestRender_Activity(t *testing.T) {
	created := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	page := Page{
		AuditEnabled: true,
		Activity:     []*model.Activity{{Action: model.ActionDeposit, AccountID: 1, Amount: 50, BalanceAfter: 150, CreatedAt: created}},
	}

	html := render(t, page)

	assert.Contains(t, html, `id="tableActivity"`)
	assert.Contains(t, html, "2026-10-19 08:30:00")
	assert.Contains(t, html, "<td>deposit</td>")

	assert.NotContains(t, render(t, Page{}), `id="tableActivity"`)
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "100", FormatBalance(100))
	assert.Equal(t, "20.5", FormatBalance(20.5))
	assert.Equal(t, "0.3", FormatBalance(0.3))
	assert.Equal(t, "1000000", FormatBalance(1e6))
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderError(&buf, "Invalid account ID"))
	assert.Contains(t, buf.String(), "Invalid account ID")
}
