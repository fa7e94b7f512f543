// Package view renders the console page. Every response is a full render of
// the table plus, at most, one open dialog.
package view

import (
	"embed"
	"go-bank-console/model"
	"html/template"
	"io"
	"strconv"
)

//go:embed templates/*.html
var templateFiles embed.FS

type DialogKind string

const (
	DialogCreate   DialogKind = "create"
	DialogEdit     DialogKind = "edit"
	DialogDelete   DialogKind = "delete"
	DialogDeposit  DialogKind = "deposit"
	DialogWithdraw DialogKind = "withdraw"
)

// Dialog is the modal shown over the table. Account is the target of every
// dialog except create; its id is carried in the form action.
type Dialog struct {
	Kind    DialogKind
	Account *model.Account
	Form    model.AccountForm
	Amount  string
}

// Page is everything one render needs.
type Page struct {
	Accounts     []*model.Account
	Notification *model.Notification
	Dialog       *Dialog
	Activity     []*model.Activity
	AuditEnabled bool
	// FormToken is posted back by every dialog form.
	FormToken string
}

var funcs = template.FuncMap{
	"money": FormatBalance,
	"isDialog": func(d *Dialog, kind string) bool {
		return d != nil && string(d.Kind) == kind
	},
	"alertClass": func(level model.NotificationLevel) string {
		if level == model.LevelSuccess {
			return "alert-success"
		}
		return "alert-danger"
	},
}

var pageTemplate = template.Must(template.New("page.html").Funcs(funcs).ParseFS(templateFiles, "templates/*.html"))

// FormatBalance prints a balance the way it is shown in the table and dialogs:
// shortest decimal form, no exponent.
func FormatBalance(balance float64) string {
	return strconv.FormatFloat(balance, 'f', -1, 64)
}

// Render writes the whole page.
func Render(w io.Writer, page Page) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", page)
}

// RenderError writes a minimal page for failures that happen before the
// table can be drawn, such as a malformed account id.
func RenderError(w io.Writer, message string) error {
	return pageTemplate.ExecuteTemplate(w, "error.html", message)
}
