package console

import (
	"fmt"
	"go-bank-console/model"
	"go-bank-console/view"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	balanceStyle = cellStyle.Align(lipgloss.Right)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// RenderTable draws one row per account.
func RenderTable(accounts []*model.Account) string {
	if len(accounts) == 0 {
		return "No accounts"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "Account holder", "Balance").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2:
				return balanceStyle
			default:
				return cellStyle
			}
		})
	for _, acc := range accounts {
		t.Row(strconv.Itoa(acc.ID), acc.AccountHolderName, view.FormatBalance(acc.Balance))
	}
	return t.String()
}

// FormatNotification renders a notification as one coloured line.
func FormatNotification(n model.Notification) string {
	style := successStyle
	if n.Level == model.LevelError {
		style = errorStyle
	}
	line := style.Render(n.Title)
	if n.Message != "" {
		line += " " + n.Message
	}
	return line
}

// AccountOptions builds the choices of the account picker.
func AccountOptions(accounts []*model.Account) []huh.Option[int] {
	options := make([]huh.Option[int], 0, len(accounts))
	for _, acc := range accounts {
		label := fmt.Sprintf("#%d %s (balance %s)", acc.ID, acc.AccountHolderName, view.FormatBalance(acc.Balance))
		options = append(options, huh.NewOption(label, acc.ID))
	}
	return options
}

func actionOptions() []huh.Option[Action] {
	return []huh.Option[Action]{
		huh.NewOption("New account", ActionCreate),
		huh.NewOption("Edit account", ActionEdit),
		huh.NewOption("Delete account", ActionDelete),
		huh.NewOption("Deposit", ActionDeposit),
		huh.NewOption("Withdraw", ActionWithdraw),
		huh.NewOption("Refresh", ActionRefresh),
		huh.NewOption("Quit", ActionQuit),
	}
}
