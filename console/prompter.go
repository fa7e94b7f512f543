package console

import (
	"context"
	"errors"
	"go-bank-console/model"
	"go-bank-console/service"
	"go-bank-console/view"
	"strings"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks through huh terminal forms.
type FormPrompter struct{}

func (FormPrompter) Action(ctx context.Context) (Action, error) {
	var action Action
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("What do you want to do?").
				Options(actionOptions()...).
				Value(&action),
		),
	).RunWithContext(ctx)
	return action, err
}

func (FormPrompter) Account(ctx context.Context, title string, accounts []*model.Account) (int, error) {
	var id int
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(AccountOptions(accounts)...).
				Value(&id),
		),
	).RunWithContext(ctx)
	return id, err
}

func (FormPrompter) AccountForm(ctx context.Context, title string, input *AccountInput) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Account holder").
				Value(&input.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("account holder is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Balance").
				Value(&input.Balance).
				Validate(func(s string) error {
					_, err := service.ParseBalance(s)
					return err
				}),
		),
	).RunWithContext(ctx)
}

func (FormPrompter) Amount(ctx context.Context, title string, account *model.Account) (string, error) {
	var raw string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Current balance: " + view.FormatBalance(account.Balance)).
				Value(&raw),
		),
	).RunWithContext(ctx)
	return raw, err
}

func (FormPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes, delete").
				Negative("No").
				Value(&confirmed),
		),
	).RunWithContext(ctx)
	return confirmed, err
}
