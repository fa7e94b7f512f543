// Package console is the terminal front-end of the account table. It offers
// the same operations as the web pages, driven through a Prompter.
package console

import (
	"context"
	"errors"
	"fmt"
	"go-bank-console/logger"
	"go-bank-console/model"
	"go-bank-console/service"
	"go-bank-console/view"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
	ActionRefresh  Action = "refresh"
	ActionQuit     Action = "quit"
)

// AccountInput is the raw text of the create and edit forms.
type AccountInput struct {
	Name    string
	Balance string
}

// Prompter asks the operator for input. A prompt cancelled by the operator
// returns huh.ErrUserAborted.
type Prompter interface {
	Action(ctx context.Context) (Action, error)
	Account(ctx context.Context, title string, accounts []*model.Account) (int, error)
	AccountForm(ctx context.Context, title string, input *AccountInput) error
	Amount(ctx context.Context, title string, account *model.Account) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

type Console struct {
	accounts *service.AccountService
	prompt   Prompter
	out      io.Writer
}

func New(accounts *service.AccountService, prompt Prompter, out io.Writer) *Console {
	return &Console{accounts: accounts, prompt: prompt, out: out}
}

// Run prints the table and asks for the next action until the operator quits.
func (c *Console) Run(ctx context.Context) error {
	for {
		accounts, err := c.accounts.ListAccounts(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("Could not retrieve accounts")
			c.print(model.Failure("Could not load the accounts. Please try again."))
		} else {
			fmt.Fprintln(c.out, RenderTable(accounts))
		}

		action, err := c.prompt.Action(ctx)
		if errors.Is(err, huh.ErrUserAborted) || action == ActionQuit {
			return nil
		}
		if err != nil {
			return err
		}

		n, err := c.Do(ctx, action, accounts)
		if err != nil {
			return err
		}
		if n != nil {
			c.print(*n)
		}
	}
}

// Do performs one action and returns the notification to show, if any. A
// prompt cancelled by the operator abandons the action without a message.
func (c *Console) Do(ctx context.Context, action Action, accounts []*model.Account) (*model.Notification, error) {
	var (
		n   *model.Notification
		err error
	)
	switch action {
	case ActionCreate:
		n, err = c.create(ctx)
	case ActionEdit:
		n, err = c.edit(ctx, accounts)
	case ActionDelete:
		n, err = c.delete(ctx, accounts)
	case ActionDeposit:
		n, err = c.deposit(ctx, accounts)
	case ActionWithdraw:
		n, err = c.withdraw(ctx, accounts)
	case ActionRefresh:
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return nil, nil
	}
	return n, err
}

func (c *Console) create(ctx context.Context) (*model.Notification, error) {
	var input AccountInput
	if err := c.prompt.AccountForm(ctx, "New account", &input); err != nil {
		return nil, err
	}

	form, err := accountForm(input)
	if err == nil {
		_, err = c.accounts.CreateAccount(ctx, form)
	}
	if err != nil {
		return failure("create the account", err), nil
	}
	return success("Account created", "The account was added successfully."), nil
}

func (c *Console) edit(ctx context.Context, accounts []*model.Account) (*model.Notification, error) {
	account, n, err := c.chooseAccount(ctx, "Account to edit", accounts)
	if account == nil {
		return n, err
	}

	input := AccountInput{Name: account.AccountHolderName, Balance: view.FormatBalance(account.Balance)}
	if err := c.prompt.AccountForm(ctx, fmt.Sprintf("Edit account %d", account.ID), &input); err != nil {
		return nil, err
	}

	form, err := accountForm(input)
	if err == nil {
		_, err = c.accounts.UpdateAccount(ctx, account.ID, form)
	}
	if err != nil {
		return failure("update the account", err), nil
	}
	return success("Account updated", "The account was updated successfully."), nil
}

func (c *Console) delete(ctx context.Context, accounts []*model.Account) (*model.Notification, error) {
	if len(accounts) == 0 {
		return noAccounts(), nil
	}
	id, err := c.prompt.Account(ctx, "Account to delete", accounts)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("#%d", id)
	for _, acc := range accounts {
		if acc.ID == id {
			name = acc.AccountHolderName
		}
	}
	confirmed, err := c.prompt.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete the account of %s?", name))
	if err != nil {
		return nil, err
	}

	err = c.accounts.DeleteAccount(ctx, id, confirmed)
	if errors.Is(err, service.ErrNotConfirmed) {
		return nil, nil
	}
	if err != nil {
		return failure("delete the account", err), nil
	}
	return success("Account deleted", "The account was deleted successfully."), nil
}

func (c *Console) deposit(ctx context.Context, accounts []*model.Account) (*model.Notification, error) {
	account, n, err := c.chooseAccount(ctx, "Account to deposit into", accounts)
	if account == nil {
		return n, err
	}

	raw, err := c.prompt.Amount(ctx, "Deposit", account)
	if err != nil {
		return nil, err
	}
	if _, err := c.accounts.Deposit(ctx, account.ID, raw); err != nil {
		return failure("deposit", err), nil
	}
	return success("Deposit completed", "The deposit was made successfully."), nil
}

func (c *Console) withdraw(ctx context.Context, accounts []*model.Account) (*model.Notification, error) {
	account, n, err := c.chooseAccount(ctx, "Account to withdraw from", accounts)
	if account == nil {
		return n, err
	}

	raw, err := c.prompt.Amount(ctx, "Withdraw", account)
	if err != nil {
		return nil, err
	}
	if _, err := c.accounts.Withdraw(ctx, account.ID, raw); err != nil {
		return failure("withdraw", err), nil
	}
	return success("Withdrawal completed", "The withdrawal was made successfully."), nil
}

// chooseAccount asks for an account and loads its current record. A nil
// account means the action ends with the returned notification or error.
func (c *Console) chooseAccount(ctx context.Context, title string, accounts []*model.Account) (*model.Account, *model.Notification, error) {
	if len(accounts) == 0 {
		return nil, noAccounts(), nil
	}
	id, err := c.prompt.Account(ctx, title, accounts)
	if err != nil {
		return nil, nil, err
	}

	account, err := c.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, failure("load the account", err), nil
	}
	return account, nil, nil
}

func (c *Console) print(n model.Notification) {
	fmt.Fprintln(c.out, FormatNotification(n))
}

func accountForm(input AccountInput) (model.AccountForm, error) {
	form := model.AccountForm{AccountHolderName: strings.TrimSpace(input.Name)}
	balance, err := service.ParseBalance(input.Balance)
	if err != nil {
		return form, err
	}
	form.Balance = balance
	return form, nil
}

func success(title, message string) *model.Notification {
	n := model.Success(title, message)
	return &n
}

func failure(action string, err error) *model.Notification {
	logger.Log.WithError(err).WithField("action", action).Warn("Console action failed")
	n := model.Failure(service.FailureMessage(action, err))
	return &n
}

func noAccounts() *model.Notification {
	n := model.Failure("There are no accounts yet.")
	return &n
}
