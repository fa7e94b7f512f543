// file: service/account_service.go

package service

import (
	"context"
	"errors"
	"fmt"
	"go-bank-console/common"
	"go-bank-console/logger"
	"go-bank-console/model"
	"go-bank-console/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountService drives the account table: it reads the remote collection
// and turns every operator action into calls against the accounts API.
type AccountService struct {
	repo     repository.IAccountRepository
	activity repository.IActivityRepository
}

// NewAccountService wires the service. activity may be nil, in which case
// nothing is audited.
func NewAccountService(repo repository.IAccountRepository, activity repository.IActivityRepository) *AccountService {
	if activity == nil {
		activity = repository.NoopActivityRepository{}
	}
	return &AccountService{
		repo:     repo,
		activity: activity,
	}
}

// ListAccounts returns the full remote collection.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.repo.GetAllAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns one account, or ErrAccountNotFound.
func (s *AccountService) GetAccount(ctx context.Context, id int) (*model.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRemoteNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return account, nil
}

// CreateAccount validates the form and posts a new account.
func (s *AccountService) CreateAccount(ctx context.Context, form model.AccountForm) (*model.Account, error) {
	if err := common.Validate(&form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}

	account := &model.Account{
		AccountHolderName: form.AccountHolderName,
		Balance:           form.Balance,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.record(ctx, &model.Activity{
		Action:       model.ActionCreate,
		AccountID:    account.ID,
		Amount:       account.Balance,
		BalanceAfter: account.Balance,
	})
	return account, nil
}

// UpdateAccount replaces name and balance of account id.
func (s *AccountService) UpdateAccount(ctx context.Context, id int, form model.AccountForm) (*model.Account, error) {
	if err := common.Validate(&form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}

	account := &model.Account{
		ID:                id,
		AccountHolderName: form.AccountHolderName,
		Balance:           form.Balance,
	}
	if err := s.write(ctx, account); err != nil {
		return nil, err
	}

	s.record(ctx, &model.Activity{
		Action:       model.ActionUpdate,
		AccountID:    id,
		BalanceAfter: account.Balance,
	})
	return account, nil
}

// DeleteAccount removes account id. Nothing is sent unless confirmed is true.
func (s *AccountService) DeleteAccount(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRemoteNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account %d: %w", id, err)
	}

	s.record(ctx, &model.Activity{Action: model.ActionDelete, AccountID: id})
	return nil
}

// Deposit adds rawAmount to the balance of account id.
//
// The balance is read, changed locally and written back as a whole record.
// Two concurrent writes to the same account can lose one of them; the
// accounts API exposes no version to detect that.
// TODO: send If-Match once the accounts API returns an ETag for accounts.
func (s *AccountService) Deposit(ctx context.Context, id int, rawAmount string) (*model.Account, error) {
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	newBalance, err := writtenBalance(decimal.NewFromFloat(account.Balance).Add(amount))
	if err != nil {
		return nil, err
	}
	account.Balance = newBalance
	if err := s.write(ctx, account); err != nil {
		return nil, err
	}

	s.record(ctx, &model.Activity{
		Action:       model.ActionDeposit,
		AccountID:    id,
		Amount:       amount.InexactFloat64(),
		BalanceAfter: account.Balance,
	})
	return account, nil
}

// Withdraw subtracts rawAmount from the balance of account id. The balance
// check runs against a fresh read, but nothing holds the account between that
// read and the write, same as Deposit.
func (s *AccountService) Withdraw(ctx context.Context, id int, rawAmount string) (*model.Account, error) {
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	balance := decimal.NewFromFloat(account.Balance)
	if balance.LessThan(amount) {
		logger.Log.WithFields(logrus.Fields{
			"account_id": id,
			"balance":    account.Balance,
			"amount":     amount.String(),
		}).Warn("Withdrawal rejected for insufficient funds")
		return nil, ErrInsufficientFunds
	}

	newBalance, err := writtenBalance(balance.Sub(amount))
	if err != nil {
		return nil, err
	}
	account.Balance = newBalance
	if err := s.write(ctx, account); err != nil {
		return nil, err
	}

	s.record(ctx, &model.Activity{
		Action:       model.ActionWithdraw,
		AccountID:    id,
		Amount:       amount.InexactFloat64(),
		BalanceAfter: account.Balance,
	})
	return account, nil
}

// RecentActivity returns the latest audit records, newest first.
func (s *AccountService) RecentActivity(ctx context.Context, limit int) ([]*model.Activity, error) {
	return s.activity.ListRecent(ctx, limit)
}

func (s *AccountService) write(ctx context.Context, account *model.Account) error {
	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrRemoteNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update account %d: %w", account.ID, err)
	}
	return nil
}

// record stores an audit entry. A failure never fails the operator action.
func (s *AccountService) record(ctx context.Context, activity *model.Activity) {
	if err := s.activity.CreateActivity(ctx, activity); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"action":     activity.Action,
			"account_id": activity.AccountID,
		}).Error("Failed to record console activity")
	}
}
