package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-bank-console/logger"
	"go-bank-console/model"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRemoteNotFound matches a 404 from the accounts API via errors.Is.
var ErrRemoteNotFound = errors.New("remote resource not found")

// StatusError is returned for every non-2xx answer of the accounts API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRemoteNotFound && e.StatusCode == http.StatusNotFound
}

// IAccountRepository defines the contract for the remote accounts resource.
type IAccountRepository interface {
	GetAllAccounts(ctx context.Context) ([]*model.Account, error)
	GetAccountByID(ctx context.Context, id int) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id int) error
}

// AccountRepository talks to the accounts REST API rooted at BaseURL.
type AccountRepository struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAccountRepository(baseURL, token string, timeout time.Duration) *AccountRepository {
	return &AccountRepository{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (r *AccountRepository) collectionURL() string {
	return r.BaseURL + "/accounts"
}

func (r *AccountRepository) resourceURL(id int) string {
	return r.collectionURL() + "/" + strconv.Itoa(id)
}

// GetAllAccounts fetches the whole collection.
func (r *AccountRepository) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	log := logger.Log.WithField("url", r.collectionURL())
	log.Info("Requesting all accounts")

	var accounts []*model.Account
	if err := r.do(ctx, http.MethodGet, r.collectionURL(), nil, &accounts); err != nil {
		log.WithError(err).Error("Failed to fetch accounts")
		return nil, err
	}
	return accounts, nil
}

// GetAccountByID fetches a single account.
func (r *AccountRepository) GetAccountByID(ctx context.Context, id int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", id)
	log.Info("Requesting account by ID")

	account := &model.Account{}
	if err := r.do(ctx, http.MethodGet, r.resourceURL(id), nil, account); err != nil {
		log.WithError(err).Error("Failed to fetch account")
		return nil, err
	}
	return account, nil
}

// CreateAccount posts a new account and fills in the record the service
// answers with, including the assigned id.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_holder_name": account.AccountHolderName,
		"balance":             account.Balance,
	})
	log.Info("Creating account")

	body := model.NewAccountRequest{
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
	}
	if err := r.do(ctx, http.MethodPost, r.collectionURL(), body, account); err != nil {
		log.WithError(err).Error("Failed to create account")
		return err
	}
	return nil
}

// UpdateAccount replaces the full record of account.ID.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  account.ID,
		"new_balance": account.Balance,
	})
	log.Info("Replacing account")

	if err := r.do(ctx, http.MethodPut, r.resourceURL(account.ID), account, account); err != nil {
		log.WithError(err).Error("Failed to update account")
		return err
	}
	return nil
}

// DeleteAccount removes an account.
func (r *AccountRepository) DeleteAccount(ctx context.Context, id int) error {
	log := logger.Log.WithField("account_id", id)
	log.Info("Deleting account")

	if err := r.do(ctx, http.MethodDelete, r.resourceURL(id), nil, nil); err != nil {
		log.WithError(err).Error("Failed to delete account")
		return err
	}
	return nil
}

// do sends one request. payload is JSON-encoded when non-nil; out is decoded
// from the response when non-nil and the body is not empty.
func (r *AccountRepository) do(ctx context.Context, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
