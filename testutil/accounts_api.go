// Package testutil provides an in-process stand-in for the remote accounts
// API.
package testutil

import (
	"bytes"
	"encoding/json"
	"go-bank-console/model"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
)

// RecordedRequest is one call received by FakeAccountsAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// FakeAccountsAPI serves /api/accounts from memory and records every call.
type FakeAccountsAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[int]model.Account
	nextID   int
	requests []RecordedRequest
	failWith map[string]int
}

// NewFakeAccountsAPI starts a server holding the given accounts. Call Close
// when done.
func NewFakeAccountsAPI(accounts ...model.Account) *FakeAccountsAPI {
	f := &FakeAccountsAPI{
		accounts: make(map[int]model.Account),
		nextID:   1,
		failWith: make(map[string]int),
	}
	for _, acc := range accounts {
		f.accounts[acc.ID] = acc
		if acc.ID >= f.nextID {
			f.nextID = acc.ID + 1
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/accounts", f.list)
	mux.HandleFunc("POST /api/accounts", f.create)
	mux.HandleFunc("GET /api/accounts/{id}", f.get)
	mux.HandleFunc("PUT /api/accounts/{id}", f.update)
	mux.HandleFunc("DELETE /api/accounts/{id}", f.delete)
	f.Server = httptest.NewServer(f.record(mux))
	return f
}

// BaseURL is the value to configure as api.base_url.
func (f *FakeAccountsAPI) BaseURL() string {
	return f.Server.URL + "/api"
}

func (f *FakeAccountsAPI) Close() {
	f.Server.Close()
}

// FailMethod makes every request with the given method answer status.
func (f *FakeAccountsAPI) FailMethod(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith[method] = status
}

// Requests returns the calls received so far.
func (f *FakeAccountsAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsWithMethod returns the calls received with method.
func (f *FakeAccountsAPI) RequestsWithMethod(method string) []RecordedRequest {
	var out []RecordedRequest
	for _, req := range f.Requests() {
		if req.Method == method {
			out = append(out, req)
		}
	}
	return out
}

// Account returns the stored record for id.
func (f *FakeAccountsAPI) Account(id int) (model.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[id]
	return acc, ok
}

func (f *FakeAccountsAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		status, fail := f.failWith[r.Method]
		f.mu.Unlock()

		if fail {
			w.WriteHeader(status)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAccountsAPI) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	accounts := make([]model.Account, 0, len(f.accounts))
	for _, acc := range f.accounts {
		accounts = append(accounts, acc)
	}
	f.mu.Unlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	writeJSON(w, http.StatusOK, accounts)
}

func (f *FakeAccountsAPI) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	acc, found := f.Account(id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (f *FakeAccountsAPI) create(w http.ResponseWriter, r *http.Request) {
	var req model.NewAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	acc := model.Account{ID: f.nextID, AccountHolderName: req.AccountHolderName, Balance: req.Balance}
	f.accounts[acc.ID] = acc
	f.nextID++
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, acc)
}

func (f *FakeAccountsAPI) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var acc model.Account
	if err := json.NewDecoder(r.Body).Decode(&acc); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	acc.ID = id

	f.mu.Lock()
	_, found := f.accounts[id]
	if found {
		f.accounts[id] = acc
	}
	f.mu.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (f *FakeAccountsAPI) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	_, found := f.accounts[id]
	delete(f.accounts, id)
	f.mu.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
