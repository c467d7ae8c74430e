// ABOUTME: Route handlers of the fake backend
// ABOUTME: Reproduces request/response shapes and the structured error body

package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	clientError     = "client_error"
	validationError = "validation_error"
)

type errorDetail struct {
	Attr   *string `json:"attr"`
	Code   string  `json:"code"`
	Detail string  `json:"detail"`
}

type errorBody struct {
	Type   string        `json:"type"`
	Errors []errorDetail `json:"errors"`
}

type userJSON struct {
	ID       int    `json:"id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType string, attr *string, code, detail string) {
	writeJSON(w, status, errorBody{
		Type:   errType,
		Errors: []errorDetail{{Attr: attr, Code: code, Detail: detail}},
	})
}

func writeRequired(w http.ResponseWriter, field string) {
	writeError(w, http.StatusBadRequest, validationError, &field, "required", "This field is required.")
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, clientError, nil, "parse_error", "JSON parse error.")
		return false
	}
	return true
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Name == "":
		writeRequired(w, "name")
		return
	case req.Email == "":
		writeRequired(w, "email")
		return
	case req.Password == "":
		writeRequired(w, "password")
		return
	}

	b.mu.Lock()
	if _, exists := b.byEmail[req.Email]; exists {
		b.mu.Unlock()
		attr := "email"
		writeError(w, http.StatusBadRequest, validationError, &attr, "unique", "user with this email already exists.")
		return
	}
	acct := b.addAccountLocked(req.Name, req.Email, req.Password)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{
		"name":  acct.Name,
		"email": acct.Email,
	})
}

func (b *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	acct, ok := b.Account(req.Username)
	if !ok || acct.Password != req.Password {
		writeError(w, http.StatusUnauthorized, clientError, nil,
			"no_active_account", "No active account found with the given credentials")
		return
	}

	access, err := b.IssueAccessToken(acct.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", nil, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access":  access,
		"refresh": b.issueRefreshToken(acct.ID),
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &req) {
		return
	}

	b.mu.Lock()
	hold := b.refreshHold
	b.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	b.mu.Lock()
	accountID, ok := b.refreshTokens[req.Refresh]
	fail := b.failRefresh
	b.mu.Unlock()

	if fail || !ok {
		writeError(w, http.StatusUnauthorized, clientError, nil,
			"token_not_valid", "Token is invalid or expired")
		return
	}

	access, err := b.IssueAccessToken(accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", nil, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (b *Backend) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeRequired(w, "email")
		return
	}
	if req.Password == "" {
		writeRequired(w, "password")
		return
	}

	b.mu.Lock()
	id, ok := b.byEmail[req.Email]
	if ok {
		b.accounts[id].Password = req.Password
	}
	b.mu.Unlock()

	if !ok {
		attr := "email"
		writeError(w, http.StatusNotFound, clientError, &attr, "not_found", "No user with this email.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (b *Backend) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeRequired(w, "new_password")
		return
	}

	callerID := accountIDFrom(r.Context())

	b.mu.Lock()
	acct := b.accounts[callerID]
	if acct == nil || acct.Email != req.Email {
		b.mu.Unlock()
		writeError(w, http.StatusForbidden, clientError, nil,
			"permission_denied", "You do not have permission to perform this action.")
		return
	}
	if acct.Password != req.CurrentPassword {
		b.mu.Unlock()
		attr := "current_password"
		writeError(w, http.StatusBadRequest, validationError, &attr, "invalid", "Current password is incorrect.")
		return
	}
	acct.Password = req.NewPassword
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (b *Backend) handleUser(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	b.mu.Lock()
	override, overridden := b.userOverride[rawID]
	b.mu.Unlock()
	if overridden {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(override))
		return
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeError(w, http.StatusNotFound, clientError, nil, "not_found", "Not found.")
		return
	}

	b.mu.Lock()
	acct, ok := b.accounts[id]
	var u userJSON
	if ok {
		u = userJSON{ID: acct.ID, Email: acct.Email, Name: acct.Name, Username: acct.Username}
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, clientError, nil, "not_found", "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleUsers(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusNotFound, clientError, nil, "not_found", "Invalid page.")
			return
		}
		page = n
	}

	accounts := b.sortedAccounts()
	start := (page - 1) * PageSize
	if start > 0 && start >= len(accounts) {
		writeError(w, http.StatusNotFound, clientError, nil, "not_found", "Invalid page.")
		return
	}
	end := min(start+PageSize, len(accounts))

	results := make([]userJSON, 0, end-start)
	for _, acct := range accounts[start:end] {
		results = append(results, userJSON{Email: acct.Email, Name: acct.Name, Username: acct.Username})
	}

	pageURL := func(n int) *string {
		u := fmt.Sprintf("http://%s%s?page=%d", r.Host, r.URL.Path, n)
		return &u
	}
	resp := struct {
		Count    int        `json:"count"`
		Next     *string    `json:"next"`
		Previous *string    `json:"previous"`
		Results  []userJSON `json:"results"`
	}{
		Count:   len(accounts),
		Results: results,
	}
	if end < len(accounts) {
		resp.Next = pageURL(page + 1)
	}
	if page > 1 {
		resp.Previous = pageURL(page - 1)
	}
	writeJSON(w, http.StatusOK, resp)
}
