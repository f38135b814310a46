package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
)

// Client talks the wire contract. All methods honor context cancellation
// and map server error codes back onto the shared sentinel taxonomy.
type Client interface {
	StartLogin(ctx context.Context, email string) (*User, string, error)
	VerifySession(ctx context.Context, userID, sessionID, code string) (*User, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error

	Signup(ctx context.Context, email, encryptedKeyPair string) (*User, string, error)
	UpdateUser(ctx context.Context, params UpdateUserParams) (*User, bool, error)
	DeleteUser(ctx context.Context, userID, sessionID, code string) (bool, error)

	ListBudgets(ctx context.Context, userID, sessionID, month string) ([]Budget, error)
	SaveBudget(ctx context.Context, userID, sessionID string, b Budget) (*Budget, error)
	DeleteBudget(ctx context.Context, userID, sessionID, id string) error

	ListExpenses(ctx context.Context, userID, sessionID, month string) ([]Expense, error)
	SaveExpense(ctx context.Context, userID, sessionID string, e Expense) (*Expense, error)
	DeleteExpense(ctx context.Context, userID, sessionID, id string) error

	ImportData(ctx context.Context, userID, sessionID string, budgets []Budget, expenses []Expense) error
	WipeData(ctx context.Context, userID, sessionID, code string) (bool, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client against the given base URL.
func NewClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type authedBody struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// do executes one JSON request. Network failures wrap ErrTransport; non-2xx
// responses are decoded and mapped to sentinel errors.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("request encoding error: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return mapErrorCode(eb.Code, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: response decoding: %v", common.ErrTransport, err)
		}
	}
	return nil
}

func mapErrorCode(code string, status int) error {
	switch code {
	case "unauthorized":
		return common.ErrUnauthorized
	case "session_expired":
		return common.ErrSessionExpired
	case "validation":
		return common.ErrValidation
	case "not_found":
		return common.ErrNotFound
	case "email_exists":
		return common.ErrEmailExists
	case "code_invalid":
		return common.ErrCodeInvalid
	case "code_expired":
		return common.ErrCodeExpired
	case "code_already_used":
		return common.ErrCodeAlreadyUsed
	case "code_wrong_purpose":
		return common.ErrCodeWrongPurpose
	}
	return fmt.Errorf("%w: server returned status %d", common.ErrTransport, status)
}

type sessionEnvelope struct {
	User      User   `json:"user"`
	SessionID string `json:"session_id"`
}

func (c *httpClient) StartLogin(ctx context.Context, email string) (*User, string, error) {
	var resp sessionEnvelope
	err := c.do(ctx, http.MethodPost, "/session", nil,
		map[string]string{"email": email}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.User, resp.SessionID, nil
}

func (c *httpClient) VerifySession(ctx context.Context, userID, sessionID, code string) (*User, error) {
	var resp struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}
	err := c.do(ctx, http.MethodPatch, "/session", nil, struct {
		authedBody
		Code string `json:"code"`
	}{authedBody{userID, sessionID}, code}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *httpClient) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/session", nil, authedBody{userID, sessionID}, nil)
}

func (c *httpClient) Signup(ctx context.Context, email, encryptedKeyPair string) (*User, string, error) {
	var resp sessionEnvelope
	err := c.do(ctx, http.MethodPost, "/user", nil, map[string]string{
		"email":              email,
		"encrypted_key_pair": encryptedKeyPair,
	}, &resp)
	if err != nil {
		return nil, "", err
	}
	return &resp.User, resp.SessionID, nil
}

type mutationEnvelope struct {
	Success    bool  `json:"success"`
	CodeIssued bool  `json:"code_issued"`
	User       *User `json:"user"`
}

func (c *httpClient) UpdateUser(ctx context.Context, params UpdateUserParams) (*User, bool, error) {
	var resp mutationEnvelope
	if err := c.do(ctx, http.MethodPatch, "/user", nil, params, &resp); err != nil {
		return nil, false, err
	}
	return resp.User, resp.CodeIssued, nil
}

func (c *httpClient) DeleteUser(ctx context.Context, userID, sessionID, code string) (bool, error) {
	var resp mutationEnvelope
	err := c.do(ctx, http.MethodDelete, "/user", nil, struct {
		authedBody
		Code string `json:"code,omitempty"`
	}{authedBody{userID, sessionID}, code}, &resp)
	if err != nil {
		return false, err
	}
	return resp.CodeIssued, nil
}

func authedQuery(userID, sessionID string, extra map[string]string) url.Values {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("session_id", sessionID)
	for k, v := range extra {
		q.Set(k, v)
	}
	return q
}

func (c *httpClient) ListBudgets(ctx context.Context, userID, sessionID, month string) ([]Budget, error) {
	var resp struct {
		Budgets []Budget `json:"budgets"`
	}
	q := authedQuery(userID, sessionID, map[string]string{"month": month})
	if err := c.do(ctx, http.MethodGet, "/budgets", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Budgets, nil
}

func (c *httpClient) SaveBudget(ctx context.Context, userID, sessionID string, b Budget) (*Budget, error) {
	method := http.MethodPost
	if b.ID != "" {
		method = http.MethodPatch
	}
	var resp struct {
		Success bool   `json:"success"`
		Budget  Budget `json:"budget"`
	}
	err := c.do(ctx, method, "/budgets", nil, struct {
		authedBody
		Budget Budget `json:"budget"`
	}{authedBody{userID, sessionID}, b}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Budget, nil
}

func (c *httpClient) DeleteBudget(ctx context.Context, userID, sessionID, id string) error {
	return c.do(ctx, http.MethodDelete, "/budgets", nil, struct {
		authedBody
		ID string `json:"id"`
	}{authedBody{userID, sessionID}, id}, nil)
}

func (c *httpClient) ListExpenses(ctx context.Context, userID, sessionID, month string) ([]Expense, error) {
	var resp struct {
		Expenses []Expense `json:"expenses"`
	}
	q := authedQuery(userID, sessionID, map[string]string{"month": month})
	if err := c.do(ctx, http.MethodGet, "/expenses", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}

func (c *httpClient) SaveExpense(ctx context.Context, userID, sessionID string, e Expense) (*Expense, error) {
	method := http.MethodPost
	if e.ID != "" {
		method = http.MethodPatch
	}
	var resp struct {
		Success bool    `json:"success"`
		Expense Expense `json:"expense"`
	}
	err := c.do(ctx, method, "/expenses", nil, struct {
		authedBody
		Expense Expense `json:"expense"`
	}{authedBody{userID, sessionID}, e}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

func (c *httpClient) DeleteExpense(ctx context.Context, userID, sessionID, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses", nil, struct {
		authedBody
		ID string `json:"id"`
	}{authedBody{userID, sessionID}, id}, nil)
}

func (c *httpClient) ImportData(ctx context.Context, userID, sessionID string, budgets []Budget, expenses []Expense) error {
	return c.do(ctx, http.MethodPost, "/data", nil, struct {
		authedBody
		Budgets  []Budget  `json:"budgets"`
		Expenses []Expense `json:"expenses"`
	}{authedBody{userID, sessionID}, budgets, expenses}, nil)
}

func (c *httpClient) WipeData(ctx context.Context, userID, sessionID, code string) (bool, error) {
	var resp mutationEnvelope
	err := c.do(ctx, http.MethodDelete, "/data", nil, struct {
		authedBody
		Code string `json:"code,omitempty"`
	}{authedBody{userID, sessionID}, code}, &resp)
	if err != nil {
		return false, err
	}
	return resp.CodeIssued, nil
}
