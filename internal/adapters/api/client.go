// Package api implements the Authority port over the hosting service's
// REST interface: bearer-token requests with JSON envelopes shaped as
// {success, message, data}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.Authority = (*Client)(nil)

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, errors.New("api base url is required")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the authority's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RemoteError{Status: resp.StatusCode, Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return &domain.RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
			}
			return &domain.RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || (len(raw) > 0 && !env.Success) {
		return &domain.RemoteError{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.RemoteError{Status: resp.StatusCode, Err: fmt.Errorf("decode response data: %w", err)}
	}
	return nil
}

func (c *Client) ListVMs(ctx context.Context, token string, page, pageSize int) (ports.VMPage, error) {
	path := fmt.Sprintf("/virtual-machines/?page=%d&page_size=%d", page, pageSize)

	var data vmPagePayload
	if err := c.do(ctx, http.MethodGet, path, nil, token, &data); err != nil {
		return ports.VMPage{}, err
	}

	items := make([]domain.VirtualMachine, 0, len(data.Results))
	for _, vm := range data.Results {
		items = append(items, vm.toDomain())
	}
	total := data.Count
	if total == 0 {
		total = len(items)
	}
	return ports.VMPage{Items: items, Total: total}, nil
}

func (c *Client) CreateVM(ctx context.Context, token string, req ports.CreateVMRequest) (domain.VirtualMachine, error) {
	body := vmWritePayload{
		Name:   req.Name,
		CPU:    req.CPU,
		RAM:    req.RAMMB,
		Cost:   req.CostPerMonth,
		Status: string(req.Status),
	}

	var data vmPayload
	if err := c.do(ctx, http.MethodPost, "/create-vms/", body, token, &data); err != nil {
		return domain.VirtualMachine{}, err
	}
	return data.toDomain(), nil
}

func (c *Client) UpdateVM(ctx context.Context, token string, id domain.VMID, req ports.UpdateVMRequest) (domain.VirtualMachine, error) {
	body := vmWritePayload{
		Name:   req.Name,
		CPU:    req.CPU,
		RAM:    req.RAMMB,
		Cost:   req.CostPerMonth,
		Status: string(req.Status),
	}

	var data vmPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/edit-vm/%d/", id), body, token, &data); err != nil {
		return domain.VirtualMachine{}, err
	}
	if data.ID == 0 {
		data.ID = int64(id)
	}
	return data.toDomain(), nil
}

func (c *Client) DeleteVM(ctx context.Context, token string, id domain.VMID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/vms/delete/%d/", id), nil, token, nil)
}

func (c *Client) AssignVM(ctx context.Context, token string, id domain.VMID, newOwnerID string) error {
	body := map[string]any{
		"vm_id":   int64(id),
		"user_id": newOwnerID,
	}
	return c.do(ctx, http.MethodPut, "/assign-vm/", body, token, nil)
}

func (c *Client) ListSubUsers(ctx context.Context, token string) ([]domain.SubUser, error) {
	var data []subUserPayload
	if err := c.do(ctx, http.MethodGet, "/sub-users/", nil, token, &data); err != nil {
		return nil, err
	}

	subUsers := make([]domain.SubUser, 0, len(data))
	for _, payload := range data {
		subUsers = append(subUsers, payload.toDomain())
	}
	return subUsers, nil
}

func (c *Client) CreateSubUser(ctx context.Context, token string, username string) (domain.SubUser, error) {
	body := map[string]any{
		"sub_username":   username,
		"assigned_model": 0,
	}

	var data subUserPayload
	if err := c.do(ctx, http.MethodPost, "/sub-users/create/", body, token, &data); err != nil {
		return domain.SubUser{}, err
	}
	return data.toDomain(), nil
}

func (c *Client) DelegateVM(ctx context.Context, token string, id domain.SubUserID, assignedCount int) error {
	body := map[string]any{
		"sub_user_id":    string(id),
		"assigned_model": assignedCount,
	}
	return c.do(ctx, http.MethodPut, "/sub-users/delegate/", body, token, nil)
}

func (c *Client) CreateBackup(ctx context.Context, token string, vmID domain.VMID, sizeMB, amount int64) (domain.Bill, error) {
	body := map[string]any{
		"vm":   int64(vmID),
		"size": sizeMB,
		"bill": amount,
	}

	var data billPayload
	if err := c.do(ctx, http.MethodPost, "/create-backup/", body, token, &data); err != nil {
		return domain.Bill{}, err
	}

	bill := data.toDomain()
	if bill.VMID == 0 {
		bill.VMID = vmID
	}
	if bill.SizeMB == 0 {
		bill.SizeMB = sizeMB
	}
	if bill.Amount == 0 {
		bill.Amount = amount
	}
	if bill.Status == "" {
		bill.Status = domain.BillStatusPending
	}
	return bill, nil
}

func (c *Client) ListOutstandingBills(ctx context.Context, token string) ([]domain.Bill, error) {
	var data []billPayload
	if err := c.do(ctx, http.MethodGet, "/unpaid-backups/", nil, token, &data); err != nil {
		return nil, err
	}

	bills := make([]domain.Bill, 0, len(data))
	for _, payload := range data {
		bill := payload.toDomain()
		if bill.Status == "" {
			bill.Status = domain.BillStatusPending
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func (c *Client) MakePayment(ctx context.Context, token string, billID domain.BillID, amount int64, cardNumber string) (string, error) {
	body := map[string]any{
		"backup_id":   string(billID),
		"amount":      amount,
		"card_number": cardNumber,
	}

	var data paymentPayload
	if err := c.do(ctx, http.MethodPost, "/make-payment/", body, token, &data); err != nil {
		return "", err
	}
	return data.TransactionID, nil
}

func (c *Client) Subscribe(ctx context.Context, token string, plan domain.SubscriptionPlan) error {
	body := map[string]any{
		"plan": plan.Tier.String(),
	}
	return c.do(ctx, http.MethodPost, "/subscribe/", body, token, nil)
}
