package erpnext

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bryanwahyu/incident-replay/internal/domain/erp"
)

// Client talks to the ERPNext REST API (read-only). Document absence maps
// to a nil record; transport and server failures wrap erp.ErrUnavailable.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (erp.Record, error) {
	return c.getResource(ctx, "Sales Invoice", invoiceID)
}

func (c *Client) GetSalesOrder(ctx context.Context, orderID string) (erp.Record, error) {
	return c.getResource(ctx, "Sales Order", orderID)
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (erp.Record, error) {
	return c.getResource(ctx, "Customer", customerID)
}

func (c *Client) GetItem(ctx context.Context, itemCode string) (erp.Record, error) {
	return c.getResource(ctx, "Item", itemCode)
}

func (c *Client) ListInvoicesByCustomer(ctx context.Context, customerID string, from, to time.Time) ([]erp.Record, error) {
	filters := fmt.Sprintf(`[["customer","=",%q],["posting_date",">=",%q],["posting_date","<=",%q]]`,
		customerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/resource/%s?filters=%s&fields=%s",
		c.baseURL, url.PathEscape("Sales Invoice"),
		url.QueryEscape(filters),
		url.QueryEscape(`["name","customer","posting_date","grand_total","currency"]`))

	body, status, err := c.do(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: list invoices returned HTTP %d", erp.ErrUnavailable, status)
	}
	var payload struct {
		Data []erp.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed list response: %v", erp.ErrUnavailable, err)
	}
	return payload.Data, nil
}

func (c *Client) getResource(ctx context.Context, doctype, name string) (erp.Record, error) {
	endpoint := fmt.Sprintf("%s/api/resource/%s/%s",
		c.baseURL, url.PathEscape(doctype), url.PathEscape(name))

	body, status, err := c.do(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, nil
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: %s %s returned HTTP %d", erp.ErrUnavailable, doctype, name, status)
	}

	var payload struct {
		Data erp.Record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed %s response: %v", erp.ErrUnavailable, doctype, err)
	}
	return payload.Data, nil
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", erp.ErrUnavailable, err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", c.apiKey, c.apiSecret))
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", erp.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", erp.ErrUnavailable, err)
	}
	return buf, resp.StatusCode, nil
}
