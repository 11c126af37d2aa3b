package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the hosted payment provider's REST API. Charges,
// card vaulting and refunds all happen provider-side; we only hold
// opaque references.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type ChargeRequest struct {
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Description   string            `json:"description,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	// Sent as the Idempotency-Key header so a timed-out charge retried
	// by an operator cannot double-bill.
	IdempotencyKey string `json:"-"`
}

type Charge struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	FailureMessage string  `json:"failure_message,omitempty"`
}

type ProviderMethod struct {
	ID   string `json:"id"`
	Card struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
	} `json:"card"`
}

type providerError struct {
	Err struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}
	var charge Charge
	if err := c.doWithHeaders(ctx, http.MethodPost, "/v1/charges", req, &charge, headers); err != nil {
		return nil, err
	}
	return &charge, nil
}

func (c *Client) CreatePaymentMethod(ctx context.Context, cardToken, customerRef string) (*ProviderMethod, error) {
	body := map[string]string{"token": cardToken, "customer": customerRef}
	var method ProviderMethod
	if err := c.do(ctx, http.MethodPost, "/v1/payment_methods", body, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (c *Client) DeletePaymentMethod(ctx context.Context, providerRef string) error {
	return c.do(ctx, http.MethodDelete, "/v1/payment_methods/"+providerRef, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doWithHeaders(ctx, method, path, in, out, nil)
}

func (c *Client) doWithHeaders(ctx context.Context, method, path string, in, out any, headers map[string]string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		if jsonErr := json.Unmarshal(raw, &pe); jsonErr == nil && pe.Err.Message != "" {
			return fmt.Errorf("provider error %s: %s", pe.Err.Code, pe.Err.Message)
		}
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
