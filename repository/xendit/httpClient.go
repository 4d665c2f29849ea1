package xenditrepo

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"nebeng/util/httpx"
)

type httpRepo struct {
	apiKey        string
	callbackToken string
	client        *http.Client
}

func NewHTTP(apiKey, callbackToken string) Repo {
	return &httpRepo{apiKey: apiKey, callbackToken: callbackToken, client: httpx.Client()}
}

func (r *httpRepo) CreateInvoice(req CreateInvoiceReq) (*CreateInvoiceResp, error) {
	body := map[string]any{
		"external_id":      req.ExternalID,
		"amount":           req.Amount,
		"description":      req.Description,
		"payer_email":      req.PayerEmail,
		"invoice_duration": req.ExpirySec,
	}
	b, _ := json.Marshal(body)
	httpReq, _ := http.NewRequest("POST", "https://api.xendit.co/v2/invoices", bytes.NewReader(b))
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("xendit create invoice failed: %s", resp.Status)
	}

	var out struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
		ExpiryDate string `json:"expiry_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("xendit: empty invoice id")
	}

	return &CreateInvoiceResp{InvoiceID: out.ID, InvoiceURL: out.InvoiceURL, ExpiresAt: out.ExpiryDate}, nil
}

func (r *httpRepo) VerifyCallbackToken(header string) error {
	if r.callbackToken == "" {
		// dev setups run without a shared secret
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(r.callbackToken)) != 1 {
		return ErrBadSignature
	}
	return nil
}
