package pushrepo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"nebeng/util/httpx"
)

type httpRepo struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTP(baseURL, apiKey string) Repo {
	return &httpRepo{baseURL: baseURL, apiKey: apiKey, client: httpx.Client()}
}

func (r *httpRepo) Send(req SendReq) error {
	if r.baseURL == "" {
		// push disabled (no provider configured)
		return nil
	}
	body := map[string]any{
		"to":    req.Token,
		"title": req.Title,
		"body":  req.Body,
		"data":  req.Data,
	}
	b, _ := json.Marshal(body)
	httpReq, _ := http.NewRequest("POST", r.baseURL+"/send", bytes.NewReader(b))
	httpReq.Header.Set("Authorization", "key="+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push send failed: %s", resp.Status)
	}
	return nil
}
