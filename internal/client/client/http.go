package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/heartbeat", "", nil, nil)
}

func (c *HTTPClient) PublicKey(ctx context.Context) (string, error) {
	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(ctx, http.MethodGet, "/crypto", "", nil, &out); err != nil {
		return "", err
	}
	return out.Key, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, publicKey, username, password string) (models.Tokens, error) {
	in := map[string]string{"rsa": publicKey, "username": username, "password": password}

	var out models.Tokens
	if err := c.do(ctx, http.MethodPost, "/sign-in", "", in, &out); err != nil {
		return models.Tokens{}, err
	}
	return out, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/sign-out", accessToken, nil, nil)
}

func (c *HTTPClient) Info(ctx context.Context, accessToken string) (*models.Info, error) {
	var out models.Info
	if err := c.do(ctx, http.MethodGet, "/info", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateInfo(ctx context.Context, accessToken, publicKey, nickname, gender string) error {
	in := map[string]string{"rsa": publicKey, "nickname": nickname, "gender": gender}
	return c.do(ctx, http.MethodPut, "/info", accessToken, in, nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, accessToken, publicKey, originPassword, password string) error {
	in := map[string]string{"rsa": publicKey, "originPassword": originPassword, "password": password}
	return c.do(ctx, http.MethodPut, "/password", accessToken, in, nil)
}

func (c *HTTPClient) Withdraw(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodDelete, "/info", accessToken, nil, nil)
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken, accessToken string) (string, error) {
	in := map[string]string{"accessToken": accessToken}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/refresh", refreshToken, in, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}
