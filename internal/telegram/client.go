// Package telegram is a small Bot API client covering what the bot sends.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type ClientConfig struct {
	BaseURL         string
	Token           string
	Timeout         time.Duration
	RetryMaxElapsed time.Duration
	MaxFailures     uint32
}

// APIError is a well formed reply with ok=false. It is never retried.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

var errServer = errors.New("telegram: server error")

type apiResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type Client struct {
	http *http.Client
	base string
	conf ClientConfig
	cb   *gobreaker.CircuitBreaker
	log  *zap.Logger
}

func NewClient(conf ClientConfig, log *zap.Logger) *Client {
	if conf.MaxFailures == 0 {
		conf.MaxFailures = 5
	}
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    20,
		IdleConnTimeout: 90 * time.Second,
	}
	st := gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= conf.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			return err == nil || errors.As(err, &apiErr)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &Client{
		http: &http.Client{Transport: tr, Timeout: conf.Timeout},
		base: strings.TrimRight(conf.BaseURL, "/") + "/bot" + conf.Token + "/",
		conf: conf,
		cb:   gobreaker.NewCircuitBreaker(st),
		log:  log,
	}
}

func (c *Client) call(ctx context.Context, method string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var res apiResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+method, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer r.Body.Close()

		// 429 and 5xx are worth another try
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			_, _ = io.Copy(io.Discard, r.Body)
			return fmt.Errorf("%w: %s %d", errServer, method, r.StatusCode)
		}

		res = apiResponse{}
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			return backoff.Permanent(fmt.Errorf("telegram: decode %s: %w", method, err))
		}
		if !res.OK {
			return backoff.Permanent(&APIError{Code: res.ErrorCode, Description: res.Description})
		}
		return nil
	}

	_, err = c.cb.Execute(func() (interface{}, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxElapsedTime = c.conf.RetryMaxElapsed
		return nil, backoff.Retry(operation, backoff.WithContext(b, ctx))
	})
	if err != nil {
		return err
	}
	if out != nil && len(res.Result) > 0 {
		return json.Unmarshal(res.Result, out)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
		c.log.Error("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

type chatMember struct {
	Status string `json:"status"`
}

// IsAdmin reports whether userID is the creator or an administrator of chatID.
func (c *Client) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	var m chatMember
	payload := map[string]interface{}{"chat_id": chatID, "user_id": userID}
	if err := c.call(ctx, "getChatMember", payload, &m); err != nil {
		return false, err
	}
	return m.Status == "creator" || m.Status == "administrator", nil
}
