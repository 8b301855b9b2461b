package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	http       *http.Client
}

func NewClient(accountSID, authToken string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

func NewClientWithBaseURL(accountSID, authToken, baseURL string) *Client {
	c := NewClient(accountSID, authToken)
	c.baseURL = baseURL
	return c
}

// SendSMS crea un missatge via l'API de Twilio (POST form-encoded amb
// basic auth) i retorna el SID.
func (c *Client) SendSMS(ctx context.Context, from, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("twilio send failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var response messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("twilio decode: %w", err)
	}

	return response.SID, nil
}
