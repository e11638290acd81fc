// services/verify_client.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// VerifyClient talks to the Twilio Verify REST API to deliver and check SMS
// verification codes. Constructed once at startup and injected; when Twilio
// is not configured the auth service falls back to locally generated codes.
type VerifyClient struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string
	Client     *http.Client
}

// NewVerifyClientFromEnv returns nil when Twilio credentials are absent,
// which switches the auth service into local-code mode (dev setups).
func NewVerifyClientFromEnv() *VerifyClient {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	serviceSID := os.Getenv("TWILIO_VERIFY_SERVICE_SID")
	if accountSID == "" || authToken == "" || serviceSID == "" {
		return nil
	}

	return &VerifyClient{
		AccountSID: accountSID,
		AuthToken:  authToken,
		ServiceSID: serviceSID,
		BaseURL:    "https://verify.twilio.com/v2",
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type verificationResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// StartVerification asks Twilio to send an SMS code to the phone number.
func (c *VerifyClient) StartVerification(phone string) (string, error) {
	endpoint := fmt.Sprintf("%s/Services/%s/Verifications", c.BaseURL, c.ServiceSID)

	form := url.Values{}
	form.Set("To", phone)
	form.Set("Channel", "sms")

	out, err := c.post(endpoint, form)
	if err != nil {
		return "", err
	}
	return out.Status, nil
}

// CheckVerification validates a code the user typed in. Only the "approved"
// status counts as a successful check.
func (c *VerifyClient) CheckVerification(phone, code string) (bool, error) {
	endpoint := fmt.Sprintf("%s/Services/%s/VerificationCheck", c.BaseURL, c.ServiceSID)

	form := url.Values{}
	form.Set("To", phone)
	form.Set("Code", code)

	out, err := c.post(endpoint, form)
	if err != nil {
		return false, err
	}
	return out.Status == "approved", nil
}

func (c *VerifyClient) post(endpoint string, form url.Values) (*verificationResponse, error) {
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio verify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Twilio Verify returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("twilio verify returned status %d", resp.StatusCode)
	}

	var out verificationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode twilio response: %w", err)
	}
	return &out, nil
}
