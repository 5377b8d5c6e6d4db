package vipps

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIURL is the production Report API endpoint.
const DefaultAPIURL = "https://api.vipps.no"

const tokenPath = "/miami/v1/token"

// ClientConfig represents the configuration for the Report API client.
type ClientConfig struct {
	APIURL       string // Default: DefaultAPIURL
	ClientID     string
	ClientSecret string
	MyshopNumber int64
	Country      string        // Recipient handle country prefix. Default: "DK"
	Timeout      time.Duration // Default: 30 seconds
}

// Client is a Vipps-MobilePay Report API client.
//
// The client authenticates with partner keys, resolves the settlement
// ledger for the configured MyShop number, and fetches fund entries
// either per complete day or from the cursor-based feed. Sessions are
// re-established transparently when the access token expires.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	myshopNumber int64
	country      string

	session  *AccessToken
	ledgerID int64
	cursor   string

	now func() time.Time
}

// NewClient creates a new Report API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := config.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	country := config.Country
	if country == "" {
		country = "DK"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     config.ClientID,
		clientSecret: config.ClientSecret,
		myshopNumber: config.MyshopNumber,
		country:      country,
		now:          time.Now,
	}
}

// RecipientHandle returns the recipient handle for the configured shop,
// e.g. "DK:90601".
func (c *Client) RecipientHandle() string {
	return fmt.Sprintf("%s:%d", c.country, c.myshopNumber)
}

// Cursor returns the current feed cursor.
func (c *Client) Cursor() string {
	return c.cursor
}

// SetCursor sets the feed cursor, typically restored from sync metadata.
func (c *Client) SetCursor(cursor string) {
	c.cursor = cursor
}

// Authenticate fetches a new access token with the partner keys.
// The recorded expiry keeps a one second margin below the reported
// lifetime so a token is never used right at its boundary.
func (c *Client) Authenticate() (*AccessToken, error) {
	tokenURL := c.baseURL + tokenPath

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	session := &AccessToken{
		Token:     tokenResp.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(tokenResp.ExpiresIn-1) * time.Second),
	}
	c.session = session

	slog.Info("Retrieved new session token", "expires_at", session.ExpiresAt)
	return session, nil
}

// ensureToken re-authenticates if the session token is missing or has
// expired. The check is client-side against the recorded expiry.
func (c *Client) ensureToken() error {
	if !c.session.Expired(c.now()) {
		return nil
	}
	if c.session != nil {
		slog.Info("Session token expired, retrieving new token")
	}
	_, err := c.Authenticate()
	return err
}

// ensureSession makes sure both the access token and the ledger ID are
// available before a report call.
func (c *Client) ensureSession() error {
	if err := c.ensureToken(); err != nil {
		return err
	}
	if c.ledgerID == 0 {
		id, err := c.LedgerID()
		if err != nil {
			return err
		}
		c.ledgerID = id
	}
	return nil
}

// LedgerInfo fetches the settlement ledger that settles for the
// configured recipient handle.
func (c *Client) LedgerInfo() (*LedgerInfo, error) {
	if err := c.ensureToken(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/settlement/v1/ledgers"

	queryParams := url.Values{}
	queryParams.Set("settlesForRecipientHandles", c.RecipientHandle())

	req, err := http.NewRequest("GET", fmt.Sprintf("%s?%s", endpoint, queryParams.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var ledgersResp LedgersResponse
	if err := json.NewDecoder(resp.Body).Decode(&ledgersResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(ledgersResp.Items) == 0 {
		return nil, fmt.Errorf("no ledger settles for recipient handle %s", c.RecipientHandle())
	}

	return &ledgersResp.Items[0], nil
}

// LedgerID fetches and parses the numeric ledger ID for the configured
// recipient handle.
func (c *Client) LedgerID() (int64, error) {
	info, err := c.LedgerInfo()
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(info.LedgerID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ledger ID %q: %w", info.LedgerID, err)
	}

	return id, nil
}

// TransactionsByDate fetches all fund entries booked on a historic
// ledger date. The Report API only serves complete days, so day must be
// strictly before today.
func (c *Client) TransactionsByDate(day time.Time) ([]FundEntry, error) {
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	if !dayStart.Before(today) {
		return nil, fmt.Errorf("date %s is not a complete day yet", day.Format("2006-01-02"))
	}

	if err := c.ensureSession(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/report/v2/ledgers/%d/funds/dates/%s",
		c.baseURL, c.ledgerID, day.Format("2006-01-02"))

	queryParams := url.Values{}
	queryParams.Set("includeGDPRSensitiveData", "true")

	var dateResp DateResponse
	if err := c.getJSON(endpoint, queryParams, &dateResp); err != nil {
		return nil, err
	}

	return dateResp.Items, nil
}

// FetchFeedPage fetches one page of the funds feed at the given cursor.
func (c *Client) FetchFeedPage(cursor string) (*FeedResponse, error) {
	if err := c.ensureSession(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/report/v2/ledgers/%d/funds/feed", c.baseURL, c.ledgerID)

	queryParams := url.Values{}
	queryParams.Set("includeGDPRSensitiveData", "true")
	queryParams.Set("cursor", cursor)

	var feedResp FeedResponse
	if err := c.getJSON(endpoint, queryParams, &feedResp); err != nil {
		return nil, err
	}

	return &feedResp, nil
}

// TransactionsFromFeed drains the funds feed from the current cursor
// and returns every new entry. The cursor is advanced past consumed
// pages so a later call (or a restored client) resumes where this one
// stopped. Draining ends when the feed answers tryLater or an empty
// page.
func (c *Client) TransactionsFromFeed() ([]FundEntry, error) {
	var transactions []FundEntry
	cursor := c.cursor

	for {
		page, err := c.FetchFeedPage(cursor)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, page.Items...)

		if page.TryLater == "true" {
			break
		}

		cursor = page.Cursor

		if len(page.Items) == 0 {
			break
		}
	}

	c.cursor = cursor
	return transactions, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(endpoint string, queryParams url.Values, out interface{}) error {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s?%s", endpoint, queryParams.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseError parses an error response from the Report API.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vipps API error (status %d): failed to read error response", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("vipps API error (status %d): %s", resp.StatusCode, string(body))
	}

	if errResp.Detail != "" {
		return fmt.Errorf("vipps API error (status %d): %s - %s", resp.StatusCode, errResp.Title, errResp.Detail)
	}
	if errResp.Title != "" {
		return fmt.Errorf("vipps API error (status %d): %s", resp.StatusCode, errResp.Title)
	}

	return fmt.Errorf("vipps API error (status %d): %s", resp.StatusCode, string(body))
}
