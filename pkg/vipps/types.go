// Package vipps provides a typed client for the Vipps-MobilePay
// accounting (Report) API.
package vipps

import "time"

// AccessToken is the session token used by the Report API.
// Tokens expire roughly every 15 minutes; ExpiresAt carries a one
// second safety margin below the server-reported lifetime.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token is expired at the given instant.
func (t *AccessToken) Expired(now time.Time) bool {
	return t == nil || !now.Before(t.ExpiresAt)
}

// TokenResponse is the response from the partner token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// BankAccount identifies a payout bank account.
type BankAccount struct {
	Scheme string `json:"scheme"` // e.g. "BBAN:DK"
	ID     string `json:"id"`
}

// Owner identifies the business that owns a ledger.
type Owner struct {
	Scheme string `json:"scheme"` // e.g. "business:DK:CVR"
	ID     string `json:"id"`
}

// LedgerInfo describes a settlement ledger.
type LedgerInfo struct {
	LedgerID                   string      `json:"ledgerId"`
	Currency                   string      `json:"currency"`
	PayoutBankAccount          BankAccount `json:"payoutBankAccount"`
	Owner                      Owner       `json:"owner"`
	SettlesForRecipientHandles []string    `json:"settlesForRecipientHandles"`
}

// LedgersResponse is the response from the settlement ledgers endpoint.
type LedgersResponse struct {
	Items []LedgerInfo `json:"items"`
}

// FundEntry is a single ledger movement from the funds report.
// Amounts are in minor units (øre).
type FundEntry struct {
	PSPReference    string    `json:"pspReference"`
	Time            time.Time `json:"time"`
	LedgerDate      string    `json:"ledgerDate"` // YYYY-MM-DD
	EntryType       string    `json:"entryType"`  // payment, refund, payout, fee
	Reference       string    `json:"reference"`
	Currency        string    `json:"currency"`
	Amount          int64     `json:"amount"` // net of fee
	GrossAmount     int64     `json:"grossAmount"`
	Fee             int64     `json:"fee"`
	RecipientHandle string    `json:"recipientHandle"`
	Name            string    `json:"name,omitempty"`          // GDPR sensitive
	MaskedPhoneNo   string    `json:"maskedPhoneNo,omitempty"` // GDPR sensitive
}

// DateResponse is the response from the per-date funds endpoint.
type DateResponse struct {
	Items []FundEntry `json:"items"`
}

// FeedResponse is one page of the funds feed.
// TryLater comes over the wire as the string "true" or "false".
type FeedResponse struct {
	Items    []FundEntry `json:"items"`
	Cursor   string      `json:"cursor"`
	TryLater string      `json:"tryLater"`
}

// ErrorResponse is the problem-style error body returned by the API.
type ErrorResponse struct {
	Type         string        `json:"type,omitempty"`
	Title        string        `json:"title,omitempty"`
	Detail       string        `json:"detail,omitempty"`
	Status       int           `json:"status,omitempty"`
	TraceID      string        `json:"traceId,omitempty"`
	ExtraDetails []ExtraDetail `json:"extraDetails,omitempty"`
}

// ExtraDetail is a field-level error detail.
type ExtraDetail struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
