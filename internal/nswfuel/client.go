// Package nswfuel provides a client for the NSW fuel price API,
// including the OAuth client-credential exchange and the authenticated
// price-check request.
package nswfuel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"fueltrends/internal/logger"
	"fueltrends/internal/models"
	"fueltrends/internal/state"
)

// ErrSourceUnavailable indicates the price-check request returned a
// non-success status. The daily run continues without new data.
var ErrSourceUnavailable = errors.New("price source unavailable")

// Tokens are refreshed this long before their reported expiry to avoid
// racing the server-side cutoff.
const expirySafetyMargin = 10 * time.Minute

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	Key     string
	Secret  string
	Region  string
	Timeout time.Duration
}

// Client talks to the fuel price API. The cached access token and the
// per-request transaction counter live in the state store.
type Client struct {
	cfg   Config
	store *state.Store
	http  *resty.Client
}

// NewClient creates a fuel price API client.
func NewClient(cfg Config, store *state.Store) *Client {
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Timeout)
	return &Client{
		cfg:   cfg,
		store: store,
		http:  httpClient,
	}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// AccessToken returns a valid bearer token, performing the
// client-credential exchange when the cached token is absent or
// expired. An exchange failure is fatal for the run and propagates.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, expiresAt, ok, err := c.store.Credential()
	if err != nil {
		return "", err
	}
	if ok && token != "" && time.Now().Before(expiresAt) {
		return token, nil
	}

	logger.Info("Fetching new access token")
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.Key + ":" + c.cfg.Secret))
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+basic).
		Get(c.cfg.BaseURL + "/oauth/client_credential/accesstoken?grant_type=client_credentials")
	if err != nil {
		return "", fmt.Errorf("credential exchange request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("credential exchange returned %d: %s", resp.StatusCode(), resp.Body())
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return "", fmt.Errorf("failed to decode credential response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("credential response contained no access token")
	}
	ttl, err := tr.ExpiresIn.Int64()
	if err != nil {
		return "", fmt.Errorf("invalid expires_in %q: %w", tr.ExpiresIn, err)
	}

	expiresAt = time.Now().Add(time.Duration(ttl)*time.Second - expirySafetyMargin)
	if err := c.store.SaveCredential(tr.AccessToken, expiresAt); err != nil {
		return "", err
	}
	logger.Info("Got access token (expires %s)", expiresAt.Format(time.RFC3339))
	return tr.AccessToken, nil
}

type priceResponse struct {
	Prices []struct {
		FuelType string  `json:"fueltype"`
		Price    float64 `json:"price"`
	} `json:"prices"`
}

// FetchPrices performs an authenticated price-check request and returns
// a snapshot stripped to the aggregate-relevant fields, stamped with
// the request instant. A non-success status maps to ErrSourceUnavailable.
func (c *Client) FetchPrices(ctx context.Context, now time.Time) (*models.Snapshot, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	txID, err := c.store.NextTransactionID()
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("apikey", c.cfg.Key).
		SetHeader("transactionid", txID).
		SetHeader("requesttimestamp", now.Format("02/01/2006 03:04:05 PM")).
		Get(c.cfg.BaseURL + "/FuelPriceCheck/v2/fuel/prices?states=" + c.cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		logger.Error("Price request returned %d: %s", resp.StatusCode(), resp.Body())
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode())
	}

	var pr priceResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	snap := &models.Snapshot{
		RequestTime: now.Unix(),
		Prices:      make([]models.StationPrice, 0, len(pr.Prices)),
	}
	for _, p := range pr.Prices {
		snap.Prices = append(snap.Prices, models.StationPrice{
			FuelType: p.FuelType,
			Price:    p.Price,
		})
	}
	return snap, nil
}
