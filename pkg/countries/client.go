package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
)

const DefaultBaseURL = "https://restcountries.com/v3.1"

// ErrNotFound is returned when no country matches the query.
var ErrNotFound = errors.New("country not found")

// Country is the subset of the REST Countries payload the budget estimate needs.
type Country struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
	Currency  string `json:"currency"`
}

// Resolver looks a country up by free-form destination text.
type Resolver interface {
	Lookup(ctx context.Context, query string) (*Country, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type apiCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2       string                     `json:"cca2"`
	Region     string                     `json:"region"`
	Subregion  string                     `json:"subregion"`
	Currencies map[string]json.RawMessage `json:"currencies"`
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Lookup resolves a destination like "Kyoto, Japan". Each comma separated
// part is tried from the most general (last) to the most specific.
func (c *Client) Lookup(ctx context.Context, query string) (*Country, error) {
	parts := strings.Split(query, ",")
	var lastErr error = ErrNotFound
	for i := len(parts) - 1; i >= 0; i-- {
		name := strings.TrimSpace(parts[i])
		if name == "" {
			continue
		}
		country, err := c.byName(ctx, name)
		if err == nil {
			return country, nil
		}
		lastErr = err
		if !errors.Is(err, ErrNotFound) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) byName(ctx context.Context, name string) (*Country, error) {
	params := url.Values{}
	params.Set("fields", "name,cca2,region,subregion,currencies")
	endpoint := fmt.Sprintf("%s/name/%s?%s", c.baseURL, url.PathEscape(name), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		logger.GetLogger().Warnw("Countries API returned non-OK status", "statusCode", resp.StatusCode, "query", name)
		return nil, fmt.Errorf("countries API returned status: %d", resp.StatusCode)
	}

	var payload []apiCountry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload) == 0 {
		return nil, ErrNotFound
	}

	best := payload[0]
	for _, p := range payload {
		if strings.EqualFold(p.Name.Common, name) {
			best = p
			break
		}
	}
	return &Country{
		Name:      best.Name.Common,
		Code:      best.CCA2,
		Region:    best.Region,
		Subregion: best.Subregion,
		Currency:  firstCurrency(best.Currencies),
	}, nil
}

func firstCurrency(m map[string]json.RawMessage) string {
	if len(m) == 0 {
		return ""
	}
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes[0]
}
