package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type OfferQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	Adults        int
}

// OfferGateway looks up priced offers upstream. Offers are passed through untouched.
type OfferGateway interface {
	Search(ctx context.Context, q OfferQuery) ([]json.RawMessage, error)
}

type httpOfferGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPOfferGateway(baseURL, apiKey string, timeout time.Duration) OfferGateway {
	return &httpOfferGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type offerSearchResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (g *httpOfferGateway) Search(ctx context.Context, q OfferQuery) ([]json.RawMessage, error) {
	if q.Origin == "" || q.Destination == "" || q.DepartureDate == "" {
		return nil, ErrInvalidOfferQuery
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Adults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/offers?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build offer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOfferSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: upstream status %d", ErrOfferSearchFailed, resp.StatusCode)
	}

	var body offerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrOfferSearchFailed, err)
	}
	if body.Data == nil {
		body.Data = []json.RawMessage{}
	}
	return body.Data, nil
}
