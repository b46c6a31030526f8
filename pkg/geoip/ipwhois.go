package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// DefaultIPWhoisURL is the public ipwho.is endpoint.
const DefaultIPWhoisURL = "http://ipwho.is"

// IPWhoisProvider resolves attributes through the ipwho.is JSON API. It is
// the only provider that fills every recognized attribute.
type IPWhoisProvider struct {
	baseURL string
	client  *http.Client
}

// NewIPWhoisProvider creates a provider. An empty baseURL selects
// DefaultIPWhoisURL; a zero timeout leaves the client without one.
func NewIPWhoisProvider(baseURL string, timeout time.Duration) *IPWhoisProvider {
	if baseURL == "" {
		baseURL = DefaultIPWhoisURL
	}
	return &IPWhoisProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type ipWhoisResponse struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	Country       string   `json:"country"`
	CountryCode   string   `json:"country_code"`
	City          string   `json:"city"`
	Continent     string   `json:"continent"`
	ContinentCode string   `json:"continent_code"`
	Region        string   `json:"region"`
	RegionCode    string   `json:"region_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	IsEU          *bool    `json:"is_eu"`
	Postal        string   `json:"postal"`
	CallingCode   string   `json:"calling_code"`
	Capital       string   `json:"capital"`
	Borders       string   `json:"borders"`
	Flag          struct {
		Emoji string `json:"emoji"`
	} `json:"flag"`
	Connection struct {
		ASN    *uint  `json:"asn"`
		Org    string `json:"org"`
		ISP    string `json:"isp"`
		Domain string `json:"domain"`
	} `json:"connection"`
	Timezone struct {
		ID          string `json:"id"`
		Abbr        string `json:"abbr"`
		IsDST       *bool  `json:"is_dst"`
		Offset      *int   `json:"offset"`
		UTC         string `json:"utc"`
		CurrentTime string `json:"current_time"`
	} `json:"timezone"`
}

// Resolve issues GET {baseURL}/{ip}. Transport errors, non-2xx statuses,
// undecodable bodies and "success": false all fail with ErrLookup.
func (p *IPWhoisProvider) Resolve(ctx context.Context, ip string) (*models.AttributeBag, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+url.PathEscape(ip), nil)
	if err != nil {
		return nil, newLookupError(ip, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newLookupError(ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newLookupError(ip, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var body ipWhoisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newLookupError(ip, fmt.Errorf("decode response: %w", err))
	}
	if !body.Success {
		msg := body.Message
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, newLookupError(ip, errors.New(msg))
	}

	return &models.AttributeBag{
		Country:        body.Country,
		CountryCode:    body.CountryCode,
		City:           body.City,
		Continent:      body.Continent,
		ContinentCode:  body.ContinentCode,
		Region:         body.Region,
		RegionCode:     body.RegionCode,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
		IsEU:           body.IsEU,
		Postal:         body.Postal,
		CallingCode:    body.CallingCode,
		Capital:        body.Capital,
		Borders:        body.Borders,
		CountryFlag:    body.Flag.Emoji,
		ASN:            body.Connection.ASN,
		Org:            body.Connection.Org,
		ISP:            body.Connection.ISP,
		Domain:         body.Connection.Domain,
		TimezoneID:     body.Timezone.ID,
		TimezoneAbbr:   body.Timezone.Abbr,
		TimezoneIsDST:  body.Timezone.IsDST,
		TimezoneOffset: body.Timezone.Offset,
		TimezoneUTC:    body.Timezone.UTC,
		CurrentTime:    body.Timezone.CurrentTime,
	}, nil
}
