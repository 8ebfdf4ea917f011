// README: weatherapi.com current-conditions client.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"routeroll/internal/types"
)

var ErrUpstream = errors.New("weather upstream error")

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type currentResponse struct {
	Current struct {
		TempC      float64 `json:"temp_c"`
		Humidity   float64 `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		WindDegree float64 `json:"wind_degree"`
		PrecipMm   float64 `json:"precip_mm"`
		Condition  struct {
			Code int    `json:"code"`
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (c *Client) Current(ctx context.Context, at types.GeoPoint) (types.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", fmt.Sprintf("%.6f,%.6f", at.Lat, at.Lng))
	q.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return types.WeatherSnapshot{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.WeatherSnapshot{}, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	cur := body.Current
	return types.WeatherSnapshot{
		TemperatureC:    cur.TempC,
		Humidity:        cur.Humidity,
		WindSpeedKph:    cur.WindKph,
		WindDegree:      cur.WindDegree,
		PrecipitationMm: cur.PrecipMm,
		ConditionCode:   cur.Condition.Code,
		Description:     cur.Condition.Text,
	}, nil
}
