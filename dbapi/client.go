// Package dbapi talks to the DB Timetables API: one plan document per
// (station, civil date, hour) and a free-text station lookup. All calls pass
// through a shared priority throttle.
package dbapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/denizpo/smart-train-finder/dbtime"
)

// StatusError is a non-success response from the provider. Callers treat it
// as "no data for this slot" rather than a fatal condition.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
}

// Credentials are the DB API marketplace client id and key.
type Credentials struct {
	ClientID string
	APIKey   string
}

// Client issues outbound calls to the timetable provider under the shared
// throttle. Safe for concurrent use.
type Client struct {
	http     *resty.Client
	throttle *Throttle
}

func NewClient(baseURL string, creds Credentials, timeout time.Duration, throttle *Throttle) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("DB-Client-Id", creds.ClientID).
		SetHeader("DB-Api-Key", creds.APIKey).
		SetHeader("Accept", "application/xml")
	return &Client{http: rc, throttle: throttle}
}

// Plan fetches the timetable document for one station and civil hour.
func (c *Client) Plan(ctx context.Context, eva string, slot dbtime.Civil, prio Priority) (*Timetable, error) {
	body, err := c.get(ctx, fmt.Sprintf("/plan/%s/%s/%02d", eva, slot.CompactDate(), slot.Hour), prio)
	if err != nil {
		return nil, err
	}
	var tt Timetable
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse plan %s %s: %w", eva, slot, err)
	}
	return &tt, nil
}

// Stations looks up candidate stations for a free-text name.
func (c *Client) Stations(ctx context.Context, name string, prio Priority) (*StationList, error) {
	body, err := c.get(ctx, "/station/"+url.PathEscape(name), prio)
	if err != nil {
		return nil, err
	}
	var list StationList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse station lookup %q: %w", name, err)
	}
	return &list, nil
}

func (c *Client) get(ctx context.Context, path string, prio Priority) ([]byte, error) {
	if err := c.throttle.Acquire(ctx, prio); err != nil {
		return nil, err
	}
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.StatusCode() != 200 {
		return nil, &StatusError{URL: resp.Request.URL, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}
