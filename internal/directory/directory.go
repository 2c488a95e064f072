// Package directory looks staff up in the municipal HR directory so accounts
// can be checked against a real employee before they are created.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("employee not found in HR directory")
	ErrUnavailable = errors.New("HR directory unavailable")
)

type Employee struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
}

type Directory interface {
	Lookup(ctx context.Context, externalID string) (Employee, error)
}

// HTTPDirectory talks to the HR search endpoint. It posts a form with
// tipo=D (search by national id) and dato=<id>.
type HTTPDirectory struct {
	endpoint string
	client   *http.Client
}

func NewHTTPDirectory(endpoint string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Status bool `json:"status"`
	Data   []struct {
		Empleado string `json:"empleado"`
	} `json:"data"`
}

func (d *HTTPDirectory) Lookup(ctx context.Context, externalID string) (Employee, error) {
	form := url.Values{}
	form.Set("tipo", "D")
	form.Set("dato", externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Employee{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return Employee{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return Employee{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Employee{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Employee{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	if !out.Status || len(out.Data) == 0 {
		return Employee{}, ErrNotFound
	}

	return Employee{
		ExternalID: externalID,
		Name:       strings.TrimSpace(out.Data[0].Empleado),
	}, nil
}
