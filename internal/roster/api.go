package roster

import (
	"bytes"
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

const (
	DefaultAPIBaseURL = "https://dragonball-api.com/api"
	DefaultAPILimit   = 58
)

// APILoader fetches the roster from the public characters endpoint in a
// single page.
type APILoader struct {
	BaseURL string
	Limit   int
	schema  Schema
	http    *http.Client
}

// NewAPILoader builds a loader. A zero timeout leaves the transport default
// in place.
func NewAPILoader(baseURL string, limit int, timeout time.Duration, schema Schema) *APILoader {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if limit <= 0 {
		limit = DefaultAPILimit
	}
	return &APILoader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Limit:   limit,
		schema:  schema,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiCharacter is one record of the characters endpoint.
type apiCharacter struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	Gender      string          `json:"gender"`
	Race        string          `json:"race"`
	Affiliation string          `json:"affiliation"`
	Ki          json.RawMessage `json:"ki"`
	MaxKi       json.RawMessage `json:"maxKi"`
}

type apiPage struct {
	Items *[]apiCharacter `json:"items"`
}

func (l *APILoader) url() string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(l.Limit))
	return l.BaseURL + "/characters?" + q.Encode()
}

// Load performs one GET and normalizes the response.
func (l *APILoader) Load(ctx context.Context) (*Roster, error) {
	src := l.url()
	fail := func(err error) (*Roster, error) {
		return nil, &LoadError{Source: src, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.http.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var page apiPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	if page.Items == nil {
		return fail(fmt.Errorf("%w: missing items", ErrMalformedPayload))
	}

	raw := make([]Character, 0, len(*page.Items))
	for _, it := range *page.Items {
		raw = append(raw, it.character())
	}
	return normalize(src, l.schema, raw)
}

func (a apiCharacter) character() Character {
	return Character{
		ID:       rawString(a.ID),
		Name:     a.Name,
		ImageURL: strings.TrimSpace(a.Image),
		Attributes: map[string]Value{
			"gender":      categoryOrMissing(a.Gender),
			"race":        categoryOrMissing(a.Race),
			"affiliation": categoryOrMissing(a.Affiliation),
			"ki":          rawPower(a.Ki),
			"maxKi":       rawPower(a.MaxKi),
		},
	}
}

// rawString accepts a JSON string or number and returns its text form.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawPower(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Missing()
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return Quantity(n)
	}
	return ParsePowerLevel(rawString(raw))
}
