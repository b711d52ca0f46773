package wger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds wger API configuration
type Config struct {
	BaseURL  string        // e.g. https://wger.de/api/v2
	Language int           // wger language id, 2 = English
	Limit    int           // page size for searches
	Timeout  time.Duration // per request
}

// Client is the wger exercise database client. It never retries.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new wger client with a traced transport
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ref is an id that wger sends either bare (7) or expanded ({"id": 7, ...})
type ref int

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = ref(obj.ID)
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = ref(id)
	return nil
}

type translation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    ref    `json:"language"`
}

type exercisePayload struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     ref           `json:"category"`
	Equipment    []ref         `json:"equipment"`
	Muscles      []ref         `json:"muscles"`
	Translations []translation `json:"translations"`
}

type musclePayload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	NameEN  string `json:"name_en"`
	IsFront bool   `json:"is_front"`
}

type page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// Search lists exercises matching the term and/or muscle group
func (c *Client) Search(ctx context.Context, query domain.ExerciseQuery) ([]domain.ExerciseSummary, error) {
	params := url.Values{}
	params.Set("language", strconv.Itoa(c.config.Language))
	params.Set("limit", strconv.Itoa(c.config.Limit))
	if term := strings.TrimSpace(query.Term); term != "" {
		params.Set("name", term)
	}
	if muscle := strings.TrimSpace(query.MuscleGroupID); muscle != "" {
		params.Set("muscles", muscle)
	}

	var resp page[exercisePayload]
	if err := c.get(ctx, "/exercise/?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	out := make([]domain.ExerciseSummary, 0, len(resp.Results))
	for _, p := range resp.Results {
		out = append(out, c.toSummary(p))
	}
	return out, nil
}

// MuscleGroups lists the muscle groups searches can filter by
func (c *Client) MuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error) {
	var resp page[musclePayload]
	if err := c.get(ctx, "/muscle/", &resp); err != nil {
		return nil, err
	}

	out := make([]domain.MuscleGroup, 0, len(resp.Results))
	for _, m := range resp.Results {
		out = append(out, domain.MuscleGroup{
			ID:      m.ID,
			Name:    m.Name,
			NameEN:  m.NameEN,
			IsFront: m.IsFront,
		})
	}
	return out, nil
}

// Exercise fetches the details of one exercise
func (c *Client) Exercise(ctx context.Context, id int) (*domain.ExerciseSummary, error) {
	var p exercisePayload
	if err := c.get(ctx, fmt.Sprintf("/exerciseinfo/%d/", id), &p); err != nil {
		return nil, err
	}
	summary := c.toSummary(p)
	return &summary, nil
}

func (c *Client) toSummary(p exercisePayload) domain.ExerciseSummary {
	name, description := p.Name, p.Description
	for _, t := range p.Translations {
		if int(t.Language) == c.config.Language {
			if name == "" {
				name = t.Name
			}
			if description == "" {
				description = t.Description
			}
			break
		}
	}

	summary := domain.ExerciseSummary{
		ID:          p.ID,
		Name:        name,
		Description: description,
		Category:    int(p.Category),
	}
	for _, e := range p.Equipment {
		summary.Equipment = append(summary.Equipment, int(e))
	}
	for _, m := range p.Muscles {
		summary.Muscles = append(summary.Muscles, int(m))
	}
	return summary
}

// get performs a GET and decodes the JSON body into dest. Every failure
// is reported as domain.ErrCatalogUnavailable, a missing exercise as
// domain.ErrExerciseNotFound.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	endpoint := c.config.BaseURL + path
	log := logrus.WithField("url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.WithError(err).Warn("[wger] request failed")
		return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrCatalogUnavailable, err)
	}

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("[wger] response")

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/exerciseinfo/") {
		return domain.ErrExerciseNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", domain.ErrCatalogUnavailable, err)
	}
	return nil
}
