package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/worldwideservice/agent-admin/internal/config"

	"golang.org/x/time/rate"
)

// Client talks to the Kommo (amoCRM) v4 API for the reference data the
// editors need. Kommo enforces 7 requests per second per account, so
// every call goes through a limiter.
type Client struct {
	Config *config.Config
	HTTP   *http.Client

	limiter *rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		Config:  cfg,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(7), 7),
	}
}

// Pipeline is one sales funnel with its ordered stages.
type Pipeline struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

type Stage struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Channel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Salesbot struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Field is one custom deal/contact field.
type Field struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	if c.Config.KommoBaseDomain == "" {
		return fmt.Errorf("KOMMO_BASE_DOMAIN not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	url := "https://" + c.Config.KommoBaseDomain + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.KommoAccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("kommo API %s returned %d: %s", path, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// GetPipelines returns all pipelines with their embedded stages.
func (c *Client) GetPipelines(ctx context.Context) ([]Pipeline, error) {
	var raw struct {
		Embedded struct {
			Pipelines []struct {
				ID       int64  `json:"id"`
				Name     string `json:"name"`
				Embedded struct {
					Statuses []struct {
						ID    int64  `json:"id"`
						Name  string `json:"name"`
						Color string `json:"color"`
					} `json:"statuses"`
				} `json:"_embedded"`
			} `json:"pipelines"`
		} `json:"_embedded"`
	}

	if err := c.doGet(ctx, "/api/v4/leads/pipelines", &raw); err != nil {
		return nil, err
	}

	pipelines := make([]Pipeline, 0, len(raw.Embedded.Pipelines))
	for _, p := range raw.Embedded.Pipelines {
		pipeline := Pipeline{ID: p.ID, Name: p.Name}
		for _, s := range p.Embedded.Statuses {
			pipeline.Stages = append(pipeline.Stages, Stage{ID: s.ID, Name: s.Name, Color: s.Color})
		}
		pipelines = append(pipelines, pipeline)
	}
	return pipelines, nil
}

// GetUsers returns the account's users for the assign_user picker.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var raw struct {
		Embedded struct {
			Users []User `json:"users"`
		} `json:"_embedded"`
	}
	if err := c.doGet(ctx, "/api/v4/users", &raw); err != nil {
		return nil, err
	}
	return raw.Embedded.Users, nil
}

// GetChannels returns the connected chat sources.
func (c *Client) GetChannels(ctx context.Context) ([]Channel, error) {
	var raw struct {
		Embedded struct {
			Sources []Channel `json:"sources"`
		} `json:"_embedded"`
	}
	if err := c.doGet(ctx, "/api/v4/sources", &raw); err != nil {
		return nil, err
	}
	return raw.Embedded.Sources, nil
}

// GetSalesbots returns the account's salesbots.
func (c *Client) GetSalesbots(ctx context.Context) ([]Salesbot, error) {
	var raw struct {
		Embedded struct {
			Bots []Salesbot `json:"bots"`
		} `json:"_embedded"`
	}
	if err := c.doGet(ctx, "/api/v4/salesbots", &raw); err != nil {
		return nil, err
	}
	return raw.Embedded.Bots, nil
}

// GetCustomFields returns custom fields for an entity type
// ("leads" or "contacts").
func (c *Client) GetCustomFields(ctx context.Context, entity string) ([]Field, error) {
	var raw struct {
		Embedded struct {
			CustomFields []Field `json:"custom_fields"`
		} `json:"_embedded"`
	}
	if err := c.doGet(ctx, "/api/v4/"+entity+"/custom_fields", &raw); err != nil {
		return nil, err
	}
	return raw.Embedded.CustomFields, nil
}
