// Package rentcast — клиент внешнего API данных о недвижимости (rentcast.io).
package rentcast

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

// ErrNotFound — по адресу ничего не найдено.
var ErrNotFound = errors.New("rentcast: property not found")

// Property — нормализованная запись об объекте недвижимости.
type Property struct {
	ID               string  `json:"id"`
	Address          string  `json:"address"`
	Price            float64 `json:"price"`
	SquareFootage    float64 `json:"squareFootage"`
	YearBuilt        int     `json:"yearBuilt"`
	OwnerName        string  `json:"ownerName"`
	OwnerType        string  `json:"ownerType"`
	LegalDescription string  `json:"legalDescription"`
}

// apiProperty — сырой ответ Rentcast (snake_case поля).
type apiProperty struct {
	ID               string  `json:"id"`
	Address          string  `json:"address"`
	Price            float64 `json:"price"`
	SquareFeet       float64 `json:"square_feet"`
	YearBuilt        int     `json:"year_built"`
	OwnerName        string  `json:"owner_name"`
	OwnerType        string  `json:"owner_type"`
	LegalDescription string  `json:"legal_description"`
}

func (p apiProperty) normalize() Property {
	return Property{
		ID:               p.ID,
		Address:          p.Address,
		Price:            p.Price,
		SquareFootage:    p.SquareFeet,
		YearBuilt:        p.YearBuilt,
		OwnerName:        p.OwnerName,
		OwnerType:        p.OwnerType,
		LegalDescription: p.LegalDescription,
	}
}

// Client вызывает Rentcast API. Если APIKey пустой — методы возвращают
// пустые результаты, поиск недвижимости считается отключённым.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New создаёт клиент. apiKey пустой — интеграция отключена.
func New(baseURL, apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	if baseURL == "" {
		baseURL = "https://api.rentcast.io/v1"
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled — true, если задан API-ключ.
func (c *Client) Enabled() bool { return c.apiKey != "" }

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rentcast: %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// Properties возвращает список объектов. Без API-ключа — пустой список без ошибки.
func (c *Client) Properties(ctx context.Context) ([]Property, error) {
	if c.apiKey == "" {
		return []Property{}, nil
	}
	body, err := c.get(ctx, c.baseURL+"/properties")
	if err != nil {
		return nil, err
	}
	// Ответ приходит либо как {"properties": [...]}, либо как голый массив.
	var wrapped struct {
		Properties []apiProperty `json:"properties"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Properties == nil {
		var list []apiProperty
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("rentcast: decode properties: %w", err)
		}
		wrapped.Properties = list
	}
	out := make([]Property, 0, len(wrapped.Properties))
	for _, p := range wrapped.Properties {
		out = append(out, p.normalize())
	}
	return out, nil
}

// PropertyByAddress ищет объект по адресу. Без ключа и при пустом ответе — ErrNotFound.
func (c *Client) PropertyByAddress(ctx context.Context, address string) (*Property, error) {
	if c.apiKey == "" {
		return nil, ErrNotFound
	}
	q := url.Values{}
	q.Set("address", address)
	body, err := c.get(ctx, c.baseURL+"/properties?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var list []apiProperty
	if err := json.Unmarshal(body, &list); err != nil {
		// Одиночный объект вместо массива.
		var one apiProperty
		if err2 := json.Unmarshal(body, &one); err2 != nil || one.ID == "" && one.Address == "" {
			return nil, fmt.Errorf("rentcast: decode property: %w", err)
		}
		p := one.normalize()
		return &p, nil
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	p := list[0].normalize()
	return &p, nil
}
