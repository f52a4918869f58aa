package prayer

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

	"islamicTodo/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.aladhan.com/v1"
	DefaultMethod  = 2
	DefaultCity    = "Addis Ababa"
	DefaultCountry = "Ethiopia"
	DefaultTimeout = 10 * time.Second
)

// ErrUnavailable - времена намазов получить не удалось; вызывающий показывает
// состояние "недоступно" и сам решает, запрашивать ли снова
var ErrUnavailable = errors.New("время намазов недоступно")

type Time struct {
	Name string `json:"name"`
	At   string `json:"at"`
}

type Timings struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Date    string `json:"date,omitempty"`
	Times   []Time `json:"times"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	method     int
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	if c == nil {
		return nil
	}
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	if u == "" {
		return nil
	}
	return func(cl *Client) {
		cl.baseURL = strings.TrimRight(u, "/")
	}
}

func WithMethod(m int) Option {
	if m <= 0 {
		return nil
	}
	return func(cl *Client) {
		cl.method = m
	}
}

func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		return nil
	}
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

func NewClient(options ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		method:     DefaultMethod,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings orderedTimes `json:"timings"`
		Date    struct {
			Readable string `json:"readable"`
		} `json:"date"`
	} `json:"data"`
}

// orderedTimes сохраняет порядок ключей объекта timings как в ответе
type orderedTimes []Time

func (o *orderedTimes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("timings: ожидался объект, получено %v", tok)
	}

	var res []Time
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var at string
		if err := dec.Decode(&at); err != nil {
			return fmt.Errorf("timings.%s: %w", name, err)
		}
		res = append(res, Time{Name: name, At: at})
	}
	*o = res
	return nil
}

// Timings запрашивает расписание на сегодня. Повторных попыток нет.
func (c *Client) Timings(ctx context.Context, city, country string) (Timings, error) {
	start := time.Now()

	if strings.TrimSpace(city) == "" {
		city = DefaultCity
	}
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}

	q := url.Values{}
	q.Set("city", city)
	q.Set("country", country)
	q.Set("method", strconv.Itoa(c.method))
	endpoint := c.baseURL + "/timingsByCity?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Timings{}, fmt.Errorf("%w: создание запроса: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Prayer: Провайдер недоступен", zap.String("city", city), zap.Error(err))
		return Timings{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Warn("Prayer: Провайдер вернул ошибку",
			zap.String("city", city),
			zap.Int("status", resp.StatusCode))
		return Timings{}, fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		logger.Warn("Prayer: Не удалось разобрать ответ", zap.Error(err))
		return Timings{}, fmt.Errorf("%w: разбор ответа: %w", ErrUnavailable, err)
	}
	if len(body.Data.Timings) == 0 {
		return Timings{}, fmt.Errorf("%w: пустое расписание", ErrUnavailable)
	}

	logger.Info("Prayer: Расписание получено",
		zap.String("city", city),
		zap.Int("count", len(body.Data.Timings)),
		zap.Duration("ms", time.Since(start)))

	return Timings{
		City:    city,
		Country: country,
		Date:    body.Data.Date.Readable,
		Times:   []Time(body.Data.Timings),
	}, nil
}
