package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cutarr/cutarr/internal/config"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// cutsResponse is the JSON envelope the analysis service returns
type cutsResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Cuts    []*models.DetectedCut `json:"cuts"`
}

// Client wraps direct analysis-service HTTP calls. Fetched cut lists are
// cached per video so periodic re-application doesn't hammer the service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cutCache   *cache.Cache
	logger     *logrus.Logger
}

// NewClient creates a new analysis client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.AnalysisURL == "" {
		return nil, fmt.Errorf("analysis URL is required")
	}

	return &Client{
		baseURL: cfg.AnalysisURL,
		apiKey:  cfg.AnalysisKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cutCache: cache.New(2*time.Minute, 5*time.Minute),
		logger:   logger,
	}, nil
}

// FetchCuts retrieves the detected cuts for a source video. Transient
// failures are retried with exponential backoff; a successful response is
// cached briefly so re-applications within the window reuse it.
func (c *Client) FetchCuts(ctx context.Context, videoID string, activeOnly bool) ([]*models.DetectedCut, error) {
	cacheKey := fmt.Sprintf("%s/%t", videoID, activeOnly)
	if cached, found := c.cutCache.Get(cacheKey); found {
		c.logger.WithField("video_id", videoID).Debug("Using cached cut list")
		return cached.([]*models.DetectedCut), nil
	}

	var cuts []*models.DetectedCut

	operation := func() error {
		fetched, err := c.fetchCuts(ctx, videoID, activeOnly)
		if err != nil {
			c.logger.WithError(err).WithField("video_id", videoID).Warn("Cut fetch attempt failed")
			return err
		}
		cuts = fetched
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 15 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to fetch cuts for video %s: %w", videoID, err)
	}

	c.cutCache.Set(cacheKey, cuts, cache.DefaultExpiration)
	return cuts, nil
}

// Invalidate drops any cached cut lists for a video, forcing the next fetch
// to hit the service. Called when fresh cuts arrive via webhook.
func (c *Client) Invalidate(videoID string) {
	c.cutCache.Delete(fmt.Sprintf("%s/true", videoID))
	c.cutCache.Delete(fmt.Sprintf("%s/false", videoID))
}

func (c *Client) fetchCuts(ctx context.Context, videoID string, activeOnly bool) ([]*models.DetectedCut, error) {
	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis URL: %w", err)
	}
	apiURL.Path, err = url.JoinPath(apiURL.Path, "videos", videoID, "cuts")
	if err != nil {
		return nil, fmt.Errorf("failed to build cuts URL: %w", err)
	}

	params := url.Values{}
	if activeOnly {
		params.Add("active", "true")
	}
	apiURL.RawQuery = params.Encode()

	c.logger.WithFields(logrus.Fields{
		"url":      apiURL.String(),
		"video_id": videoID,
	}).Debug("Fetching detected cuts")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "cutarr/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Error("Analysis API returned non-OK status")
		return nil, fmt.Errorf("analysis API returned status %d", resp.StatusCode)
	}

	var envelope cutsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse cuts response: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("analysis API error: %s", envelope.Error)
	}

	c.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"count":    len(envelope.Cuts),
	}).Debug("Cut fetch completed")

	return envelope.Cuts, nil
}
