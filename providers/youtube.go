package providers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weathertrack.app/config"
	weathererr "weathertrack.app/errors"
	"weathertrack.app/models"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// YouTubeProvider implements MediaProvider using the YouTube search API
type YouTubeProvider struct {
	apiKey    string
	searchURL string
	client    *http.Client
}

// NewYouTubeProvider creates a media provider. Returns nil when no API key is
// configured; callers treat a nil provider as enrichment disabled.
func NewYouTubeProvider(cfg *config.MediaConfig) *YouTubeProvider {
	if cfg.YouTubeAPIKey == "" {
		return nil
	}

	return &YouTubeProvider{
		apiKey:    cfg.YouTubeAPIKey,
		searchURL: youtubeSearchURL,
		client:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchVideos looks up travel videos for a place
func (p *YouTubeProvider) SearchVideos(query, countryCode string) ([]models.Video, error) {
	terms := []string{query}
	if countryCode != "" {
		terms = append(terms, countryCode)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", strings.Join(terms, " ")+" travel")
	params.Set("type", "video")
	params.Set("maxResults", "5")
	params.Set("key", p.apiKey)

	resp, err := p.client.Get(p.searchURL + "?" + params.Encode())
	if err != nil {
		return nil, weathererr.NewUpstreamError("failed to reach video service", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, weathererr.NewUpstreamError(fmt.Sprintf("video service returned status code %d", resp.StatusCode), nil)
	}

	var search youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, weathererr.NewUpstreamError("failed to decode video response", err)
	}

	videos := make([]models.Video, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID == "" {
			continue
		}
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}
		videos = append(videos, models.Video{
			ID:        item.ID.VideoID,
			Title:     item.Snippet.Title,
			Thumbnail: thumbnail,
			Link:      "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}
	return videos, nil
}
