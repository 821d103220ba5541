package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxManifestBytes = 1 << 20

// AppFetcher reads app names and icons from the app's own website. All
// requests share one rate limiter.
type AppFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewAppFetcher creates a fetcher allowing limit requests per second with
// the given burst. A nil client gets a 10 second timeout.
func NewAppFetcher(client *http.Client, limit rate.Limit, burst int) *AppFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if burst < 1 {
		burst = 1
	}
	return &AppFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

type webManifest struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// ManifestName returns the app name from /manifest.json, preferring
// short_name. An empty string means the manifest has no name.
func (f *AppFetcher) ManifestName(ctx context.Context, originator string) (string, error) {
	resp, err := f.get(ctx, appBaseURL(originator)+"/manifest.json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var m webManifest
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxManifestBytes)).Decode(&m); err != nil {
		return "", fmt.Errorf("decode manifest for %s: %w", originator, err)
	}
	if m.ShortName != "" {
		return m.ShortName, nil
	}
	return m.Name, nil
}

// Favicon returns the favicon URL when the site serves one.
func (f *AppFetcher) Favicon(ctx context.Context, originator string) (string, error) {
	url := appBaseURL(originator) + "/favicon.ico"
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxManifestBytes))

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("no favicon at %s", url)
	}
	return url, nil
}

func (f *AppFetcher) get(ctx context.Context, url string) (*http.Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return resp, nil
}

// resolveApp loads the manifest name and favicon, each under its own cache
// key, delivering the merged label after every change.
func (s *Service) resolveApp(ctx context.Context, subj Subject, onValue func(Metadata)) error {
	md := s.Peek(ctx, subj)
	onValue(md)
	if s.apps == nil {
		return nil
	}
	keys := s.CacheKeys(subj)

	nameErr := s.labels.Load(ctx, keys[0], func(ctx context.Context) (string, error) {
		return s.apps.ManifestName(ctx, subj.ID)
	}, func(name string) {
		if name != "" && name != md.Name {
			md.Name = name
			onValue(md)
		}
	})
	iconErr := s.labels.Load(ctx, keys[1], func(ctx context.Context) (string, error) {
		return s.apps.Favicon(ctx, subj.ID)
	}, func(icon string) {
		if icon != md.IconURL {
			md.IconURL = icon
			onValue(md)
		}
	})
	return errors.Join(nameErr, iconErr)
}

// appDomain strips the scheme and any path from an originator.
func appDomain(originator string) string {
	d := strings.TrimSpace(originator)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}

// appBaseURL keeps an explicit scheme, uses http for local hosts and https
// for everything else.
func appBaseURL(originator string) string {
	o := strings.TrimRight(strings.TrimSpace(originator), "/")
	if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
		return o
	}
	d := appDomain(o)
	if strings.HasPrefix(d, "localhost") || strings.HasPrefix(d, "127.0.0.1") {
		return "http://" + d
	}
	return "https://" + d
}
