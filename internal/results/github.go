package results

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/openhumility/humility-survey/internal/survey"
	"go.uber.org/zap"
)

const (
	githubAPIURL = "https://api.github.com"
	acceptJSON   = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
)

// GitHubConfig describes the target repository for the remote push variant.
type GitHubConfig struct {
	Owner         string `mapstructure:"owner"`
	Repo          string `mapstructure:"repo"`
	Branch        string `mapstructure:"branch"`
	Dir           string `mapstructure:"dir"`
	CommitMessage string `mapstructure:"commit-message"`
}

// GitHubSink commits each submission as a file to a remote repository via
// the contents API (create-or-update, base64 payload, commit message).
type GitHubSink struct {
	cfg    *GitHubConfig
	token  string
	logger *zap.Logger

	APIURL     string
	HTTPClient *http.Client
	UserAgent  string

	now func() time.Time
}

// fileInfo is the slice of the contents API response the sink cares about.
type fileInfo struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Content *struct {
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"content"`
}

func NewGitHubSink(cfg *GitHubConfig, token string, logger *zap.Logger) *GitHubSink {
	return &GitHubSink{
		cfg:    cfg,
		token:  token,
		logger: logger,
		APIURL: githubAPIURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: "humility-survey",
		now:       time.Now,
	}
}

func (g *GitHubSink) Name() string { return "github" }

func (g *GitHubSink) Save(ctx context.Context, sub *survey.Submission) (string, error) {
	ts := g.now()
	filePath := path.Join(g.cfg.Dir, filename(ts))

	content := base64.StdEncoding.EncodeToString([]byte(render(sub, ts)))

	message := g.cfg.CommitMessage
	if message == "" {
		message = fmt.Sprintf("Add humility survey result %s", sub.ID)
	}

	payload := map[string]any{
		"message": message,
		"content": content,
	}
	if g.cfg.Branch != "" {
		payload["branch"] = g.cfg.Branch
	}

	// The contents API rejects updates without the current blob sha, so
	// look the file up first. Timestamped names make hits rare.
	if sha, err := g.currentSHA(ctx, filePath); err != nil {
		return "", err
	} else if sha != "" {
		payload["sha"] = sha
	}

	info, err := g.putContents(ctx, filePath, payload)
	if err != nil {
		return "", err
	}

	location := filePath
	if info.Content != nil && info.Content.HTMLURL != "" {
		location = info.Content.HTMLURL
	}

	g.logger.Debug("pushed results to github",
		zap.String("path", filePath),
		zap.String("location", location),
	)

	return location, nil
}

func (g *GitHubSink) contentsURL(filePath string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.APIURL, g.cfg.Owner, g.cfg.Repo, filePath)
}

// currentSHA returns the blob sha of the file if it already exists, or an
// empty string when it does not.
func (g *GitHubSink) currentSHA(ctx context.Context, filePath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(filePath), nil)
	if err != nil {
		return "", err
	}

	g.setHeaders(req)
	if g.cfg.Branch != "" {
		q := req.URL.Query()
		q.Set("ref", g.cfg.Branch)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := g.request(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup %s: bad status: %s", filePath, resp.Status)
	}

	info, err := decodeFileInfo(resp.Body)
	if err != nil {
		return "", err
	}

	return info.SHA, nil
}

func (g *GitHubSink) putContents(ctx context.Context, filePath string, payload map[string]any) (*fileInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal contents payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(filePath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	g.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push %s: bad status: %s", filePath, resp.Status)
	}

	return decodeFileInfo(resp.Body)
}

func (g *GitHubSink) request(req *http.Request) (*http.Response, error) {
	g.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("method", req.Method))
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (g *GitHubSink) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.token))
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", g.UserAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
}

func decodeFileInfo(r io.Reader) (*fileInfo, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}

	var info fileInfo
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &info,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}

	return &info, nil
}
