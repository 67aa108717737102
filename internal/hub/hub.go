// Package hub implements the remote dataset store: listing, downloading
// and uploading repository files over the Hugging Face Hub HTTP API.
package hub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ytharvest/internal/config"
	"ytharvest/internal/errs"
)

const (
	// requestTimeout is the HTTP client timeout for hub requests.
	requestTimeout = 2 * time.Minute
	// maxErrBody caps how much of an error response body is kept.
	maxErrBody = 4096
	// revision is the branch all operations target.
	revision = "main"
)

// Store defines the remote dataset store operations the harvester needs.
type Store interface {
	// ListFiles returns the repository's file paths.
	ListFiles(ctx context.Context) ([]string, error)
	// DownloadFile fetches one repository file into destDir and returns
	// the local path.
	DownloadFile(ctx context.Context, name, destDir string) (string, error)
	// UploadFile uploads a local file to the given repository path,
	// overwriting any existing content.
	UploadFile(ctx context.Context, localPath, nameInRepo string) error
}

// Client talks to a Hugging Face dataset repository.
type Client struct {
	log    *slog.Logger
	cfg    *config.Config
	client *http.Client
}

// New creates a hub client. Returns ErrHubDisabled when no repository is
// configured.
func New(log *slog.Logger, cfg *config.Config) (*Client, error) {
	if !cfg.Hub.Enabled() {
		return nil, errs.ErrHubDisabled
	}

	return &Client{
		log: log.With(slog.String("package", "hub"), slog.String("repo", cfg.Hub.Repo)),
		cfg: cfg,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

// treeEntry is one entry of the repository tree listing.
type treeEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// ListFiles returns all file paths in the dataset repository.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/api/datasets/%s/tree/%s", c.cfg.Hub.Endpoint, c.cfg.Hub.Repo, revision)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list repo files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError("list repo files", resp)
	}

	var entries []treeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode tree listing: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Type == "file" {
			files = append(files, entry.Path)
		}
	}

	return files, nil
}

// DownloadFile fetches one repository file into destDir.
func (c *Client) DownloadFile(ctx context.Context, name, destDir string) (string, error) {
	url := fmt.Sprintf("%s/datasets/%s/resolve/%s/%s", c.cfg.Hub.Endpoint, c.cfg.Hub.Repo, revision, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("download %s: %w", name, errs.ErrFileNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return "", httpError("download "+name, resp)
	}

	localPath := filepath.Join(destDir, name)

	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", localPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", localPath, err)
	}

	return localPath, nil
}

// commitOp is one NDJSON line of the hub commit API payload.
type commitOp struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type commitHeader struct {
	Summary string `json:"summary"`
}

type commitFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// UploadFile uploads a local file via the hub commit API, overwriting any
// existing repository file at nameInRepo.
func (c *Client) UploadFile(ctx context.Context, localPath, nameInRepo string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}

	var body bytes.Buffer

	enc := json.NewEncoder(&body)

	if err := enc.Encode(commitOp{
		Key:   "header",
		Value: commitHeader{Summary: "Upload " + nameInRepo},
	}); err != nil {
		return fmt.Errorf("encode commit header: %w", err)
	}

	if err := enc.Encode(commitOp{
		Key: "file",
		Value: commitFile{
			Path:     nameInRepo,
			Content:  base64.StdEncoding.EncodeToString(data),
			Encoding: "base64",
		},
	}); err != nil {
		return fmt.Errorf("encode commit file: %w", err)
	}

	url := fmt.Sprintf("%s/api/datasets/%s/commit/%s", c.cfg.Hub.Endpoint, c.cfg.Hub.Repo, revision)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-ndjson")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", nameInRepo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpError("upload "+nameInRepo, resp)
	}

	c.log.Info("file uploaded", slog.String("file", nameInRepo))

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Hub.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Hub.Token)
	}
}

func httpError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))

	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, string(body))
}
