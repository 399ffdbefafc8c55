// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/jcodagnone/geocoder/utils/httputils"
	"golang.org/x/sync/errgroup"
)

// maxParallelDownloads bounds the concurrent requests to the dump server.
const maxParallelDownloads = 3

// Downloader keeps a local copy of the dump files.
type Downloader struct {
	baseURL string
	dataDir string
	client  *retryablehttp.Client
	logger  *slog.Logger
}

// NewDownloader returns a downloader storing files from baseURL in dataDir.
// Requests go through httpClient and failed attempts are retried up to
// retries times.
func NewDownloader(baseURL, dataDir string, httpClient *http.Client, retries int, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	if httpClient != nil {
		client.HTTPClient = httpClient
	}

	client.Logger = nil
	client.RetryMax = max(retries, 0)
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second

	return &Downloader{baseURL: baseURL, dataDir: dataDir, client: client, logger: logger}
}

// Path returns the local path of a dump file.
func (d *Downloader) Path(name string) string {
	return filepath.Join(d.dataDir, name)
}

// Ensure downloads the files that are not present in the data directory yet.
func (d *Downloader) Ensure(ctx context.Context, names ...string) error {
	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)

	for _, name := range names {
		path := d.Path(name)

		if _, err := os.Stat(path); err == nil {
			d.logger.Debug("using local file", "path", path)

			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		g.Go(func() error {
			return d.fetch(ctx, name, path)
		})
	}

	return g.Wait()
}

// fetch writes the remote file next to path and renames it into place once
// complete, so an interrupted download never leaves a truncated file behind.
func (d *Downloader) fetch(ctx context.Context, name, path string) (err error) {
	u, err := url.JoinPath(d.baseURL, name)
	if err != nil {
		return fmt.Errorf("building URL for %s: %w", name, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", u, err)
	}

	start := time.Now()
	d.logger.Info("downloading", "url", u)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", u, err)
	}
	defer resp.Body.Close()

	if err := httputils.CheckResponse(resp); err != nil {
		return err
	}

	tmp := path + ".part"

	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmp)
		}
	}()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp, err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}

	d.logger.Info("downloaded", "path", path, "size", humanize.Bytes(uint64(n)), "elapsed", time.Since(start))

	return nil
}
