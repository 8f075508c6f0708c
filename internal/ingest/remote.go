package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/DonaldPG/pytaaa-web/pkg/httputil"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// Fetcher mirrors a model's .params files from a remote host into a
// local directory so the normal file ingest can run on them.
type Fetcher struct {
	client *httputil.Client
	log    *logger.Logger
}

// NewFetcher creates a fetcher throttled to rps requests per second
func NewFetcher(log *logger.Logger, rps float64) *Fetcher {
	return &Fetcher{
		client: httputil.New(log).WithRateLimit(rps),
		log:    log,
	}
}

// FetchDataFiles downloads every known data file from baseURL into
// destDir. Files the host does not have are skipped; downloading
// nothing is an error.
func (f *Fetcher) FetchDataFiles(ctx context.Context, baseURL, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	var fetched []string
	for _, name := range DataFiles {
		url := strings.TrimRight(baseURL, "/") + "/" + name
		ok, err := f.fetchOne(ctx, url, filepath.Join(destDir, name))
		if err != nil {
			return nil, err
		}
		if ok {
			fetched = append(fetched, name)
		}
	}

	if len(fetched) == 0 {
		return nil, fmt.Errorf("no data files available at %s", baseURL)
	}
	return fetched, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, url, dest string) (bool, error) {
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		f.log.WithField("url", url).Debug("Remote file not present, skipping")
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return false, fmt.Errorf("write %s: %w", dest, err)
	}
	return true, nil
}
