package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const logoSize = 24

// LogoDownloader downloads and caches listed-company logos
type LogoDownloader struct {
	basePath    string
	urlTemplate string
	client      *http.Client
}

// NewLogoDownloader creates a downloader storing logos under dir.
// urlTemplate receives the lower-case symbol through %s.
func NewLogoDownloader(dir, urlTemplate string) (*LogoDownloader, error) {
	path := dir
	if path == "" {
		var err error
		path, err = getAssetsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve assets path: %w", err)
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 20
	transport.MaxConnsPerHost = 5
	transport.IdleConnTimeout = 30 * time.Second

	return &LogoDownloader{
		basePath:    path,
		urlTemplate: urlTemplate,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Enabled reports whether a source URL template is configured
func (d *LogoDownloader) Enabled() bool {
	return d.urlTemplate != ""
}

// Dir returns the directory logos are cached in
func (d *LogoDownloader) Dir() string {
	return d.basePath
}

// DownloadLogo downloads the logo for a symbol if it doesn't exist.
// Returns the local file path on success.
// Images are resized to 24x24 pixels for consistent display.
func (d *LogoDownloader) DownloadLogo(symbol string) (string, error) {
	// Security: Sanitize symbol to prevent path traversal
	safeSymbol := sanitizeSymbol(symbol)
	if safeSymbol == "" {
		return "", fmt.Errorf("invalid symbol: %s", symbol)
	}

	filePath := d.LogoPath(safeSymbol)

	// Check if exists
	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache Hit
	}

	if !d.Enabled() {
		return "", nil
	}

	url := fmt.Sprintf(d.urlTemplate, strings.ToLower(safeSymbol))
	resp, err := d.client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resizedImg := imaging.Resize(srcImg, logoSize, logoSize, imaging.Lanczos)

	if err := imaging.Save(resizedImg, filePath); err != nil {
		return "", fmt.Errorf("failed to save resized image: %w", err)
	}

	return filePath, nil
}

// LogoPath returns the local path for a symbol's logo
func (d *LogoDownloader) LogoPath(symbol string) string {
	return filepath.Join(d.basePath, strings.ToLower(sanitizeSymbol(symbol))+".png")
}

func getAssetsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "CSXTicker", "assets", "logos"), nil
}

func sanitizeSymbol(symbol string) string {
	res := make([]rune, 0, len(symbol))
	for _, r := range symbol {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			res = append(res, r)
		}
	}
	return string(res)
}
