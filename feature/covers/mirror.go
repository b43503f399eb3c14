package covers

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"weread-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Prefix is the object name prefix of mirrored covers.
const Prefix = "covers/"

// MaxCoverSize caps the downloaded image size.
const MaxCoverSize = 10 << 20

// Mirror uploads cover images to the bucket and returns their public URL.
type Mirror struct {
	client storage.Client
	cfg    storage.Config
	http   *http.Client
	logger *zap.Logger

	mu      sync.RWMutex
	known   map[string]string
	bucket  bool
	flights singleflight.Group
}

// NewMirror creates a cover mirror writing to the bucket of cfg.
func NewMirror(client storage.Client, cfg storage.Config, logger *zap.Logger) *Mirror {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Mirror{
		client: client,
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
		known:  map[string]string{},
	}
}

// Key returns the object name of the cover at url.
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return Prefix + hex.EncodeToString(sum[:]) + ".jpg"
}

// KeyOf returns the object name a mirrored cover link points to.
func KeyOf(link string) (string, bool) {
	i := strings.Index(link, Prefix)
	if i < 0 {
		return "", false
	}
	return link[i:], true
}

// Mirror returns the public URL of the mirrored copy of url, uploading it
// when the bucket does not hold it yet. Concurrent calls for one url share a
// single upload.
func (m *Mirror) Mirror(ctx context.Context, url string) (string, error) {
	m.mu.RLock()
	link, ok := m.known[url]
	m.mu.RUnlock()
	if ok {
		return link, nil
	}

	result, err, _ := m.flights.Do(url, func() (interface{}, error) {
		link, err := m.mirror(ctx, url)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.known[url] = link
		m.mu.Unlock()
		return link, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (m *Mirror) mirror(ctx context.Context, url string) (string, error) {
	key := Key(url)
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}

	_, err := m.client.StatObject(ctx, m.cfg.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return m.cfg.ObjectURL(key), nil
	}
	if !storage.IsNotFound(err) {
		return "", fmt.Errorf("failed to stat %s: %w", key, err)
	}

	data, contentType, err := m.download(ctx, url)
	if err != nil {
		return "", err
	}
	if _, err := m.client.PutObject(ctx, m.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	m.logger.Debug("Cover mirrored",
		zap.String("source", url),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return m.cfg.ObjectURL(key), nil
}

func (m *Mirror) ensureBucket(ctx context.Context) error {
	m.mu.RLock()
	ready := m.bucket
	m.mu.RUnlock()
	if ready {
		return nil
	}
	if err := storage.EnsureBucket(ctx, m.client, m.cfg.Bucket, m.cfg.Region); err != nil {
		return err
	}
	m.mu.Lock()
	m.bucket = true
	m.mu.Unlock()
	return nil
}

func (m *Mirror) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download cover: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxCoverSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read cover: %w", err)
	}
	if len(data) > MaxCoverSize {
		return nil, "", fmt.Errorf("cover exceeds %d bytes", MaxCoverSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
