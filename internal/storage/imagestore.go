package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"carapi/internal/config"
)

// collection is the path segment under which every listing's images
// live. A listing's full prefix is cars/<listingID>/, which makes
// storage state reconcilable against catalog records by id alone.
const collection = "cars"

// uploadConcurrency bounds parallel per-image uploads within one batch.
const uploadConcurrency = 4

// ErrNoValidImages means every image in an upload batch was rejected or
// failed to upload. A listing must never be created with zero images,
// so this is a hard failure.
var ErrNoValidImages = errors.New("no valid images were uploaded")

// dataURIPattern matches the data-URI prefix of a base64-encoded image,
// capturing the subtype used to derive the file extension.
var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9]*);base64,`)

// StoredImage is one successfully uploaded listing image.
type StoredImage struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// ImageStore persists listing images in object storage under a
// deterministic per-listing prefix and maps between object keys and
// public URLs.
type ImageStore struct {
	store         Storage
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewImageStore creates an ImageStore over the given backend.
func NewImageStore(store Storage, cfg config.MinIOConfig) *ImageStore {
	return &ImageStore{
		store:         store,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}
}

// Upload stores a batch of base64 data-URI images under cars/<carID>/.
//
// Entries without a recognizable image data-URI prefix are logged and
// skipped, never aborting the batch. Uploads run concurrently but the
// returned slice preserves the relative order of the valid inputs.
// Filenames combine the batch upload timestamp with the image's position
// in the input, so keys cannot collide within a batch. If nothing
// uploads successfully the whole call fails with ErrNoValidImages.
func (s *ImageStore) Upload(ctx context.Context, carID string, images []string) ([]StoredImage, error) {
	results := make([]*StoredImage, len(images))
	batchStamp := s.now().UnixMilli()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, data := range images {
		match := dataURIPattern.FindStringSubmatch(data)
		if match == nil {
			log.Warn().Str("carId", carID).Int("index", i).Msg("skipping image without data-uri prefix")
			continue
		}

		ext := match[1]
		if ext == "" {
			ext = "jpeg"
		}
		raw, err := base64.StdEncoding.DecodeString(data[len(match[0]):])
		if err != nil {
			log.Warn().Err(err).Str("carId", carID).Int("index", i).Msg("skipping image with undecodable base64 payload")
			continue
		}

		key := fmt.Sprintf("%s/%s/image-%d-%d.%s", collection, carID, batchStamp, i, ext)
		contentType := "image/" + ext
		idx := i

		g.Go(func() error {
			_, err := s.store.Put(gctx, key, bytes.NewReader(raw), PutObjectOptions{
				Size:        int64(len(raw)),
				ContentType: contentType,
			})
			if err != nil {
				// Per-image isolation: a failed upload drops this image
				// only, the rest of the batch continues.
				log.Error().Err(err).Str("key", key).Msg("image upload failed, skipping")
				return nil
			}
			results[idx] = &StoredImage{
				Path:        key,
				URL:         s.publicURL(key),
				ContentType: contentType,
			}
			return nil
		})
	}

	_ = g.Wait()

	uploaded := make([]StoredImage, 0, len(results))
	for _, r := range results {
		if r != nil {
			uploaded = append(uploaded, *r)
		}
	}
	if len(uploaded) == 0 {
		return nil, ErrNoValidImages
	}
	return uploaded, nil
}

// DeleteAll removes the storage objects behind the given public URLs.
//
// Keys are recovered by locating the bucket segment in each URL's path;
// URLs that do not belong to this store's bucket cannot be mapped back
// to a key and are silently skipped. Deletion is best-effort: individual
// storage errors are logged, never escalated, so a catalog record delete
// is not blocked by storage cleanup.
func (s *ImageStore) DeleteAll(ctx context.Context, carID string, imageURLs []string) {
	marker := "/" + s.bucket + "/"

	for _, raw := range imageURLs {
		u, err := url.Parse(raw)
		if err != nil {
			log.Warn().Err(err).Str("carId", carID).Str("url", raw).Msg("unparseable image url, skipping")
			continue
		}
		idx := strings.Index(u.Path, marker)
		if idx == -1 {
			continue
		}
		key := u.Path[idx+len(marker):]
		if err := s.store.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("carId", carID).Str("key", key).Msg("failed to delete image object")
		}
	}
}

func (s *ImageStore) publicURL(key string) string {
	return s.publicBaseURL + "/" + s.bucket + "/" + key
}
