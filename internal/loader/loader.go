package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for DecodeConfig
	_ "image/jpeg" // register JPEG decoder for DecodeConfig
	_ "image/png"  // register PNG decoder for DecodeConfig
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP decoder for DecodeConfig
	_ "golang.org/x/image/tiff" // register TIFF decoder for DecodeConfig
	_ "golang.org/x/image/webp" // register WebP decoder for DecodeConfig

	"image-tagger/internal/filesystem"
	"image-tagger/internal/logging"
	"image-tagger/internal/mediatypes"
	"image-tagger/internal/metrics"
	"image-tagger/internal/natsort"
	"image-tagger/internal/tagstore"
	"image-tagger/internal/workers"
)

// maxWorkers caps the sidecar reader pool. Small values keep NFS servers happy.
const maxWorkers = 16

// Options configures a directory load.
type Options struct {
	// Extensions selects image files. Nil means ".png" only.
	Extensions mediatypes.ExtensionSet
	// Workers is the sidecar reader pool size (0 = auto).
	Workers int
	// ProbeDimensions decodes image headers into Result.Info.
	ProbeDimensions bool
	// Retry is the NFS retry policy. Zero value selects the default.
	Retry filesystem.RetryConfig
}

// Info describes one image file.
type Info struct {
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Format   string `json:"format,omitempty"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Result is the outcome of a successful load.
type Result struct {
	Dir   string
	Store *tagstore.Store
	// Images is the naturally sorted image list, the same order as Store.Images.
	Images []string
	// Info holds size and probed dimensions, keyed by image name.
	Info map[string]Info
	// SidecarErrors counts sidecars that existed but could not be read.
	SidecarErrors int
	Duration      time.Duration
}

type loadedImage struct {
	tags []string
	info Info
}

// Load scans dir for images and their sidecars and builds a Store.
//
// Only a directory that cannot be listed fails the load. Sidecars that are
// missing or unreadable leave the image untagged.
func Load(ctx context.Context, dir string, opts Options) (*Result, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}

	if opts.Extensions == nil {
		opts.Extensions = mediatypes.NewExtensionSet()
	}
	if opts.Retry == (filesystem.RetryConfig{}) {
		opts.Retry = filesystem.DefaultRetryConfig()
	}

	images, err := listImages(dir, opts)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	natsort.Sort(images)

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		if opts.ProbeDimensions {
			numWorkers = workers.ForMixed(maxWorkers)
		} else {
			numWorkers = workers.ForIO(maxWorkers)
		}
	}
	if numWorkers > len(images) {
		numWorkers = max(len(images), 1)
	}

	logging.Debug("Loading %d images from %s with %d workers", len(images), dir, numWorkers)

	loaded := make([]loadedImage, len(images))
	var sidecarErrors atomic.Int64

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				name := images[idx]
				tags, err := readSidecar(dir, name, opts.Retry)
				if err != nil {
					logging.Warn("Could not read sidecar for %s: %v", name, err)
					sidecarErrors.Add(1)
					metrics.LoadSidecarErrors.Inc()
				}
				loaded[idx] = loadedImage{
					tags: tags,
					info: describe(dir, name, opts),
				}
			}
		}()
	}

	cancelled := false
dispatch:
	for idx := range images {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		select {
		case jobs <- idx:
		case <-ctx.Done():
			cancelled = true
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load %s: %w", dir, ctx.Err())
	}

	store := tagstore.New()
	info := make(map[string]Info, len(images))
	for idx, name := range images {
		store.SetImage(name, loaded[idx].tags)
		info[name] = loaded[idx].info
	}

	result := &Result{
		Dir:           dir,
		Store:         store,
		Images:        images,
		Info:          info,
		SidecarErrors: int(sidecarErrors.Load()),
		Duration:      time.Since(start),
	}

	metrics.LoadsTotal.WithLabelValues("success").Inc()
	metrics.LoadDuration.Observe(result.Duration.Seconds())
	metrics.LoadLastTimestamp.SetToCurrentTime()

	logging.Info("Loaded %d images (%d tags in vocabulary) from %s in %v",
		len(images), store.VocabularySize(), dir, result.Duration)

	return result, nil
}

// listImages returns the names of files in dir whose extension is selected.
func listImages(dir string, opts Options) ([]string, error) {
	entries, err := filesystem.ReadDirWithRetry(dir, opts.Retry)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	images := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !opts.Extensions.Matches(entry.Name()) {
			continue
		}
		images = append(images, entry.Name())
	}
	return images, nil
}

// readSidecar returns the tags stored next to image. A missing sidecar is not
// an error; any other failure returns an empty list together with the error.
func readSidecar(dir, image string, retry filesystem.RetryConfig) ([]string, error) {
	data, err := filesystem.ReadFileWithRetry(filepath.Join(dir, tagstore.SidecarName(image)), retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return []string{}, err
	}
	return tagstore.ParseSidecar(data), nil
}

// describe collects file size and, when enabled, the decoded image header.
// Failures are logged and leave the corresponding fields empty.
func describe(dir, image string, opts Options) Info {
	path := filepath.Join(dir, image)
	info := Info{MimeType: mediatypes.GetMimeType(image)}

	if st, err := filesystem.StatWithRetry(path, opts.Retry); err == nil {
		info.Size = st.Size()
	} else {
		logging.Debug("Could not stat %s: %v", path, err)
	}

	if !opts.ProbeDimensions {
		return info
	}

	cfg, format, err := probe(path)
	if err != nil {
		logging.Debug("Could not probe dimensions of %s: %v", path, err)
		return info
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	info.Format = format
	return info
}

// probe decodes only the image header.
func probe(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("close %s: %v", path, cerr)
		}
	}()

	return image.DecodeConfig(f)
}
