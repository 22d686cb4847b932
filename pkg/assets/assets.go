// Package assets loads everything a scene needs from a project directory:
// the receipts file, every city mask and every region background. Loading
// is all-or-nothing; a scene is only ever built from a complete Bundle.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/audth517/Japan-Receipt-Map/pkg/config"
	"github.com/audth517/Japan-Receipt-Map/pkg/receipt"
)

// maxParallel bounds concurrent file decodes.
const maxParallel = 8

// Kind names the type of asset that failed.
type Kind string

const (
	KindReceipts   Kind = "receipts"
	KindMask       Kind = "mask"
	KindBackground Kind = "background"
	KindThumbnail  Kind = "thumbnail"
)

// LoadError reports the asset that made a bundle unusable.
type LoadError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Bundle is a fully loaded asset set.
type Bundle struct {
	Receipts    []receipt.Receipt
	Masks       map[string]map[string]image.Image // region -> city -> mask image
	Backgrounds map[string]image.Image            // region -> background
	ThumbSizes  map[string]image.Point            // receipt filename -> image size
}

// Aspects returns height/width ratios keyed by receipt ID for every receipt
// whose image size is known.
func (b *Bundle) Aspects(records []receipt.Receipt) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range records {
		sz, ok := b.ThumbSizes[r.Filename]
		if !ok || sz.X <= 0 || sz.Y <= 0 {
			continue
		}
		out[r.ID] = float64(sz.Y) / float64(sz.X)
	}
	return out
}

type job struct {
	kind         Kind
	region, city string
	filename     string
	path         string
	img          image.Image
	size         image.Point
	skipped      bool
}

// Load reads and decodes every asset referenced by cfg relative to dir.
// Any failure cancels the remaining work and is returned as a *LoadError.
// Receipt images under thumbnails.dir are optional: a missing file only
// means its thumbnail uses the default aspect.
func Load(ctx context.Context, dir string, cfg *config.SceneConfig) (*Bundle, error) {
	var jobs []*job
	for _, reg := range cfg.Regions {
		if reg.Background != "" {
			jobs = append(jobs, &job{kind: KindBackground, region: reg.Name, path: config.Resolve(dir, reg.Background)})
		}
		for _, city := range reg.Cities {
			if city.Mask != "" {
				jobs = append(jobs, &job{kind: KindMask, region: reg.Name, city: city.Name, path: config.Resolve(dir, city.Mask)})
			}
		}
	}

	b := &Bundle{
		Masks:       make(map[string]map[string]image.Image),
		Backgrounds: make(map[string]image.Image),
		ThumbSizes:  make(map[string]image.Point),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	receiptsPath := config.Resolve(dir, cfg.Data.Receipts)
	g.Go(func() error {
		records, err := receipt.Load(receiptsPath)
		if err != nil {
			return &LoadError{Kind: KindReceipts, Path: receiptsPath, Err: err}
		}
		b.Receipts = records
		return nil
	})
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := decodeImage(j.path)
			if err != nil {
				return &LoadError{Kind: j.kind, Path: j.path, Err: err}
			}
			j.img = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, j := range jobs {
		switch j.kind {
		case KindBackground:
			b.Backgrounds[j.region] = j.img
		case KindMask:
			if b.Masks[j.region] == nil {
				b.Masks[j.region] = make(map[string]image.Image)
			}
			b.Masks[j.region][j.city] = j.img
		}
	}

	if cfg.Thumbnails.Dir != "" {
		if err := loadThumbSizes(ctx, config.Resolve(dir, cfg.Thumbnails.Dir), b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// loadThumbSizes reads only the image headers of each receipt's file.
func loadThumbSizes(ctx context.Context, dir string, b *Bundle) error {
	var jobs []*job
	seen := make(map[string]bool)
	for _, r := range b.Receipts {
		if r.Filename == "" || seen[r.Filename] {
			continue
		}
		seen[r.Filename] = true
		jobs = append(jobs, &job{kind: KindThumbnail, filename: r.Filename, path: filepath.Join(dir, r.Filename)})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			size, err := decodeSize(j.path)
			if errors.Is(err, fs.ErrNotExist) {
				j.skipped = true
				return nil
			}
			if err != nil {
				return &LoadError{Kind: KindThumbnail, Path: j.path, Err: err}
			}
			j.size = size
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	missing := 0
	for _, j := range jobs {
		if j.skipped {
			missing++
			continue
		}
		b.ThumbSizes[j.filename] = j.size
	}
	if missing > 0 {
		log.Printf("assets: %d receipt image(s) missing under %s, using default aspect", missing, dir)
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

func decodeSize(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, err
	}
	defer f.Close()
	c, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, fmt.Errorf("decode config: %w", err)
	}
	return image.Pt(c.Width, c.Height), nil
}
