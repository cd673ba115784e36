// Package resources loads the image payloads a presentation references.
// Every pending relationship is fetched once per source, decoded, sized and
// re-encoded for its media part before the package is written.
package resources

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/observability"
)

// ErrNoLoader is returned when relationships need loading and the resolver
// has no loader.
var ErrNoLoader = errors.New("no image loader configured")

// DefaultMaxDimension bounds the longer side of an embedded image in pixels.
const DefaultMaxDimension = 4096

// Resolver fills in relationship payloads. It is safe for concurrent use;
// concurrent resolutions sharing a Resolver fetch each source once.
type Resolver struct {
	loader   Loader
	limit    int
	fallback []byte
	maxDim   int
	logger   observability.Logger

	group singleflight.Group
}

// Option defines a configuration option for the Resolver.
type Option func(*Resolver)

// WithConcurrency bounds the number of sources fetched at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithFallback replaces the placeholder used for sources that fail to load.
// A nil fallback makes load failures fatal.
func WithFallback(data []byte) Option {
	return func(r *Resolver) {
		r.fallback = data
	}
}

// WithMaxDimension sets the pixel bound images are downsized to; zero
// disables downsizing.
func WithMaxDimension(px int) Option {
	return func(r *Resolver) {
		r.maxDim = px
	}
}

func WithLogger(l observability.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver reading sources through loader.
func NewResolver(loader Loader, opts ...Option) *Resolver {
	r := &Resolver{
		loader:   loader,
		limit:    runtime.GOMAXPROCS(0),
		fallback: DefaultFallback(),
		maxDim:   DefaultMaxDimension,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type job struct {
	key  string
	src  string
	data []byte // inline bytes, loaded from src when nil
	ext  string
	rels []*semantic.Relationship
}

// Resolve loads every pending relationship of pres, then sizes pictures
// declared without dimensions. It returns once all loads have finished.
func (r *Resolver) Resolve(ctx context.Context, pres *semantic.Presentation) error {
	start := time.Now()
	jobs, err := r.plan(pres.Pending())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	var mu sync.Mutex
	for _, j := range jobs {
		g.Go(func() error {
			img, err := r.load(gctx, j)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, rel := range j.rels {
				rel.Data, rel.Width, rel.Height = img.Data, img.Width, img.Height
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sized := pres.ApplyNaturalSizes()
	r.logger.Debug("media resolved",
		observability.Int(observability.MetricMediaCount, pres.MediaCount()),
		observability.Int("sources", len(jobs)),
		observability.Int("auto_sized", sized),
		observability.Duration(observability.MetricResolveTime, time.Since(start)),
	)
	return nil
}

// plan groups relationships by source and target format.
func (r *Resolver) plan(pending []*semantic.Relationship) ([]*job, error) {
	byKey := map[string]*job{}
	var jobs []*job
	for _, rel := range pending {
		j := &job{src: rel.Path, ext: rel.Extension}
		if len(rel.Inline) > 0 {
			j.data = rel.Inline
			j.key = "inline:" + digest(rel.Inline) + "." + rel.Extension
		} else {
			if r.loader == nil {
				return nil, fmt.Errorf("%s: %w", rel.Path, ErrNoLoader)
			}
			j.key = "src:" + rel.Path + "." + rel.Extension
		}
		if prev, ok := byKey[j.key]; ok {
			prev.rels = append(prev.rels, rel)
			continue
		}
		j.rels = []*semantic.Relationship{rel}
		byKey[j.key] = j
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (r *Resolver) load(ctx context.Context, j *job) (Image, error) {
	v, err, _ := r.group.Do(j.key, func() (interface{}, error) {
		data := j.data
		if data == nil {
			var err error
			if data, err = r.loader.Load(ctx, j.src); err != nil {
				return nil, err
			}
		}
		img, err := prepare(data, j.ext, r.maxDim)
		if err != nil {
			return nil, err
		}
		return img, nil
	})
	if err == nil {
		return v.(Image), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Image{}, ctxErr
	}
	if r.fallback == nil {
		return Image{}, fmt.Errorf("load %s: %w", j.src, err)
	}
	r.logger.Warn("image load failed, using fallback",
		observability.String("path", j.src),
		observability.Error("err", err),
	)
	return prepare(r.fallback, j.ext, 0)
}
