// Package worker runs the background ingestion pipeline for a bookmark:
// fetch the page, reduce it to an excerpt, ask the model for tags, and
// write the tags back.
package worker

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher retrieves page HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Excerpter reduces HTML to a bounded text excerpt.
type Excerpter interface {
	Excerpt(html []byte) (string, error)
}

// Tagger produces topical tags for a page.
type Tagger interface {
	Tag(ctx context.Context, url, excerpt string) ([]string, error)
}

// TagStore persists the tags produced by a pass.
type TagStore interface {
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error
}

// Processor orchestrates one ingestion pass per bookmark. Its collaborators
// are process-wide shared clients; a Processor is safe for concurrent use.
type Processor struct {
	fetcher   Fetcher
	excerpter Excerpter
	tagger    Tagger
	store     TagStore
	logger    *zap.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(f Fetcher, e Excerpter, t Tagger, s TagStore, logger *zap.Logger) *Processor {
	return &Processor{fetcher: f, excerpter: e, tagger: t, store: s, logger: logger}
}

// Process runs one pass for the bookmark. A failure at any stage aborts the
// pass and leaves the row's tags in their last consistent state; there is
// no retry. Operators re-drive failed passes via the reprocess endpoint.
func (p *Processor) Process(ctx context.Context, id uuid.UUID, url string) error {
	log := p.logger.With(zap.String("bookmark_id", id.String()), zap.String("url", url))
	log.Info("processing bookmark content")

	html, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Error("fetch failed", zap.Error(err))
		return err
	}

	excerpt, err := p.excerpter.Excerpt(html)
	if err != nil {
		log.Error("excerpt failed", zap.Error(err))
		return err
	}

	tags, err := p.tagger.Tag(ctx, url, excerpt)
	if err != nil {
		log.Error("tagging failed", zap.Error(err))
		return err
	}
	log.Debug("model returned tags", zap.Strings("tags", tags))

	if err := p.store.UpdateTags(ctx, id, tags); err != nil {
		log.Error("tag update failed", zap.Error(err))
		return err
	}

	log.Info("updated tags", zap.Int("count", len(tags)))
	return nil
}

// Schedule launches a detached pass for the bookmark. The goroutine runs
// under context.Background() so it outlives the request that scheduled it;
// errors have already been logged by Process.
func (p *Processor) Schedule(id uuid.UUID, url string) {
	go func() {
		_ = p.Process(context.Background(), id, url)
	}()
}
