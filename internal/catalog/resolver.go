package catalog

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/shared"
)

// MaxArtists is the largest number of ids accepted by one batch artist lookup.
const MaxArtists = 50

// ResolverOption configures a [Resolver].
type ResolverOption func(*Resolver)

// WithPrefetchAlbums makes the resolver start the album load of every artist it registers.
func WithPrefetchAlbums() ResolverOption {
	return func(r *Resolver) { r.prefetch = true }
}

// Resolver looks up full artist records in batches and registers them. Registration is the entry point of the
// artist lazy-load lifecycle: a registered artist starts unloaded until something requests its detail.
type Resolver struct {
	transport services.Transport
	registry  *ArtistRegistry
	prefetch  bool
	logger    *log.Logger
}

func NewResolver(transport services.Transport, registry *ArtistRegistry, logger *log.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	r := &Resolver{transport: transport, registry: registry, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveArtists fetches the artists for ids in consecutive batches of at most [MaxArtists], one request at a
// time and in input order. ids is not modified and is not de-duplicated.
//
// Each returned artist is registered in the artist registry as soon as its batch arrives. The first failing batch
// aborts the resolution and no artists are returned. Ids the service does not know are skipped.
func (r *Resolver) ResolveArtists(ctx context.Context, ids []string) ([]models.Artist, error) {
	artists := make([]models.Artist, 0, len(ids))

	for cursor := 0; cursor < len(ids); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(cursor+MaxArtists, len(ids))
		batch := ids[cursor:end]
		cursor = end

		var resp struct {
			Artists []*models.Artist `json:"artists"`
		}
		desc := models.RequestDescriptor{Endpoint: "/artists", Query: map[string]string{"ids": strings.Join(batch, ",")}}
		if err := r.transport.Request(ctx, desc, &resp); err != nil {
			return nil, err
		}
		r.logger.Debug("resolved artist batch", "requested", len(batch), "returned", len(resp.Artists))

		for _, a := range resp.Artists {
			if a == nil {
				continue
			}
			r.register(ctx, *a)
			artists = append(artists, *a)
		}
	}
	return artists, nil
}

func (r *Resolver) register(ctx context.Context, a models.Artist) {
	r.registry.Register(a)
	if !r.prefetch {
		return
	}
	if err := r.registry.Prefetch(ctx, a.ID); err != nil {
		r.logger.Warn("failed to prefetch albums", "artist", a.ID, "error", err)
	}
}
