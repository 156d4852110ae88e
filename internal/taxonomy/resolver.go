// Package taxonomy turns category and tag slugs into WordPress term ids.
package taxonomy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spacesedan/postsmith/internal/clients"
	"github.com/spacesedan/postsmith/internal/models"
)

type TermLookup interface {
	LookupTerm(ctx context.Context, resource, slug string) (models.TaxonomyTerm, error)
}

type Resolver struct {
	terms TermLookup
}

func NewResolver(terms TermLookup) *Resolver {
	return &Resolver{terms: terms}
}

// ResolveCategory returns the id of the first category with slug.
func (r *Resolver) ResolveCategory(ctx context.Context, slug string) (int, bool) {
	return r.resolve(ctx, clients.ResourceCategories, slug)
}

// ResolveTags keeps the order of slugs and drops the ones WordPress does
// not know.
func (r *Resolver) ResolveTags(ctx context.Context, slugs []string) []int {
	ids := make([]int, 0, len(slugs))
	for _, slug := range slugs {
		if id, ok := r.resolve(ctx, clients.ResourceTags, slug); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Resolver) resolve(ctx context.Context, resource, slug string) (int, bool) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return 0, false
	}

	term, err := r.terms.LookupTerm(ctx, resource, slug)
	switch {
	case errors.Is(err, models.ErrNotFound):
		slog.Warn("[TaxonomyResolver] Term not found",
			slog.String("resource", resource),
			slog.String("slug", slug))
		return 0, false
	case err != nil:
		slog.Error("[TaxonomyResolver] Lookup failed",
			slog.String("resource", resource),
			slog.String("slug", slug),
			slog.String("error", err.Error()))
		return 0, false
	case term.ID == 0:
		return 0, false
	}
	return term.ID, true
}
