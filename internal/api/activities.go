package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"rescue-console/internal/model"
)

const (
	DefaultActivityLimit = 50
	maxActivityLimit     = 500
)

type ActivityService struct {
	c *Client
}

// Page fetches one page of the activity feed. An empty cursor starts at the
// newest entry.
func (s *ActivityService) Page(ctx context.Context, cursor string, limit int) (model.ActivityPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(clampLimit(limit)))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var out model.ActivityPage
	if err := s.c.call(ctx, http.MethodGet, s.c.url(query, "activities"), nil, &out); err != nil {
		return model.ActivityPage{}, err
	}
	return out, nil
}

// Each walks every page until the backend stops returning a cursor or fn
// returns an error. A cursor that repeats ends the walk.
func (s *ActivityService) Each(ctx context.Context, limit int, fn func(model.Activity) error) error {
	seen := map[string]struct{}{}
	cursor := ""

	for {
		page, err := s.Page(ctx, cursor, limit)
		if err != nil {
			return err
		}

		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}

		if page.NextCursor == "" {
			return nil
		}
		if _, dup := seen[page.NextCursor]; dup {
			return nil
		}
		seen[page.NextCursor] = struct{}{}
		cursor = page.NextCursor

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultActivityLimit
	case limit > maxActivityLimit:
		return maxActivityLimit
	}
	return limit
}
