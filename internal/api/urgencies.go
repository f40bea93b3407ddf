package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"rescue-console/internal/model"
)

type UrgencyService struct {
	c *Client
}

func (s *UrgencyService) List(ctx context.Context, filter model.UrgencyFilter) ([]model.Urgency, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}

	var out []model.Urgency
	if err := s.c.call(ctx, http.MethodGet, s.c.url(query, "urgencies"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UrgencyService) Get(ctx context.Context, id string) (model.Urgency, error) {
	id, err := pathID("urgency", id)
	if err != nil {
		return model.Urgency{}, err
	}

	var out model.Urgency
	if err := s.c.call(ctx, http.MethodGet, s.c.url(nil, "urgencies", id), nil, &out); err != nil {
		return model.Urgency{}, err
	}
	return out, nil
}

func (s *UrgencyService) Report(ctx context.Context, report model.UrgencyReport) (model.Urgency, error) {
	report.Title = strings.TrimSpace(report.Title)
	if report.Title == "" {
		return model.Urgency{}, fmt.Errorf("%w: urgency title is required", model.ErrInvalidInput)
	}
	if report.Severity < 1 || report.Severity > 5 {
		return model.Urgency{}, fmt.Errorf("%w: severity must be between 1 and 5", model.ErrInvalidInput)
	}
	if report.Latitude < -90 || report.Latitude > 90 || report.Longitude < -180 || report.Longitude > 180 {
		return model.Urgency{}, fmt.Errorf("%w: coordinates out of range", model.ErrInvalidInput)
	}

	var out model.Urgency
	if err := s.c.call(ctx, http.MethodPost, s.c.url(nil, "urgencies"), report, &out); err != nil {
		return model.Urgency{}, err
	}
	return out, nil
}

func (s *UrgencyService) UpdateStatus(ctx context.Context, id string, status model.UrgencyStatus) (model.Urgency, error) {
	id, err := pathID("urgency", id)
	if err != nil {
		return model.Urgency{}, err
	}
	if !status.Valid() {
		return model.Urgency{}, fmt.Errorf("%w: unknown urgency status %q", model.ErrInvalidInput, status)
	}

	var out model.Urgency
	body := model.UrgencyStatusUpdate{Status: status}
	if err := s.c.call(ctx, http.MethodPatch, s.c.url(nil, "urgencies", id, "status"), body, &out); err != nil {
		return model.Urgency{}, err
	}
	return out, nil
}
