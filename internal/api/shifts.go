package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rescue-console/internal/model"
)

type ShiftService struct {
	c *Client
}

func (s *ShiftService) List(ctx context.Context, filter model.ShiftFilter) ([]model.Shift, error) {
	query := url.Values{}
	if !filter.From.IsZero() {
		query.Set("from", filter.From.UTC().Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		query.Set("to", filter.To.UTC().Format(time.RFC3339))
	}

	var out []model.Shift
	if err := s.c.call(ctx, http.MethodGet, s.c.url(query, "shifts"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func validShift(in model.ShiftInput) error {
	if in.Start.IsZero() || in.End.IsZero() || !in.End.After(in.Start) {
		return fmt.Errorf("%w: shift must end after it starts", model.ErrInvalidInput)
	}
	return nil
}

func (s *ShiftService) Create(ctx context.Context, in model.ShiftInput) (model.Shift, error) {
	if err := validShift(in); err != nil {
		return model.Shift{}, err
	}

	var out model.Shift
	if err := s.c.call(ctx, http.MethodPost, s.c.url(nil, "shifts"), in, &out); err != nil {
		return model.Shift{}, err
	}
	return out, nil
}

func (s *ShiftService) Update(ctx context.Context, id string, in model.ShiftInput) (model.Shift, error) {
	id, err := pathID("shift", id)
	if err != nil {
		return model.Shift{}, err
	}
	if err := validShift(in); err != nil {
		return model.Shift{}, err
	}

	var out model.Shift
	if err := s.c.call(ctx, http.MethodPut, s.c.url(nil, "shifts", id), in, &out); err != nil {
		return model.Shift{}, err
	}
	return out, nil
}

func (s *ShiftService) Delete(ctx context.Context, id string) error {
	id, err := pathID("shift", id)
	if err != nil {
		return err
	}
	return s.c.call(ctx, http.MethodDelete, s.c.url(nil, "shifts", id), nil, nil)
}

func (s *ShiftService) Assign(ctx context.Context, shiftID string, employeeID string) (model.Shift, error) {
	shiftID, err := pathID("shift", shiftID)
	if err != nil {
		return model.Shift{}, err
	}
	employeeID, err = pathID("employee", employeeID)
	if err != nil {
		return model.Shift{}, err
	}

	var out model.Shift
	body := model.ShiftAssignment{EmployeeID: employeeID}
	if err := s.c.call(ctx, http.MethodPost, s.c.url(nil, "shifts", shiftID, "assignments"), body, &out); err != nil {
		return model.Shift{}, err
	}
	return out, nil
}
