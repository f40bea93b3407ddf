package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rescue-console/internal/model"
	"rescue-console/pkg/apierror"
)

const maxAvatarBytes = 8 << 20

type EmployeeService struct {
	c *Client
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	if err := s.c.call(ctx, http.MethodGet, s.c.url(nil, "employees"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (model.Employee, error) {
	id, err := pathID("employee", id)
	if err != nil {
		return model.Employee{}, err
	}

	var out model.Employee
	if err := s.c.call(ctx, http.MethodGet, s.c.url(nil, "employees", id), nil, &out); err != nil {
		if apierror.StatusCode(err) == http.StatusNotFound {
			return model.Employee{}, fmt.Errorf("%w: %w", model.ErrEmployeeNotFound, err)
		}
		return model.Employee{}, err
	}
	return out, nil
}

func (s *EmployeeService) Create(ctx context.Context, in model.EmployeeInput) (model.Employee, error) {
	if in.Role != "" && !in.Role.Valid() {
		return model.Employee{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, in.Role)
	}

	var out model.Employee
	if err := s.c.call(ctx, http.MethodPost, s.c.url(nil, "employees"), in, &out); err != nil {
		return model.Employee{}, err
	}
	return out, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, in model.EmployeeInput) (model.Employee, error) {
	id, err := pathID("employee", id)
	if err != nil {
		return model.Employee{}, err
	}
	if in.Role != "" && !in.Role.Valid() {
		return model.Employee{}, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, in.Role)
	}

	var out model.Employee
	if err := s.c.call(ctx, http.MethodPut, s.c.url(nil, "employees", id), in, &out); err != nil {
		return model.Employee{}, err
	}
	return out, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	id, err := pathID("employee", id)
	if err != nil {
		return err
	}
	return s.c.call(ctx, http.MethodDelete, s.c.url(nil, "employees", id), nil, nil)
}

// Avatar returns the raw avatar bytes and their content type.
func (s *EmployeeService) Avatar(ctx context.Context, id string) ([]byte, string, error) {
	id, err := pathID("employee", id)
	if err != nil {
		return nil, "", err
	}

	req, err := s.c.newRequest(ctx, http.MethodGet, s.c.url(nil, "employees", id, "avatar"), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := s.c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: %w", model.ErrAvatarNotFound, apierror.FromResponse(resp))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", apierror.FromResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return nil, "", errors.New("avatar exceeds size limit")
	}

	return data, resp.Header.Get("Content-Type"), nil
}
