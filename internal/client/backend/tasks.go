// AngelaMos | 2026
// tasks.go

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Tasks is the row-level client for the tasks collection. Visibility is
// enforced server-side from the bearer token: regular users get their own
// rows, admins get everything.
type Tasks struct {
	client *Client
}

type TaskFilter struct {
	// Status filters on the stored vocabulary, e.g. "Done". Empty means
	// all statuses.
	Status string
}

func (t *Tasks) List(
	ctx context.Context,
	filter TaskFilter,
) ([]TaskRow, error) {
	path := "/v1/tasks"
	if filter.Status != "" {
		path += "?status=" + url.QueryEscape(filter.Status)
	}

	var rows []TaskRow
	err := t.client.do(
		ctx,
		http.MethodGet,
		path,
		t.client.Auth.AccessToken(),
		nil,
		&rows,
	)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (t *Tasks) Insert(
	ctx context.Context,
	insert TaskInsert,
) (*TaskRow, error) {
	var row TaskRow
	err := t.client.do(
		ctx,
		http.MethodPost,
		"/v1/tasks",
		t.client.Auth.AccessToken(),
		insert,
		&row,
	)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (t *Tasks) Update(
	ctx context.Context,
	id string,
	patch TaskPatch,
) (*TaskRow, error) {
	var row TaskRow
	err := t.client.do(
		ctx,
		http.MethodPatch,
		fmt.Sprintf("/v1/tasks/%s", id),
		t.client.Auth.AccessToken(),
		patch,
		&row,
	)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// Delete removes a task. Deleting an id that no longer exists is not an
// error; the server answers 204 either way.
func (t *Tasks) Delete(ctx context.Context, id string) error {
	return t.client.do(
		ctx,
		http.MethodDelete,
		fmt.Sprintf("/v1/tasks/%s", id),
		t.client.Auth.AccessToken(),
		nil,
		nil,
	)
}
