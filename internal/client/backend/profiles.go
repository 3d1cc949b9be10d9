// AngelaMos | 2026
// profiles.go

package backend

import (
	"context"
	"fmt"
	"net/http"
)

type Profiles struct {
	client *Client
}

func (p *Profiles) Get(ctx context.Context, id string) (*ProfileRow, error) {
	var row ProfileRow
	err := p.client.do(
		ctx,
		http.MethodGet,
		fmt.Sprintf("/v1/profiles/%s", id),
		p.client.Auth.AccessToken(),
		nil,
		&row,
	)
	if err != nil {
		return nil, err
	}

	return &row, nil
}
