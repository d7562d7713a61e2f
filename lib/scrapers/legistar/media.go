package legistar

import (
	"context"
)

// probeMedia turns a link-bearing field into a document record. the
// accessor only exposes the URL; resolving its content type is a HEAD
// round trip done here, by the caller.
func probeMedia(ctx context.Context, client *Client, data FieldAccessor) (Record, error) {
	href, ok := data.URL()
	if !ok {
		return nil, ErrSkipItem
	}

	mediaType, err := client.Head(ctx, href)
	if err != nil {
		return nil, err
	}

	return Record{
		"name": data.Text(),
		"links": []Record{{
			"url":        href,
			"media_type": mediaType,
		}},
	}, nil
}
