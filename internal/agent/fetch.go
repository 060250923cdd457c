package agent

import (
	"context"
	"strconv"

	"github.com/fjacquet/veeam_agent/internal/models"
	log "github.com/sirupsen/logrus"
)

// fetchOptions configures one paginated bulk fetch.
type fetchOptions struct {
	// CreatedAfter is passed through verbatim as the createdAfterFilter
	// query parameter when non-empty, moving time filtering server side.
	CreatedAfter string
	// PageLimit overrides the default page size of 500.
	PageLimit int
}

// fetchAllPages reads every page of a paginated endpoint. Requests are issued
// with skip incremented by the page size until the server returns an empty
// page, or until skip plus the returned count reaches the total reported in
// the pagination metadata. A server omitting the total only terminates on the
// empty page.
//
// Any single page failure aborts the whole fetch for the endpoint and
// discards pages already read, so a truncated view is never presented as
// complete.
func fetchAllPages[T any](ctx context.Context, c *Client, endpoint string, opts fetchOptions) ([]T, error) {
	limit := opts.PageLimit
	if limit <= 0 {
		limit = models.DefaultPageLimit
	}

	var items []T
	for skip := 0; ; skip += limit {
		params := map[string]string{
			"limit": strconv.Itoa(limit),
			"skip":  strconv.Itoa(skip),
		}
		if opts.CreatedAfter != "" {
			params["createdAfterFilter"] = opts.CreatedAfter
		}

		var page models.Page[T]
		if err := c.FetchData(ctx, endpoint, params, &page); err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			break
		}
		items = append(items, page.Data...)

		if total := page.Pagination.Total; total > 0 && skip+len(page.Data) >= total {
			break
		}
	}

	log.Debugf("Fetched %d items from %s", len(items), endpoint)
	return items, nil
}

// fetchOne reads a single-document endpoint such as license or serverInfo.
func fetchOne[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	var doc T
	if err := c.FetchData(ctx, endpoint, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
