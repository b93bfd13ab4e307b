package retriever

import (
	"context"

	"golang.org/x/sync/errgroup"

	"voice-shopping-be/pkg/shopping"
)

// Split divides k between local and web, giving local ceil(0.6k).
// k=5 gives 3 and 2.
func Split(k int) (local, web int) {
	if k <= 0 {
		return 0, 0
	}
	local = (3*k + 4) / 5
	return local, k - local
}

// CombinedRetriever queries both sources concurrently and concatenates
// the results, local first. No dedup, no re-ranking.
type CombinedRetriever struct {
	Local Retriever
	Web   Retriever
}

var _ Retriever = &CombinedRetriever{}

// CombinedResult keeps per-source counts for the step log
type CombinedResult struct {
	Records []shopping.ProductRecord
	Local   int
	Web     int
}

func (c *CombinedRetriever) Retrieve(ctx context.Context, query string, filters shopping.Filters, k int) ([]shopping.ProductRecord, error) {
	res, err := c.RetrieveSplit(ctx, query, filters, k)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// RetrieveSplit fails as a whole when either source fails
func (c *CombinedRetriever) RetrieveSplit(ctx context.Context, query string, filters shopping.Filters, k int) (CombinedResult, error) {
	localK, webK := Split(k)

	var local, web []shopping.ProductRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = c.Local.Retrieve(gctx, query, filters, localK)
		return err
	})
	if webK > 0 {
		g.Go(func() error {
			var err error
			web, err = c.Web.Retrieve(gctx, query, filters, webK)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return CombinedResult{}, err
	}

	records := make([]shopping.ProductRecord, 0, len(local)+len(web))
	records = append(records, local...)
	records = append(records, web...)
	return CombinedResult{Records: records, Local: len(local), Web: len(web)}, nil
}
