package api

import (
	"context"
	"net/url"

	"github.com/sgmi/proddash/internal/production"
)

// Products returns the catalog. Inactive products are included only when
// includeInactive is set.
func (c *Client) Products(ctx context.Context, includeInactive bool) ([]production.Product, error) {
	q := url.Values{}
	msg := "Erro ao carregar produtos"
	if includeInactive {
		q.Set(queryInactive, "true")
		msg = "Erro ao carregar todos os produtos"
	}

	var wire []wireProduct
	if err := c.getData(ctx, PathProducts, q, &wire); err != nil {
		return nil, wrap("get products", msg, err)
	}
	out := make([]production.Product, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.product())
	}
	return out, nil
}

// ActiveProducts returns only active products, for pickers.
func (c *Client) ActiveProducts(ctx context.Context) ([]production.Product, error) {
	all, err := c.Products(ctx, false)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

// CreatePlan schedules a production plan and returns its id. Cached
// responses are dropped since totals and reports change.
func (c *Client) CreatePlan(ctx context.Context, req production.PlanRequest) (string, error) {
	const op, msg = "create production plan", "Erro ao criar plano de produção"
	if err := req.Validate(); err != nil {
		return "", wrap(op, err.Error(), err)
	}

	var created wireCreated
	if err := c.postData(ctx, PathPlans, req, &created); err != nil {
		return "", wrap(op, msg, err)
	}
	if c.cache.Enabled() {
		if n, err := c.cache.Clear(); err != nil {
			c.logger.Warn().Ctx(ctx).Err(err).Msg("failed to clear response cache")
		} else {
			c.logger.Debug().Ctx(ctx).Int("entries", n).Msg("response cache cleared after plan creation")
		}
	}
	return created.ID, nil
}
