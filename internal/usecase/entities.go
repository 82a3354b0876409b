package usecase

import (
	"context"

	"github.com/fixora/projectledger/internal/domain"
)

// CreateProject creates a project
func (c *Coordinator) CreateProject(ctx context.Context, in domain.CreateProject, actor domain.Actor) (*domain.Project, error) {
	return Create[*domain.Project](ctx, c, c.projects, in, actor)
}

// UpdateProject applies a sparse patch to a project
func (c *Coordinator) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch, actor domain.Actor) (*domain.Project, error) {
	return Update[*domain.Project](ctx, c, c.projects, id, patch, actor)
}

// DeleteProject deletes a project
func (c *Coordinator) DeleteProject(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.Project](ctx, c, c.projects, id, actor)
}

// GetProject loads a project by id
func (c *Coordinator) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return Get[*domain.Project](ctx, c, c.projects, id)
}

// CreatePurchaseOrder creates a purchase order
func (c *Coordinator) CreatePurchaseOrder(ctx context.Context, in domain.CreatePurchaseOrder, actor domain.Actor) (*domain.PurchaseOrder, error) {
	return Create[*domain.PurchaseOrder](ctx, c, c.purchaseOrders, in, actor)
}

// UpdatePurchaseOrder applies a sparse patch to a purchase order
func (c *Coordinator) UpdatePurchaseOrder(ctx context.Context, id string, patch domain.PurchaseOrderPatch, actor domain.Actor) (*domain.PurchaseOrder, error) {
	return Update[*domain.PurchaseOrder](ctx, c, c.purchaseOrders, id, patch, actor)
}

// DeletePurchaseOrder deletes a purchase order
func (c *Coordinator) DeletePurchaseOrder(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.PurchaseOrder](ctx, c, c.purchaseOrders, id, actor)
}

// GetPurchaseOrder loads a purchase order by id
func (c *Coordinator) GetPurchaseOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return Get[*domain.PurchaseOrder](ctx, c, c.purchaseOrders, id)
}

// CreateQuote creates a quote
func (c *Coordinator) CreateQuote(ctx context.Context, in domain.CreateQuote, actor domain.Actor) (*domain.Quote, error) {
	return Create[*domain.Quote](ctx, c, c.quotes, in, actor)
}

// UpdateQuote applies a sparse patch to a quote
func (c *Coordinator) UpdateQuote(ctx context.Context, id string, patch domain.QuotePatch, actor domain.Actor) (*domain.Quote, error) {
	return Update[*domain.Quote](ctx, c, c.quotes, id, patch, actor)
}

// DeleteQuote deletes a quote
func (c *Coordinator) DeleteQuote(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.Quote](ctx, c, c.quotes, id, actor)
}

// GetQuote loads a quote by id
func (c *Coordinator) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	return Get[*domain.Quote](ctx, c, c.quotes, id)
}

// CreateNCR creates a non-conformance report
func (c *Coordinator) CreateNCR(ctx context.Context, in domain.CreateNCR, actor domain.Actor) (*domain.NCR, error) {
	return Create[*domain.NCR](ctx, c, c.ncrs, in, actor)
}

// UpdateNCR applies a sparse patch to a non-conformance report
func (c *Coordinator) UpdateNCR(ctx context.Context, id string, patch domain.NCRPatch, actor domain.Actor) (*domain.NCR, error) {
	return Update[*domain.NCR](ctx, c, c.ncrs, id, patch, actor)
}

// DeleteNCR deletes a non-conformance report
func (c *Coordinator) DeleteNCR(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.NCR](ctx, c, c.ncrs, id, actor)
}

// GetNCR loads a non-conformance report by id
func (c *Coordinator) GetNCR(ctx context.Context, id string) (*domain.NCR, error) {
	return Get[*domain.NCR](ctx, c, c.ncrs, id)
}

// CreateVariation creates a variation
func (c *Coordinator) CreateVariation(ctx context.Context, in domain.CreateVariation, actor domain.Actor) (*domain.Variation, error) {
	return Create[*domain.Variation](ctx, c, c.variations, in, actor)
}

// UpdateVariation applies a sparse patch to a variation
func (c *Coordinator) UpdateVariation(ctx context.Context, id string, patch domain.VariationPatch, actor domain.Actor) (*domain.Variation, error) {
	return Update[*domain.Variation](ctx, c, c.variations, id, patch, actor)
}

// DeleteVariation deletes a variation
func (c *Coordinator) DeleteVariation(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.Variation](ctx, c, c.variations, id, actor)
}

// GetVariation loads a variation by id
func (c *Coordinator) GetVariation(ctx context.Context, id string) (*domain.Variation, error) {
	return Get[*domain.Variation](ctx, c, c.variations, id)
}

// CreateUser creates a user
func (c *Coordinator) CreateUser(ctx context.Context, in domain.CreateUser, actor domain.Actor) (*domain.User, error) {
	return Create[*domain.User](ctx, c, c.users, in, actor)
}

// UpdateUser applies a sparse patch to a user
func (c *Coordinator) UpdateUser(ctx context.Context, id string, patch domain.UserPatch, actor domain.Actor) (*domain.User, error) {
	return Update[*domain.User](ctx, c, c.users, id, patch, actor)
}

// DeleteUser deletes a user
func (c *Coordinator) DeleteUser(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.User](ctx, c, c.users, id, actor)
}

// GetUser loads a user by id
func (c *Coordinator) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return Get[*domain.User](ctx, c, c.users, id)
}

// CreateProduct creates a product
func (c *Coordinator) CreateProduct(ctx context.Context, in domain.CreateProduct, actor domain.Actor) (*domain.Product, error) {
	return Create[*domain.Product](ctx, c, c.products, in, actor)
}

// UpdateProduct applies a sparse patch to a product
func (c *Coordinator) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, actor domain.Actor) (*domain.Product, error) {
	return Update[*domain.Product](ctx, c, c.products, id, patch, actor)
}

// DeleteProduct deletes a product
func (c *Coordinator) DeleteProduct(ctx context.Context, id string, actor domain.Actor) error {
	return Delete[*domain.Product](ctx, c, c.products, id, actor)
}

// GetProduct loads a product by id
func (c *Coordinator) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return Get[*domain.Product](ctx, c, c.products, id)
}
