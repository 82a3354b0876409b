package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fixora/projectledger/internal/domain"
)

// Ledger is the engine surface the HTTP adapter drives.
// *usecase.Coordinator satisfies it.
type Ledger interface {
	CreateProject(ctx context.Context, in domain.CreateProject, actor domain.Actor) (*domain.Project, error)
	UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch, actor domain.Actor) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string, actor domain.Actor) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	CreatePurchaseOrder(ctx context.Context, in domain.CreatePurchaseOrder, actor domain.Actor) (*domain.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id string, patch domain.PurchaseOrderPatch, actor domain.Actor) (*domain.PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, id string, actor domain.Actor) error
	GetPurchaseOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error)

	CreateQuote(ctx context.Context, in domain.CreateQuote, actor domain.Actor) (*domain.Quote, error)
	UpdateQuote(ctx context.Context, id string, patch domain.QuotePatch, actor domain.Actor) (*domain.Quote, error)
	DeleteQuote(ctx context.Context, id string, actor domain.Actor) error
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)

	CreateNCR(ctx context.Context, in domain.CreateNCR, actor domain.Actor) (*domain.NCR, error)
	UpdateNCR(ctx context.Context, id string, patch domain.NCRPatch, actor domain.Actor) (*domain.NCR, error)
	DeleteNCR(ctx context.Context, id string, actor domain.Actor) error
	GetNCR(ctx context.Context, id string) (*domain.NCR, error)

	CreateVariation(ctx context.Context, in domain.CreateVariation, actor domain.Actor) (*domain.Variation, error)
	UpdateVariation(ctx context.Context, id string, patch domain.VariationPatch, actor domain.Actor) (*domain.Variation, error)
	DeleteVariation(ctx context.Context, id string, actor domain.Actor) error
	GetVariation(ctx context.Context, id string) (*domain.Variation, error)

	CreateUser(ctx context.Context, in domain.CreateUser, actor domain.Actor) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch, actor domain.Actor) (*domain.User, error)
	DeleteUser(ctx context.Context, id string, actor domain.Actor) error
	GetUser(ctx context.Context, id string) (*domain.User, error)

	CreateProduct(ctx context.Context, in domain.CreateProduct, actor domain.Actor) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch, actor domain.Actor) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string, actor domain.Actor) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	ListAudit(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditRecord, error)
}

const (
	ActorIDHeader   = "X-Actor-ID"
	ActorNameHeader = "X-Actor-Name"
)

// Handler serves the ledger REST API
type Handler struct {
	ledger Ledger
}

// NewHandler creates a new ledger handler
func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// RegisterRoutes registers every collection and the audit endpoint
func (h *Handler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	resource[*domain.Project, domain.CreateProject, domain.ProjectPatch]{
		collection: "projects", label: "Project",
		create: h.ledger.CreateProject, update: h.ledger.UpdateProject,
		delete: h.ledger.DeleteProject, get: h.ledger.GetProject,
	}.register(api)

	resource[*domain.PurchaseOrder, domain.CreatePurchaseOrder, domain.PurchaseOrderPatch]{
		collection: "purchase-orders", label: "Purchase order",
		create: h.ledger.CreatePurchaseOrder, update: h.ledger.UpdatePurchaseOrder,
		delete: h.ledger.DeletePurchaseOrder, get: h.ledger.GetPurchaseOrder,
	}.register(api)

	resource[*domain.Quote, domain.CreateQuote, domain.QuotePatch]{
		collection: "quotes", label: "Quote",
		create: h.ledger.CreateQuote, update: h.ledger.UpdateQuote,
		delete: h.ledger.DeleteQuote, get: h.ledger.GetQuote,
	}.register(api)

	resource[*domain.NCR, domain.CreateNCR, domain.NCRPatch]{
		collection: "ncrs", label: "NCR",
		create: h.ledger.CreateNCR, update: h.ledger.UpdateNCR,
		delete: h.ledger.DeleteNCR, get: h.ledger.GetNCR,
	}.register(api)

	resource[*domain.Variation, domain.CreateVariation, domain.VariationPatch]{
		collection: "variations", label: "Variation",
		create: h.ledger.CreateVariation, update: h.ledger.UpdateVariation,
		delete: h.ledger.DeleteVariation, get: h.ledger.GetVariation,
	}.register(api)

	resource[*domain.User, domain.CreateUser, domain.UserPatch]{
		collection: "users", label: "User",
		create: h.ledger.CreateUser, update: h.ledger.UpdateUser,
		delete: h.ledger.DeleteUser, get: h.ledger.GetUser,
	}.register(api)

	resource[*domain.Product, domain.CreateProduct, domain.ProductPatch]{
		collection: "products", label: "Product",
		create: h.ledger.CreateProduct, update: h.ledger.UpdateProduct,
		delete: h.ledger.DeleteProduct, get: h.ledger.GetProduct,
	}.register(api)

	api.HandleFunc("/audit", h.ListAudit).Methods("GET")
}

// ListAudit handles audit trail queries
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.AuditFilter{
		EntityType: domain.EntityType(query.Get("entity")),
		EntityID:   query.Get("entityId"),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	records, err := h.ledger.ListAudit(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*domain.AuditRecord{}
	}

	writeSuccess(w, http.StatusOK, "Audit records retrieved successfully", records)
}

// resource wires one entity collection onto the router
type resource[E domain.Record, C domain.Payload[E], P domain.Patch[E]] struct {
	collection string
	label      string
	create     func(ctx context.Context, in C, actor domain.Actor) (E, error)
	update     func(ctx context.Context, id string, patch P, actor domain.Actor) (E, error)
	delete     func(ctx context.Context, id string, actor domain.Actor) error
	get        func(ctx context.Context, id string) (E, error)
}

func (res resource[E, C, P]) register(router *mux.Router) {
	router.HandleFunc("/"+res.collection, res.handleCreate).Methods("POST")
	router.HandleFunc("/"+res.collection+"/{id}", res.handleGet).Methods("GET")
	router.HandleFunc("/"+res.collection+"/{id}", res.handleUpdate).Methods("PATCH")
	router.HandleFunc("/"+res.collection+"/{id}", res.handleDelete).Methods("DELETE")
}

func (res resource[E, C, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in C
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	entity, err := res.create(r.Context(), in, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, res.label+" created successfully", entity)
}

func (res resource[E, C, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	entity, err := res.get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res.label+" retrieved successfully", entity)
}

func (res resource[E, C, P]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch P
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	entity, err := res.update(r.Context(), mux.Vars(r)["id"], patch, actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res.label+" updated successfully", entity)
}

func (res resource[E, C, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := res.delete(r.Context(), mux.Vars(r)["id"], actorFrom(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, res.label+" deleted successfully", nil)
}

func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		ID:   r.Header.Get(ActorIDHeader),
		Name: r.Header.Get(ActorNameHeader),
	}
}
