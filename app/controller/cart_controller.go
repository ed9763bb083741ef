package controller

import (
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"rental-quotes/cart"
	"rental-quotes/models"
	"rental-quotes/pricing"
	"rental-quotes/repository"
	"rental-quotes/service"
)

// CartSessionCookie identifies the visitor's cart across requests
const CartSessionCookie = "cart_session"

// CartController handles HTTP requests for the visitor's cart
type CartController struct {
	storage   cart.Storage
	equipment repository.EquipmentRepositoryInterface
	engine    *pricing.Engine
}

// NewCartController creates a new CartController
func NewCartController(storage cart.Storage, equipment repository.EquipmentRepositoryInterface, engine *pricing.Engine) *CartController {
	return &CartController{
		storage:   storage,
		equipment: equipment,
		engine:    engine,
	}
}

// cartKey returns the storage key for the request's cart session, starting a new session when needed
func cartKey(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CartSessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return "cart:" + cookie.Value
		}
	}
	session := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartSessionCookie,
		Value:    session,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.Printf("🛒 Started cart session %s", session)
	return "cart:" + session
}

func (c *CartController) open(w http.ResponseWriter, r *http.Request, op string) (*cart.Cart, bool) {
	current, err := cart.Open(r.Context(), c.storage, cartKey(w, r))
	if err != nil {
		writeError(w, op, err)
		return nil, false
	}
	return current, true
}

// Get handles GET /cart
// Example response:
//
//	{"items": [{"equipment": {"id": 12, "name": "Folding Chairs", ...}, "quantity": 2}], "totalItems": 2}
func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	current, ok := c.open(w, r, "GetCart")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, current.Response())
}

// AddItem handles POST /cart/items. Adding equipment already in the cart increments its quantity.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddCartItemRequest
	if !decodeJSON(w, r, "AddCartItem", &req) {
		return
	}
	equipment, err := c.equipment.Get(r.Context(), req.EquipmentID)
	if err != nil {
		writeError(w, "AddCartItem", err)
		return
	}
	current, ok := c.open(w, r, "AddCartItem")
	if !ok {
		return
	}
	current.AddItem(r.Context(), *equipment)
	writeJSON(w, http.StatusOK, current.Response())
}

// UpdateItem handles PUT /cart/items/{id}. A quantity of zero or less removes the line.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UpdateCartItem")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !decodeJSON(w, r, "UpdateCartItem", &req) {
		return
	}
	current, ok := c.open(w, r, "UpdateCartItem")
	if !ok {
		return
	}
	current.UpdateQuantity(r.Context(), id, req.Quantity)
	writeJSON(w, http.StatusOK, current.Response())
}

// RemoveItem handles DELETE /cart/items/{id}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "RemoveCartItem")
	if !ok {
		return
	}
	current, ok := c.open(w, r, "RemoveCartItem")
	if !ok {
		return
	}
	current.RemoveItem(r.Context(), id)
	writeJSON(w, http.StatusOK, current.Response())
}

// Clear handles DELETE /cart
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	current, ok := c.open(w, r, "ClearCart")
	if !ok {
		return
	}
	current.Clear(r.Context())
	writeJSON(w, http.StatusOK, current.Response())
}

// Preview handles GET /cart/preview?startDate=2025-06-01&endDate=2025-06-08&taxExempt=false
func (c *CartController) Preview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := service.ValidateDates(query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeError(w, "PreviewCart", err)
		return
	}
	taxExempt := false
	if raw := query.Get("taxExempt"); raw != "" {
		if taxExempt, err = strconv.ParseBool(raw); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "taxExempt must be true or false")
			return
		}
	}

	current, ok := c.open(w, r, "PreviewCart")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.engine.Calculate(pricing.Input{
		Items:       current.Items(),
		StartDate:   start,
		EndDate:     end,
		IsTaxExempt: taxExempt,
	}))
}
