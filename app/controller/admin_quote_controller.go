package controller

import (
	"log"
	"net/http"
	"strconv"

	"rental-quotes/auth"
	"rental-quotes/models"
	"rental-quotes/service"
)

// AdminQuoteController handles back-office quote management
type AdminQuoteController struct {
	service *service.QuoteAdminService
}

// NewAdminQuoteController creates a new AdminQuoteController
func NewAdminQuoteController(svc *service.QuoteAdminService) *AdminQuoteController {
	return &AdminQuoteController{service: svc}
}

// performer returns the authenticated admin recorded in audit entries
func performer(r *http.Request) models.Performer {
	identity, _ := auth.FromContext(r.Context())
	return identity.Performer()
}

// List handles GET /admin/quotes?search=northlight&status=approved
func (c *AdminQuoteController) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	quotes, err := c.service.ListActive(r.Context(), query.Get("search"), query.Get("status"))
	if err != nil {
		writeError(w, "ListQuotes", err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuoteListResponse{Quotes: quotes})
}

// ListDeleted handles GET /admin/quotes/deleted?search=
func (c *AdminQuoteController) ListDeleted(w http.ResponseWriter, r *http.Request) {
	quotes, err := c.service.ListDeleted(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, "ListDeletedQuotes", err)
		return
	}
	writeJSON(w, http.StatusOK, models.QuoteListResponse{Quotes: quotes})
}

// Get handles GET /admin/quotes/{id}
func (c *AdminQuoteController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetQuote")
	if !ok {
		return
	}
	detail, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, "GetQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// SetStatus handles PUT /admin/quotes/{id}/status
func (c *AdminQuoteController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "SetQuoteStatus")
	if !ok {
		return
	}
	var req models.SetStatusRequest
	if !decodeJSON(w, r, "SetQuoteStatus", &req) {
		return
	}
	detail, err := c.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, "SetQuoteStatus", err)
		return
	}
	log.Printf("✅ SetQuoteStatus: Quote id=%d is now %s", id, detail.Status)
	writeJSON(w, http.StatusOK, detail)
}

// EditItems handles PATCH /admin/quotes/{id}/items
// Example request:
//
//	{"ops": [{"op": "add", "equipmentId": 12}, {"op": "set_quantity", "equipmentId": 12, "quantity": 4}]}
func (c *AdminQuoteController) EditItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "EditQuoteItems")
	if !ok {
		return
	}
	var req models.EditItemsRequest
	if !decodeJSON(w, r, "EditQuoteItems", &req) {
		return
	}
	resp, err := c.service.SaveItems(r.Context(), id, req.Ops)
	if err != nil {
		writeError(w, "EditQuoteItems", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// EquipmentOptions handles GET /admin/quotes/{id}/equipment-options?search=
func (c *AdminQuoteController) EquipmentOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "EquipmentOptions")
	if !ok {
		return
	}
	options, err := c.service.EquipmentOptions(r.Context(), id, r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, "EquipmentOptions", err)
		return
	}
	writeJSON(w, http.StatusOK, models.EquipmentListResponse{Equipment: options})
}

// SetDiscount handles PUT /admin/quotes/{id}/discount
func (c *AdminQuoteController) SetDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "SetQuoteDiscount")
	if !ok {
		return
	}
	var req models.SetDiscountRequest
	if !decodeJSON(w, r, "SetQuoteDiscount", &req) {
		return
	}
	detail, err := c.service.SetDiscount(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, "SetQuoteDiscount", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// SetDates handles PUT /admin/quotes/{id}/dates
func (c *AdminQuoteController) SetDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "SetQuoteDates")
	if !ok {
		return
	}
	var req models.SetDatesRequest
	if !decodeJSON(w, r, "SetQuoteDates", &req) {
		return
	}
	detail, err := c.service.SetDates(r.Context(), id, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, "SetQuoteDates", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// SetTaxExempt handles PUT /admin/quotes/{id}/tax-exempt
func (c *AdminQuoteController) SetTaxExempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "SetQuoteTaxExempt")
	if !ok {
		return
	}
	var req models.SetTaxExemptRequest
	if !decodeJSON(w, r, "SetQuoteTaxExempt", &req) {
		return
	}
	detail, err := c.service.SetTaxExempt(r.Context(), id, req.IsTaxExempt)
	if err != nil {
		writeError(w, "SetQuoteTaxExempt", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ResyncPrices handles POST /admin/quotes/{id}/resync-prices
func (c *AdminQuoteController) ResyncPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "ResyncPrices")
	if !ok {
		return
	}
	detail, refreshed, err := c.service.ResyncPrices(r.Context(), id)
	if err != nil {
		writeError(w, "ResyncPrices", err)
		return
	}
	writeJSON(w, http.StatusOK, models.ResyncPricesResponse{Quote: *detail, Refreshed: refreshed})
}

// Delete handles DELETE /admin/quotes/{id}. The body with a reason is optional.
func (c *AdminQuoteController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteQuote")
	if !ok {
		return
	}
	var req models.DeleteQuoteRequest
	if !decodeOptionalJSON(w, r, "DeleteQuote", &req) {
		return
	}
	quote, err := c.service.SoftDelete(r.Context(), id, performer(r), req.Reason)
	if err != nil {
		writeError(w, "DeleteQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// Restore handles POST /admin/quotes/{id}/restore
func (c *AdminQuoteController) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "RestoreQuote")
	if !ok {
		return
	}
	quote, err := c.service.Restore(r.Context(), id, performer(r))
	if err != nil {
		writeError(w, "RestoreQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// PermanentlyDelete handles DELETE /admin/quotes/{id}/permanent?confirm=true
func (c *AdminQuoteController) PermanentlyDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "PermanentlyDeleteQuote")
	if !ok {
		return
	}
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := c.service.PermanentlyDelete(r.Context(), id, performer(r), confirm); err != nil {
		writeError(w, "PermanentlyDeleteQuote", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "quote permanently deleted"})
}

// AuditLog handles GET /admin/quotes/{id}/audit
func (c *AdminQuoteController) AuditLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "QuoteAuditLog")
	if !ok {
		return
	}
	entries, err := c.service.AuditLog(r.Context(), id)
	if err != nil {
		writeError(w, "QuoteAuditLog", err)
		return
	}
	writeJSON(w, http.StatusOK, models.AuditLogResponse{Entries: entries})
}

// RecentAuditLog handles GET /admin/audit-logs?limit=50
func (c *AdminQuoteController) RecentAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErrorMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	entries, err := c.service.RecentAuditLog(r.Context(), limit)
	if err != nil {
		writeError(w, "RecentAuditLog", err)
		return
	}
	writeJSON(w, http.StatusOK, models.AuditLogResponse{Entries: entries})
}

// GeneratePDF handles POST /admin/quotes/{id}/pdf
// Example response: {"pdfBase64": "JVBERi0xLjQK...", "filename": "quote-41-northlight-films-sunset-spot.pdf"}
func (c *AdminQuoteController) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GenerateQuotePDF")
	if !ok {
		return
	}
	resp, err := c.service.GeneratePDF(r.Context(), id)
	if err != nil {
		writeError(w, "GenerateQuotePDF", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Render handles GET /admin/quotes/{id}/render and returns the printable HTML
func (c *AdminQuoteController) Render(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "RenderQuote")
	if !ok {
		return
	}
	html, err := c.service.RenderHTML(r.Context(), id)
	if err != nil {
		writeError(w, "RenderQuote", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// SendEmail handles POST /admin/quotes/{id}/email
func (c *AdminQuoteController) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "SendQuoteEmail")
	if !ok {
		return
	}
	if err := c.service.SendQuoteEmail(r.Context(), id); err != nil {
		writeError(w, "SendQuoteEmail", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "quote emailed"})
}
