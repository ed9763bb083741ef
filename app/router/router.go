package router

import (
	"log"
	"net/http"
	"time"

	"rental-quotes/app/controller"
	"rental-quotes/auth"
)

type Controllers struct {
	Equipment  *controller.EquipmentController
	Cart       *controller.CartController
	Quote      *controller.QuoteController
	AdminQuote *controller.AdminQuoteController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// logRequests logs method, path, status and duration of every request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("📥 %s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// SetupRoutes registers every route and returns the root handler
func SetupRoutes(controllers *Controllers, verifier *auth.Verifier) http.Handler {
	mux := http.NewServeMux()
	admin := auth.Middleware(verifier, auth.RoleAdmin)
	adminRoute := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, admin(h))
	}

	// Ping endpoint
	mux.HandleFunc("GET /ping", pingHandler)

	// Catalog
	mux.HandleFunc("GET /equipment", controllers.Equipment.List)
	mux.HandleFunc("GET /equipment/{id}", controllers.Equipment.Get)
	mux.HandleFunc("GET /catalog", controllers.Equipment.Catalog)

	// Cart, keyed by the cart_session cookie
	mux.HandleFunc("GET /cart", controllers.Cart.Get)
	mux.HandleFunc("DELETE /cart", controllers.Cart.Clear)
	mux.HandleFunc("POST /cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("PUT /cart/items/{id}", controllers.Cart.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", controllers.Cart.RemoveItem)
	mux.HandleFunc("GET /cart/preview", controllers.Cart.Preview)

	// Quote submission
	mux.HandleFunc("POST /quotes/preview", controllers.Quote.Preview)
	mux.HandleFunc("POST /quotes", controllers.Quote.Submit)

	// Equipment administration
	adminRoute("POST /admin/equipment", controllers.Equipment.Create)
	adminRoute("PUT /admin/equipment/{id}", controllers.Equipment.Update)
	adminRoute("DELETE /admin/equipment/{id}", controllers.Equipment.Delete)
	adminRoute("POST /admin/equipment/{id}/image", controllers.Equipment.UploadImage)

	// Quote administration
	adminRoute("GET /admin/quotes", controllers.AdminQuote.List)
	adminRoute("GET /admin/quotes/deleted", controllers.AdminQuote.ListDeleted)
	adminRoute("GET /admin/quotes/{id}", controllers.AdminQuote.Get)
	adminRoute("PUT /admin/quotes/{id}/status", controllers.AdminQuote.SetStatus)
	adminRoute("PATCH /admin/quotes/{id}/items", controllers.AdminQuote.EditItems)
	adminRoute("GET /admin/quotes/{id}/equipment-options", controllers.AdminQuote.EquipmentOptions)
	adminRoute("PUT /admin/quotes/{id}/discount", controllers.AdminQuote.SetDiscount)
	adminRoute("PUT /admin/quotes/{id}/dates", controllers.AdminQuote.SetDates)
	adminRoute("PUT /admin/quotes/{id}/tax-exempt", controllers.AdminQuote.SetTaxExempt)
	adminRoute("POST /admin/quotes/{id}/resync-prices", controllers.AdminQuote.ResyncPrices)
	adminRoute("DELETE /admin/quotes/{id}", controllers.AdminQuote.Delete)
	adminRoute("POST /admin/quotes/{id}/restore", controllers.AdminQuote.Restore)
	adminRoute("DELETE /admin/quotes/{id}/permanent", controllers.AdminQuote.PermanentlyDelete)
	adminRoute("GET /admin/quotes/{id}/audit", controllers.AdminQuote.AuditLog)
	adminRoute("POST /admin/quotes/{id}/pdf", controllers.AdminQuote.GeneratePDF)
	adminRoute("GET /admin/quotes/{id}/render", controllers.AdminQuote.Render)
	adminRoute("POST /admin/quotes/{id}/email", controllers.AdminQuote.SendEmail)
	adminRoute("GET /admin/audit-logs", controllers.AdminQuote.RecentAuditLog)

	return logRequests(mux)
}
