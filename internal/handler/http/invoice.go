package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type InvoiceHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type invoiceHandlerImpl struct {
	invoiceService billing.InvoiceService
}

func NewInvoiceHandler(invoiceService billing.InvoiceService) InvoiceHandler {
	return &invoiceHandlerImpl{
		invoiceService: invoiceService,
	}
}

func decodeInvoiceRequest(w http.ResponseWriter, r *http.Request) (billing.InvoiceRequest, bool) {
	var req billing.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode invoice request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

// Preview implements InvoiceHandler.
func (h *invoiceHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoiceRequest(w, r)
	if !ok {
		return
	}

	result, err := h.invoiceService.PreviewInvoice(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Create implements InvoiceHandler.
func (h *invoiceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeInvoiceRequest(w, r)
	if !ok {
		return
	}

	result, err := h.invoiceService.CreateInvoice(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invoice created successfully", result)
}

// List implements InvoiceHandler.
func (h *invoiceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := billing.InvoiceFilter{}

	if clientID := query.Get("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.invoiceService.ListInvoices(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Invoices, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
		Showing:    results.Showing,
	})
}

// Get implements InvoiceHandler.
func (h *invoiceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.invoiceService.GetInvoice(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateStatus implements InvoiceHandler.
func (h *invoiceHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req billing.UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.invoiceService.UpdateInvoiceStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invoice status updated", result)
}
