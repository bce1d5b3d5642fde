package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TimesheetHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Evaluate(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Rules(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.Service
}

func NewTimesheetHandler(timesheetService timesheet.Service) TimesheetHandler {
	return &timesheetHandlerImpl{
		timesheetService: timesheetService,
	}
}

// parseTimesheetFilter reads the shared list and summary query parameters.
func parseTimesheetFilter(r *http.Request) timesheet.TimesheetFilter {
	query := r.URL.Query()
	filter := timesheet.TimesheetFilter{}

	if guardID := query.Get("guard_id"); guardID != "" {
		filter.GuardID = &guardID
	}
	if siteID := query.Get("site_id"); siteID != "" {
		filter.SiteID = &siteID
	}
	if clientID := query.Get("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}

	// Date range filters
	if startDate := query.Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := query.Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	if reviewStatus := query.Get("timesheet_status"); reviewStatus != "" {
		filter.TimesheetStatus = &reviewStatus
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	// Pagination
	page := 1
	if p := query.Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := query.Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	// Sorting
	filter.SortBy = query.Get("sort_by")
	filter.SortOrder = query.Get("sort_order")

	return filter
}

// decodeJSON decodes an optional JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// List implements TimesheetHandler.
func (h *timesheetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := parseTimesheetFilter(r)

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.timesheetService.ListTimesheets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results.Timesheets, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: results.TotalPages,
		Showing:    results.Showing,
	})
}

// Summary implements TimesheetHandler.
func (h *timesheetHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	filter := parseTimesheetFilter(r)

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.Summary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements TimesheetHandler.
func (h *timesheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.timesheetService.GetTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Evaluate implements TimesheetHandler.
func (h *timesheetHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req timesheet.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode evaluate request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.Evaluate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CheckIn implements TimesheetHandler.
func (h *timesheetHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.timesheetService.CheckIn(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check in successful", result)
}

// CheckOut implements TimesheetHandler.
func (h *timesheetHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req timesheet.CheckOutRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// Update implements TimesheetHandler.
func (h *timesheetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req timesheet.UpdateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.UpdateTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet updated successfully", result)
}

// Approve implements TimesheetHandler.
func (h *timesheetHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.timesheetService.ApproveTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet approved", result)
}

// Reject implements TimesheetHandler.
func (h *timesheetHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req timesheet.RejectTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.RejectTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet rejected", result)
}

// Rules implements TimesheetHandler.
func (h *timesheetHandlerImpl) Rules(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.timesheetService.Rules())
}
