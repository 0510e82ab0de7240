package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/training"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TrainingHandler interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	ChangeSessionStatus(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	ListSessions(w http.ResponseWriter, r *http.Request)

	Enroll(w http.ResponseWriter, r *http.Request)
	CancelEnrollment(w http.ResponseWriter, r *http.Request)
	CompleteEnrollment(w http.ResponseWriter, r *http.Request)
}

type TrainingHandlerImpl struct {
	trainingService training.Service
}

func NewTrainingHandler(trainingService training.Service) TrainingHandler {
	return &TrainingHandlerImpl{trainingService: trainingService}
}

// CreateSession implements TrainingHandler.
func (h *TrainingHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req training.CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.trainingService.CreateSession(r.Context(), tc, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Training session created successfully", session)
}

// ChangeSessionStatus implements TrainingHandler.
func (h *TrainingHandlerImpl) ChangeSessionStatus(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req training.ChangeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.trainingService.ChangeSessionStatus(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Training session status updated successfully", session)
}

// GetSession implements TrainingHandler.
func (h *TrainingHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	session, err := h.trainingService.GetSession(r.Context(), tc, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, session)
}

// ListSessions implements TrainingHandler.
func (h *TrainingHandlerImpl) ListSessions(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	from, ok := queryTime(r, "from")
	if !ok {
		badQuery(w, "from", "from must be a date or RFC3339 time")
		return
	}
	filter := training.ListFilter{
		Status: queryEnum[training.SessionStatus](r, "status"),
		From:   from,
	}
	filter.Page, filter.Limit = pagination(r)

	list, err := h.trainingService.ListSessions(r.Context(), tc, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, list.Sessions, response.NewMeta(list.Page, list.Limit, list.TotalCount))
}

// Enroll implements TrainingHandler.
func (h *TrainingHandlerImpl) Enroll(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	var req training.EnrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.trainingService.Enroll(r.Context(), tc, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Enrollment recorded successfully", enrollment)
}

// CancelEnrollment implements TrainingHandler.
func (h *TrainingHandlerImpl) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	enrollment, err := h.trainingService.CancelEnrollment(r.Context(), tc, chi.URLParam(r, "enrollmentID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Enrollment cancelled", enrollment)
}

// CompleteEnrollment implements TrainingHandler.
func (h *TrainingHandlerImpl) CompleteEnrollment(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	enrollment, err := h.trainingService.CompleteEnrollment(r.Context(), tc, chi.URLParam(r, "enrollmentID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Enrollment completed", enrollment)
}
