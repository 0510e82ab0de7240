package document

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/document"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type DocumentServiceImpl struct {
	tx       database.Transactor
	requests document.Repository
	jobs     jobs.Dispatcher
	now      func() time.Time
}

func NewDocumentService(tx database.Transactor, requests document.Repository, dispatcher jobs.Dispatcher) document.Service {
	return &DocumentServiceImpl{tx: tx, requests: requests, jobs: dispatcher, now: time.Now}
}

// Create implements document.Service.
func (s *DocumentServiceImpl) Create(ctx context.Context, tc tenant.Context, req document.CreateRequest) (document.Response, error) {
	if err := tc.Validate(); err != nil {
		return document.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return document.Response{}, err
	}
	employeeID, err := tc.SelfOr(req.EmployeeID)
	if err != nil {
		return document.Response{}, err
	}
	if err := tc.RequireEmployee(employeeID); err != nil {
		return document.Response{}, err
	}

	now := s.now()
	r := document.Request{
		ID:           uuid.Must(uuid.NewV7()).String(),
		CompanyID:    tc.CompanyID,
		EmployeeID:   employeeID,
		DocumentType: document.Type(req.DocumentType),
		Purpose:      req.Purpose,
		Status:       document.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		err := validator.Collect(validator.Duplicate(ctx, "document_type",
			validator.DuplicateFinderFunc(func(ctx context.Context, key validator.Key) ([]string, error) {
				return s.requests.FindOpen(ctx, tc.CompanyID, key[0], document.Type(key[1]))
			}),
			validator.Key{employeeID, string(r.DocumentType)}, "",
			"an open request for this document type already exists",
		))
		if err != nil {
			return err
		}
		return s.requests.Create(ctx, r)
	})
	if err != nil {
		return document.Response{}, err
	}

	slog.Info("Document request created", "request_id", r.ID, "employee_id", employeeID, "type", r.DocumentType, "actor_id", tc.UserID)
	return document.NewResponse(r), nil
}

// ChangeStatus implements document.Service. The requester may cancel while
// pending; every other move is done by document processors.
func (s *DocumentServiceImpl) ChangeStatus(ctx context.Context, tc tenant.Context, id string, req document.ChangeStatusRequest) (document.Response, error) {
	if err := tc.Validate(); err != nil {
		return document.Response{}, err
	}
	if err := req.Validate(); err != nil {
		return document.Response{}, err
	}
	to, err := document.Machine.Parse(req.Status)
	if err != nil {
		return document.Response{}, err
	}
	if to != document.StatusCancelled {
		if err := tc.Require(user.PermissionDocumentProcess); err != nil {
			return document.Response{}, err
		}
	}

	var r document.Request
	var from document.Status
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.requests.GetByIDForUpdate(ctx, tc.CompanyID, id)
		if err != nil {
			return err
		}
		if to == document.StatusCancelled && r.EmployeeID != tc.EmployeeID {
			return document.ErrOwnerOnly
		}
		from = r.Status
		changed, err := document.Machine.Transition(r.Status, to)
		if err != nil || !changed {
			return err
		}

		now := s.now()
		switch to {
		case document.StatusRejected:
			r.RejectionReason = req.Reason
		case document.StatusReleased:
			r.ReleasedAt = &now
		}
		if to != document.StatusCancelled {
			r.HandledBy = &tc.UserID
		}
		r.Status = to
		r.UpdatedAt = now
		return s.requests.Update(ctx, r)
	})
	if err != nil {
		return document.Response{}, err
	}

	if from != r.Status {
		slog.Info("Document request status changed", "request_id", r.ID, "from", from, "to", r.Status, "actor_id", tc.UserID)
		jobs.Emit(ctx, s.jobs, notification.JobStatusChanged, tc.CompanyID, notification.StatusChangedPayload{
			RecipientEmployeeID: r.EmployeeID,
			ActorUserID:         tc.UserID,
			Subject:             document.Machine.Entity(),
			SubjectID:           r.ID,
			From:                string(from),
			To:                  string(r.Status),
			ToLabel:             document.Machine.Label(r.Status),
		})
	}
	return document.NewResponse(r), nil
}

// Get implements document.Service.
func (s *DocumentServiceImpl) Get(ctx context.Context, tc tenant.Context, id string) (document.Response, error) {
	if err := tc.Validate(); err != nil {
		return document.Response{}, err
	}
	r, err := s.requests.GetByID(ctx, tc.CompanyID, id)
	if err != nil {
		return document.Response{}, err
	}
	if err := tc.RequireEmployee(r.EmployeeID); err != nil {
		return document.Response{}, err
	}
	return document.NewResponse(r), nil
}

// List implements document.Service.
func (s *DocumentServiceImpl) List(ctx context.Context, tc tenant.Context, filter document.ListFilter) (document.ListResponse, error) {
	if err := tc.Validate(); err != nil {
		return document.ListResponse{}, err
	}
	if !tc.Can(user.PermissionDocumentProcess) {
		if tc.EmployeeID == "" {
			return document.ListResponse{}, tenant.ErrMissingEmployee
		}
		filter.EmployeeID = &tc.EmployeeID
	}
	filter.Normalize()

	rows, total, err := s.requests.List(ctx, tc.CompanyID, filter)
	if err != nil {
		return document.ListResponse{}, err
	}
	out := make([]document.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, document.NewResponse(r))
	}
	return document.ListResponse{Requests: out, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}
