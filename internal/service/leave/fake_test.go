package leave

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/approval"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jobs"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/validator"
)

// store is an in-memory stand-in for the leave tables. The transactor restores
// a snapshot when the callback fails, mirroring a rollback.
type store struct {
	mu           sync.Mutex
	types        map[string]leave.LeaveType
	balances     map[string]leave.LeaveBalance
	entries      []leave.BalanceEntry
	applications map[string]leave.LeaveApplication
	chains       map[string]approval.Chain
	approvers    map[string][]string
	dispatched   []jobs.Job
	trace        []string
}

func newStore() *store {
	return &store{
		types:        map[string]leave.LeaveType{},
		balances:     map[string]leave.LeaveBalance{},
		applications: map[string]leave.LeaveApplication{},
		chains:       map[string]approval.Chain{},
		approvers:    map[string][]string{},
	}
}

func balanceKey(employeeID, leaveTypeID string, year int) string {
	return employeeID + "|" + leaveTypeID + "|" + strconv.Itoa(year)
}

func (s *store) snapshot() *store {
	cp := newStore()
	for k, v := range s.types {
		cp.types[k] = v
	}
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	cp.entries = append(cp.entries, s.entries...)
	for k, v := range s.applications {
		cp.applications[k] = v
	}
	for k, v := range s.chains {
		cp.chains[k] = approval.Chain{Levels: append([]approval.Level(nil), v.Levels...)}
	}
	for k, v := range s.approvers {
		cp.approvers[k] = v
	}
	return cp
}

func (s *store) restore(from *store) {
	s.types, s.balances, s.entries = from.types, from.balances, from.entries
	s.applications, s.chains, s.approvers = from.applications, from.chains, from.approvers
}

func (s *store) transactor() database.Transactor {
	return database.TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		snap := s.snapshot()
		if err := fn(ctx); err != nil {
			s.restore(snap)
			return err
		}
		return nil
	})
}

func (s *store) dispatcher() jobs.Dispatcher {
	return jobs.DispatcherFunc(func(ctx context.Context, job jobs.Job) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.dispatched = append(s.dispatched, job)
		return nil
	})
}

type typeRepo struct{ s *store }

func (r typeRepo) GetByID(ctx context.Context, companyID, id string) (leave.LeaveType, error) {
	lt, ok := r.s.types[id]
	if !ok || lt.CompanyID != companyID {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return lt, nil
}

type balanceRepo struct{ s *store }

func (r balanceRepo) GetForUpdate(ctx context.Context, companyID, employeeID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	r.s.trace = append(r.s.trace, "balance:"+leaveTypeID)
	b, ok := r.s.balances[balanceKey(employeeID, leaveTypeID, year)]
	if !ok || b.CompanyID != companyID {
		return leave.LeaveBalance{}, leave.ErrLeaveBalanceNotFound
	}
	return b, nil
}

func (r balanceRepo) ListByEmployee(ctx context.Context, companyID, employeeID string, year int) ([]leave.LeaveBalance, error) {
	var out []leave.LeaveBalance
	for _, b := range r.s.balances {
		if b.CompanyID == companyID && b.EmployeeID == employeeID && b.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveTypeID < out[j].LeaveTypeID })
	return out, nil
}

func (r balanceRepo) Update(ctx context.Context, b leave.LeaveBalance) error {
	r.s.balances[balanceKey(b.EmployeeID, b.LeaveTypeID, b.Year)] = b
	return nil
}

func (r balanceRepo) AppendEntry(ctx context.Context, e leave.BalanceEntry) error {
	r.s.entries = append(r.s.entries, e)
	return nil
}

type applicationRepo struct{ s *store }

func (r applicationRepo) Create(ctx context.Context, a leave.LeaveApplication) error {
	a.Chain = approval.Chain{}
	r.s.applications[a.ID] = a
	return nil
}

func (r applicationRepo) GetByID(ctx context.Context, companyID, id string) (leave.LeaveApplication, error) {
	a, ok := r.s.applications[id]
	if !ok || a.CompanyID != companyID {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return a, nil
}

func (r applicationRepo) GetByIDForUpdate(ctx context.Context, companyID, id string) (leave.LeaveApplication, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r applicationRepo) Update(ctx context.Context, a leave.LeaveApplication) error {
	a.Chain = approval.Chain{}
	r.s.applications[a.ID] = a
	return nil
}

func (r applicationRepo) List(ctx context.Context, companyID string, f leave.ListApplicationsFilter) ([]leave.LeaveApplication, int64, error) {
	var out []leave.LeaveApplication
	for _, a := range r.s.applications {
		if a.CompanyID != companyID || (f.EmployeeID != "" && a.EmployeeID != f.EmployeeID) {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (r applicationRepo) LockEmployee(ctx context.Context, companyID, employeeID string) error {
	r.s.trace = append(r.s.trace, "employee:"+employeeID)
	return nil
}

func (r applicationRepo) ListActiveRanges(ctx context.Context, companyID, employeeID string) ([]validator.Ranged, error) {
	r.s.trace = append(r.s.trace, "ranges")
	var out []validator.Ranged
	for _, a := range r.s.applications {
		if a.CompanyID != companyID || a.EmployeeID != employeeID {
			continue
		}
		if a.Status == leave.StatusPending || a.Status == leave.StatusApproved {
			out = append(out, validator.Ranged{ID: a.ID, Range: validator.DateRange{Start: a.StartDate, End: a.EndDate}})
		}
	}
	return out, nil
}

type approvalRepo struct {
	s          *store
	failCreate error
}

func (r approvalRepo) ListApprovers(ctx context.Context, companyID, employeeID string) ([]string, error) {
	return r.s.approvers[employeeID], nil
}

func (r approvalRepo) GetChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string) (approval.Chain, error) {
	c := r.s.chains[string(subject)+subjectID]
	return approval.Chain{Levels: append([]approval.Level(nil), c.Levels...)}, nil
}

func (r approvalRepo) CreateChain(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, c approval.Chain) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.s.chains[string(subject)+subjectID] = approval.Chain{Levels: append([]approval.Level(nil), c.Levels...)}
	return nil
}

func (r approvalRepo) SaveLevel(ctx context.Context, companyID string, subject approval.SubjectType, subjectID string, l approval.Level) error {
	c := r.s.chains[string(subject)+subjectID]
	for i := range c.Levels {
		if c.Levels[i].Level == l.Level {
			c.Levels[i] = l
		}
	}
	return nil
}
