package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Check is one validation rule. It returns a failure for the user, or err when
// the rule could not be evaluated at all.
type Check func() (*ValidationError, error)

// Collect runs every check and aggregates their failures into one
// ValidationErrors. The first evaluation error aborts immediately.
func Collect(checks ...Check) error {
	var errs ValidationErrors
	for _, check := range checks {
		if check == nil {
			continue
		}
		failure, err := check()
		if err != nil {
			return err
		}
		if failure != nil {
			errs = append(errs, *failure)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DateRange is an inclusive range of instants or calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses inclusive bounds: touching ranges overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Days counts calendar days, both ends included.
func (r DateRange) Days() int {
	start, end := Truncate(r.Start), Truncate(r.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

// Ranged is an existing record occupying a range for some owner.
type Ranged struct {
	ID    string
	Range DateRange
}

type RangeLister interface {
	ListActiveRanges(ctx context.Context, ownerID string) ([]Ranged, error)
}

type RangeListerFunc func(ctx context.Context, ownerID string) ([]Ranged, error)

func (f RangeListerFunc) ListActiveRanges(ctx context.Context, ownerID string) ([]Ranged, error) {
	return f(ctx, ownerID)
}

// Overlap fails when proposed intersects any active range of the owner other
// than excludeID.
func Overlap(ctx context.Context, field string, lister RangeLister, ownerID string, proposed DateRange, excludeID string) Check {
	return func() (*ValidationError, error) {
		existing, err := lister.ListActiveRanges(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("list active ranges: %w", err)
		}
		for _, other := range existing {
			if excludeID != "" && other.ID == excludeID {
				continue
			}
			if proposed.Overlaps(other.Range) {
				return &ValidationError{
					Field:   field,
					Message: fmt.Sprintf("overlaps an existing record from %s to %s", other.Range.Start.Format(DateLayout), other.Range.End.Format(DateLayout)),
				}, nil
			}
		}
		return nil, nil
	}
}

// Available is granted - used - pending.
func Available(granted, used, pending decimal.Decimal) decimal.Decimal {
	return granted.Sub(used).Sub(pending)
}

// Balance fails when requested exceeds the freshly computed available amount.
func Balance(field string, requested, granted, used, pending decimal.Decimal) Check {
	return func() (*ValidationError, error) {
		available := Available(granted, used, pending)
		if requested.GreaterThan(available) {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("insufficient balance: requested %s, available %s", requested.String(), available.String()),
			}, nil
		}
		return nil, nil
	}
}

// Key is a uniqueness tuple, e.g. employee+competency+level.
type Key []string

type DuplicateFinder interface {
	// FindActive returns ids of active records carrying key.
	FindActive(ctx context.Context, key Key) ([]string, error)
}

type DuplicateFinderFunc func(ctx context.Context, key Key) ([]string, error)

func (f DuplicateFinderFunc) FindActive(ctx context.Context, key Key) ([]string, error) {
	return f(ctx, key)
}

// Duplicate fails when an active record other than excludeID has key.
func Duplicate(ctx context.Context, field string, finder DuplicateFinder, key Key, excludeID string, message string) Check {
	return func() (*ValidationError, error) {
		ids, err := finder.FindActive(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find duplicates: %w", err)
		}
		for _, id := range ids {
			if id != excludeID {
				return &ValidationError{Field: field, Message: message}, nil
			}
		}
		return nil, nil
	}
}

type ParentLookup interface {
	// ParentOf returns the parent of id ("" for a root) and whether id exists.
	ParentOf(ctx context.Context, id string) (parentID string, found bool, err error)
}

type ParentLookupFunc func(ctx context.Context, id string) (string, bool, error)

func (f ParentLookupFunc) ParentOf(ctx context.Context, id string) (string, bool, error) {
	return f(ctx, id)
}

// Circular fails when nodeID would become its own ancestor under proposedParentID.
// nodeID is empty for records that do not exist yet.
func Circular(ctx context.Context, field string, lookup ParentLookup, nodeID, proposedParentID string) Check {
	return func() (*ValidationError, error) {
		if proposedParentID == "" {
			return nil, nil
		}
		if nodeID != "" && proposedParentID == nodeID {
			return &ValidationError{Field: field, Message: "cannot be its own parent"}, nil
		}

		visited := map[string]struct{}{}
		current := proposedParentID
		for current != "" {
			if nodeID != "" && current == nodeID {
				return &ValidationError{Field: field, Message: "would create a circular reference"}, nil
			}
			if _, seen := visited[current]; seen {
				return &ValidationError{Field: field, Message: "parent chain contains a circular reference"}, nil
			}
			visited[current] = struct{}{}

			parent, found, err := lookup.ParentOf(ctx, current)
			if err != nil {
				return nil, fmt.Errorf("lookup parent: %w", err)
			}
			if !found {
				if current == proposedParentID {
					return &ValidationError{Field: field, Message: "parent not found"}, nil
				}
				return nil, nil
			}
			current = parent
		}
		return nil, nil
	}
}

// AdvanceNotice fails iff today + minDays is after start.
func AdvanceNotice(field string, today, start time.Time, minDays int) Check {
	return func() (*ValidationError, error) {
		earliest := Truncate(today).AddDate(0, 0, minDays)
		if earliest.After(Truncate(start)) {
			if minDays == 0 {
				return &ValidationError{Field: field, Message: "cannot be in the past"}, nil
			}
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("must be submitted at least %d days in advance", minDays),
			}, nil
		}
		return nil, nil
	}
}
