package app

import (
	"context"
	"time"

	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// EventRepository persists events for the registry.
type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, address string) (domain.Event, error)
	GetEventForUpdate(ctx context.Context, address string) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// RoyaltyMode controls how royalty specs are checked when an event is created.
type RoyaltyMode string

const (
	// RoyaltyModeLenient stores any spec; malformed parts fall back to defaults later.
	RoyaltyModeLenient RoyaltyMode = "lenient"
	// RoyaltyModeStrict rejects specs that are not three valid percentages.
	RoyaltyModeStrict RoyaltyMode = "strict"
)

// EventRegistry creates and manages events.
type EventRegistry struct {
	repo        EventRepository
	logger      *logrus.Logger
	royaltyMode RoyaltyMode
}

// NewEventRegistry builds an EventRegistry in lenient royalty mode unless an option overrides it.
func NewEventRegistry(repo EventRepository, logger *logrus.Logger, opts ...EventRegistryOption) *EventRegistry {
	r := &EventRegistry{
		repo:        repo,
		logger:      loggerOrDefault(logger),
		royaltyMode: RoyaltyModeLenient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EventRegistryOption configures an EventRegistry.
type EventRegistryOption func(*EventRegistry)

// WithRoyaltyMode overrides the default lenient royalty spec handling.
func WithRoyaltyMode(mode RoyaltyMode) EventRegistryOption {
	return func(r *EventRegistry) {
		if mode == RoyaltyModeLenient || mode == RoyaltyModeStrict {
			r.royaltyMode = mode
		}
	}
}

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Creator      string
	BusinessID   string
	Name         string
	Description  string
	RoyaltySpec  string
	Venue        string
	Date         time.Time
	TotalTickets uint64
	BasePrice    uint64
}

// CreateEvent stores a new active event at the address derived from creator and business id.
func (r *EventRegistry) CreateEvent(ctx context.Context, in CreateEventInput) (event domain.Event, err error) {
	ctx, span := startSpan(ctx, "EventRegistry.CreateEvent",
		attribute.String("event.creator", in.Creator),
		attribute.String("event.business_id", in.BusinessID),
	)
	defer func() { endSpan(span, err) }()

	address, err := domain.EventAddress(in.Creator, in.BusinessID)
	if err != nil {
		return domain.Event{}, err
	}
	if r.royaltyMode == RoyaltyModeStrict {
		if _, err := domain.ParseRoyaltySpecStrict(in.RoyaltySpec); err != nil {
			return domain.Event{}, err
		}
	}

	event = domain.Event{
		Address:      address,
		Creator:      in.Creator,
		BusinessID:   in.BusinessID,
		Name:         in.Name,
		Description:  in.Description,
		Venue:        in.Venue,
		RoyaltySpec:  in.RoyaltySpec,
		Date:         in.Date.UTC(),
		TotalTickets: in.TotalTickets,
		TicketsSold:  0,
		BasePrice:    in.BasePrice,
		IsActive:     true,
	}
	if err := r.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}

	r.logger.WithContext(ctx).WithFields(logrus.Fields{
		"event":   event.Address,
		"creator": event.Creator,
		"tickets": event.TotalTickets,
	}).Info("event created")
	return event, nil
}

// DeactivateEventInput names the event and the caller asking to close it.
type DeactivateEventInput struct {
	Caller       string
	EventAddress string
}

// DeactivateEvent closes an event for primary sales. Only the creator may do it.
func (r *EventRegistry) DeactivateEvent(ctx context.Context, in DeactivateEventInput) (event domain.Event, err error) {
	ctx, span := startSpan(ctx, "EventRegistry.DeactivateEvent", attribute.String("event.address", in.EventAddress))
	defer func() { endSpan(span, err) }()

	if !domain.ValidAddress(in.EventAddress) {
		return domain.Event{}, domain.ErrInvalidID
	}

	err = r.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := r.repo.GetEventForUpdate(txCtx, in.EventAddress)
		if err != nil {
			return err
		}
		if current.Creator != in.Caller {
			return domain.ErrUnauthorized
		}
		if !current.IsActive {
			event = current
			return nil
		}
		current.IsActive = false
		if err := r.repo.UpdateEvent(txCtx, current); err != nil {
			return err
		}
		event = current
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	r.logger.WithContext(ctx).WithField("event", event.Address).Info("event deactivated")
	return event, nil
}

// GetEvent returns the event stored at address.
func (r *EventRegistry) GetEvent(ctx context.Context, address string) (domain.Event, error) {
	if !domain.ValidAddress(address) {
		return domain.Event{}, domain.ErrInvalidID
	}
	return r.repo.GetEvent(ctx, address)
}

// ListEvents returns every event in creation order.
func (r *EventRegistry) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return r.repo.ListEvents(ctx)
}

// Availability summarises primary-sale capacity for an event.
type Availability struct {
	EventAddress string
	Total        uint64
	Sold         uint64
	Remaining    uint64
	IsActive     bool
}

// Availability reports total, sold and remaining tickets for an event.
func (r *EventRegistry) Availability(ctx context.Context, address string) (Availability, error) {
	event, err := r.GetEvent(ctx, address)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		EventAddress: event.Address,
		Total:        event.TotalTickets,
		Sold:         event.TicketsSold,
		Remaining:    event.Remaining(),
		IsActive:     event.IsActive,
	}, nil
}
