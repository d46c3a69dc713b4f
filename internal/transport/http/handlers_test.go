package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cimillas/ticket-ledger/internal/app"
	"github.com/cimillas/ticket-ledger/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "3f1a9d52-5a8e-5b0c-9d1e-2b7c4e6f8a10"

type fakeEvents struct {
	err       error
	gotCreate app.CreateEventInput
	gotCaller string
}

func (f *fakeEvents) CreateEvent(_ context.Context, in app.CreateEventInput) (domain.Event, error) {
	f.gotCreate = in
	if f.err != nil {
		return domain.Event{}, f.err
	}
	return domain.Event{Address: testAddress, Creator: in.Creator, Name: in.Name, Date: in.Date, IsActive: true}, nil
}

func (f *fakeEvents) DeactivateEvent(_ context.Context, in app.DeactivateEventInput) (domain.Event, error) {
	f.gotCaller = in.Caller
	if f.err != nil {
		return domain.Event{}, f.err
	}
	return domain.Event{Address: in.EventAddress}, nil
}

func (f *fakeEvents) GetEvent(_ context.Context, address string) (domain.Event, error) {
	return domain.Event{Address: address}, f.err
}

func (f *fakeEvents) ListEvents(context.Context) ([]domain.Event, error) {
	return nil, f.err
}

func (f *fakeEvents) Availability(_ context.Context, address string) (app.Availability, error) {
	return app.Availability{EventAddress: address, Total: 10, Sold: 4, Remaining: 6, IsActive: true}, f.err
}

type fakeTickets struct {
	err error
	got app.PurchaseTicketInput
}

func (f *fakeTickets) PurchaseTicket(_ context.Context, in app.PurchaseTicketInput) (domain.Ticket, error) {
	f.got = in
	return domain.Ticket{Address: testAddress, EventAddress: in.EventAddress, Owner: in.Owner, Price: 500}, f.err
}

func (f *fakeTickets) GetTicket(_ context.Context, address string) (domain.Ticket, error) {
	return domain.Ticket{Address: address}, f.err
}

func (f *fakeTickets) ListTicketsByOwner(_ context.Context, owner string) ([]domain.Ticket, error) {
	return []domain.Ticket{{Address: testAddress, Owner: owner}}, f.err
}

func (f *fakeTickets) ListTicketsByEvent(_ context.Context, eventAddress string) ([]domain.Ticket, error) {
	return []domain.Ticket{{Address: testAddress, EventAddress: eventAddress}}, f.err
}

func newTestRouter(t *testing.T, svc Services) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRouter(NewHandler(svc, logger))
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestCreateEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "success",
			body:           `{"creator":"alice","business_id":"show-1","name":"Concert","royalty_spec":"10,5,5","date":"2026-06-01T20:00:00Z","total_tickets":100,"base_price":500}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{"creator":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "unknown field",
			body:           `{"creator":"alice","business_id":"show-1","name":"Concert","date":"2026-06-01T20:00:00Z","zone":"A"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "missing creator",
			body:           `{"business_id":"show-1","name":"Concert","date":"2026-06-01T20:00:00Z"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeValidationFailed,
		},
		{
			name:           "missing date",
			body:           `{"creator":"alice","business_id":"show-1","name":"Concert"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeValidationFailed,
		},
		{
			name:           "strict royalty spec rejected",
			body:           `{"creator":"alice","business_id":"show-1","name":"Concert","royalty_spec":"abc","date":"2026-06-01T20:00:00Z"}`,
			serviceErr:     domain.ErrInvalidRoyaltySpec,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRoyaltySpec,
		},
		{
			name:           "duplicate",
			body:           `{"creator":"alice","business_id":"show-1","name":"Concert","date":"2026-06-01T20:00:00Z"}`,
			serviceErr:     domain.ErrDuplicateRecord,
			expectedStatus: http.StatusConflict,
			expectedCode:   codeDuplicateRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			events := &fakeEvents{err: tt.serviceErr}
			rec := serve(newTestRouter(t, Services{Events: events}), http.MethodPost, "/events", tt.body)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedCode != "" {
				var resp errorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedCode, resp.Code)
				return
			}

			var resp eventResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, testAddress, resp.Address)
			assert.Equal(t, uint64(100), events.gotCreate.TotalTickets)
			assert.Equal(t, "10,5,5", events.gotCreate.RoyaltySpec)
			assert.Equal(t, time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC), events.gotCreate.Date.UTC())
		})
	}
}

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
		{domain.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
		{domain.ErrUnauthorized, http.StatusForbidden, codeUnauthorized},
		{domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
		{domain.ErrTicketNotFound, http.StatusNotFound, codeTicketNotFound},
		{domain.ErrEventNotActive, http.StatusConflict, codeEventNotActive},
		{domain.ErrEventExpired, http.StatusConflict, codeEventExpired},
		{domain.ErrTicketNotAvailable, http.StatusConflict, codeTicketNotAvailable},
		{domain.ErrRoyaltyAlreadyDistributed, http.StatusConflict, codeRoyaltyAlreadyDistributed},
		{domain.ErrInsufficientFunds, http.StatusConflict, codeInsufficientFunds},
		{domain.ErrMathOverflow, http.StatusUnprocessableEntity, codeMathOverflow},
		{domain.ErrInvalidRoyaltySplit, http.StatusUnprocessableEntity, codeInvalidRoyaltySplit},
		{fmt.Errorf("update ticket: %w", domain.ErrMathOverflow), http.StatusUnprocessableEntity, codeMathOverflow},
		{errors.New("connection reset"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, Services{Tickets: &fakeTickets{err: tt.err}})
			rec := serve(router, http.MethodGet, "/tickets/"+testAddress, "")

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", resp.Error)
			}
		})
	}
}

func TestPurchaseTicket_PassesPathAndBody(t *testing.T) {
	t.Parallel()

	tickets := &fakeTickets{}
	router := newTestRouter(t, Services{Tickets: tickets})

	rec := serve(router, http.MethodPost, "/events/"+testAddress+"/tickets", `{"business_id":"seat-1","owner":"bob"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testAddress, tickets.got.EventAddress)
	assert.Equal(t, "seat-1", tickets.got.BusinessID)
	assert.Equal(t, uint64(0), tickets.got.Price)

	rec = serve(router, http.MethodPost, "/events/"+testAddress+"/tickets", `{"business_id":"seat-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivateEvent_RequiresCaller(t *testing.T) {
	t.Parallel()

	events := &fakeEvents{}
	router := newTestRouter(t, Services{Events: events})

	rec := serve(router, http.MethodPost, "/events/"+testAddress+"/deactivate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPost, "/events/"+testAddress+"/deactivate", `{"caller":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", events.gotCaller)
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Events: &fakeEvents{}})
	rec := serve(router, http.MethodGet, "/events/"+testAddress+"/availability", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"event_address":"`+testAddress+`","total":10,"sold":4,"remaining":6,"is_active":true}`,
		rec.Body.String())
}

func TestListTicketsByOwner(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Tickets: &fakeTickets{}})
	rec := serve(router, http.MethodGet, "/owners/bob/tickets", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []ticketResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "bob", resp[0].Owner)
}

func TestListEvents_EmptyIsArray(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Events: &fakeEvents{}})
	rec := serve(router, http.MethodGet, "/events", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
