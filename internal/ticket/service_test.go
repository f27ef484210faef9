package ticket

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/errs"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/weight"
)

// stubStore is an in-memory ticket store.
type stubStore struct {
	tickets map[uint]*model.Ticket
	nextID  uint
}

func newStubStore() *stubStore {
	return &stubStore{tickets: make(map[uint]*model.Ticket)}
}

func (s *stubStore) CreateTicket(_ context.Context, t *model.Ticket) error {
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = time.Now().UTC()
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *stubStore) SaveTicket(_ context.Context, t *model.Ticket) error {
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *stubStore) TicketByID(_ context.Context, id uint) (*model.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *stubStore) ListTickets(_ context.Context, limit int) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	return out, nil
}

// NextTicketSeq mirrors the production lookup: highest existing suffix for
// the prefix, plus one.
func (s *stubStore) NextTicketSeq(_ context.Context, prefix string) (int, error) {
	best := 0
	for _, t := range s.tickets {
		if t.TicketNo == nil || !strings.HasPrefix(*t.TicketNo, prefix) {
			continue
		}
		parts := strings.Split(*t.TicketNo, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil && n > best {
			best = n
		}
	}
	return best + 1, nil
}

type stubLive struct {
	reading weight.Reading
}

func (s *stubLive) Reading() weight.Reading { return s.reading }

type stubQueue struct {
	enqueued []uint
}

func (s *stubQueue) Enqueue(_ context.Context, t *model.Ticket) (*model.SyncQueue, error) {
	s.enqueued = append(s.enqueued, t.ID)
	return &model.SyncQueue{TicketID: t.ID, Status: model.SyncStatusPending}, nil
}

func newTestService() (*Service, *stubStore, *stubLive, *stubQueue) {
	store := newStubStore()
	live := &stubLive{}
	queue := &stubQueue{}
	return NewService(store, live, queue), store, live, queue
}

func weighInReq(gross *float64) WeighInRequest {
	return WeighInRequest{
		Direction:    "inbound",
		VehiclePlate: "KA-01-1234",
		PartnerName:  "Acme Aggregates",
		ProductName:  "Gravel",
		OperatorName: "asha",
		GrossKg:      gross,
	}
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestWeighInExplicitGross(t *testing.T) {
	svc, _, _, _ := newTestService()

	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusWeighIn, ticket.Status)
	assert.Equal(t, 12500.0, ticket.GrossKg)
	assert.NotNil(t, ticket.WeightInTime)
	assert.Nil(t, ticket.TicketNo)
}

func TestWeighInFromIndicator(t *testing.T) {
	svc, _, live, _ := newTestService()
	live.reading = weight.Reading{WeightKg: f64(9800.5), Source: weight.SourceSerial, Connected: true}

	ticket, err := svc.WeighIn(context.Background(), weighInReq(nil))
	require.NoError(t, err)
	assert.Equal(t, 9800.5, ticket.GrossKg)
}

func TestWeighInNoLiveWeight(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.WeighIn(context.Background(), weighInReq(nil))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestWeighInNonPositiveGross(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.WeighIn(context.Background(), weighInReq(f64(0)))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestWeighOutZeroTareKeepsStatus(t *testing.T) {
	svc, store, _, _ := newTestService()
	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)

	_, err = svc.WeighOut(context.Background(), ticket.ID, WeighOutRequest{TareKg: f64(0)})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))

	stored, _ := store.TicketByID(context.Background(), ticket.ID)
	assert.Equal(t, model.TicketStatusWeighIn, stored.Status)
}

func TestWeighOutRecordsTare(t *testing.T) {
	svc, _, _, _ := newTestService()
	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)

	out, err := svc.WeighOut(context.Background(), ticket.ID, WeighOutRequest{TareKg: f64(4300)})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusWeighOut, out.Status)
	assert.Equal(t, 4300.0, out.TareKg)
	assert.NotNil(t, out.WeightOutTime)
}

func TestWeighOutUnknownTicket(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.WeighOut(context.Background(), 404, WeighOutRequest{TareKg: f64(100)})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestFinalizeComputesNetAndEnqueuesOnce(t *testing.T) {
	svc, store, _, queue := newTestService()
	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)
	_, err = svc.WeighOut(context.Background(), ticket.ID, WeighOutRequest{TareKg: f64(4300)})
	require.NoError(t, err)

	final, err := svc.Finalize(context.Background(), ticket.ID, FinalizeRequest{QCStatus: str("passed")})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusFinalized, final.Status)
	assert.Equal(t, 8200.0, final.NetKg)
	assert.Equal(t, "passed", final.QCStatus)
	require.NotNil(t, final.TicketNo)

	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("WB%s-0001", today), *final.TicketNo)
	assert.Len(t, queue.enqueued, 1)

	// Re-finalizing is a no-op returning the same ticket unchanged.
	again, err := svc.Finalize(context.Background(), ticket.ID, FinalizeRequest{})
	require.NoError(t, err)
	assert.Equal(t, *final.TicketNo, *again.TicketNo)
	assert.Equal(t, final.NetKg, again.NetKg)
	assert.Len(t, queue.enqueued, 1, "exactly one queue entry per finalize transition")

	stored, _ := store.TicketByID(context.Background(), ticket.ID)
	assert.Equal(t, model.TicketStatusFinalized, stored.Status)
}

func TestFinalizeNegativeNetFails(t *testing.T) {
	svc, store, _, queue := newTestService()
	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(100)))
	require.NoError(t, err)
	_, err = svc.WeighOut(context.Background(), ticket.ID, WeighOutRequest{TareKg: f64(150)})
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), ticket.ID, FinalizeRequest{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))

	stored, _ := store.TicketByID(context.Background(), ticket.ID)
	assert.Equal(t, model.TicketStatusWeighOut, stored.Status)
	assert.Empty(t, queue.enqueued)
}

func TestFinalizeWithoutTareFails(t *testing.T) {
	svc, _, _, _ := newTestService()
	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), ticket.ID, FinalizeRequest{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindValidation))
}

func TestTicketNumberSequencePerDay(t *testing.T) {
	svc, store, _, _ := newTestService()
	today := time.Now().UTC().Format("20060102")

	for _, existing := range []string{
		fmt.Sprintf("WB%s-0001", today),
		fmt.Sprintf("WB%s-0002", today),
	} {
		no := existing
		store.nextID++
		store.tickets[store.nextID] = &model.Ticket{ID: store.nextID, TicketNo: &no, Status: model.TicketStatusFinalized}
	}

	ticket, err := svc.WeighIn(context.Background(), weighInReq(f64(12500)))
	require.NoError(t, err)
	_, err = svc.WeighOut(context.Background(), ticket.ID, WeighOutRequest{TareKg: f64(4300)})
	require.NoError(t, err)

	final, err := svc.Finalize(context.Background(), ticket.ID, FinalizeRequest{})
	require.NoError(t, err)
	require.NotNil(t, final.TicketNo)
	assert.Equal(t, fmt.Sprintf("WB%s-0003", today), *final.TicketNo)
}
