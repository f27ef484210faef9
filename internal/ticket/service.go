package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/errs"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/weight"
)

// ticketNoPrefix is the fixed day-prefix of generated ticket numbers,
// e.g. WB20240101-0001.
const ticketNoPrefix = "WB"

// Store is the slice of persistence the workflow needs.
type Store interface {
	CreateTicket(ctx context.Context, t *model.Ticket) error
	SaveTicket(ctx context.Context, t *model.Ticket) error
	TicketByID(ctx context.Context, id uint) (*model.Ticket, error)
	ListTickets(ctx context.Context, limit int) ([]model.Ticket, error)
	NextTicketSeq(ctx context.Context, prefix string) (int, error)
}

// LiveWeight supplies the indicator reading used when a request omits an
// explicit weight.
type LiveWeight interface {
	Reading() weight.Reading
}

// Enqueuer hands a finalized ticket to the outbound sync queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, t *model.Ticket) (*model.SyncQueue, error)
}

// WeighInRequest opens a ticket. GrossKg nil means "take from indicator".
type WeighInRequest struct {
	Direction         string     `json:"direction"`
	VehiclePlate      string     `json:"vehicle_plate"`
	PartnerName       string     `json:"partner_name"`
	ProductName       string     `json:"product_name"`
	OperatorName      string     `json:"operator_name"`
	DeliveryReference string     `json:"delivery_reference"`
	DriverName        string     `json:"driver_name"`
	DriverPhone       string     `json:"driver_phone"`
	Remarks           string     `json:"remarks"`
	GrossKg           *float64   `json:"gross_kg"`
	WeightInTime      *time.Time `json:"weight_in_time"`
}

// WeighOutRequest records the tare. TareKg nil means "take from indicator".
type WeighOutRequest struct {
	TareKg        *float64   `json:"tare_kg"`
	WeightOutTime *time.Time `json:"weight_out_time"`
}

// FinalizeRequest closes a ticket. Nil fields keep the stored values.
type FinalizeRequest struct {
	QCStatus *string `json:"qc_status"`
	QCNote   *string `json:"qc_note"`
	Remarks  *string `json:"remarks"`
}

// Service coordinates the weigh_in -> weigh_out -> finalized lifecycle around
// the live weight source and the sync queue.
type Service struct {
	store Store
	live  LiveWeight
	queue Enqueuer
}

// NewService creates the ticket workflow service.
func NewService(store Store, live LiveWeight, queue Enqueuer) *Service {
	return &Service{store: store, live: live, queue: queue}
}

// WeighIn opens a new ticket with a positive gross weight.
func (s *Service) WeighIn(ctx context.Context, req WeighInRequest) (*model.Ticket, error) {
	if req.VehiclePlate == "" {
		return nil, errs.Validation("vehicle plate is required")
	}
	if req.OperatorName == "" {
		return nil, errs.Validation("operator name is required")
	}

	gross, err := s.resolveWeight(req.GrossKg)
	if err != nil {
		return nil, err
	}
	if gross <= 0 {
		return nil, errs.Validation("gross weight must be greater than zero")
	}

	now := time.Now().UTC()
	inTime := now
	if req.WeightInTime != nil {
		inTime = *req.WeightInTime
	}

	t := &model.Ticket{
		Status:            model.TicketStatusWeighIn,
		Direction:         req.Direction,
		VehiclePlate:      req.VehiclePlate,
		PartnerName:       req.PartnerName,
		ProductName:       req.ProductName,
		OperatorName:      req.OperatorName,
		DeliveryReference: req.DeliveryReference,
		DriverName:        req.DriverName,
		DriverPhone:       req.DriverPhone,
		Remarks:           req.Remarks,
		GrossKg:           gross,
		WeightInTime:      &inTime,
		QCStatus:          "pending",
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// WeighOut records a positive tare weight on an open ticket.
func (s *Service) WeighOut(ctx context.Context, id uint, req WeighOutRequest) (*model.Ticket, error) {
	t, err := s.store.TicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("ticket not found")
	}
	if t.Status == model.TicketStatusFinalized {
		return nil, errs.Validation("ticket is already finalized")
	}

	tare, err := s.resolveWeight(req.TareKg)
	if err != nil {
		return nil, err
	}
	if tare <= 0 {
		return nil, errs.Validation("tare weight must be greater than zero")
	}

	now := time.Now().UTC()
	outTime := now
	if req.WeightOutTime != nil {
		outTime = *req.WeightOutTime
	}

	t.TareKg = tare
	t.WeightOutTime = &outTime
	t.Status = model.TicketStatusWeighOut
	if err := s.store.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Finalize computes the net weight, assigns a ticket number if absent, marks
// the ticket finalized and enqueues it for ERP delivery. Finalizing an
// already-finalized ticket is a no-op returning the ticket unchanged.
func (s *Service) Finalize(ctx context.Context, id uint, req FinalizeRequest) (*model.Ticket, error) {
	t, err := s.store.TicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("ticket not found")
	}
	if t.Status == model.TicketStatusFinalized {
		return t, nil
	}

	if t.GrossKg <= 0 || t.TareKg <= 0 {
		return nil, errs.Validation("gross and tare weights must be recorded before finalizing")
	}
	net := t.GrossKg - t.TareKg
	if net < 0 {
		return nil, errs.Validation("computed net weight is negative; check captured weights")
	}

	if t.TicketNo == nil {
		no, err := s.nextTicketNumber(ctx)
		if err != nil {
			return nil, err
		}
		t.TicketNo = &no
	}

	t.NetKg = net
	if req.QCStatus != nil && *req.QCStatus != "" {
		t.QCStatus = *req.QCStatus
	}
	if req.QCNote != nil && *req.QCNote != "" {
		t.QCNote = *req.QCNote
	}
	if req.Remarks != nil && *req.Remarks != "" {
		t.Remarks = *req.Remarks
	}
	t.Status = model.TicketStatusFinalized

	if err := s.store.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	if _, err := s.queue.Enqueue(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns one ticket.
func (s *Service) Get(ctx context.Context, id uint) (*model.Ticket, error) {
	t, err := s.store.TicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("ticket not found")
	}
	return t, nil
}

// List returns the most recent tickets.
func (s *Service) List(ctx context.Context, limit int) ([]model.Ticket, error) {
	return s.store.ListTickets(ctx, limit)
}

// resolveWeight returns the explicit weight when given, otherwise the live
// indicator reading.
func (s *Service) resolveWeight(explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	reading := s.live.Reading()
	if reading.WeightKg == nil {
		return 0, errs.Validation("no live weight available from indicator")
	}
	return *reading.WeightKg, nil
}

func (s *Service) nextTicketNumber(ctx context.Context) (string, error) {
	prefix := ticketNoPrefix + time.Now().UTC().Format("20060102")
	seq, err := s.store.NextTicketSeq(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}
