package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/model"
)

// SendResult is what the external system answers with on a successful
// delivery. ExternalID is optional.
type SendResult struct {
	ExternalID string
}

// Sender delivers one ticket payload to the external system. It must apply
// its own bounded timeout; any failure (network, auth, remote rejection) is
// returned as an error.
type Sender interface {
	SendTicket(ctx context.Context, payload map[string]any) (*SendResult, error)
}

// Store is the slice of persistence the dispatcher needs.
type Store interface {
	CreateSyncEntry(ctx context.Context, e *model.SyncQueue) error
	SaveSyncEntry(ctx context.Context, e *model.SyncQueue) error
	SyncEntryByID(ctx context.Context, id uint) (*model.SyncQueue, error)
	PendingSyncEntries(ctx context.Context) ([]model.SyncQueue, error)
	TicketByID(ctx context.Context, id uint) (*model.Ticket, error)
	SaveTicket(ctx context.Context, t *model.Ticket) error
}

// Dispatcher owns the outbound sync queue: it enqueues finalized tickets and
// drains pending entries against the external sender on a fixed interval.
// One entry's failure never blocks the others.
type Dispatcher struct {
	store    Store
	sender   Sender
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Dispatcher. The background loop is not started until Start.
func New(store Store, sender Sender, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		store:    store,
		sender:   sender,
		interval: interval,
	}
}

// Enqueue persists a new pending entry holding an immutable snapshot of the
// ticket's deliverable fields. Later ticket edits do not affect the payload.
func (d *Dispatcher) Enqueue(ctx context.Context, t *model.Ticket) (*model.SyncQueue, error) {
	raw, err := json.Marshal(ticketPayload(t))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ticket %d payload: %w", t.ID, err)
	}
	entry := &model.SyncQueue{
		TicketID: t.ID,
		Payload:  string(raw),
		Status:   model.SyncStatusPending,
	}
	if err := d.store.CreateSyncEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DrainPending attempts delivery of every pending entry, oldest first. Each
// entry is tried exactly once per call; failures are recorded on the entry
// and the drain continues.
func (d *Dispatcher) DrainPending(ctx context.Context) error {
	pending, err := d.store.PendingSyncEntries(ctx)
	if err != nil {
		return err
	}

	for i := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d.processEntry(ctx, &pending[i])
	}
	return nil
}

func (d *Dispatcher) processEntry(ctx context.Context, entry *model.SyncQueue) {
	now := time.Now().UTC()
	entry.Attempts++
	entry.LastAttemptAt = &now

	var payload map[string]any
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		d.markFailed(ctx, entry, fmt.Errorf("corrupt payload: %w", err))
		return
	}

	result, err := d.sender.SendTicket(ctx, payload)
	if err != nil {
		d.markFailed(ctx, entry, err)
		return
	}

	entry.Status = model.SyncStatusSent
	entry.LastError = nil
	if err := d.store.SaveSyncEntry(ctx, entry); err != nil {
		log.Printf("Error saving sent sync entry %d: %v", entry.ID, err)
		return
	}

	if result != nil && result.ExternalID != "" {
		d.stampExternalID(ctx, entry.TicketID, result.ExternalID)
	}
}

func (d *Dispatcher) markFailed(ctx context.Context, entry *model.SyncQueue, cause error) {
	msg := cause.Error()
	entry.Status = model.SyncStatusFailed
	entry.LastError = &msg
	if err := d.store.SaveSyncEntry(ctx, entry); err != nil {
		log.Printf("Error saving failed sync entry %d: %v", entry.ID, err)
	}
	log.Printf("Sync failed for ticket %d: %v", entry.TicketID, cause)
}

// stampExternalID records the ERP identifier on the owning ticket for audit.
// Best-effort: a missing ticket is skipped silently.
func (d *Dispatcher) stampExternalID(ctx context.Context, ticketID uint, externalID string) {
	ticket, err := d.store.TicketByID(ctx, ticketID)
	if err != nil {
		log.Printf("Error fetching ticket %d for external id: %v", ticketID, err)
		return
	}
	if ticket == nil {
		return
	}
	ticket.ErpExternalID = externalID
	if err := d.store.SaveTicket(ctx, ticket); err != nil {
		log.Printf("Error stamping external id on ticket %d: %v", ticketID, err)
	}
}

// Requeue resets a failed entry to pending so the next drain picks it up.
// Failed entries are never retried automatically.
func (d *Dispatcher) Requeue(ctx context.Context, id uint) (*model.SyncQueue, error) {
	entry, err := d.store.SyncEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	if entry.Status != model.SyncStatusFailed {
		return entry, nil
	}
	entry.Status = model.SyncStatusPending
	entry.LastError = nil
	if err := d.store.SaveSyncEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Start launches the background drain loop.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go d.run(ctx)
}

// Shutdown cancels the loop and waits for it to observe cancellation. An
// in-flight delivery may still complete, but no new entry processing starts
// after Shutdown returns.
func (d *Dispatcher) Shutdown() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	<-d.done
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	log.Println("Starting sync dispatcher...")

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		d.runCycle(ctx)

		select {
		case <-ctx.Done():
			log.Println("Sync dispatcher shutting down.")
			return
		case <-timer.C:
			timer.Reset(d.interval)
		}
	}
}

// runCycle executes one drain, containing any failure so the loop itself
// never terminates.
func (d *Dispatcher) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Sync cycle panicked: %v", r)
		}
	}()
	if err := d.DrainPending(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Sync cycle encountered an error: %v", err)
	}
}

// ticketPayload is the deliverable field set sent to the ERP.
func ticketPayload(t *model.Ticket) map[string]any {
	return map[string]any{
		"ticket_no":          strOrNil(t.TicketNo),
		"vehicle_plate":      t.VehiclePlate,
		"direction":          t.Direction,
		"partner_name":       t.PartnerName,
		"product_name":       t.ProductName,
		"gross_kg":           t.GrossKg,
		"tare_kg":            t.TareKg,
		"net_kg":             t.NetKg,
		"weight_in_time":     timeOrNil(t.WeightInTime),
		"weight_out_time":    timeOrNil(t.WeightOutTime),
		"operator_name":      t.OperatorName,
		"delivery_reference": t.DeliveryReference,
		"driver_name":        t.DriverName,
		"driver_phone":       t.DriverPhone,
		"remarks":            t.Remarks,
		"qc_status":          t.QCStatus,
		"qc_note":            t.QCNote,
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
