// Package syncengine bridges a room's in-memory shared document and the
// durable cell store. One engine runs per live room: it hydrates the
// document on the first join, writes mutations through as they arrive,
// flushes the whole document on an interval, and polls the transfer queue
// for rectangles addressed to its room.
package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sheetroom-be/internal/collab"
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/placement"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/internal/repository/specification"
	"sheetroom-be/internal/repository/unitofwork"
	"sheetroom-be/pkg/events"
	"sheetroom-be/pkg/nats"
	"sheetroom-be/pkg/rooms"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Options wires one engine instance. Publisher and ChangeBus may be nil;
// everything else is required.
type Options struct {
	RoomID string
	Doc    *collab.Document
	Emit   func(data []byte)

	UowFactory unitofwork.RepositoryFactory
	Queue      contract.TransferQueue
	Resolver   *placement.Resolver

	FlushInterval    time.Duration
	TransferInterval time.Duration

	Publisher   *nats.Publisher
	ChangeBus   message.Publisher
	ChangeTopic string

	Logger logger.ILogger
}

type Engine struct {
	roomID string
	doc    *collab.Document
	emit   func(data []byte)

	uowFactory unitofwork.RepositoryFactory
	queue      contract.TransferQueue
	resolver   *placement.Resolver

	flushInterval    time.Duration
	transferInterval time.Duration

	publisher   *nats.Publisher
	changeBus   message.Publisher
	changeTopic string

	logger logger.ILogger

	// worksheetId is resolved during Hydrate. A room whose workbook has no
	// worksheet rows yet runs unbound: the document lives in memory only and
	// every persistence step is skipped until the next hydration binds it.
	worksheetId uuid.UUID
	bound       bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(opts Options) *Engine {
	return &Engine{
		roomID:           opts.RoomID,
		doc:              opts.Doc,
		emit:             opts.Emit,
		uowFactory:       opts.UowFactory,
		queue:            opts.Queue,
		resolver:         opts.Resolver,
		flushInterval:    opts.FlushInterval,
		transferInterval: opts.TransferInterval,
		publisher:        opts.Publisher,
		changeBus:        opts.ChangeBus,
		changeTopic:      opts.ChangeTopic,
		logger:           opts.Logger,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
}

// Hydrate resolves the room's worksheet binding and seeds the document from
// the room's cell partition. Hydration only fills an empty document; a
// document that already has state keeps it.
func (e *Engine) Hydrate(ctx context.Context) error {
	if err := e.resolveBinding(ctx); err != nil {
		return err
	}
	if !e.bound {
		e.logger.Warn("SyncEngine", "Room has no worksheet, running memory-only", map[string]interface{}{
			"room_id": e.roomID,
		})
		return nil
	}
	if e.doc.Len() > 0 {
		return nil
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	roomID := e.roomID
	cells, err := uow.CellRepository().GetCells(ctx, e.worksheetId, &roomID)
	if err != nil {
		return fmt.Errorf("hydrate room %s: %w", e.roomID, err)
	}

	for _, cell := range cells {
		e.doc.Set(collab.CellKey(cell.RowIndex, cell.ColIndex), recordFromCell(cell))
	}

	e.logger.Info("SyncEngine", "Room hydrated", map[string]interface{}{
		"room_id": e.roomID,
		"cells":   len(cells),
	})
	return nil
}

// resolveBinding maps the room id to the worksheet its cells persist under.
// Worksheet rooms carry the id in the room string; workbook rooms bind to
// the workbook's first worksheet by sheet order.
func (e *Engine) resolveBinding(ctx context.Context) error {
	parsed, err := rooms.Parse(e.roomID)
	if err != nil {
		return fmt.Errorf("resolve binding: %w", err)
	}

	if parsed.WorksheetID != "" {
		id, err := uuid.Parse(parsed.WorksheetID)
		if err != nil {
			return fmt.Errorf("resolve binding: worksheet id %q: %w", parsed.WorksheetID, err)
		}
		e.worksheetId = id
		e.bound = true
		return nil
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	workbook, err := uow.WorkbookRepository().FindOne(ctx, specification.ByRoomPattern{RoomID: rooms.WorkbookRoomID(parsed.WorkbookID)})
	if err != nil {
		return fmt.Errorf("resolve binding: %w", err)
	}
	if workbook == nil {
		return nil
	}

	worksheet, err := uow.WorksheetRepository().FindOne(ctx,
		specification.ByWorkbookID{WorkbookID: workbook.Id},
		specification.OrderBy{Field: "sheet_index"},
	)
	if err != nil {
		return fmt.Errorf("resolve binding: %w", err)
	}
	if worksheet == nil {
		return nil
	}

	e.worksheetId = worksheet.Id
	e.bound = true
	return nil
}

// Mutate applies one mutation to the document, broadcasts it, and writes it
// through to storage. The document keeps the new value even when the
// write-through fails: the next flush retries the whole state, so one bad
// write never poisons its neighbors.
func (e *Engine) Mutate(ctx context.Context, key string, rec collab.CellRecord) error {
	if !e.doc.Set(key, rec) {
		return nil
	}

	e.broadcast(map[string]collab.CellRecord{key: rec})
	e.recordChange(key, rec)

	if !e.bound {
		return nil
	}
	row, col, err := collab.ParseCellKey(key)
	if err != nil {
		return err
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	cell := e.cellFromRecord(row, col, rec)
	if err := uow.CellRepository().Upsert(ctx, cell); err != nil {
		e.logger.Error("SyncEngine", "Write-through failed", map[string]interface{}{
			"room_id": e.roomID,
			"key":     key,
			"error":   err.Error(),
		})
		return fmt.Errorf("write-through %s: %w", key, err)
	}
	return nil
}

// Run drives the periodic flush and the transfer poll until Close.
func (e *Engine) Run() {
	flushTicker := time.NewTicker(e.flushInterval)
	transferTicker := time.NewTicker(e.transferInterval)
	defer func() {
		flushTicker.Stop()
		transferTicker.Stop()
		close(e.done)
	}()

	for {
		select {
		case <-flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.flushInterval)
			if err := e.Flush(ctx); err != nil {
				e.logger.Error("SyncEngine", "Periodic flush failed", map[string]interface{}{
					"room_id": e.roomID,
					"error":   err.Error(),
				})
			}
			cancel()

		case <-transferTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.transferInterval)
			e.applyPendingTransfers(ctx)
			cancel()

		case <-e.stop:
			return
		}
	}
}

// Flush persists the whole document as one batch upsert. A failed flush
// leaves the document untouched and the next tick tries again.
func (e *Engine) Flush(ctx context.Context) error {
	if !e.bound {
		return nil
	}
	snapshot := e.doc.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	cells := make([]*entity.Cell, 0, len(snapshot))
	for key, rec := range snapshot {
		row, col, err := collab.ParseCellKey(key)
		if err != nil {
			continue
		}
		cells = append(cells, e.cellFromRecord(row, col, rec))
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CellRepository().UpsertBatch(ctx, cells); err != nil {
		return fmt.Errorf("flush room %s: %w", e.roomID, err)
	}
	return nil
}

// applyPendingTransfers drains this room's mailbox and materializes each
// rectangle at a spot the resolver picks from the current occupancy. The
// poll loop is the only writer applying transfers for the room, so two
// rectangles in the same drain cannot race each other for space.
func (e *Engine) applyPendingTransfers(ctx context.Context) {
	payloads := e.queue.Drain(e.roomID)
	if len(payloads) == 0 {
		return
	}

	for _, payload := range payloads {
		e.applyTransfer(ctx, payload)
	}
}

func (e *Engine) applyTransfer(ctx context.Context, payload *entity.TransferPayload) {
	corner := e.resolver.FindSpace(e.doc.Occupied(), payload.RowCount, payload.ColCount)
	now := time.Now().UnixMilli()

	changes := make(map[string]collab.CellRecord, len(payload.Cells))
	for _, cell := range payload.Cells {
		key := collab.CellKey(corner.Row+cell.RelativeRow, corner.Col+cell.RelativeCol)
		rec := collab.CellRecord{
			Value:     cell.Value,
			Formula:   cell.Formula,
			Style:     cell.Style,
			UpdatedBy: payload.UserId,
			UpdatedAt: now,
		}
		if e.doc.Set(key, rec) {
			changes[key] = rec
			e.recordChange(key, rec)
		}
	}
	if len(changes) == 0 {
		return
	}

	e.broadcast(changes)

	if e.bound {
		cells := make([]*entity.Cell, 0, len(changes))
		for key, rec := range changes {
			row, col, err := collab.ParseCellKey(key)
			if err != nil {
				continue
			}
			cells = append(cells, e.cellFromRecord(row, col, rec))
		}
		uow := e.uowFactory.NewUnitOfWork(ctx)
		if err := uow.CellRepository().UpsertBatch(ctx, cells); err != nil {
			e.logger.Error("SyncEngine", "Transfer persistence failed", map[string]interface{}{
				"room_id":     e.roomID,
				"transfer_id": payload.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	if e.publisher != nil {
		event := events.TransferApplied(payload.Id.String(), e.roomID, corner.Row, corner.Col, len(payload.Cells))
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Warn("SyncEngine", "Transfer event publish failed", map[string]interface{}{
				"transfer_id": payload.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	e.logger.Info("SyncEngine", "Transfer applied", map[string]interface{}{
		"room_id":     e.roomID,
		"transfer_id": payload.Id.String(),
		"row":         corner.Row,
		"col":         corner.Col,
		"cells":       len(payload.Cells),
	})
}

// Close stops the tickers and runs one final flush so nothing typed in the
// last seconds of a session is lost. Safe against double invocation; later
// calls return immediately.
func (e *Engine) Close(ctx context.Context) error {
	var flushErr error
	e.closeOnce.Do(func() {
		close(e.stop)
		select {
		case <-e.done:
		case <-ctx.Done():
		}
		flushErr = e.Flush(ctx)
	})
	return flushErr
}

func (e *Engine) broadcast(changes map[string]collab.CellRecord) {
	if e.emit == nil {
		return
	}
	data, _ := json.Marshal(collab.UpdateFrame{
		Type:    collab.MessageTypeUpdate,
		Room:    e.roomID,
		Changes: changes,
	})
	e.emit(data)
}

// recordChange hands the mutation to the change history pipeline. Best
// effort: history must never block or fail a write.
func (e *Engine) recordChange(key string, rec collab.CellRecord) {
	if e.changeBus == nil || !e.bound {
		return
	}
	row, col, err := collab.ParseCellKey(key)
	if err != nil {
		return
	}
	payload, _ := json.Marshal(dto.CellChangeMessage{
		WorksheetId: e.worksheetId,
		RowIndex:    row,
		ColIndex:    col,
		NewValue:    rec.Value,
		UserId:      rec.UpdatedBy,
	})
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := e.changeBus.Publish(e.changeTopic, msg); err != nil {
		e.logger.Warn("SyncEngine", "Change publish failed", map[string]interface{}{
			"room_id": e.roomID,
			"error":   err.Error(),
		})
	}
}

func (e *Engine) cellFromRecord(row, col int, rec collab.CellRecord) *entity.Cell {
	return &entity.Cell{
		WorksheetId: e.worksheetId,
		RoomId:      e.roomID,
		RowIndex:    row,
		ColIndex:    col,
		Value:       rec.Value,
		Formula:     rec.Formula,
		Style:       rec.Style,
		UpdatedBy:   rec.UpdatedBy,
		UpdatedAt:   time.UnixMilli(rec.UpdatedAt),
	}
}

func recordFromCell(cell *entity.Cell) collab.CellRecord {
	return collab.CellRecord{
		Value:     cell.Value,
		Formula:   cell.Formula,
		Style:     cell.Style,
		UpdatedBy: cell.UpdatedBy,
		UpdatedAt: cell.UpdatedAt.UnixMilli(),
	}
}
