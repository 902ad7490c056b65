package service

import (
	"context"
	"time"

	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/entity"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/repository/contract"
	"sheetroom-be/pkg/events"
	"sheetroom-be/pkg/nats"
	"sheetroom-be/pkg/rooms"

	"github.com/google/uuid"
)

type ITransferService interface {
	Send(ctx context.Context, req *dto.TransferRequest) (*dto.TransferResponse, error)
	DrainPending(ctx context.Context, roomId string) (*dto.PendingTransfersResponse, error)
}

type transferService struct {
	queue     contract.TransferQueue
	publisher *nats.Publisher
	logger    logger.ILogger
}

func NewTransferService(
	queue contract.TransferQueue,
	publisher *nats.Publisher,
	log logger.ILogger,
) ITransferService {
	return &transferService{
		queue:     queue,
		publisher: publisher,
		logger:    log,
	}
}

// Send validates the rectangle and enqueues it for the target room. The
// acknowledgment only means "queued": whether the target room ever polls is
// invisible to the sender, and an unpolled payload dies with the process.
func (s *transferService) Send(ctx context.Context, req *dto.TransferRequest) (*dto.TransferResponse, error) {
	if !rooms.IsValid(req.SourceRoom) {
		return nil, serverutils.NewBadRequestError("invalid source room")
	}
	if !rooms.IsValid(req.TargetRoom) {
		return nil, serverutils.NewBadRequestError("invalid target room")
	}
	if req.SourceRoom == req.TargetRoom {
		return nil, serverutils.NewBadRequestError("source and target room are the same")
	}

	rowCount := req.Data.RowCount
	colCount := req.Data.ColCount
	for _, c := range req.Data.Cells {
		if c.RelativeRow < 0 || c.RelativeCol < 0 {
			return nil, serverutils.NewBadRequestError("negative relative coordinate")
		}
		if c.RelativeRow >= rowCount {
			rowCount = c.RelativeRow + 1
		}
		if c.RelativeCol >= colCount {
			colCount = c.RelativeCol + 1
		}
	}
	if len(req.Data.Cells) == 0 || rowCount == 0 || colCount == 0 {
		return nil, serverutils.NewBadRequestError("empty selection")
	}

	// Dense rectangle: every coordinate of the declared shape is carried,
	// empty or not, so the shape survives placement in the target room.
	// Formula and style ride along untouched.
	byPos := make(map[[2]int]dto.TransferCellData, len(req.Data.Cells))
	for _, c := range req.Data.Cells {
		byPos[[2]int{c.RelativeRow, c.RelativeCol}] = c
	}
	cells := make([]entity.TransferCell, 0, rowCount*colCount)
	for r := 0; r < rowCount; r++ {
		for c := 0; c < colCount; c++ {
			cell := entity.TransferCell{RelativeRow: r, RelativeCol: c}
			if in, ok := byPos[[2]int{r, c}]; ok {
				cell.Value = in.Value
				cell.Formula = in.Formula
				cell.Style = in.Style
			}
			cells = append(cells, cell)
		}
	}

	payload := &entity.TransferPayload{
		Id:         uuid.New(),
		SourceRoom: req.SourceRoom,
		TargetRoom: req.TargetRoom,
		Cells:      cells,
		RowCount:   rowCount,
		ColCount:   colCount,
		UserId:     req.UserId,
		EnqueuedAt: time.Now(),
	}
	s.queue.Enqueue(req.TargetRoom, payload)

	if s.publisher != nil {
		event := events.TransferEnqueued(payload.Id.String(), req.SourceRoom, req.TargetRoom, req.UserId, len(cells))
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("TransferService", "Event publish failed", map[string]interface{}{
				"transfer_id": payload.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	s.logger.Info("TransferService", "Transfer enqueued", map[string]interface{}{
		"transfer_id": payload.Id.String(),
		"source_room": req.SourceRoom,
		"target_room": req.TargetRoom,
		"cells":       len(cells),
	})

	return &dto.TransferResponse{
		Success:          true,
		TargetRoom:       req.TargetRoom,
		TransferredCells: len(cells),
		TransferId:       payload.Id,
	}, nil
}

// DrainPending empties the room's mailbox and hands the payloads to the
// caller. Destructive read: a crash after this call loses them.
func (s *transferService) DrainPending(ctx context.Context, roomId string) (*dto.PendingTransfersResponse, error) {
	if !rooms.IsValid(roomId) {
		return nil, serverutils.NewBadRequestError("invalid room id")
	}

	payloads := s.queue.Drain(roomId)
	transfers := make([]dto.PendingTransfer, 0, len(payloads))
	for _, p := range payloads {
		transfers = append(transfers, dto.PendingTransfer{
			Id:         p.Id,
			SourceRoom: p.SourceRoom,
			TargetRoom: p.TargetRoom,
			Cells:      p.Cells,
			RowCount:   p.RowCount,
			ColCount:   p.ColCount,
			UserId:     p.UserId,
			EnqueuedAt: p.EnqueuedAt,
		})
	}
	return &dto.PendingTransfersResponse{Transfers: transfers}, nil
}
