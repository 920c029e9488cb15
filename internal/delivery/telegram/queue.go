package telegram

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tira-ua/realtor-bot/internal/domain/constants"
	"github.com/tira-ua/realtor-bot/internal/usecase"
)

// turnRequest navbatdagi bitta hodisa: kimdan kelgani va engine hodisasi.
type turnRequest struct {
	chatID    int64
	userID    int64
	username  string
	firstName string
	lastName  string
	event     usecase.Event
}

const (
	defaultWorkerCount = 16
	readyQueueSize     = 256
	maxPendingPerChat  = 32
)

// turnQueue turlarni worker poolga tarqatadi, lekin bitta chat uchun qat'iy
// FIFO saqlaydi: chatning navbatdagi turi oldingisi tugagandan keyingina
// boshlanadi. Shu kafolat tufayli sessiya ustida lock kerak emas.
type turnQueue struct {
	process     func(ctx context.Context, req *turnRequest)
	workerCount int
	ready       chan *turnRequest
	wg          sync.WaitGroup
	log         *zap.Logger

	mu      sync.Mutex
	pending map[int64][]*turnRequest
	running map[int64]bool
	closed  bool
}

func newTurnQueue(h *Handler, workerCount int) *turnQueue {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &turnQueue{
		process:     h.processTurn,
		workerCount: workerCount,
		ready:       make(chan *turnRequest, readyQueueSize),
		log:         h.log,
		pending:     make(map[int64][]*turnRequest),
		running:     make(map[int64]bool),
	}
}

// start workerlarni ishga tushiradi.
func (q *turnQueue) start(ctx context.Context) {
	q.log.Info("turn workerlari ishga tushdi", zap.Int("count", q.workerCount))
	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

func (q *turnQueue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-q.ready:
			if !ok {
				return
			}
			q.run(ctx, req)
			q.finish(req.chatID)
		}
	}
}

// run bitta turni timeout va panic himoyasi bilan bajaradi.
func (q *turnQueue) run(ctx context.Context, req *turnRequest) {
	turnCtx, cancel := context.WithTimeout(ctx, constants.TurnTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			q.log.Error("turn ichida panic",
				zap.Int64("chat_id", req.chatID), zap.Any("panic", r))
		}
	}()
	q.process(turnCtx, req)
}

// submit turni navbatga qo'yadi. Chatda tur ketayotgan bo'lsa pendingga
// yoziladi, aks holda darhol workerga uzatiladi. false - tur qabul
// qilinmadi (navbat to'la yoki pool yopilgan).
func (q *turnQueue) submit(req *turnRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.running[req.chatID] {
		if len(q.pending[req.chatID]) >= maxPendingPerChat {
			q.log.Warn("chat navbati to'ldi, tur tashlab yuborildi",
				zap.Int64("chat_id", req.chatID))
			return false
		}
		q.pending[req.chatID] = append(q.pending[req.chatID], req)
		return true
	}
	return q.dispatch(req)
}

// dispatch q.mu ushlab turilgan holda chaqiriladi.
func (q *turnQueue) dispatch(req *turnRequest) bool {
	if q.closed {
		return false
	}
	select {
	case q.ready <- req:
		q.running[req.chatID] = true
		return true
	default:
		q.log.Warn("umumiy navbat to'ldi, tur tashlab yuborildi",
			zap.Int64("chat_id", req.chatID), zap.Int("queue_len", len(q.ready)))
		return false
	}
}

// finish tugagan chat bo'yicha navbatdagi pending turni ishga tushiradi.
func (q *turnQueue) finish(chatID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.pending[chatID]
	if len(queue) == 0 {
		delete(q.running, chatID)
		delete(q.pending, chatID)
		return
	}
	next := queue[0]
	if len(queue) == 1 {
		delete(q.pending, chatID)
	} else {
		q.pending[chatID] = queue[1:]
	}
	if !q.dispatch(next) {
		delete(q.pending, chatID)
		delete(q.running, chatID)
	}
}

// shutdown yangi turlarni to'xtatib, ishdagilarning tugashini kutadi.
func (q *turnQueue) shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	close(q.ready)
	q.wg.Wait()
	q.log.Info("turn navbati to'xtadi")
}
