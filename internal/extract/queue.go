package extract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkform/docpress/internal/document"
)

// Status is the lifecycle state of a queued document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Item is one document moving through the queue.
type Item struct {
	ID       string                `json:"id"`
	FileName string                `json:"file_name"`
	Kind     document.DocumentKind `json:"kind"`
	Status   Status                `json:"status"`
	Error    string                `json:"error,omitempty"`
	Added    time.Time             `json:"added"`

	// Result is the raw extraction; Record is the extraction merged with
	// the queue's template, ready for correction and rendering.
	Result *Result          `json:"result,omitempty"`
	Record *document.Record `json:"record,omitempty"`
}

// Suggester proposes billing rates for a freshly merged record. The queue
// calls it for timesheets only, where rate lookup is part of the workflow.
type Suggester func(rec *document.Record)

// Queue runs extractions concurrently, one goroutine per item, and tracks
// their lifecycle. Extractions run under the queue's own context, not the
// caller's: the request that enqueued a document may return long before
// the extraction finishes. All methods are safe for concurrent use.
type Queue struct {
	extractor Extractor
	template  func() *document.Template
	suggest   Suggester
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	items map[string]*Item
	order []string

	wg sync.WaitGroup
}

// NewQueue creates a queue. template provides the merge target for each
// finished extraction; nil falls back to the built-in default template.
func NewQueue(extractor Extractor, template func() *document.Template, log *zap.Logger) *Queue {
	if template == nil {
		template = document.DefaultTemplate
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		extractor: extractor,
		template:  template,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		items:     make(map[string]*Item),
	}
}

// SetSuggester installs the rate-suggestion hook.
func (q *Queue) SetSuggester(s Suggester) {
	q.mu.Lock()
	q.suggest = s
	q.mu.Unlock()
}

// Enqueue adds a document and starts extracting it immediately. The
// returned item is a snapshot; poll Get for progress. The extraction
// outlives the enqueueing request; Discard is the only way to abandon a
// single item once queued.
func (q *Queue) Enqueue(req Request) Item {
	item := &Item{
		ID:       uuid.NewString(),
		FileName: req.FileName,
		Kind:     req.Kind,
		Status:   StatusPending,
		Added:    time.Now(),
	}

	q.mu.Lock()
	q.items[item.ID] = item
	q.order = append(q.order, item.ID)
	q.mu.Unlock()

	q.wg.Add(1)
	go q.process(item.ID, req)

	q.log.Info("queued document",
		zap.String("id", item.ID),
		zap.String("file", req.FileName),
		zap.String("kind", string(req.Kind)))
	return *item
}

func (q *Queue) process(id string, req Request) {
	defer q.wg.Done()

	if !q.setStatus(id, StatusProcessing) {
		return // discarded before we started
	}

	res, err := q.extractor.Extract(q.ctx, req)

	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		// Discarded mid-flight. The result belongs to nobody; dropping
		// it here is what keeps a discarded item from resurrecting.
		q.log.Debug("dropping result for discarded item", zap.String("id", id))
		return
	}

	if err != nil {
		item.Status = StatusError
		item.Error = err.Error()
		q.log.Warn("extraction failed", zap.String("id", id), zap.Error(err))
		return
	}

	merged := document.Merge(q.template(), &res.Data, req.Kind, req.FileName)
	if req.Kind == document.KindTimesheet && q.suggest != nil {
		q.suggest(merged)
	}

	item.Result = res
	item.Record = merged
	item.Status = StatusSuccess
	q.log.Info("extraction finished",
		zap.String("id", id),
		zap.Float64("confidence", res.AverageConfidence))
}

// setStatus flips an item's status, reporting false if the item is gone.
func (q *Queue) setStatus(id string, s Status) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	if !ok {
		return false
	}
	item.Status = s
	return true
}

// Get returns a snapshot of one item.
func (q *Queue) Get(id string) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Items returns snapshots of all items in insertion order.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, 0, len(q.items))
	for _, id := range q.order {
		if item, ok := q.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out
}

// Discard removes an item. An extraction already running for it will
// complete and be thrown away; the item never reappears.
func (q *Queue) Discard(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.items[id]; !ok {
		return false
	}
	delete(q.items, id)
	for i, oid := range q.order {
		if oid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// UpdateRecord replaces the merged record of a finished item, used when
// the user corrects extracted fields.
func (q *Queue) UpdateRecord(id string, rec *document.Record) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	item, ok := q.items[id]
	if !ok || item.Status != StatusSuccess {
		return false
	}
	rec.Recalc()
	item.Record = rec
	return true
}

// Counts tallies items per status for queue displays.
func (q *Queue) Counts() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	counts := make(map[Status]int, 4)
	for _, item := range q.items {
		counts[item.Status]++
	}
	return counts
}

// Wait blocks until every in-flight extraction has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Close cancels in-flight extractions and waits for their goroutines to
// drain. Used on server shutdown; a closed queue accepts no useful work.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}
