package twin

import (
	"container/heap"
	"context"
	"time"
)

// Task is a handle to a job scheduled on a Loop. Stop must be called on the
// loop goroutine (from inside a posted function or another task); stopping
// is idempotent.
type Task struct {
	due      time.Time
	seq      int64
	interval time.Duration // 0 = one-shot
	fn       func()
	stopped  bool
}

// Stop cancels the task. A periodic task stops rescheduling; a pending
// one-shot never fires.
func (t *Task) Stop() {
	t.stopped = true
}

// Stopped reports whether Stop has been called.
func (t *Task) Stopped() bool {
	return t.stopped
}

// taskHeap implements heap.Interface and orders tasks by due time, then by
// scheduling sequence for a stable order among equal deadlines.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*Task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Loop is a single-goroutine cooperative scheduler. All pipeline state is
// owned by the loop goroutine: external callbacks enter through Post, and
// periodic work runs as tasks on the same goroutine, so the core needs no
// locks and callback interleaving is fully determined by task deadlines.
type Loop struct {
	posted chan func()
	tasks  taskHeap
	seq    int64
}

// NewLoop creates a loop. Run must be called before posted work executes.
func NewLoop() *Loop {
	return &Loop{posted: make(chan func(), 64)}
}

// Post schedules fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.posted <- fn
}

// After schedules fn once after d. Loop goroutine only.
func (l *Loop) After(d time.Duration, fn func()) *Task {
	return l.schedule(d, 0, fn)
}

// Every schedules fn every d, first firing after d. Loop goroutine only.
func (l *Loop) Every(d time.Duration, fn func()) *Task {
	return l.schedule(d, d, fn)
}

func (l *Loop) schedule(d, interval time.Duration, fn func()) *Task {
	l.seq++
	t := &Task{due: time.Now().Add(d), seq: l.seq, interval: interval, fn: fn}
	heap.Push(&l.tasks, t)
	return t
}

// Run executes posted functions and due tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for {
		var timer *time.Timer
		var timerC <-chan time.Time
		if len(l.tasks) > 0 {
			timer = time.NewTimer(time.Until(l.tasks[0].due))
			timerC = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case fn := <-l.posted:
			fn()
		case <-timerC:
			l.runDue(time.Now())
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (l *Loop) runDue(now time.Time) {
	for len(l.tasks) > 0 && !l.tasks[0].due.After(now) {
		t := heap.Pop(&l.tasks).(*Task)
		if t.stopped {
			continue
		}
		t.fn()
		if t.interval > 0 && !t.stopped {
			l.seq++
			t.due = now.Add(t.interval)
			t.seq = l.seq
			heap.Push(&l.tasks, t)
		}
	}
}
