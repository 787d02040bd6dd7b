package opqueue

import (
	"sort"
)

// pathLocked returns the dependency path from -> ... -> to following
// predecessor edges, or nil if to is not reachable from from.
func (q *WorkQueue) pathLocked(from, to string) []string {
	if from == to {
		return []string{from}
	}
	parent := map[string]string{from: ""}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := q.tasks[id]
		if !ok {
			continue
		}
		for _, dep := range t.deps {
			if _, seen := parent[dep]; seen {
				continue
			}
			parent[dep] = id
			if dep == to {
				return unwindPath(parent, from, to)
			}
			stack = append(stack, dep)
		}
	}
	return nil
}

func unwindPath(parent map[string]string, from, to string) []string {
	var rev []string
	for id := to; id != from; id = parent[id] {
		rev = append(rev, id)
	}
	rev = append(rev, from)
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// admitsBefore orders Ready tasks: higher priority first, then submission
// order.
func admitsBefore(a, b *Task) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.seq < b.seq
}

// pushReadyLocked inserts t into the ready list keeping admission order.
func (q *WorkQueue) pushReadyLocked(t *Task) {
	i := sort.Search(len(q.ready), func(i int) bool {
		return admitsBefore(t, q.ready[i])
	})
	q.ready = append(q.ready, nil)
	copy(q.ready[i+1:], q.ready[i:])
	q.ready[i] = t
}

// removeReadyLocked drops t from the ready list if present.
func (q *WorkQueue) removeReadyLocked(t *Task) {
	for i, r := range q.ready {
		if r == t {
			q.ready = append(q.ready[:i], q.ready[i+1:]...)
			return
		}
	}
}
