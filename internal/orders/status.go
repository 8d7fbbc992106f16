package orders

import "github.com/trackable-ai/trackable/internal/entity"

// statusProgression fixes the total order over statuses. A higher index is
// later in the lifecycle; the direct status-update path never moves an order
// to a lower-ranked status.
var statusProgression = []entity.OrderStatus{
	entity.StatusUnknown,
	entity.StatusDetected,
	entity.StatusConfirmed,
	entity.StatusShipped,
	entity.StatusInTransit,
	entity.StatusDelivered,
	entity.StatusReturned,
	entity.StatusRefunded,
	entity.StatusCancelled,
}

// StatusProgression returns the fixed lifecycle ordering of statuses.
func StatusProgression() []entity.OrderStatus {
	out := make([]entity.OrderStatus, len(statusProgression))
	copy(out, statusProgression)
	return out
}

// StatusRank returns the position of a status in the lifecycle. Statuses
// outside the known set rank after every known one.
func StatusRank(s entity.OrderStatus) int {
	for i, st := range statusProgression {
		if st == s {
			return i
		}
	}
	return len(statusProgression)
}

// StatusAdvances reports whether moving from one status to another is a
// forward transition.
func StatusAdvances(from, to entity.OrderStatus) bool {
	return StatusRank(to) > StatusRank(from)
}
