package node

// Status is the believed reachability of a node.
type Status int

const (
	// StatusUnknown means the node has not been probed yet.
	StatusUnknown Status = iota
	// StatusUp means the last probe succeeded.
	StatusUp
	// StatusPending means the last probe failed while the node was not already down.
	StatusPending
	// StatusDown means at least two consecutive probes failed.
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "Up"
	case StatusPending:
		return "Pending"
	case StatusDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// Outcome is the result of a probe that reached the network.
// Transport errors are reported separately and are not outcomes.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNoResponse
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "no_response"
}

// Transition computes the next status from the current one and a probe outcome.
// A single failure never moves a node straight from Up to Down.
func Transition(current Status, o Outcome) Status {
	if o == OutcomeSuccess {
		return StatusUp
	}
	switch current {
	case StatusPending, StatusDown:
		return StatusDown
	default:
		return StatusPending
	}
}

// Node is a monitored endpoint. Name and address are fixed at construction,
// status is mutated only by its owner through Apply.
type Node struct {
	name   string
	addr   string
	status Status
}

func New(name, addr string) *Node {
	return &Node{name: name, addr: addr, status: StatusUnknown}
}

func (n *Node) Name() string   { return n.name }
func (n *Node) Addr() string   { return n.addr }
func (n *Node) Status() Status { return n.status }

// Apply feeds one probe outcome into the node and returns the status before and after.
func (n *Node) Apply(o Outcome) (prev, next Status) {
	prev = n.status
	n.status = Transition(prev, o)
	return prev, n.status
}

// Snapshot is an immutable copy of a node at one point in time.
type Snapshot struct {
	Name   string
	Addr   string
	Status Status
}

func (n *Node) Snapshot() Snapshot {
	return Snapshot{Name: n.name, Addr: n.addr, Status: n.status}
}
