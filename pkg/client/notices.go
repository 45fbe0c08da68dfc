package client

import "sync"

// NoticeLevel separates confirmations from failures.
type NoticeLevel int

const (
	NoticeSuccess NoticeLevel = iota
	NoticeError
)

// Notice is a transient message for the user.
type Notice struct {
	Level   NoticeLevel
	Message string
	// Kind is set for error notices.
	Kind Kind
}

// Notices is the message channel shared by the moderation flows.
type Notices struct {
	mu          sync.Mutex
	items       []Notice
	subscribers []func(Notice)
}

// NewNotices returns an empty notice board.
func NewNotices() *Notices {
	return &Notices{}
}

// Subscribe registers fn for every notice posted afterwards.
func (n *Notices) Subscribe(fn func(Notice)) {
	n.mu.Lock()
	n.subscribers = append(n.subscribers, fn)
	n.mu.Unlock()
}

// Post records a notice and forwards it to subscribers.
func (n *Notices) Post(notice Notice) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.items = append(n.items, notice)
	subs := append([]func(Notice){}, n.subscribers...)
	n.mu.Unlock()
	for _, fn := range subs {
		fn(notice)
	}
}

// Success posts a confirmation.
func (n *Notices) Success(message string) {
	n.Post(Notice{Level: NoticeSuccess, Message: message})
}

// Failure posts err, using fallback when it carries no detail.
func (n *Notices) Failure(err error, fallback string) {
	notice := Notice{Level: NoticeError, Message: DetailOr(err, fallback), Kind: KindRequestFailed}
	if e, ok := AsError(err); ok {
		notice.Kind = e.Kind
	}
	n.Post(notice)
}

// Last returns the most recent notice.
func (n *Notices) Last() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return Notice{}, false
	}
	return n.items[len(n.items)-1], true
}

// Drain returns and forgets every recorded notice.
func (n *Notices) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}
