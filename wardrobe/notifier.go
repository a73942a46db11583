package wardrobe

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is the user visible outcome of an action.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(n Notification)
}

type LogNotifier struct {
	Log *logrus.Entry
}

func (l LogNotifier) Notify(n Notification) {
	entry := l.Log.WithField("level", n.Level)
	if n.Level == LevelError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// Inbox keeps the latest notifications until a client drains them.
type Inbox struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewInbox(max int) *Inbox {
	return &Inbox{max: max}
}

func (i *Inbox) Notify(n Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items = append(i.items, n)
	if len(i.items) > i.max {
		i.items = i.items[len(i.items)-i.max:]
	}
}

// Drain returns the pending notifications oldest first and empties the inbox.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

type notifiers []Notifier

func (ns notifiers) Notify(n Notification) {
	for _, notifier := range ns {
		notifier.Notify(n)
	}
}

// Notifiers fans a notification out to every given notifier.
func Notifiers(ns ...Notifier) Notifier {
	return notifiers(ns)
}
