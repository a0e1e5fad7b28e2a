package workflow

import "context"

// Notifiers fans a review decision out to every non-nil notifier in order.
type Notifiers []Notifier

// ReviewDecided implements Notifier.
func (n Notifiers) ReviewDecided(ctx context.Context, module string, doc Document, step Step) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.ReviewDecided(ctx, module, doc, step)
		}
	}
}
