package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	// EventResultSubmitted fans out the approval request to the squad
	// after a result submission.
	EventResultSubmitted EventType = "result-submitted"
	// EventResultFinalized triggers folding the finalized stats into the
	// player totals and announcing the result.
	EventResultFinalized EventType = "result-finalized"
)
