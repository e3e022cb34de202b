package extension

import (
	"github.com/okanmail/okan/pkg/extension/event"
)

// Host defines extension points for okan.
type Host struct {
	Events *Events
}

// Events defines all the event types supported by the extension host.
//
// Before-events let extensions influence the outcome of a check.  They are processed
// synchronously, so expensive listeners slow down every check.  The first listener to respond
// with a non-nil value determines the response, and the remaining listeners are not called.
//
// After-events let extensions act once something has completed.  They are processed
// asynchronously with respect to the check that raised them.
type Events struct {
	AfterCheckListGenerated AsyncEventBroker[event.CheckResult]
	AfterRecordDeleted      AsyncEventBroker[event.RecordMetadata]
	AfterRecordStored       AsyncEventBroker[event.RecordMetadata]
	BeforeSendVerdict       EventBroker[event.OutgoingMessage, event.Verdict]
}

// NewHost creates a new extension host.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}
