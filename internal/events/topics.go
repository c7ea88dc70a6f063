package events

// Topic constants for domain events emitted by the checkout flow.
const (
	TopicCheckoutCompleted = "checkout.completed"
	TopicPixCreated        = "payment.pix.created"
	TopicPixExpired        = "payment.pix.expired"
	TopicCardApproved      = "payment.card.approved"
	TopicCardRejected      = "payment.card.rejected"
	TopicPreferenceCreated = "payment.preference.created"
)
