package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCancelled = "order.cancelled"
	TopicOrderStatus    = "order.status"
)

// Partition key = order id so all events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
