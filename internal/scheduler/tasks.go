package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuotationFollowUp = "orders.quotation.followup"

const TaskNotificationOutboxDue = "notification.outbox.due"

type QuotationFollowUpPayload struct {
	OrderID    string `json:"orderId"`
	TenantID   string `json:"tenantId"`
	CustomerID string `json:"customerId"`
}

type NotificationOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
	TenantID string `json:"tenantId"`
}

func NewQuotationFollowUpTask(payload QuotationFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationFollowUp, data), nil
}

func ParseQuotationFollowUpPayload(task *asynq.Task) (QuotationFollowUpPayload, error) {
	var payload QuotationFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuotationFollowUpPayload{}, err
	}
	return payload, nil
}

func NewNotificationOutboxDueTask(payload NotificationOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDue, data), nil
}

func ParseNotificationOutboxDuePayload(task *asynq.Task) (NotificationOutboxDuePayload, error) {
	var payload NotificationOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationOutboxDuePayload{}, err
	}
	return payload, nil
}
