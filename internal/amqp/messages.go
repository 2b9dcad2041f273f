package amqp

import (
	"encoding/json"
	"time"

	"foodrescue/internal/core"
)

// AlertMessage is the wire form of one near-expiry alert.
type AlertMessage struct {
	AlertID    string    `json:"alertId"`
	EntryID    string    `json:"entryId"`
	FoodType   string    `json:"foodType"`
	ItemName   string    `json:"itemName"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	ExpiryDate string    `json:"expiryDate,omitempty"`
	Donor      string    `json:"donor,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AlertBatchMessage carries every alert generated by one scan.
type AlertBatchMessage struct {
	Count     int            `json:"count"`
	Alerts    []AlertMessage `json:"alerts"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewAlertBatchMessage creates a message for a scan's new alerts.
func NewAlertBatchMessage(alerts []core.Alert) *AlertBatchMessage {
	msg := &AlertBatchMessage{
		Count:     len(alerts),
		Alerts:    make([]AlertMessage, 0, len(alerts)),
		Timestamp: time.Now().UTC(),
	}
	for _, a := range alerts {
		msg.Alerts = append(msg.Alerts, AlertMessage{
			AlertID:    a.ID,
			EntryID:    a.EntryID,
			FoodType:   string(a.FoodType),
			ItemName:   a.ItemName,
			Quantity:   a.Quantity,
			Unit:       a.Unit,
			ExpiryDate: a.ExpiryDate.String(),
			Donor:      a.Donor,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt,
		})
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *AlertBatchMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertBatchMessageFromJSON decodes a message published by PublishAlerts.
func AlertBatchMessageFromJSON(data []byte) (*AlertBatchMessage, error) {
	var msg AlertBatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
