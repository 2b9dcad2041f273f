package http

import (
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/services"
	"foodrescue/internal/tabular"
)

// entryRequest accepts what the intake form posts. Quantity and expiry may
// arrive as strings or numbers.
type entryRequest struct {
	FoodType      string `json:"foodType"`
	ItemName      string `json:"itemName"`
	Quantity      any    `json:"quantity"`
	Unit          string `json:"unit"`
	ExpiryDate    any    `json:"expiryDate"`
	Donor         string `json:"donor"`
	VolunteerName string `json:"volunteerName"`
	Notes         string `json:"notes"`
}

type entryResponse struct {
	ID            string  `json:"id"`
	FoodType      string  `json:"foodType"`
	ItemName      string  `json:"itemName"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	ExpiryDate    *string `json:"expiryDate"`
	Donor         string  `json:"donor"`
	VolunteerName string  `json:"volunteerName"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"createdAt"`
}

type alertResponse struct {
	ID         string  `json:"id"`
	EntryID    string  `json:"entryId"`
	FoodType   string  `json:"foodType"`
	ItemName   string  `json:"itemName"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate *string `json:"expiryDate"`
	Donor      string  `json:"donor"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"createdAt"`
}

type dashboardResponse struct {
	FoodRescuedLbsPerDay        int       `json:"foodRescuedLbsPerDay"`
	SpoilagePercent             float64   `json:"spoilagePercent"`
	AvgPickupToStorageMinutes   int       `json:"avgPickupToStorageMinutes"`
	ColdTurnaroundMinutes       int       `json:"coldTurnaroundMinutes"`
	VolunteerUtilizationPercent int       `json:"volunteerUtilizationPercent"`
	VolunteerScheduled          int       `json:"volunteerScheduled"`
	VolunteerActive             int       `json:"volunteerActive"`
	RescuedSeries               []float64 `json:"rescuedSeries"`
	SeriesDates                 []string  `json:"seriesDates"`
	TotalEntries                int       `json:"totalEntries"`
	RecentCount                 int       `json:"recentCount"`
}

type categoryResponse struct {
	FoodType string  `json:"foodType"`
	Count    int     `json:"count"`
	Quantity float64 `json:"quantity"`
}

type inventoryItemResponse struct {
	entryResponse
	Status string `json:"status"`
}

type inventoryResponse struct {
	TotalEntries  int                     `json:"totalEntries"`
	TotalQuantity float64                 `json:"totalQuantity"`
	ByCategory    []categoryResponse      `json:"byCategory"`
	Items         []inventoryItemResponse `json:"items"`
}

type importResponse struct {
	Rows     int             `json:"rows"`
	Accepted int             `json:"accepted"`
	Replaced bool            `json:"replaced"`
	Entries  []entryResponse `json:"entries"`
}

type scanResponse struct {
	Scanned   int             `json:"scanned"`
	NewAlerts []alertResponse `json:"newAlerts"`
	LogSize   int             `json:"logSize"`
	Notified  bool            `json:"notified"`
}

func optionalDate(d core.Date) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func formatTime(t time.Time) string {
	return tabular.FormatTimestamp(t)
}

func toEntryResponse(e core.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		FoodType:      string(e.FoodType),
		ItemName:      e.ItemName,
		Quantity:      e.Quantity,
		Unit:          e.Unit,
		ExpiryDate:    optionalDate(e.ExpiryDate),
		Donor:         e.Donor,
		VolunteerName: e.VolunteerName,
		Notes:         e.Notes,
		CreatedAt:     formatTime(e.CreatedAt),
	}
}

func toEntryResponses(entries []core.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toAlertResponses(alerts []core.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:         a.ID,
			EntryID:    a.EntryID,
			FoodType:   string(a.FoodType),
			ItemName:   a.ItemName,
			Quantity:   a.Quantity,
			Unit:       a.Unit,
			ExpiryDate: optionalDate(a.ExpiryDate),
			Donor:      a.Donor,
			Message:    a.Message,
			CreatedAt:  formatTime(a.CreatedAt),
		})
	}
	return out
}

func toDashboardResponse(s core.Summary) dashboardResponse {
	return dashboardResponse{
		FoodRescuedLbsPerDay:        s.FoodRescuedPerDay,
		SpoilagePercent:             s.Operational.SpoilagePercent,
		AvgPickupToStorageMinutes:   s.Operational.AvgPickupToStorageMinutes,
		ColdTurnaroundMinutes:       s.Operational.ColdTurnaroundMinutes,
		VolunteerUtilizationPercent: s.Operational.VolunteerUtilizationPercent,
		VolunteerScheduled:          s.Operational.VolunteerScheduled,
		VolunteerActive:             s.Operational.VolunteerActive,
		RescuedSeries:               s.RescuedSeries,
		SeriesDates:                 s.SeriesDates,
		TotalEntries:                s.TotalEntries,
		RecentCount:                 s.RecentCount,
	}
}

func toInventoryResponse(v services.InventoryView) inventoryResponse {
	resp := inventoryResponse{
		TotalEntries:  v.Report.TotalEntries,
		TotalQuantity: v.Report.TotalQuantity,
		ByCategory:    make([]categoryResponse, 0, len(v.Report.ByCategory)),
		Items:         make([]inventoryItemResponse, 0, len(v.Items)),
	}
	for _, c := range v.Report.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryResponse{
			FoodType: string(c.FoodType), Count: c.Count, Quantity: c.Quantity,
		})
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, inventoryItemResponse{
			entryResponse: toEntryResponse(it.Entry), Status: string(it.Status),
		})
	}
	return resp
}
