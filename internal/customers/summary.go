package customers

import (
	"github.com/google/uuid"

	"github.com/sherryseats/orders-backend/pkg/db/models"
)

func summarize(rows []models.Customer, titles map[uuid.UUID][]string) []Summary {
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		events := titles[row.ID]
		if events == nil {
			events = []string{}
		}
		out = append(out, Summary{Customer: row, EventsAttended: events})
	}
	return out
}
