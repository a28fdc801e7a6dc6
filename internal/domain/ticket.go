package domain

import "time"

// Ticket is the slim projection of the externally owned ticket record. The
// engine reads ProductID/Priority and writes StatusID; everything else belongs
// to the ticketing subsystem.
type Ticket struct {
	ID        string
	StatusID  string
	ProductID string
	Priority  TicketPriority
	CreatedAt time.Time
	UpdatedAt time.Time
}
