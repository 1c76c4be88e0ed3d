package entity

import "time"

// RefSummary is the resolved form of a reference field. Resolved false means
// the referenced document does not exist or was deleted; the identifier is
// kept so callers can still see what was pointed at.
type RefSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
	Resolved bool   `json:"resolved"`
}

// OperatorView is what the API layer receives for an operator. The password
// hash never leaves the core.
type OperatorView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgentView is an agent with its owning operator inlined.
type AgentView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Company   string      `json:"company,omitempty"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Country   string      `json:"country"`
	Address   string      `json:"address,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	IsActive  bool        `json:"is_active"`
	Owner     *RefSummary `json:"owner,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BookingView is a booking with its agent and operator references inlined.
// Agent is nil only when the booking has no agent reference at all.
type BookingView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	DateFrom   time.Time   `json:"date_from"`
	DateTo     time.Time   `json:"date_to"`
	Country    string      `json:"country"`
	Pax        int         `json:"pax"`
	Ladies     int         `json:"ladies"`
	Men        int         `json:"men"`
	Children   int         `json:"children"`
	Teens      int         `json:"teens"`
	Agent      *RefSummary `json:"agent,omitempty"`
	Consultant string      `json:"consultant,omitempty"`
	Operator   *RefSummary `json:"operator"`
	Notes      string      `json:"notes,omitempty"`
	IsDeleted  bool        `json:"is_deleted"`
	DeletedAt  *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
