package model

// Payment statuses
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentOverdue = "overdue"
)

// Payment is one charge to an athlete. Date is YYYY-MM-DD.
type Payment struct {
	ID        string  `json:"id" bson:"id"`
	AthleteID string  `json:"athleteId" bson:"athleteId"`
	Amount    float64 `json:"amount" bson:"amount"`
	Currency  string  `json:"currency,omitempty" bson:"currency,omitempty"`
	Date      string  `json:"date" bson:"date"`
	DueDate   string  `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Status    string  `json:"status" bson:"status"`
	Method    string  `json:"method,omitempty" bson:"method,omitempty"`
	Concept   string  `json:"concept,omitempty" bson:"concept,omitempty"`
}

// Subscription is a recurring plan an athlete pays for.
type Subscription struct {
	ID          string  `json:"id" bson:"id"`
	AthleteID   string  `json:"athleteId" bson:"athleteId"`
	Plan        string  `json:"plan" bson:"plan"`
	Price       float64 `json:"price" bson:"price"`
	Interval    string  `json:"interval,omitempty" bson:"interval,omitempty"`
	StartDate   string  `json:"startDate,omitempty" bson:"startDate,omitempty"`
	RenewalDate string  `json:"renewalDate,omitempty" bson:"renewalDate,omitempty"`
	Status      string  `json:"status,omitempty" bson:"status,omitempty"`
}
