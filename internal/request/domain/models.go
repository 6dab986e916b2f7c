package domain

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Urgency levels accepted on a purchase request.
const (
	UrgencyNormal = "Normal"
	UrgencyUrgent = "Urgent"
)

// TimestampLayout is the wire format for submission timestamps in the
// workbook and spreadsheet backends. The numeric offset is what makes a
// stored value round-trip; a bare zone abbreviation parses at offset zero.
const TimestampLayout = "2006-01-02 15:04:05 -0700 MST"

// Request is one purchase-order submission. Records are immutable once
// appended; there is no update or delete path.
type Request struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	PONumber       string       `gorm:"column:po_number;not null;uniqueIndex" json:"po_number"`
	RequesterName  string       `gorm:"not null" json:"requester_name"`
	RequesterEmail string       `json:"requester_email"`
	SubmittedAt    time.Time    `gorm:"not null" json:"submitted_at"`
	ItemLink       string       `gorm:"not null" json:"item_link"`
	Quantity       int          `gorm:"not null" json:"quantity"`
	ShippingAddr   string       `gorm:"column:shipping_address;not null" json:"shipping_address"`
	AttentionTo    string       `gorm:"not null" json:"attention_to"`
	Department     string       `gorm:"not null" json:"department"`
	Description    string       `gorm:"not null" json:"description"`
	Classification string       `gorm:"not null" json:"classification"`
	Urgency        string       `gorm:"not null" json:"urgency"`
	IdempotencyKey string       `gorm:"uniqueIndex:ux_requests_idempotency_key,where:idempotency_key <> ''" json:"-"`
}

func (Request) TableName() string {
	return "purchase_requests"
}

// Columns is the tabular header shared by the workbook and spreadsheet
// backends, in append order.
var Columns = []string{
	"PO Number",
	"Requester",
	"Requester Email",
	"Request Date and Time",
	"Link",
	"Quantity",
	"Shipment Address",
	"Attention To",
	"Department",
	"Description",
	"Classification",
	"Urgency",
}

// Row flattens the record into the tabular column order.
func (r Request) Row() []string {
	return []string{
		r.PONumber,
		r.RequesterName,
		r.RequesterEmail,
		r.SubmittedAt.Format(TimestampLayout),
		r.ItemLink,
		strconv.Itoa(r.Quantity),
		r.ShippingAddr,
		r.AttentionTo,
		r.Department,
		r.Description,
		r.Classification,
		r.Urgency,
	}
}
