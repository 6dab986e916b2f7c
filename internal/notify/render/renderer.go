// Package render formats a submission into the notification message body.
// Pure field substitution into a fixed template, no transport concerns.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/procurehq/intake/internal/request/domain"
)

//go:embed templates/*.html
var templates embed.FS

var purchaseRequest = template.Must(
	template.ParseFS(templates, "templates/purchase_request.html"),
)

type templateData struct {
	PONumber       string
	RequesterName  string
	RequesterEmail string
	SubmittedAt    string
	ItemLink       string
	Quantity       int
	ShippingAddr   string
	AttentionTo    string
	Department     string
	Description    string
	Classification string
	Urgency        string
}

// Subject builds the notification subject line: the PO number when one was
// assigned, the requester name otherwise.
func Subject(req domain.Request) string {
	if req.PONumber != "" {
		return fmt.Sprintf("Purchase request: %s", req.PONumber)
	}
	return fmt.Sprintf("Purchase request from %s", req.RequesterName)
}

// Body renders the HTML notification body for one submission.
func Body(req domain.Request) (string, error) {
	data := templateData{
		PONumber:       req.PONumber,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		SubmittedAt:    req.SubmittedAt.Format(domain.TimestampLayout),
		ItemLink:       req.ItemLink,
		Quantity:       req.Quantity,
		ShippingAddr:   req.ShippingAddr,
		AttentionTo:    req.AttentionTo,
		Department:     req.Department,
		Description:    req.Description,
		Classification: req.Classification,
		Urgency:        req.Urgency,
	}

	var buf bytes.Buffer
	if err := purchaseRequest.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}
