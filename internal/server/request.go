package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procurehq/intake/internal/identity"
	requestdomain "github.com/procurehq/intake/internal/request/domain"
)

type submitRequestBody struct {
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	ItemLink       string `json:"item_link"`
	Quantity       int    `json:"quantity"`
	ShippingAddr   string `json:"shipping_address"`
	AttentionTo    string `json:"attention_to"`
	Description    string `json:"description"`
	Classification string `json:"classification"`
	Urgency        string `json:"urgency"`
}

type requestResponse struct {
	PONumber       string `json:"po_number"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email,omitempty"`
	SubmittedAt    string `json:"submitted_at"`
	ItemLink       string `json:"item_link"`
	Quantity       int    `json:"quantity"`
	ShippingAddr   string `json:"shipping_address"`
	AttentionTo    string `json:"attention_to"`
	Department     string `json:"department"`
	Description    string `json:"description"`
	Classification string `json:"classification"`
	Urgency        string `json:"urgency"`
}

type submitResponse struct {
	Request     requestResponse `json:"request"`
	Saved       bool            `json:"saved"`
	Notified    bool            `json:"notified"`
	NotifyError string          `json:"notify_error,omitempty"`
}

func (s *Server) SubmitRequest(c *gin.Context) {
	var body submitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	submit := requestdomain.SubmitRequest{
		RequesterName:  strings.TrimSpace(body.RequesterName),
		RequesterEmail: strings.TrimSpace(body.RequesterEmail),
		ItemLink:       strings.TrimSpace(body.ItemLink),
		Quantity:       body.Quantity,
		ShippingAddr:   strings.TrimSpace(body.ShippingAddr),
		AttentionTo:    strings.TrimSpace(body.AttentionTo),
		Description:    strings.TrimSpace(body.Description),
		Classification: strings.TrimSpace(body.Classification),
		Urgency:        strings.TrimSpace(body.Urgency),
		IdempotencyKey: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
	}
	if id, ok := identity.FromContext(c); ok {
		submit.RequesterEmail = id.Email
		if submit.RequesterName == "" {
			submit.RequesterName = id.Name
		}
	}

	result, err := s.requestSvc.Submit(c.Request.Context(), submit)
	if err != nil {
		s.obsMetrics.RecordSubmission("rejected")
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordSubmission("saved")
	if result.NotifyError != "" {
		s.obsMetrics.RecordNotifyFailure()
	}

	c.JSON(http.StatusOK, gin.H{"data": submitResponse{
		Request:     toRequestResponse(result.Request),
		Saved:       result.Saved,
		Notified:    result.Notified,
		NotifyError: result.NotifyError,
	}})
}

func (s *Server) ListRequests(c *gin.Context) {
	requests, err := s.requestSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func toRequestResponse(req requestdomain.Request) requestResponse {
	return requestResponse{
		PONumber:       req.PONumber,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		SubmittedAt:    req.SubmittedAt.Format(time.RFC3339),
		ItemLink:       req.ItemLink,
		Quantity:       req.Quantity,
		ShippingAddr:   req.ShippingAddr,
		AttentionTo:    req.AttentionTo,
		Department:     req.Department,
		Description:    req.Description,
		Classification: req.Classification,
		Urgency:        req.Urgency,
	}
}
