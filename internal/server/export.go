package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	requestdomain "github.com/procurehq/intake/internal/request/domain"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportRequests streams the full summary as an xlsx workbook, oldest
// submission first, matching the layout of the durable summary itself.
func (s *Server) ExportRequests(c *gin.Context) {
	requests, err := s.requestSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "Requests")

	header := make([]interface{}, len(requestdomain.Columns))
	for i, col := range requestdomain.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow("Requests", "A1", &header); err != nil {
		AbortWithError(c, err)
		return
	}

	// List is newest first; the export keeps submission order.
	for i := len(requests) - 1; i >= 0; i-- {
		row := requests[i].Row()
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell := fmt.Sprintf("A%d", len(requests)-i+1)
		if err := f.SetSheetRow("Requests", cell, &values); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="purchase_summary.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		AbortWithError(c, err)
	}
}
