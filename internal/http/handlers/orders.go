package handlers

import (
	"net/http"
	"time"

	"ordersapi/internal/domain"
	"ordersapi/internal/http/middleware"
	"ordersapi/internal/pagination"
	"ordersapi/internal/services"
	"ordersapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// orderSortConstraint fixes which sort fields the order list accepts.
var orderSortConstraint = pagination.Constraint{
	Whitelist: []string{"status", "paymentMethod", "amount"},
}

type orderRequest struct {
	CustomerID    string  `json:"customerId"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
}

type orderFilterRequest struct {
	CustomerID    string `json:"customerId"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	Page          *int   `json:"page"`
	Size          *int   `json:"size"`
}

type orderReportRequest struct {
	CustomerID    string `json:"customerId"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	FileType      string `json:"fileType"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customerId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type orderDetailResponse struct {
	orderResponse
	Customer customerResponse `json:"customer"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:            o.ID.String(),
		CustomerID:    o.CustomerID.String(),
		Amount:        o.Amount,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderDetailResponse(d services.OrderDetail) orderDetailResponse {
	return orderDetailResponse{
		orderResponse: toOrderResponse(d.Order),
		Customer:      toCustomerResponse(d.Customer),
	}
}

func GetOrders(c *gin.Context) {
	page, err := pagination.ValidatePageable(
		c.Query("page"), c.Query("size"), c.QueryArray("sort"), orderSortConstraint)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.OrderService{}
	list, err := svc.List(c.Request.Context(), page)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(list.Orders))
	for _, o := range list.Orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"content": out, "totalPages": list.TotalPages})
}

func GetOrderByID(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.OrderService{}
	detail, err := svc.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDetailResponse(detail))
}

func CreateOrder(c *gin.Context) {
	var req orderRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.OrderService{}
	detail, err := svc.Create(c.Request.Context(), services.OrderInput{
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderDetailResponse(detail))
}

func UpdateOrder(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var req orderRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.OrderService{}
	detail, err := svc.Update(c.Request.Context(), id, services.OrderInput{
		CustomerID:    req.CustomerID,
		Amount:        req.Amount,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderDetailResponse(detail))
}

func DeleteOrder(c *gin.Context) {
	id, err := services.ParseRequiredUUID(c.Param("id"), "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.OrderService{}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FilterOrders lists orders matching an optional body-level filter with
// body-level paging.
func FilterOrders(c *gin.Context) {
	var req orderFilterRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.OrderService{}
	list, err := svc.FilteredList(c.Request.Context(), services.ListFilter{
		CustomerID:    req.CustomerID,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Page:          req.Page,
		Size:          req.Size,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(list.Orders))
	for _, o := range list.Orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"content": out, "totalPages": list.TotalPages})
}

// OrdersReport streams a CSV or XLSX export of matching orders straight
// to the response body. Filter and format errors surface before the
// first byte is written; a mid-stream failure can only cut the download
// short.
func OrdersReport(c *gin.Context) {
	var req orderReportRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.ReportService{}
	filter, err := svc.Resolve(c.Request.Context(), services.ReportRequest{
		CustomerID:    req.CustomerID,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		FileType:      req.FileType,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	filename := "orders_report_" + utils.ReportTimestamp(time.Now()) + filter.FileType.Extension()
	c.Header("Content-Type", filter.FileType.MIMEType())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	if err := svc.Generate(c.Request.Context(), filter, c.Writer); err != nil {
		if !c.Writer.Written() {
			// Nothing reached the client yet; drop the download headers
			// and fail the request instead.
			for _, hdr := range []string{"Content-Type", "Content-Disposition", "Cache-Control", "Pragma", "Expires"} {
				c.Writer.Header().Del(hdr)
			}
			RespondDomainError(c, err)
			return
		}
		// Too late for a status change; the download is cut short.
		utils.LogEvent(middleware.GetRequestID(c), "report", "generate_failed", err.Error())
	}
}

// UploadOrders imports a JSON array of orders from a multipart file.
func UploadOrders(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "multipart file 'file' is required", err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to open uploaded file", err)
		return
	}
	defer f.Close()

	svc := services.ImportService{}
	result, err := svc.ImportOrders(c.Request.Context(), f, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderInvoicePDF returns a per-order invoice (inline).
func GetOrderInvoicePDF(c *gin.Context) {
	svc := services.InvoiceService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
