package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/edia-health/edia-backend/internal/middleware"
	"github.com/edia-health/edia-backend/internal/models"
	"github.com/edia-health/edia-backend/internal/service"
	"github.com/edia-health/edia-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// DailyRecordService is the part of service.DailyRecordService used by DailyRecordHandler
type DailyRecordService interface {
	Create(ctx context.Context, userID uint, req *service.DailyRecordRequest) (*models.DailyRecordResponse, error)
	List(ctx context.Context, userID uint, filter service.ListFilter, page, pageSize int) ([]models.DailyRecordResponse, int64, error)
	Get(ctx context.Context, userID, recordID uint) (*models.DailyRecordResponse, error)
	Update(ctx context.Context, userID, recordID uint, req *service.DailyRecordRequest) (*models.DailyRecordResponse, error)
	Delete(ctx context.Context, userID, recordID uint) error
}

// DailyRecordHandler handles daily record API requests
type DailyRecordHandler struct {
	recordService DailyRecordService
}

// NewDailyRecordHandler creates a new DailyRecordHandler
func NewDailyRecordHandler(recordService DailyRecordService) *DailyRecordHandler {
	return &DailyRecordHandler{
		recordService: recordService,
	}
}

// Create handles record creation
// POST /api/daily-records
func (h *DailyRecordHandler) Create(c *gin.Context) {
	var req service.DailyRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.recordService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, record)
}

// List handles listing the caller's records
// GET /api/daily-records?page=1&page_size=20&from=2025-01-01&to=2025-01-31
func (h *DailyRecordHandler) List(c *gin.Context) {
	// Parse pagination params
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var filter service.ListFilter
	errs := response.FieldErrors{}
	for param, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		d, err := time.Parse(models.DateLayout, v)
		if err != nil {
			errs[param] = append(errs[param], "invalid")
			continue
		}
		*dst = &d
	}
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	records, total, err := h.recordService.List(c.Request.Context(), middleware.GetUserID(c), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPaginated(c, records, total, page, pageSize)
}

// Get handles getting a single record
// GET /api/daily-records/:id
func (h *DailyRecordHandler) Get(c *gin.Context) {
	recordID, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.recordService.Get(c.Request.Context(), middleware.GetUserID(c), recordID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, record)
}

// Update handles full replacement of a record
// PUT /api/daily-records/:id
func (h *DailyRecordHandler) Update(c *gin.Context) {
	recordID, ok := parseID(c)
	if !ok {
		return
	}

	var req service.DailyRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.recordService.Update(c.Request.Context(), middleware.GetUserID(c), recordID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, record)
}

// Delete handles deleting a record
// DELETE /api/daily-records/:id
func (h *DailyRecordHandler) Delete(c *gin.Context) {
	recordID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recordService.Delete(c.Request.Context(), middleware.GetUserID(c), recordID); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// RegisterRoutes registers daily record routes
func (h *DailyRecordHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	records := rg.Group("/daily-records")
	records.Use(authMiddleware)
	{
		records.GET("", h.List)
		records.POST("", h.Create)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
		records.DELETE("/:id", h.Delete)
	}
}

// parseID reads the :id path parameter; a malformed id is reported as not found
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c, "not_found")
		return 0, false
	}
	return uint(id), true
}
