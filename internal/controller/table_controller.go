package controller

import (
	"errors"
	"net/http"
	"strconv"

	"filetable-gateway/internal/model"
	"filetable-gateway/internal/service"
	"filetable-gateway/internal/table"
	"filetable-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type TableController struct {
	service   service.TableService
	metrics   *service.ResolutionMetricsCollector
	validator *validator.Validate
}

type Response struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	Message       string      `json:"message,omitempty"`
	CorrelationID string      `json:"correlationId"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewTableController(service service.TableService, metrics *service.ResolutionMetricsCollector) *TableController {
	return &TableController{
		service:   service,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// CreateTable godoc
// @Summary Register a new file-backed table
// @Description Registers a table over a set of root paths in a storage backend
// @Tags tables
// @Accept json
// @Produce json
// @Param request body model.CreateTableRequest true "Create table request"
// @Success 201 {object} Response{data=model.TableDefinition}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/tables [post]
func (tc *TableController) CreateTable(c *gin.Context) {
	var req model.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := utils.NewValidationError("Invalid request body", err.Error())
		tc.sendError(c, utils.GetErrorStatus(appErr), appErr.Code, appErr.Message)
		return
	}

	def, err := tc.service.CreateTable(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrTableExists) {
			tc.sendError(c, http.StatusConflict, utils.ErrCodeTableExists, "Table with this name already exists")
			return
		}
		tc.sendError(c, http.StatusBadRequest, utils.ErrCodeInvalidTable, err.Error())
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success:       true,
		Data:          def,
		CorrelationID: tc.getCorrelationID(c),
	})
}

// GetTable godoc
// @Summary Get a table definition by ID
// @Description Retrieves a registered table definition by its UUID
// @Tags tables
// @Produce json
// @Param id path string true "Table UUID"
// @Success 200 {object} Response{data=model.TableDefinition}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/tables/{id} [get]
func (tc *TableController) GetTable(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		tc.sendError(c, http.StatusBadRequest, "MISSING_ID", "Table ID is required")
		return
	}

	def, err := tc.service.GetTable(c.Request.Context(), id)
	if err != nil {
		tc.sendLookupError(c, err, "Failed to get table")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          def,
		CorrelationID: tc.getCorrelationID(c),
	})
}

// ListTables godoc
// @Summary List registered tables
// @Description Retrieves a paginated list of table definitions with optional filtering
// @Tags tables
// @Produce json
// @Param status query string false "Filter by status (active, inactive)"
// @Param limit query int false "Maximum number of items to return (default: 20, max: 100)"
// @Param offset query int false "Number of items to skip (default: 0)"
// @Success 200 {object} Response{data=service.ListTablesResponse}
// @Router /api/v1/tables [get]
func (tc *TableController) ListTables(c *gin.Context) {
	req := &service.ListTablesRequest{}

	// Parse query parameters
	if statusStr := c.Query("status"); statusStr != "" {
		req.Status = model.TableStatus(statusStr)
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = limit
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = offset
		}
	}

	if err := tc.validator.Struct(req); err != nil {
		tc.sendError(c, http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error())
		return
	}

	response, err := tc.service.ListTables(c.Request.Context(), req)
	if err != nil {
		tc.sendError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list tables")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          response,
		CorrelationID: tc.getCorrelationID(c),
	})
}

// DeleteTable godoc
// @Summary Delete a table definition
// @Description Deletes a table definition by its UUID
// @Tags tables
// @Produce json
// @Param id path string true "Table UUID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/tables/{id} [delete]
func (tc *TableController) DeleteTable(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		tc.sendError(c, http.StatusBadRequest, "MISSING_ID", "Table ID is required")
		return
	}

	if err := tc.service.DeleteTable(c.Request.Context(), id); err != nil {
		tc.sendLookupError(c, err, "Failed to delete table")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Message:       "Table deleted successfully",
		CorrelationID: tc.getCorrelationID(c),
	})
}

// GetSchema godoc
// @Summary Resolve a table schema
// @Description Resolves and returns the full schema of a table, running discovery and inference if needed
// @Tags tables
// @Produce json
// @Param id path string true "Table UUID"
// @Success 200 {object} Response{data=model.SchemaResponse}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Router /api/v1/tables/{id}/schema [get]
func (tc *TableController) GetSchema(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		tc.sendError(c, http.StatusBadRequest, "MISSING_ID", "Table ID is required")
		return
	}

	schema, err := tc.service.DescribeSchema(c.Request.Context(), id)
	if err != nil {
		tc.sendSchemaError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          schema,
		CorrelationID: tc.getCorrelationID(c),
	})
}

// GetCapabilities godoc
// @Summary Get table capabilities
// @Description Returns the operations the table supports
// @Tags tables
// @Produce json
// @Param id path string true "Table UUID"
// @Success 200 {object} Response{data=model.CapabilitiesResponse}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/tables/{id}/capabilities [get]
func (tc *TableController) GetCapabilities(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		tc.sendError(c, http.StatusBadRequest, "MISSING_ID", "Table ID is required")
		return
	}

	caps, err := tc.service.GetCapabilities(c.Request.Context(), id)
	if err != nil {
		tc.sendLookupError(c, err, "Failed to get table capabilities")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          caps,
		CorrelationID: tc.getCorrelationID(c),
	})
}

// RefreshTable godoc
// @Summary Refresh a table
// @Description Drops the cached discovery snapshot so the next schema request re-lists the files
// @Tags tables
// @Produce json
// @Param id path string true "Table UUID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/tables/{id}/refresh [post]
func (tc *TableController) RefreshTable(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		tc.sendError(c, http.StatusBadRequest, "MISSING_ID", "Table ID is required")
		return
	}

	if err := tc.service.RefreshTable(c.Request.Context(), id); err != nil {
		tc.sendLookupError(c, err, "Failed to refresh table")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Message:       "Table refreshed successfully",
		CorrelationID: tc.getCorrelationID(c),
	})
}

// ListFormats godoc
// @Summary List supported formats
// @Description Returns the registered file formats and their fallbacks
// @Tags formats
// @Produce json
// @Success 200 {object} Response{data=[]model.FormatInfo}
// @Router /api/v1/formats [get]
func (tc *TableController) ListFormats(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          tc.service.ListFormats(),
		CorrelationID: tc.getCorrelationID(c),
	})
}

// GetResolutionMetrics godoc
// @Summary Get schema resolution metrics
// @Description Returns aggregated resolution metrics per format and gateway-wide
// @Tags metrics
// @Produce json
// @Success 200 {object} Response
// @Router /api/v1/metrics/resolutions [get]
func (tc *TableController) GetResolutionMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"summary":   tc.metrics.GetMetricsSummary(),
			"byFormat":  tc.metrics.GetAllMetrics(),
			"global":    tc.metrics.GetGlobalMetrics(),
		},
		CorrelationID: tc.getCorrelationID(c),
	})
}

// Helper methods

// sendLookupError maps the common definition-lookup failures.
func (tc *TableController) sendLookupError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTableNotFound):
		tc.sendError(c, http.StatusNotFound, utils.ErrCodeTableNotFound, "Table not found")
	case errors.Is(err, service.ErrInvalidUUID):
		tc.sendError(c, http.StatusBadRequest, utils.ErrCodeInvalidUUID, "Invalid table ID format")
	default:
		tc.sendError(c, http.StatusInternalServerError, utils.ErrCodeInternalError, fallback)
	}
}

// sendSchemaError maps resolution failures onto stable error codes so clients
// can distinguish a missing schema declaration from a broken layout.
func (tc *TableController) sendSchemaError(c *gin.Context, err error) {
	var inferenceErr *table.InferenceFailedError
	var duplicateErr *table.DuplicateColumnError
	var unsupportedErr *table.UnsupportedTypeError

	switch {
	case errors.Is(err, service.ErrTableNotFound), errors.Is(err, service.ErrInvalidUUID):
		tc.sendLookupError(c, err, "Failed to resolve schema")
	case errors.As(err, &inferenceErr):
		tc.sendError(c, http.StatusUnprocessableEntity, utils.ErrCodeInferenceFailed, inferenceErr.Error())
	case errors.As(err, &duplicateErr):
		tc.sendError(c, http.StatusUnprocessableEntity, utils.ErrCodeDuplicateColumn, duplicateErr.Error())
	case errors.As(err, &unsupportedErr):
		tc.sendError(c, http.StatusUnprocessableEntity, utils.ErrCodeUnsupportedType, unsupportedErr.Error())
	default:
		tc.sendError(c, http.StatusBadGateway, utils.ErrCodeDiscoveryFailed, err.Error())
	}
}

func (tc *TableController) sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
		CorrelationID: tc.getCorrelationID(c),
	})
}

func (tc *TableController) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
