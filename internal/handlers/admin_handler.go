package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/services"
	"github.com/curio-learn/profile-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves the changelist, detail and edit views of every
// registered model.
type AdminHandler struct {
	BaseHandler
	services services.ServiceManager
}

func NewAdminHandler(serviceManager services.ServiceManager, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		services:    serviceManager,
	}
}

// Index lists the registered models
// @Summary List administered models
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin [get]
func (h *AdminHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models": h.services.Site().Models(),
	})
}

// ChangeList returns one page of a model's records
// @Summary Model changelist
// @Tags admin
// @Produce json
// @Param model path string true "Model name"
// @Param q query string false "Search term"
// @Param o query string false "Ordering, e.g. -age,user"
// @Param p query int false "Page number (default: 1)"
// @Param per_page query int false "Page size (default: 100, max: 500)"
// @Success 200 {object} admin.ChangeList
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/{model} [get]
func (h *AdminHandler) ChangeList(c *gin.Context) {
	modelName := c.Param("model")
	h.LogRequest(c, "Listing records", "model", modelName)

	modelAdmin, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	params, err := modelAdmin.ParseChangeList(c.Request.URL.Query())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	changeList, err := svc.ChangeList(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, changeList)
}

// Export writes the filtered changelist as an Excel workbook
// @Summary Export changelist
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param model path string true "Model name"
// @Success 200 {file} file
// @Router /admin/{model}/export.xlsx [get]
func (h *AdminHandler) Export(c *gin.Context) {
	modelName := c.Param("model")
	h.LogRequest(c, "Exporting records", "model", modelName)

	modelAdmin, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	params, err := modelAdmin.ParseChangeList(c.Request.URL.Query())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	rows, err := svc.ExportRows(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := modelAdmin.WriteXLSX(&buf, rows); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, modelAdmin.Name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Detail returns one record in its serializer representation
// @Summary Get record
// @Tags admin
// @Produce json
// @Param model path string true "Model name"
// @Param id path uint true "Record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /admin/{model}/{id} [get]
func (h *AdminHandler) Detail(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	modelName := c.Param("model")
	h.LogRequest(c, "Getting record", "model", modelName, "id", id)

	_, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	rep, err := svc.GetRepresentation(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rep)
}

// Add creates a record from its serializer representation
// @Summary Create record
// @Tags admin
// @Accept json
// @Produce json
// @Param model path string true "Model name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "The account already has a record"
// @Router /admin/{model} [post]
func (h *AdminHandler) Add(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	modelName := c.Param("model")
	h.LogRequest(c, "Creating record", "model", modelName)

	_, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	rep, err := svc.CreateFromJSON(c.Request.Context(), body, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rep)
}

// Change replaces a record through its serializer
// @Summary Update record
// @Tags admin
// @Accept json
// @Produce json
// @Param model path string true "Model name"
// @Param id path uint true "Record ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/{model}/{id} [put]
func (h *AdminHandler) Change(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	modelName := c.Param("model")
	h.LogRequest(c, "Updating record", "model", modelName, "id", id)

	_, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	rep, err := svc.UpdateFromJSON(c.Request.Context(), id, body, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rep)
}

// Delete removes a record
// @Summary Delete record
// @Tags admin
// @Produce json
// @Param model path string true "Model name"
// @Param id path uint true "Record ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/{model}/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	modelName := c.Param("model")
	h.LogRequest(c, "Deleting record", "model", modelName, "id", id)

	_, svc, err := h.services.AdminModel(modelName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := svc.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Record deleted successfully",
	})
}

// History lists admin log entries, newest first
// @Summary Admin history
// @Tags admin
// @Produce json
// @Param model query string false "Model name"
// @Param object_id query uint false "Record ID"
// @Param actor_id query uint false "Acting account ID"
// @Param limit query int false "Page size (default: 50, max: 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} services.HistoryResponse
// @Router /admin/history [get]
func (h *AdminHandler) History(c *gin.Context) {
	h.LogRequest(c, "Listing admin history")

	filters := repositories.AdminLogFilters{
		ContentType: c.Query("model"),
		ObjectID:    h.parseUintQueryPtr(c, "object_id"),
		ActorID:     h.parseUintQueryPtr(c, "actor_id"),
		Limit:       h.parseIntQuery(c, "limit", 50),
		Offset:      max(h.parseIntQuery(c, "offset", 0), 0),
	}

	history, err := h.services.AdminLog().History(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
