package registry

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backoffice/api/handlers/common"
	"backoffice/internal/dispatch"
	"backoffice/internal/entities"
)

// Handler exposes the registry entities over HTTP. Every call goes through
// the dispatcher, which decides per tenant whether it runs locally or
// against the partner system.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

func NewHandler(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, logger: logger}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func searchTerm(c *gin.Context) (string, bool) {
	q := c.Query("q")
	if q == "" {
		common.FailWithCode(c, http.StatusBadRequest, "MISSING_QUERY", "query parameter q is required")
		return "", false
	}
	return q, true
}

// ----- Clients -----

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.dispatcher.GetClient(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, client)
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req entities.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.dispatcher.CreateClient(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, created)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req entities.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	req.ID = id
	updated, err := h.dispatcher.UpdateClient(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, updated)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.dispatcher.DeleteClient(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "client deleted"})
}

func (h *Handler) SearchClients(c *gin.Context) {
	q, ok := searchTerm(c)
	if !ok {
		return
	}
	results, err := h.dispatcher.SearchClients(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

func (h *Handler) ListClients(c *gin.Context) {
	results, err := h.dispatcher.ListClients(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

// ----- Brokers -----

func (h *Handler) GetBroker(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	broker, err := h.dispatcher.GetBroker(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, broker)
}

func (h *Handler) CreateBroker(c *gin.Context) {
	var req entities.Broker
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.dispatcher.CreateBroker(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, created)
}

func (h *Handler) UpdateBroker(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req entities.Broker
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	req.ID = id
	updated, err := h.dispatcher.UpdateBroker(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, updated)
}

func (h *Handler) DeleteBroker(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.dispatcher.DeleteBroker(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "broker deleted"})
}

func (h *Handler) SearchBrokers(c *gin.Context) {
	q, ok := searchTerm(c)
	if !ok {
		return
	}
	results, err := h.dispatcher.SearchBrokers(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

func (h *Handler) ListBrokers(c *gin.Context) {
	results, err := h.dispatcher.ListBrokers(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

// ----- Companies -----

func (h *Handler) GetCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	company, err := h.dispatcher.GetCompany(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, company)
}

func (h *Handler) CreateCompany(c *gin.Context) {
	var req entities.Company
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.dispatcher.CreateCompany(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, created)
}

func (h *Handler) UpdateCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req entities.Company
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	req.ID = id
	updated, err := h.dispatcher.UpdateCompany(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, updated)
}

func (h *Handler) DeleteCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.dispatcher.DeleteCompany(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "company deleted"})
}

func (h *Handler) SearchCompanies(c *gin.Context) {
	q, ok := searchTerm(c)
	if !ok {
		return
	}
	results, err := h.dispatcher.SearchCompanies(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

func (h *Handler) ListCompanies(c *gin.Context) {
	results, err := h.dispatcher.ListCompanies(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

// ----- Currencies -----

func (h *Handler) GetCurrency(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	currency, err := h.dispatcher.GetCurrency(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, currency)
}

func (h *Handler) CreateCurrency(c *gin.Context) {
	var req entities.Currency
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.dispatcher.CreateCurrency(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, created)
}

func (h *Handler) UpdateCurrency(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req entities.Currency
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	req.ID = id
	updated, err := h.dispatcher.UpdateCurrency(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, updated)
}

func (h *Handler) DeleteCurrency(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.dispatcher.DeleteCurrency(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "currency deleted"})
}

func (h *Handler) SearchCurrencies(c *gin.Context) {
	q, ok := searchTerm(c)
	if !ok {
		return
	}
	results, err := h.dispatcher.SearchCurrencies(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

func (h *Handler) ListCurrencies(c *gin.Context) {
	results, err := h.dispatcher.ListCurrencies(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

// ----- Polizas -----

func (h *Handler) GetPoliza(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	poliza, err := h.dispatcher.GetPoliza(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, poliza)
}

func (h *Handler) CreatePoliza(c *gin.Context) {
	var req entities.Poliza
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	created, err := h.dispatcher.CreatePoliza(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, created)
}

func (h *Handler) UpdatePoliza(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req entities.Poliza
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	req.ID = id
	updated, err := h.dispatcher.UpdatePoliza(c.Request.Context(), &req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, updated)
}

func (h *Handler) DeletePoliza(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.dispatcher.DeletePoliza(c.Request.Context(), id); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "poliza deleted"})
}

func (h *Handler) SearchPolizas(c *gin.Context) {
	q, ok := searchTerm(c)
	if !ok {
		return
	}
	results, err := h.dispatcher.SearchPolizas(c.Request.Context(), q)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}

func (h *Handler) ListPolizas(c *gin.Context) {
	results, err := h.dispatcher.ListPolizas(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, results)
}
