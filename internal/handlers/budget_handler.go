package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetbook/internal/models"
	"budgetbook/internal/services"
)

// BudgetHandler handles budget template and definition requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// TemplateRequest represents the request payload for creating or renaming a template.
type TemplateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// DefinitionRequest represents the request payload for a template definition.
// Which account fields are required depends on the type.
type DefinitionRequest struct {
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount        decimal.Decimal        `json:"amount" swaggertype:"string" example:"1200.00"`
	Description   string                 `json:"description" binding:"max=500"`
	CategoryID    string                 `json:"category_id" binding:"required,uuid"`
	ToCategoryID  *string                `json:"to_category_id" binding:"omitempty,uuid_ref"`
	FromAccountID *string                `json:"from_account_id" binding:"omitempty,uuid_ref"`
	ToAccountID   *string                `json:"to_account_id" binding:"omitempty,uuid_ref"`
}

func (r DefinitionRequest) input() services.DefinitionInput {
	return services.DefinitionInput{
		Type:          r.Type,
		Amount:        r.Amount,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		ToCategoryID:  r.ToCategoryID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
	}
}

// ListTemplates returns the user's templates with usage counts.
// @Summary     List budget templates
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.TemplateSummary
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) ListTemplates(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	templates, err := h.budgetService.ListTemplates(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": templates})
}

// GetTemplate returns a template with its definitions and the months using it.
// @Summary     Get a budget template
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} models.BudgetTemplate
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	template, err := h.budgetService.GetTemplate(userID, templateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": template})
}

// CreateTemplate creates an empty template.
// @Summary     Create a budget template
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TemplateRequest true "Template name"
// @Success     201 {object} models.BudgetTemplate
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	template, err := h.budgetService.CreateTemplate(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget_template", template.ID, c.ClientIP(),
		map[string]interface{}{"name": template.Name})

	c.JSON(http.StatusCreated, gin.H{"budget": template})
}

// UpdateTemplate renames a template.
// @Summary     Rename a budget template
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string          true "Template ID"
// @Param       request body TemplateRequest true "Template name"
// @Success     200 {object} models.BudgetTemplate
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	template, err := h.budgetService.UpdateTemplate(userID, templateID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget_template", template.ID, c.ClientIP(),
		map[string]interface{}{"name": template.Name})

	c.JSON(http.StatusOK, gin.H{"budget": template})
}

// DeleteTemplate removes a template and its definitions. Months using it
// keep their transactions and lose the template link.
// @Summary     Delete a budget template
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Template ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Template not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteTemplate(userID, templateID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget_template", templateID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted"})
}

// CreateDefinition adds a definition to a template.
// @Summary     Add a budget definition
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Template ID"
// @Param       request body DefinitionRequest true "Definition"
// @Success     201 {object} models.BudgetTransactionDefinition
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Template, account or category not found"
// @Router      /budgets/{id}/definitions [post]
func (h *BudgetHandler) CreateDefinition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	def, err := h.budgetService.CreateDefinition(userID, templateID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_DEFINITION", "budget_definition", def.ID, c.ClientIP(),
		map[string]interface{}{"template_id": templateID, "type": def.Type, "amount": def.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"definition": def})
}

// UpdateDefinition replaces a definition.
// @Summary     Update a budget definition
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Template ID"
// @Param       defId   path string            true "Definition ID"
// @Param       request body DefinitionRequest true "Definition"
// @Success     200 {object} models.BudgetTransactionDefinition
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Router      /budgets/{id}/definitions/{defId} [put]
func (h *BudgetHandler) UpdateDefinition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	defID, err := parsePathID(c, "defId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	def, err := h.budgetService.UpdateDefinition(userID, templateID, defID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_DEFINITION", "budget_definition", def.ID, c.ClientIP(),
		map[string]interface{}{"type": def.Type, "amount": def.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"definition": def})
}

// DeleteDefinition removes a definition from a template.
// @Summary     Delete a budget definition
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id    path string true "Template ID"
// @Param       defId path string true "Definition ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Router      /budgets/{id}/definitions/{defId} [delete]
func (h *BudgetHandler) DeleteDefinition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	templateID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	defID, err := parsePathID(c, "defId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteDefinition(userID, templateID, defID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_DEFINITION", "budget_definition", defID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Definition deleted"})
}
