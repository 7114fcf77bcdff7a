package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hervefr78/fga-crm/db"
	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/rbac"
	"github.com/hervefr78/fga-crm/internal/utils"
)

type TaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	IsCompleted *bool      `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	ContactID   *uint      `json:"contact_id"`
	DealID      *uint      `json:"deal_id"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	AssignedTo  *uint      `json:"assigned_to"`
	ContactID   *uint      `json:"contact_id"`
	DealID      *uint      `json:"deal_id"`
	CreatedAt   string     `json:"created_at"`
}

func newTaskResponse(t models.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Priority:    t.Priority,
		IsCompleted: t.IsCompleted,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		AssignedTo:  t.AssignedTo,
		ContactID:   t.ContactID,
		DealID:      t.DealID,
		CreatedAt:   t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ListTasks(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pagination := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Task{})
	query = rbac.ScopeQuery(query, user, rbac.OwnerFieldAssignedTo)

	if completed := ctx.Query("is_completed"); completed == "true" {
		query = query.Where("is_completed = ?", true)
	} else if completed == "false" {
		query = query.Where("is_completed = ?", false)
	}
	if taskType := ctx.Query("type"); taskType != "" {
		query = query.Where("type = ?", taskType)
	}
	if priority := ctx.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if dealID := ctx.Query("deal_id"); dealID != "" {
		query = query.Where("deal_id = ?", dealID)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Size).Find(&tasks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	items := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, newTaskResponse(t))
	}

	ctx.JSON(http.StatusOK, listResponse(items, total, pagination))
}

func CreateTask(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TaskRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	taskType := body.Type
	if taskType == "" {
		taskType = "todo"
	}
	priority := body.Priority
	if priority == "" {
		priority = "medium"
	}

	assignee := user.ID
	task := models.Task{
		Title:       body.Title,
		Description: body.Description,
		Type:        taskType,
		Priority:    priority,
		DueDate:     body.DueDate,
		ContactID:   body.ContactID,
		DealID:      body.DealID,
		AssignedTo:  &assignee,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	ctx.JSON(http.StatusCreated, newTaskResponse(task))
}

func GetTask(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task
	if err := db.DB.First(&task, taskID).Error; err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	if err := rbac.CheckAccess(task.AssignedTo, user); err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func UpdateTask(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task
	if err := db.DB.First(&task, taskID).Error; err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	if err := rbac.CheckAccess(task.AssignedTo, user); err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	var body TaskRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task.Title = body.Title
	task.Description = body.Description
	task.DueDate = body.DueDate
	task.ContactID = body.ContactID
	task.DealID = body.DealID
	if body.Type != "" {
		task.Type = body.Type
	}
	if body.Priority != "" {
		task.Priority = body.Priority
	}
	if body.IsCompleted != nil && *body.IsCompleted != task.IsCompleted {
		task.IsCompleted = *body.IsCompleted
		if task.IsCompleted {
			now := time.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	if err := db.DB.Save(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
	user, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task
	if err := db.DB.First(&task, taskID).Error; err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	if err := rbac.CheckAccess(task.AssignedTo, user); err != nil {
		respondEntityError(ctx, err, "Task not found")
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
