package controller

import (
	"errors"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemController 处理内容单元的API请求

type ItemController struct {
	ItemRepo *repository.ItemRepository
}

func NewItemController(itemRepo *repository.ItemRepository) *ItemController {
	return &ItemController{ItemRepo: itemRepo}
}

// CreateItemRequest 录入内容单元的请求
type CreateItemRequest struct {
	Domain          model.Domain          `json:"domain" binding:"required"`
	Title           string                `json:"title" binding:"required"`
	TopicTitle      string                `json:"topicTitle"`
	DifficultyLevel model.DifficultyLevel `json:"difficultyLevel"`
}

// @Summary 录入内容单元
// @Description 向某个领域的内容池录入一个新的可学习单元
// @Tags 内容池
// @Accept json
// @Produce json
// @Param item body CreateItemRequest true "内容单元"
// @Success 201 {object} util.Response
// @Router /api/items [post]
func (c *ItemController) Create(ctx *gin.Context) {
	var req CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !req.Domain.Valid() {
		util.BadRequest(ctx, "invalid domain")
		return
	}
	if req.DifficultyLevel == "" {
		req.DifficultyLevel = model.DifficultyMedium
	}
	if req.DifficultyLevel.Rank() == 0 {
		util.BadRequest(ctx, "invalid difficulty level")
		return
	}

	item := model.LearnableItem{
		ID:              uuid.NewString(),
		Domain:          req.Domain,
		Title:           req.Title,
		TopicTitle:      req.TopicTitle,
		DifficultyLevel: req.DifficultyLevel,
	}
	if err := c.ItemRepo.Create(&item); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// @Summary 获取内容单元列表
// @Description 获取全部内容单元，可按领域过滤
// @Tags 内容池
// @Produce json
// @Param domain query string false "领域过滤"
// @Success 200 {object} util.Response
// @Router /api/items [get]
func (c *ItemController) List(ctx *gin.Context) {
	if domainParam := ctx.Query("domain"); domainParam != "" {
		domain := model.Domain(domainParam)
		if !domain.Valid() {
			util.BadRequest(ctx, "invalid domain")
			return
		}
		items, err := c.ItemRepo.FindByDomain(domain)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, items)
		return
	}

	items, err := c.ItemRepo.FindAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// @Summary 获取内容单元
// @Description 按 ID 获取单个内容单元
// @Tags 内容池
// @Produce json
// @Param id path string true "内容单元ID"
// @Success 200 {object} util.Response
// @Router /api/items/{id} [get]
func (c *ItemController) Get(ctx *gin.Context) {
	item, err := c.ItemRepo.FindByID(ctx.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// @Summary 删除内容单元
// @Description 从内容池移除一个单元，已生成目标中的引用保持不变
// @Tags 内容池
// @Produce json
// @Param id path string true "内容单元ID"
// @Success 200 {object} util.Response
// @Router /api/items/{id} [delete]
func (c *ItemController) Delete(ctx *gin.Context) {
	if err := c.ItemRepo.Delete(ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
