package controller

import (
	"encoding/json"
	"io"

	"stackwise_backend/internal/model"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/service"
	"stackwise_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EngineController 处理目标引擎的API请求

type EngineController struct {
	EngineService *service.EngineService
	StateRepo     *repository.EngineStateRepository
}

func NewEngineController(engineService *service.EngineService, stateRepo *repository.EngineStateRepository) *EngineController {
	return &EngineController{EngineService: engineService, StateRepo: stateRepo}
}

// @Summary 触发同步周期
// @Description 手动触发一次引擎同步周期，时间间隔不足时为幂等空操作
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/sync [post]
func (c *EngineController) Sync(ctx *gin.Context) {
	if err := c.EngineService.RunSyncCycle(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"synced": true})
}

// ActionEventRequest 用户动作事件
type ActionEventRequest struct {
	Date     string `json:"date" binding:"required"`
	ActionID string `json:"actionId" binding:"required"`
	NewTime  string `json:"newTime"` // HH:MM，仅 reschedule 需要
}

// @Summary 完成动作
// @Description 把某日期的一个计划动作记为完成，未知ID为空操作
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param event body ActionEventRequest true "动作事件"
// @Success 200 {object} util.Response
// @Router /api/engine/actions/complete [post]
func (c *EngineController) CompleteAction(ctx *gin.Context) {
	var req ActionEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.EngineService.MarkActionCompleted(req.Date, req.ActionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// @Summary 开始动作
// @Description 记录某个计划动作的实际开始时间
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param event body ActionEventRequest true "动作事件"
// @Success 200 {object} util.Response
// @Router /api/engine/actions/start [post]
func (c *EngineController) StartAction(ctx *gin.Context) {
	var req ActionEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EngineService.MarkActionStarted(req.Date, req.ActionID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"started": true})
}

// @Summary 改期动作
// @Description 把某个计划动作移动到当天新的开始时刻
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param event body ActionEventRequest true "动作事件"
// @Success 200 {object} util.Response
// @Router /api/engine/actions/reschedule [post]
func (c *EngineController) RescheduleAction(ctx *gin.Context) {
	var req ActionEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.NewTime == "" {
		util.BadRequest(ctx, "newTime is required")
		return
	}

	if err := c.EngineService.RescheduleAction(req.Date, req.ActionID, req.NewTime); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"rescheduled": true})
}

// MoodRequest 当日心情
type MoodRequest struct {
	Date string `json:"date" binding:"required"`
	Mood string `json:"mood" binding:"required"`
}

// @Summary 记录心情
// @Description 记录某天的学习心情，供摘要聚合
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param mood body MoodRequest true "心情"
// @Success 200 {object} util.Response
// @Router /api/engine/mood [post]
func (c *EngineController) SetMood(ctx *gin.Context) {
	var req MoodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.EngineService.SetMood(req.Date, req.Mood); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"recorded": true})
}

// @Summary 获取目标
// @Description 获取今天或指定日期的每日目标
// @Tags 目标引擎
// @Produce json
// @Param date query string false "日期 YYYY-MM-DD，缺省为今天"
// @Success 200 {object} util.Response
// @Router /api/engine/goals [get]
func (c *EngineController) GetGoal(ctx *gin.Context) {
	date := ctx.Query("date")

	var goal *model.DailyGoal
	var err error
	if date == "" {
		goal, err = c.EngineService.TodayGoal()
	} else {
		if _, perr := util.ParseDate(date); perr != nil {
			util.BadRequest(ctx, "invalid date, expected YYYY-MM-DD")
			return
		}
		goal, err = c.EngineService.GoalForDate(date)
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if goal == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, goal)
}

// @Summary 获取排期
// @Description 获取某日期的时段分配
// @Tags 目标引擎
// @Produce json
// @Param date query string false "日期 YYYY-MM-DD，缺省为今天"
// @Success 200 {object} util.Response
// @Router /api/engine/schedule [get]
func (c *EngineController) GetSchedule(ctx *gin.Context) {
	date := ctx.Query("date")
	if date == "" {
		date = util.DateOf(c.EngineService.Clock.Now())
	} else if _, err := util.ParseDate(date); err != nil {
		util.BadRequest(ctx, "invalid date, expected YYYY-MM-DD")
		return
	}

	plan, err := c.EngineService.PlanForDate(date)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if plan == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, plan)
}

// @Summary 获取指标
// @Description 获取最近一次重算的引擎指标
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/metrics [get]
func (c *EngineController) GetMetrics(ctx *gin.Context) {
	metrics, err := c.EngineService.CurrentMetrics()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, metrics)
}

// @Summary 获取预测
// @Description 获取各领域的完成预测
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/forecast [get]
func (c *EngineController) GetForecast(ctx *gin.Context) {
	forecast, err := c.EngineService.CurrentForecast()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if forecast == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, forecast)
}

// @Summary 获取摘要
// @Description 按时间窗口生成学习摘要
// @Tags 目标引擎
// @Produce json
// @Param timeframe query string false "daily / weekly / monthly，缺省 weekly"
// @Success 200 {object} util.Response
// @Router /api/engine/digest [get]
func (c *EngineController) GetDigest(ctx *gin.Context) {
	timeframe := model.Timeframe(ctx.DefaultQuery("timeframe", string(model.TimeframeWeekly)))
	if !timeframe.Valid() {
		util.BadRequest(ctx, "invalid timeframe")
		return
	}

	digest, err := c.EngineService.BuildDigest(timeframe)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, digest)
}

// @Summary 获取记忆
// @Description 获取引擎挖掘出的长期行为记忆
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/memory [get]
func (c *EngineController) GetMemory(ctx *gin.Context) {
	memory, err := c.EngineService.MemorySnapshot()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, memory)
}

// @Summary 获取小组件数据
// @Description 获取展示端小组件的图表与状态数据
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/widget [get]
func (c *EngineController) GetWidget(ctx *gin.Context) {
	payload, err := c.EngineService.BuildWidgetPayload()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, payload)
}

// @Summary 获取引擎配置
// @Description 获取当前引擎旋钮设置
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/config [get]
func (c *EngineController) GetConfig(ctx *gin.Context) {
	cfg, err := c.EngineService.GetConfig()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cfg)
}

// @Summary 更新引擎配置
// @Description 更新引擎旋钮；手动选择模式会在两天内压过自动切换
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param config body service.UpdateConfigRequest true "配置改动"
// @Success 200 {object} util.Response
// @Router /api/engine/config [put]
func (c *EngineController) UpdateConfig(ctx *gin.Context) {
	var req service.UpdateConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cfg, err := c.EngineService.UpdateConfig(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, cfg)
}

// @Summary 导出引擎状态
// @Description 导出带版本戳的全量引擎状态文档
// @Tags 目标引擎
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/engine/export [get]
func (c *EngineController) Export(ctx *gin.Context) {
	doc, err := c.StateRepo.Export()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"key":     doc.Key,
		"version": doc.Version,
		"state":   json.RawMessage(doc.State),
	})
}

// ImportRequest 全量状态导入
type ImportRequest struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state" binding:"required"`
}

// @Summary 导入引擎状态
// @Description 用导入文档整体替换当前引擎状态
// @Tags 目标引擎
// @Accept json
// @Produce json
// @Param document body ImportRequest true "状态文档"
// @Success 200 {object} util.Response
// @Router /api/engine/import [post]
func (c *EngineController) Import(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var req ImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if len(req.State) == 0 {
		util.BadRequest(ctx, "state is required")
		return
	}
	if req.Version > model.StateVersion {
		util.BadRequest(ctx, "unsupported state version")
		return
	}

	if err := c.StateRepo.Import(req.State); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"imported": true})
}
