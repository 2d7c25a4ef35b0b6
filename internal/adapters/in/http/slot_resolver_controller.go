package http

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/booking-slots-resolver/internal/config"
	"github.com/suchimauz/booking-slots-resolver/internal/core/json_types"
	"github.com/suchimauz/booking-slots-resolver/internal/core/ports/in"
)

type SlotResolverController struct {
	useCase in.SlotResolverUseCase
	cfg     *config.Config
}

func NewSlotResolverController(useCase in.SlotResolverUseCase, cfg *config.Config) *SlotResolverController {
	return &SlotResolverController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *SlotResolverController) RegisterRoutes(router *gin.Engine) {
	// Публичная страница бронирования работает без авторизации,
	// резолвер раскрывает только свободные окна
	public := router.Group("/api/v1/public")
	{
		public.GET("/slots/:tutorId", c.resolveSlots)
	}

	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/slots/:tutorId", c.resolveSlots)
		api.POST("/slots/batch", c.resolveBatchSlots)
	}
}

type ResolveBatchSlotsRequest struct {
	TutorID  uuid.UUID `json:"tutorId" binding:"required"`
	Dates    []string  `json:"dates" binding:"required,min=1"`
	Duration int       `json:"duration"`
}

func (c *SlotResolverController) resolveSlots(ctx *gin.Context) {
	tutorID, err := uuid.Parse(ctx.Param("tutorId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tutor ID format"})
		return
	}

	date, err := json_types.ParseDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	// Длительность опциональна, 0 означает минимальную длительность тьютора
	durationMinutes := 0
	if durationParam := ctx.Query("duration"); durationParam != "" {
		durationMinutes, err = strconv.Atoi(durationParam)
		if err != nil || durationMinutes < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration format"})
			return
		}
	}

	slots, debugInfo, err := c.useCase.ResolveAvailableSlots(ctx.Request.Context(), tutorID, date, durationMinutes)
	if err != nil {
		// Оба чтения занятости не удались - результат неизвестен,
		// клиенту следует повторить запрос
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"tutorId": tutorID,
		"date":    date.String(),
		"slots":   slots,
	}
	if ctx.Query("debug") == "true" {
		response["debug"] = debugInfo
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *SlotResolverController) resolveBatchSlots(ctx *gin.Context) {
	var req ResolveBatchSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dates := make([]json_types.Date, 0, len(req.Dates))
	for _, dateStr := range req.Dates {
		date, err := json_types.ParseDate(dateStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format: " + dateStr})
			return
		}
		dates = append(dates, date)
	}

	result, err := c.useCase.ResolveBatchSlots(ctx.Request.Context(), req.TutorID, dates, req.Duration)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tutorId": req.TutorID,
		"results": result,
	})
}

func (c *SlotResolverController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
