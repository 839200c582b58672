package httpgin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tix-events/internal/domain"
	redisrepo "github.com/kirinyoku/tix-events/internal/repository/redis"
	"github.com/kirinyoku/tix-events/internal/service/lifecycle"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const idemLockTTL = 30 * time.Second

// IdempotencyStore is satisfied by *redisrepo.IdempotencyStore.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, lockTTL time.Duration) (redisrepo.Claim, error)
	Complete(ctx context.Context, key, payload string) error
	Abandon(ctx context.Context, key string) error
}

// Deps are the collaborators of the HTTP layer. Only Events is required.
type Deps struct {
	Events      *lifecycle.Service
	Verifier    TokenVerifier
	Idempotency IdempotencyStore
	Limiter     RateLimiter
	// Ready reports storage health for /healthz.
	Ready func(ctx context.Context) error
}

func NewRouter(deps Deps, logger *slog.Logger, middlewares ...gin.HandlerFunc) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS(), AuthMiddleware(deps.Verifier, logger))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", handleHealth(deps.Ready))

	api := r.Group("/api")
	api.GET("/auth/whoami", handleWhoAmI())

	events := api.Group("/events")
	{
		events.GET("", handleListVisible(deps.Events))
		events.GET("/upcoming", handleListUpcoming(deps.Events))
		events.GET("/date/:date", handleListByDate(deps.Events))
		events.GET("/owner/:ownerId", handleListByOwner(deps.Events))
		events.GET("/location/:location", handleListByLocation(deps.Events))
		events.GET("/:id", handleGetEvent(deps.Events))
	}

	writes := events.Group("", RateLimitMiddleware(deps.Limiter, logger))
	{
		writes.POST("", handleCreateEvent(deps.Events, deps.Idempotency))
		writes.PUT("/:id", handleUpdateEvent(deps.Events))
		writes.DELETE("/:id", handleDeleteEvent(deps.Events))
		writes.PATCH("/:id/publish", handlePublish(deps.Events))
		writes.PATCH("/:id/cancel", handleCancel(deps.Events))
		writes.PATCH("/:id/complete", handleComplete(deps.Events))
	}

	return r, nil
}

// @Summary  Liveness and storage readiness
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  map[string]string
// @Router   /healthz [get]
func handleHealth(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// @Summary  Describe the bearer of the request token
// @Security BearerAuth
// @Success  200  {object}  WhoAmIResponse
// @Router   /api/auth/whoami [get]
func handleWhoAmI() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := callerFrom(c)

		resp := WhoAmIResponse{
			Authenticated: caller.Authenticated(),
			Organizer:     caller.IsOrganizer(),
		}
		if caller.Authenticated() {
			resp.SubjectID = caller.ID.String()
			resp.Role = caller.Role
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  List events visible to the caller
// @Security BearerAuth
// @Success  200  {array}  domain.Event
// @Router   /api/events [get]
func handleListVisible(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svc.ListVisible(c.Request.Context(), callerFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, events, cacheList)
	}
}

// @Summary  List visible events dated after now
// @Security BearerAuth
// @Success  200  {array}  domain.Event
// @Router   /api/events/upcoming [get]
func handleListUpcoming(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svc.ListUpcoming(c.Request.Context(), callerFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, events, cacheList)
	}
}

// @Summary  List events starting exactly at midnight UTC of a date
// @Param    date  path  string  true  "Date (YYYY-MM-DD)"
// @Success  200  {array}   domain.Event
// @Failure  400  {object}  ErrorResponse
// @Router   /api/events/date/{date} [get]
func handleListByDate(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, err := time.Parse(time.DateOnly, c.Param("date"))
		if err != nil {
			badRequest(c, "invalid date (YYYY-MM-DD)")
			return
		}

		events, err := svc.ListByDate(c.Request.Context(), date)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, events, cacheList)
	}
}

// @Summary  List events of an owner, any status
// @Param    ownerId  path  string  true  "Owner ID (uuid)"
// @Success  200  {array}   domain.Event
// @Failure  400  {object}  ErrorResponse
// @Router   /api/events/owner/{ownerId} [get]
func handleListByOwner(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseUUIDParam(c, "ownerId")
		if !ok {
			return
		}

		events, err := svc.ListByOwner(c.Request.Context(), ownerID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, events, cacheList)
	}
}

// @Summary  List visible events at a location
// @Param    location  path  string  true  "Location"
// @Success  200  {array}   domain.Event
// @Router   /api/events/location/{location} [get]
func handleListByLocation(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svc.ListByLocation(c.Request.Context(), callerFrom(c), c.Param("location"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, events, cacheList)
	}
}

// @Summary  Get event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id} [get]
func handleGetEvent(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		e, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithETag(c, http.StatusOK, e, cacheEvent)
	}
}

// @Summary  Create a draft event (idempotent)
// @Security BearerAuth
// @Param    req  body  CreateEventRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  domain.Event
// @Failure  400  {object}  ErrorResponse
// @Failure  401  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "idempotency key in progress"
// @Failure  429  {object}  ErrorResponse
// @Router   /api/events [post]
func handleCreateEvent(svc *lifecycle.Service, idem IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindingMessage(err))
			return
		}

		in, err := req.toInput()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		caller := callerFrom(c)
		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var storageKey string
		if idem != nil && idemKey != "" && caller.IsOrganizer() {
			storageKey = redisrepo.KeyIdemCreateEvent(caller.ID, idemKey)

			claim, err := idem.Claim(ctx, storageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}

			switch claim.State {
			case redisrepo.ClaimDone:
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(claim.Payload))
				return
			case redisrepo.ClaimPending:
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		e, err := svc.Create(ctx, caller, in)
		if err != nil {
			if storageKey != "" {
				_ = idem.Abandon(ctx, storageKey)
			}
			respondErr(c, err)
			return
		}

		if storageKey != "" {
			b, _ := json.Marshal(e)
			_ = idem.Complete(ctx, storageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, e)
	}
}

// @Summary  Update a non-published event
// @Security BearerAuth
// @Param    id   path  string              true  "Event ID (uuid)"
// @Param    req  body  UpdateEventRequest  true  "fields to overwrite"
// @Success  200  {object}  domain.Event
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id} [put]
func handleUpdateEvent(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindingMessage(err))
			return
		}

		in, err := req.toInput()
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		e, err := svc.Update(c.Request.Context(), callerFrom(c), id, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// @Summary  Delete a non-published event
// @Security BearerAuth
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  204
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id} [delete]
func handleDeleteEvent(svc *lifecycle.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svc.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type transitionFunc func(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Result[domain.EventStatus], error)

// @Summary  Publish an event at least three months ahead
// @Security BearerAuth
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  StatusResult
// @Failure  400  {object}  StatusResult  "date rejected"
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id}/publish [patch]
func handlePublish(svc *lifecycle.Service) gin.HandlerFunc {
	return handleTransition(svc.Publish)
}

// @Summary  Cancel an event
// @Security BearerAuth
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  StatusResult
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id}/cancel [patch]
func handleCancel(svc *lifecycle.Service) gin.HandlerFunc {
	return handleTransition(svc.Cancel)
}

// @Summary  Complete an event
// @Security BearerAuth
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200  {object}  StatusResult
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/events/{id}/complete [patch]
func handleComplete(svc *lifecycle.Service) gin.HandlerFunc {
	return handleTransition(svc.Complete)
}

// handleTransition renders a rejected Result as 400 with the result body.
func handleTransition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		res, err := fn(c.Request.Context(), callerFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		status := http.StatusOK
		if !res.Success {
			status = http.StatusBadRequest
		}
		c.JSON(status, toStatusResult(res))
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
