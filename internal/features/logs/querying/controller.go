package logs_querying

import (
	"log/slog"
	"net/http"

	"loglens/internal/features/access"
	logs_core "loglens/internal/features/logs/core"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const jsonContentType = "application/json; charset=utf-8"

type LogQueryController struct {
	provider      logs_core.LogProvider
	accessOptions access.Options
	logger        *slog.Logger
}

func NewLogQueryController(
	provider logs_core.LogProvider,
	accessOptions access.Options,
	logger *slog.Logger,
) *LogQueryController {
	return &LogQueryController{provider, accessOptions, logger}
}

// RegisterRoutes mounts the data API under the configured route prefix
// group. The exact route registration is what gives the API precedence
// over the static asset fallback.
func (c *LogQueryController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/logs", c.FetchLogs)
}

// FetchLogs handles GET {prefix}/api/logs. It authorizes the caller,
// translates the parameter bag into a LogQuery, delegates to the
// configured provider, and serializes the result envelope. The provider
// round-trip is the only blocking operation and runs under the request
// context so a caller disconnect aborts the backend call.
func (c *LogQueryController) FetchLogs(ctx *gin.Context) {
	isLocal := access.IsLocalRequest(ctx.Request)
	identity := access.GetIdentityFromContext(ctx)

	if !access.CanAccess(isLocal, identity, c.accessOptions) {
		ctx.Data(http.StatusForbidden, jsonContentType, nil)
		return
	}

	query := ParseLogQuery(ctx.Request.URL.Query())
	queryID := uuid.New().String()

	records, total, err := c.provider.FetchLogs(ctx.Request.Context(), query)
	if err != nil {
		c.logger.Error("log query failed",
			slog.String("queryId", queryID),
			slog.String("backend", c.provider.Name()),
			slog.String("error", err.Error()))

		// Real error detail is only for local callers; remote callers get
		// a generic message to avoid leaking topology or credentials.
		message := "Internal server error"
		if isLocal {
			message = err.Error()
		}

		ctx.JSON(http.StatusInternalServerError, ErrorResponseDTO{ErrorMessage: message})
		return
	}

	if records == nil {
		records = []logs_core.LogRecord{}
	}

	ctx.JSON(http.StatusOK, LogPageDTO{
		Logs:        records,
		Total:       total,
		Count:       query.PageSize,
		CurrentPage: query.Page,
	})
}
