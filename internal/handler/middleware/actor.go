package middleware

import (
	"net/http"

	"packtrack/internal/handler/httperr"
	"packtrack/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorIDHeader identifies the employee performing the request. Terminals
// authenticate upstream; the API only needs a stable id for audit trails.
const ActorIDHeader = "X-Actor-ID"

const actorContextKey = "actor_id"

var errMissingActor = errs.New("missing or malformed actor id")

// RequireActor rejects requests that do not carry a parseable actor id.
// Applied to every mutating route group.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ActorIDHeader)
		actorID, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor,
				"X-Actor-ID header is required and must be a UUID", nil)
			return
		}
		c.Set(actorContextKey, actorID)
		c.Next()
	}
}

func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
