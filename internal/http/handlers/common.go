package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/bidgate-backend/internal/domain/gate"
	"github.com/yungbote/bidgate-backend/internal/http/response"
	"github.com/yungbote/bidgate-backend/internal/platform/ctxutil"
)

func rfpID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondBadRequest(c, fmt.Errorf("invalid rfp id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) gate.Actor {
	a, _ := ctxutil.GetActor(c.Request.Context())
	return a
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondBadRequest(c, err)
		return false
	}
	return true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
