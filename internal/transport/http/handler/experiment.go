package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"surveychat/internal/experiment"
	"surveychat/internal/transport/http/response"
)

type ExperimentHandler struct {
	provider *experiment.Provider
}

func NewExperimentHandler(provider *experiment.Provider) *ExperimentHandler {
	return &ExperimentHandler{provider: provider}
}

// Config returns the page variables the survey front-end injects into
// the chat widget for one participant and round.
func (h *ExperimentHandler) Config(c *gin.Context) {
	participant := c.Query("participant")
	if participant == "" {
		response.Error(c, http.StatusBadRequest, "Missing: participant")
		return
	}

	round := 1
	if raw := c.Query("round"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, http.StatusBadRequest, "invalid round")
			return
		}
		round = parsed
	}

	response.OK(c, h.provider.Vars(participant, round))
}
