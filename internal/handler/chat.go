package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/relay"
)

// Replier answers one chat turn.
type Replier interface {
	Reply(ctx context.Context, req relay.ChatRequest) (string, error)
}

// ChatHandler serves POST /chat for the demo page widget.
type ChatHandler struct {
	relay  Replier
	logger *zap.Logger
}

func NewChatHandler(relay Replier, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{relay: relay, logger: logger}
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req relay.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, err)
		return
	}

	reply, err := h.relay.Reply(r.Context(), req)
	if err != nil {
		h.logger.Error("chat relay failed",
			zap.String("prototype_id", req.PrototypeID),
			zap.String("prompt", req.PromptName),
			zap.Error(err),
		)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
