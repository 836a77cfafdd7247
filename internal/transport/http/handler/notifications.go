package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/notification"
)

// NotificationHandler sends admin ad hoc messages.
type NotificationHandler struct {
	svc notification.Service
	log *zap.Logger
}

func NewNotificationHandler(svc notification.Service, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req notification.SendRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Send(r.Context(), req); err != nil {
		httpError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Message sent", Success: true})
}
