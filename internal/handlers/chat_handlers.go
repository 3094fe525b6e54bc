package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"control_center_echo/internal/chat"
	"control_center_echo/internal/middleware"
	"control_center_echo/internal/models"
	"control_center_echo/internal/services"
	"control_center_echo/web/templates/shared"
)

// BlankMessageReply answers an empty chat message.
const BlankMessageReply = "Please type a message so I can help you."

// errAssistantUnavailable is returned by the in-process transport when no
// assistant is configured.
var errAssistantUnavailable = errors.New("assistant is not configured")

// ChatHandler serves the chat API and the shell's chat widget.
type ChatHandler struct {
	assistant services.Assistant
	activity  services.ActivityLog
}

// NewChatHandler creates a new ChatHandler. A nil assistant makes the API
// answer 503.
func NewChatHandler(assistant services.Assistant, activity services.ActivityLog) *ChatHandler {
	if activity == nil {
		activity = services.NopActivityLog{}
	}
	return &ChatHandler{assistant: assistant, activity: activity}
}

// ChatAPI handles POST /chat.
func (h *ChatHandler) ChatAPI(c echo.Context) error {
	var req chat.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return c.JSON(http.StatusOK, chat.Response{Reply: BlankMessageReply})
	}

	if h.assistant == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The assistant is not configured")
	}

	reply, err := h.reply(c.Request().Context(), subjectOf(c), message)
	if err != nil {
		log.WithError(err).Error("Assistant request failed")
		return echo.NewHTTPError(http.StatusBadGateway, "The assistant could not answer right now")
	}
	return c.JSON(http.StatusOK, chat.Response{Reply: reply})
}

// WidgetMessage handles the widget form post. It drives a chat.Widget with
// an in-process transport and returns the new transcript lines.
func (h *ChatHandler) WidgetMessage(c echo.Context) error {
	subject := subjectOf(c)
	transport := chat.TransportFunc(func(ctx context.Context, message string) (string, error) {
		if h.assistant == nil {
			return "", errAssistantUnavailable
		}
		return h.reply(ctx, subject, message)
	})

	transcript := chat.NewTranscript()
	widget := chat.NewWidget(transport, transcript)
	if !widget.Send(c.Request().Context(), c.FormValue("message")) {
		log.Debug("Ignoring blank chat message")
	}

	enabled, label := transcript.SendControl()
	return render(c, http.StatusOK, shared.ChatFragment(transcript.Messages(), enabled, label))
}

// reply asks the assistant and records the exchange.
func (h *ChatHandler) reply(ctx context.Context, subject, message string) (string, error) {
	reply, err := h.assistant.Reply(ctx, message)

	exchange := models.ChatExchange{
		Subject: subject,
		Message: message,
		Reply:   reply,
		Failed:  err != nil,
	}
	if recErr := h.activity.RecordChat(ctx, exchange); recErr != nil {
		log.WithError(recErr).Warn("Failed to record chat exchange")
	}

	return reply, err
}

func subjectOf(c echo.Context) string {
	if sess := middleware.SessionFromContext(c); sess != nil {
		return sess.Subject
	}
	return ""
}
