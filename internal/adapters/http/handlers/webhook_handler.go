package handlers

import (
	"stockdesk/internal/config"
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// WebhookHandler receives inbound chat messages from Twilio
type WebhookHandler struct {
	ledger     *services.ContactLedger
	validator  *client.RequestValidator
	webhookURL string
	log        *zap.Logger
}

// NewWebhookHandler creates a new webhook handler. Without an auth token
// signatures are not checked.
func NewWebhookHandler(ledger *services.ContactLedger, cfg *config.Config, log *zap.Logger) *WebhookHandler {
	h := &WebhookHandler{
		ledger:     ledger,
		webhookURL: cfg.Twilio.WebhookURL,
		log:        log.Named("webhook"),
	}
	if cfg.Twilio.AuthToken != "" {
		v := client.NewRequestValidator(cfg.Twilio.AuthToken)
		h.validator = &v
	} else {
		h.log.Warn("TWILIO_AUTH_TOKEN not set, webhook signatures are not verified")
	}
	return h
}

// Twilio records the inbound message, computes the reply, records it and
// answers with TwiML
// @Summary Twilio messaging webhook
// @Tags Webhooks
// @Accept x-www-form-urlencoded
// @Produce xml
// @Param From formData string true "Sender address"
// @Param Body formData string false "Message text"
// @Success 200 {string} string "TwiML"
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /webhooks/twilio [post]
func (h *WebhookHandler) Twilio(c *fiber.Ctx) error {
	params := formParams(c)

	if h.validator != nil {
		if !h.validator.Validate(h.requestURL(c), params, c.Get(twilioSignatureHeader)) {
			h.log.Warn("rejected webhook with bad signature", zap.String("ip", c.IP()))
			return response.Forbidden(c, "Invalid signature")
		}
	}

	from := params["From"]
	if from == "" {
		return response.BadRequest(c, "From is required")
	}

	reply, err := h.ledger.Exchange(c.UserContext(), from, params["Body"])
	if err != nil {
		h.log.Error("record exchange", zap.String("from", from), zap.Error(err))
		return response.FromError(c, err)
	}

	doc, err := twiml.Messages([]twiml.Element{&twiml.MessagingMessage{Body: reply}})
	if err != nil {
		h.log.Error("build twiml", zap.Error(err))
		return response.InternalServerError(c, "Internal server error")
	}

	c.Set(fiber.HeaderContentType, "text/xml; charset=utf-8")
	return c.SendString(doc)
}

// requestURL is the URL Twilio signed. Behind a proxy the public URL has to
// come from config.
func (h *WebhookHandler) requestURL(c *fiber.Ctx) string {
	if h.webhookURL != "" {
		return h.webhookURL
	}
	return c.BaseURL() + c.OriginalURL()
}

func formParams(c *fiber.Ctx) map[string]string {
	params := make(map[string]string)
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}
