package handlers

import (
	"net/url"

	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler exposes the message ledger to admins
type ContactHandler struct {
	ledger *services.ContactLedger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(ledger *services.ContactLedger) *ContactHandler {
	return &ContactHandler{ledger: ledger}
}

// History returns a contact's messages oldest first
// @Summary Contact message history
// @Tags Contacts
// @Produce json
// @Security BearerAuth
// @Param externalId path string true "Channel address, URL-encoded (e.g. whatsapp%3A%2B15550001)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /contacts/{externalId}/messages [get]
func (h *ContactHandler) History(c *fiber.Ctx) error {
	externalID, err := url.PathUnescape(c.Params("externalId"))
	if err != nil {
		return response.BadRequest(c, "Invalid contact id")
	}

	messages, err := h.ledger.History(c.UserContext(), externalID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "", fiber.Map{
		"external_id": externalID,
		"messages":    messages,
	})
}
