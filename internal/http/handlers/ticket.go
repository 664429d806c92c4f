package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tickethub-backend/internal/http/response"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
	"github.com/yungbote/tickethub-backend/internal/services"
)

type TicketHandler struct {
	log           *logger.Logger
	ticketService services.TicketService
}

func NewTicketHandler(log *logger.Logger, ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{
		log:           log.With("handler", "TicketHandler"),
		ticketService: ticketService,
	}
}

// GET /api/tickets?status=&priority=&assignedTo=&createdFrom=&createdTo=&search=&limit=&offset=
func (h *TicketHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	page, err := h.ticketService.List(c.Request.Context(), services.TicketListInput{
		Status:      c.Query("status"),
		Priority:    c.Query("priority"),
		AssignedTo:  c.Query("assignedTo"),
		CreatedFrom: c.Query("createdFrom"),
		CreatedTo:   c.Query("createdTo"),
		Search:      c.Query("search"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, page)
}

// POST /api/tickets
func (h *TicketHandler) Create(c *gin.Context) {
	var req services.CreateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, h.log, apierr.BadRequest("invalid request body"))
		return
	}
	ticket, err := h.ticketService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondCreated(c, ticket)
}

// GET /api/tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	ticket, err := h.ticketService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, ticket)
}

// PATCH /api/tickets/:id
// Omitted fields are left alone; "assignedToId": null unassigns.
func (h *TicketHandler) Update(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, h.log, apierr.BadRequest("invalid request body"))
		return
	}
	in, err := decodeTicketPatch(body)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	ticket, err := h.ticketService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, ticket)
}

// DELETE /api/tickets/:id
func (h *TicketHandler) Delete(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	if err := h.ticketService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, response.Message{Message: "Ticket deleted successfully"})
}

func decodeTicketPatch(body map[string]json.RawMessage) (services.UpdateTicketInput, error) {
	var in services.UpdateTicketInput
	str := func(key string) (*string, error) {
		raw, ok := body[key]
		if !ok || isNull(raw) {
			return nil, nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apierr.BadRequest("%s must be a string", key)
		}
		return &v, nil
	}
	var err error
	if in.Title, err = str("title"); err != nil {
		return in, err
	}
	if in.Description, err = str("description"); err != nil {
		return in, err
	}
	if in.Status, err = str("status"); err != nil {
		return in, err
	}
	if in.Priority, err = str("priority"); err != nil {
		return in, err
	}
	if _, ok := body["assignedToId"]; ok {
		in.AssignedToSet = true
		if in.AssignedToID, err = str("assignedToId"); err != nil {
			return in, err
		}
	}
	return in, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// queryInt is 0 when the parameter is absent.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.BadRequest("invalid %s", key)
	}
	return n, nil
}
