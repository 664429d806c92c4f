package domain

import (
	"github.com/yungbote/tickethub-backend/internal/domain/ticket"
	"github.com/yungbote/tickethub-backend/internal/domain/user"
)

type User = user.User
type UserSummary = user.Summary
type Role = user.Role

const (
	RoleAdmin = user.RoleAdmin
	RoleStaff = user.RoleStaff
)

type Ticket = ticket.Ticket
type TicketSummary = ticket.Summary
type TicketStatus = ticket.Status
type TicketPriority = ticket.Priority
type Activity = ticket.Activity
type TicketReportRow = ticket.ReportRow

const (
	TicketStatusOpen       = ticket.StatusOpen
	TicketStatusInProgress = ticket.StatusInProgress
	TicketStatusResolved   = ticket.StatusResolved
	TicketStatusClosed     = ticket.StatusClosed

	TicketPriorityLow    = ticket.PriorityLow
	TicketPriorityMedium = ticket.PriorityMedium
	TicketPriorityHigh   = ticket.PriorityHigh
	TicketPriorityUrgent = ticket.PriorityUrgent
)

const (
	ActionCreated         = ticket.ActionCreated
	ActionAssigned        = ticket.ActionAssigned
	ActionUnassigned      = ticket.ActionUnassigned
	ActionStatusChanged   = ticket.ActionStatusChanged
	ActionPriorityChanged = ticket.ActionPriorityChanged
	ActionUpdated         = ticket.ActionUpdated
)

var (
	ParseRole           = user.ParseRole
	ParseTicketStatus   = ticket.ParseStatus
	ParseTicketPriority = ticket.ParsePriority
)

var (
	TicketStatuses   = ticket.Statuses
	TicketPriorities = ticket.Priorities
)
