package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/repos/ticket"
	"github.com/yungbote/tickethub-backend/internal/data/repos/user"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo

type TicketRepo = ticket.TicketRepo
type ActivityRepo = ticket.ActivityRepo

type TicketScope = ticket.Scope
type TicketListFilter = ticket.ListFilter
type TicketReportFilter = ticket.ReportFilter

var ErrEmailTaken = user.ErrEmailTaken

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewTicketRepo(db *gorm.DB, baseLog *logger.Logger) TicketRepo {
	return ticket.NewTicketRepo(db, baseLog)
}
func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return ticket.NewActivityRepo(db, baseLog)
}
