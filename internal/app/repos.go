package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type Repos struct {
	User     repos.UserRepo
	Ticket   repos.TicketRepo
	Activity repos.ActivityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Ticket:   repos.NewTicketRepo(db, log),
		Activity: repos.NewActivityRepo(db, log),
	}
}
