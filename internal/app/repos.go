package app

import (
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type Repos struct {
	Account      repos.AccountRepo
	AccountToken repos.AccountTokenRepo
	Profile      repos.ProfileRepo
	Block        repos.BlockRepo
	Tag          repos.TagRepo
	SearchFilter repos.SearchFilterRepo
	Edge         repos.EdgeRepo
	Conversation repos.ConversationRepo
	Participant  repos.ParticipantRepo
	Message      repos.MessageRepo
	Post         repos.PostRepo
	Discovery    repos.DiscoveryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Account:      repos.NewAccountRepo(db, log),
		AccountToken: repos.NewAccountTokenRepo(db, log),
		Profile:      repos.NewProfileRepo(db, log),
		Block:        repos.NewBlockRepo(db, log),
		Tag:          repos.NewTagRepo(db, log),
		SearchFilter: repos.NewSearchFilterRepo(db, log),
		Edge:         repos.NewEdgeRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Participant:  repos.NewParticipantRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		Post:         repos.NewPostRepo(db, log),
		Discovery:    repos.NewDiscoveryRepo(db, log),
	}
}
