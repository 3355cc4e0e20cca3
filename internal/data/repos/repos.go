package repos

import (
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos/conversation"
	"github.com/velora-app/velora-backend/internal/data/repos/discovery"
	"github.com/velora-app/velora-backend/internal/data/repos/interaction"
	"github.com/velora-app/velora-backend/internal/data/repos/post"
	"github.com/velora-app/velora-backend/internal/data/repos/profile"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type AccountRepo = profile.AccountRepo
type AccountTokenRepo = profile.AccountTokenRepo
type ProfileRepo = profile.ProfileRepo
type BlockRepo = profile.BlockRepo
type TagRepo = profile.TagRepo
type SearchFilterRepo = profile.SearchFilterRepo

type EdgeRepo = interaction.EdgeRepo

type ConversationRepo = conversation.ConversationRepo
type ParticipantRepo = conversation.ParticipantRepo
type MessageRepo = conversation.MessageRepo

type PostRepo = post.PostRepo

type DiscoveryRepo = discovery.DiscoveryRepo
type DatingCriteria = discovery.DatingCriteria
type SocialCriteria = discovery.SocialCriteria
type GeoBox = post.Box

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	return profile.NewAccountRepo(db, baseLog)
}
func NewAccountTokenRepo(db *gorm.DB, baseLog *logger.Logger) AccountTokenRepo {
	return profile.NewAccountTokenRepo(db, baseLog)
}
func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return profile.NewProfileRepo(db, baseLog)
}
func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return profile.NewBlockRepo(db, baseLog)
}
func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return profile.NewTagRepo(db, baseLog)
}
func NewSearchFilterRepo(db *gorm.DB, baseLog *logger.Logger) SearchFilterRepo {
	return profile.NewSearchFilterRepo(db, baseLog)
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return interaction.NewEdgeRepo(db, baseLog)
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return conversation.NewConversationRepo(db, baseLog)
}
func NewParticipantRepo(db *gorm.DB, baseLog *logger.Logger) ParticipantRepo {
	return conversation.NewParticipantRepo(db, baseLog)
}
func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return conversation.NewMessageRepo(db, baseLog)
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return post.NewPostRepo(db, baseLog)
}

func NewDiscoveryRepo(db *gorm.DB, baseLog *logger.Logger) DiscoveryRepo {
	return discovery.NewDiscoveryRepo(db, baseLog)
}
