package repository

import (
	"github.com/featherpanel/panelstore/internal/database"
	"github.com/featherpanel/panelstore/internal/models"
	"github.com/featherpanel/panelstore/internal/utils"
)

// Repositories groups the repository of every stored entity
type Repositories struct {
	ChatMessages  ChatMessageRepository
	Locations     LocationRepository
	MailQueue     MailQueueRepository
	OidcProviders OidcProviderRepository
	Realms        RealmRepository
}

// NewRepositories creates every repository over one pool
func NewRepositories(db *database.Pool, sealer *utils.Sealer) *Repositories {
	return &Repositories{
		ChatMessages:  NewChatMessageRepository(db),
		Locations:     NewLocationRepository(db),
		MailQueue:     NewMailQueueRepository(db),
		OidcProviders: NewOidcProviderRepository(db, sealer),
		Realms:        NewRealmRepository(db),
	}
}

// All returns the repositories in entity name order
func (r *Repositories) All() []EntityRepository {
	return []EntityRepository{r.ChatMessages, r.Locations, r.MailQueue, r.OidcProviders, r.Realms}
}

// ForEntity resolves an entity name as accepted by models.LookupDescriptor
func (r *Repositories) ForEntity(name string) (EntityRepository, error) {
	desc, err := models.LookupDescriptor(name)
	if err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}
	for _, repo := range r.All() {
		if repo.Descriptor().Name == desc.Name {
			return repo, nil
		}
	}
	return nil, utils.NewBadRequestError("no repository for entity " + desc.Name)
}
