package internal

import (
	"time"

	"bitwise74/account-api/config"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/security"

	"github.com/chenyahui/gin-cache/persist"
	"gorm.io/gorm"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Argon  *security.ArgonHash
	Users  *service.UserService
	Tokens *service.TokenService
	Images service.ImageStore

	// ImageCache holds served images, keyed by service.ImageCacheKey
	ImageCache persist.CacheStore
}

// NewDeps wires the services on top of already connected infrastructure
func NewDeps(cfg *config.Config, db *gorm.DB, argon *security.ArgonHash, mailer service.Mailer, images service.ImageStore) *Deps {
	tokens := service.NewTokenService(db, cfg.Token.Retention)

	imageCache := persist.NewMemoryStore(time.Minute)
	images = &service.CachedImageStore{ImageStore: images, Cache: imageCache}

	return &Deps{
		DB:         db,
		Config:     cfg,
		Argon:      argon,
		Tokens:     tokens,
		Images:     images,
		ImageCache: imageCache,
		Users: &service.UserService{
			DB:     db,
			Argon:  argon,
			Tokens: tokens,
			Mailer: mailer,
			Images: images,
		},
	}
}
