package initialize

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"trove/app/controllers"
	"trove/app/db"
	jwtutil "trove/app/jwt"
	"trove/app/middleware"
	"trove/app/models"
	"trove/app/notify"
	"trove/app/oauth"
	"trove/app/repo"
	"trove/app/services"
	"trove/app/token"
	"trove/app/upload"
	"trove/config"
	"trove/global"
	"trove/router"
)

type App struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	Router http.Handler
	Auth   *services.AuthService
	Users  *services.UserService
	Items  *services.ItemService
}

func Build(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = cfg
	SetLogLevel(cfg.Log.Level)

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb
	if err := gdb.AutoMigrate(&models.User{}, &models.Item{}, &models.Like{}, &models.View{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	global.Rdb = rdb
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	photos, err := upload.NewStore(cfg.Uploads.Dir)
	if err != nil {
		return nil, err
	}

	userRepo := repo.NewUserRepository(gdb)
	itemRepo := repo.NewItemRepository(gdb)
	interactionRepo := repo.NewInteractionRepository(gdb)

	signer := &jwtutil.Signer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Exp:    time.Duration(cfg.JWT.ExpMin) * time.Minute,
	}
	blacklist := token.NewBlacklist(rdb)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTP.Enabled {
		notifier = &notify.SMTPNotifier{
			Host: cfg.SMTP.Host, Port: cfg.SMTP.Port, From: cfg.SMTP.From,
			Username: cfg.SMTP.Username, Password: cfg.SMTP.Password,
		}
	}

	authSvc := services.NewAuthService(userRepo, signer, blacklist, notifier, cfg.Lockout.Threshold)
	userSvc := services.NewUserService(userRepo, itemRepo, photos)
	itemSvc := services.NewItemService(itemRepo, interactionRepo, photos)

	providers := buildProviders(ctx, cfg)

	authCtrl := controllers.NewAuthController(authSvc)
	oauthCtrl := controllers.NewOAuthController(authSvc, providers...)
	userCtrl := controllers.NewUserController(userSvc)
	itemCtrl := controllers.NewItemController(itemSvc)
	mw := &middleware.Auth{Signer: signer, Blacklist: blacklist}

	h := router.New(authCtrl, oauthCtrl, userCtrl, itemCtrl, mw)
	h = middleware.Logging(h)

	// Tunables follow the config file while the process runs.
	config.Watch(configPath, func(next *config.Config) {
		global.Config = next
		authSvc.SetLockThreshold(next.Lockout.Threshold)
		SetLogLevel(next.Log.Level)
		global.Logger.Info().Int("lock_threshold", next.Lockout.Threshold).Msg("config reloaded")
	})

	return &App{
		Cfg: cfg, DB: gdb, Rdb: rdb, Router: h,
		Auth: authSvc, Users: userSvc, Items: itemSvc,
	}, nil
}

func buildProviders(ctx context.Context, cfg *config.Config) []oauth.Provider {
	var providers []oauth.Provider
	if gh := cfg.OAuth.GitHub; gh.ClientID != "" {
		providers = append(providers, oauth.NewGitHub(gh.ClientID, gh.ClientSecret, gh.RedirectURL))
	}
	if gg := cfg.OAuth.Google; gg.ClientID != "" {
		google, err := oauth.NewGoogle(ctx, gg.ClientID, gg.ClientSecret, gg.RedirectURL)
		if err != nil {
			global.Logger.Warn().Err(err).Msg("google oauth disabled")
		} else {
			providers = append(providers, google)
		}
	}
	return providers
}
