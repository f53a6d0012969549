package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sushihentaime/blogverse/internal/analyticsservice"
	"github.com/sushihentaime/blogverse/internal/blogservice"
	"github.com/sushihentaime/blogverse/internal/commentservice"
	"github.com/sushihentaime/blogverse/internal/common"
	"github.com/sushihentaime/blogverse/internal/mailservice"
	"github.com/sushihentaime/blogverse/internal/socialservice"
	"github.com/sushihentaime/blogverse/internal/userservice"
)

type application struct {
	config           *Config
	logger           *slog.Logger
	userService      *userservice.UserService
	blogService      *blogservice.BlogService
	commentService   *commentservice.CommentService
	socialService    *socialservice.SocialService
	analyticsService *analyticsservice.AnalyticsService
	mailService      *mailservice.MailService
	broker           *common.MessageBroker
}

func main() {
	configPath := flag.String("config", ".env", "path to the env configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens, err := userservice.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed to create the token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBMaxOpen, cfg.DBMaxIdle, cfg.DBMaxIdleFor)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupNotificationExchange(broker)
	if err != nil {
		logger.Error("failed to setup the notification exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(cfg.CacheEnabled, cfg.TTLDashboard, cfg.CacheCleanup)
	ttl := analyticsservice.TTLs{
		Dashboard:  cfg.TTLDashboard,
		Popular:    cfg.TTLPopular,
		Engagement: cfg.TTLEngagement,
		Category:   cfg.TTLCategory,
	}

	mailService, err := mailservice.NewMailService(broker, mailservice.SMTPConfig{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUser,
		Password: cfg.MailPassword,
		Sender:   cfg.MailSender,
	}, logger)
	if err != nil {
		logger.Error("failed to load the mail templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:           cfg,
		logger:           logger,
		userService:      userservice.NewUserService(db, broker, tokens, logger),
		blogService:      blogservice.NewBlogService(db),
		commentService:   commentservice.NewCommentService(db, broker, logger),
		socialService:    socialservice.NewSocialService(db, broker, logger),
		analyticsService: analyticsservice.NewAnalyticsService(db, cache, ttl, logger),
		mailService:      mailService,
		broker:           broker,
	}

	err = app.mailService.Start()
	if err != nil {
		logger.Error("failed to start the mail consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
