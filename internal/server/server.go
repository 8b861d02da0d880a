package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/kpi/internal/application"
	"github.com/smallbiznis/kpi/internal/asset"
	assetdomain "github.com/smallbiznis/kpi/internal/asset/domain"
	"github.com/smallbiznis/kpi/internal/audit"
	auditdomain "github.com/smallbiznis/kpi/internal/audit/domain"
	"github.com/smallbiznis/kpi/internal/auth"
	authdomain "github.com/smallbiznis/kpi/internal/auth/domain"
	"github.com/smallbiznis/kpi/internal/authentication"
	"github.com/smallbiznis/kpi/internal/authorization"
	"github.com/smallbiznis/kpi/internal/collection"
	collectiondomain "github.com/smallbiznis/kpi/internal/collection/domain"
	"github.com/smallbiznis/kpi/internal/config"
	"github.com/smallbiznis/kpi/internal/observability"
	obsmiddleware "github.com/smallbiznis/kpi/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/kpi/internal/observability/metrics"
	obstracing "github.com/smallbiznis/kpi/internal/observability/tracing"
	"github.com/smallbiznis/kpi/internal/onetimekey"
	onetimekeydomain "github.com/smallbiznis/kpi/internal/onetimekey/domain"
	"github.com/smallbiznis/kpi/internal/ratelimit"
	"github.com/smallbiznis/kpi/internal/serializer"
	"github.com/smallbiznis/kpi/internal/tag"
	tagdomain "github.com/smallbiznis/kpi/internal/tag/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	application.Module,
	onetimekey.Module,
	audit.Module,
	authentication.Module,
	authorization.Module,
	ratelimit.Module,
	tag.Module,
	collection.Module,
	asset.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware(cfg.TokenKeyword))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, cfg)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Engine(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			s.log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	authn         *authentication.Set
	authzSvc      authorization.Service
	userSvc       authdomain.Service
	oneTimeKeySvc onetimekeydomain.Service
	assetSvc      assetdomain.Service
	collectionSvc collectiondomain.Service
	tagSvc        tagdomain.Service
	auditSvc      auditdomain.Service
	redeemLimiter *ratelimit.RedemptionLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Authn         *authentication.Set
	AuthzSvc      authorization.Service
	UserSvc       authdomain.Service
	OneTimeKeySvc onetimekeydomain.Service
	AssetSvc      assetdomain.Service
	CollectionSvc collectiondomain.Service
	TagSvc        tagdomain.Service
	AuditSvc      auditdomain.Service
	RedeemLimiter *ratelimit.RedemptionLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics          `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		authn:         p.Authn,
		authzSvc:      p.AuthzSvc,
		userSvc:       p.UserSvc,
		oneTimeKeySvc: p.OneTimeKeySvc,
		assetSvc:      p.AssetSvc,
		collectionSvc: p.CollectionSvc,
		tagSvc:        p.TagSvc,
		auditSvc:      p.AuditSvc,
		redeemLimiter: p.RedeemLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerRootRoutes()
	svc.registerResourceRoutes()
	svc.registerUserRoutes()
	svc.registerApplicationRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRootRoutes() {
	s.engine.GET("/", s.Authenticate(s.authn.Optional), s.APIRoot)
	s.engine.POST(serializer.PathRedeemOneTimeKey, s.RedeemOneTimeKey)
}

func (s *Server) registerResourceRoutes() {
	assets := s.engine.Group(serializer.PathAssets, s.Authenticate(s.authn.User))
	{
		assets.GET("", s.Authorize(authorization.ObjectSurveyAsset, authorization.ActionList), s.ListAssets)
		assets.POST("", s.Authorize(authorization.ObjectSurveyAsset, authorization.ActionCreate), s.CreateAsset)
		assets.GET("/:uid/", s.Authorize(authorization.ObjectSurveyAsset, authorization.ActionRetrieve), s.GetAsset)
		assets.PUT("/:uid/", s.Authorize(authorization.ObjectSurveyAsset, authorization.ActionUpdate), s.ReplaceAsset)
		assets.PATCH("/:uid/", s.Authorize(authorization.ObjectSurveyAsset, authorization.ActionUpdate), s.PatchAsset)
	}

	collections := s.engine.Group(serializer.PathCollections, s.Authenticate(s.authn.User))
	{
		collections.GET("", s.Authorize(authorization.ObjectCollection, authorization.ActionList), s.ListCollections)
		collections.POST("", s.Authorize(authorization.ObjectCollection, authorization.ActionCreate), s.CreateCollection)
		collections.GET("/:uid/", s.Authorize(authorization.ObjectCollection, authorization.ActionRetrieve), s.GetCollection)
		collections.PUT("/:uid/", s.Authorize(authorization.ObjectCollection, authorization.ActionUpdate), s.ReplaceCollection)
		collections.PATCH("/:uid/", s.Authorize(authorization.ObjectCollection, authorization.ActionUpdate), s.PatchCollection)
	}

	tags := s.engine.Group(serializer.PathTags, s.Authenticate(s.authn.User))
	{
		tags.GET("", s.Authorize(authorization.ObjectTag, authorization.ActionList), s.ListTags)
		tags.GET("/:name/", s.Authorize(authorization.ObjectTag, authorization.ActionRetrieve), s.GetTag)
	}
}

func (s *Server) registerUserRoutes() {
	s.engine.GET(serializer.PathUsers, s.ListUsers)
	s.engine.GET(serializer.PathUsers+":username/",
		s.Authenticate(s.authn.Staff),
		s.Authorize(authorization.ObjectUser, authorization.ActionRetrieve),
		s.GetUser,
	)

	accounts := s.engine.Group(serializer.PathUserAccounts, s.Authenticate(s.authn.Staff))
	{
		accounts.POST("", s.Authorize(authorization.ObjectUserAccount, authorization.ActionCreate), s.CreateUserAccount)
		accounts.GET("/:username/", s.Authorize(authorization.ObjectUserAccount, authorization.ActionRetrieve), s.GetUserAccount)
		accounts.PUT("/:username/", s.Authorize(authorization.ObjectUserAccount, authorization.ActionUpdate), s.ReplaceUserAccount)
		accounts.PATCH("/:username/", s.Authorize(authorization.ObjectUserAccount, authorization.ActionUpdate), s.PatchUserAccount)
	}
}

func (s *Server) registerApplicationRoutes() {
	s.engine.POST(serializer.PathAppUsers,
		s.Authenticate(s.authn.Application),
		s.Authorize(authorization.ObjectUserAccount, authorization.ActionCreate),
		s.CreateApplicationUser,
	)
	s.engine.POST(serializer.PathAppOneTimeKeys,
		s.Authenticate(s.authn.Application),
		s.Authorize(authorization.ObjectOneTimeKey, authorization.ActionCreate),
		s.IssueOneTimeKey,
	)
}
