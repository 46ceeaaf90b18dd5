package web

import (
	"fmt"
	"net/http"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/authentication"
	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/ratelimit"
)

var (
	wLog = log.WithFields(log.Fields{"mod": "web"})
)

const (
	APIBase   = "/api/v1"
	APIKeyHdr = "X-Api-Key"
)

type HttpServices struct {
	Ledger    *accounting.Accountant
	Auth      *authentication.Authenticator
	DayKeeper *daykeeper.DayKeeper
	Primary   *http.Server

	limiter        ratelimit.Limiter
	stakeDecimals  int32
	payoutDecimals int32
	conf           *viper.Viper
}

func NewHttpServices(conf *viper.Viper, ledger *accounting.Accountant, auth *authentication.Authenticator) *HttpServices {
	s := new(HttpServices)
	s.conf = conf
	s.Ledger = ledger
	s.Auth = auth
	s.stakeDecimals = conf.GetInt32(config.ConfigStakeDecimals)
	s.payoutDecimals = conf.GetInt32(config.ConfigPayoutDecimals)

	if rps := conf.GetInt(config.ConfigWebRateLimit); rps > 0 {
		s.limiter = ratelimit.New(rps)
	} else {
		s.limiter = ratelimit.NewUnlimited()
	}
	return s
}

func (s *HttpServices) SetDayKeeper(k *daykeeper.DayKeeper) {
	s.DayKeeper = k
}

// MiddleWare acts as a middleware for all requests to the web/api
func (s *HttpServices) MiddleWare() func(http.Handler) http.Handler {
	f := func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			s.limiter.Take()
			h.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}

	return f
}

func (s *HttpServices) InitPrimary() {
	primaryMux := http.NewServeMux()
	primaryMux.Handle(APIBase, s.APIMux())
	primaryMux.Handle("/metrics", promhttp.Handler())

	s.Primary = &http.Server{
		Handler: s.MiddleWare()(primaryMux),
		Addr:    fmt.Sprintf("0.0.0.0:%d", s.conf.GetInt(config.ConfigWebPort)),
	}
}

func (s *HttpServices) Listen() {
	wLog.Infof("Serving primary web on %s", s.Primary.Addr)
	go func() {
		if err := s.Primary.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			wLog.WithError(err).Error("web server stopped")
		}
	}()
}

func (s *HttpServices) Close() error {
	_ = s.Primary.Close()
	return nil
}
