package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/sabbir-tanvir/storefront/backend"
	"github.com/sabbir-tanvir/storefront/cache"
	"github.com/sabbir-tanvir/storefront/feeds"
	"github.com/sabbir-tanvir/storefront/internal/auth"
	appmw "github.com/sabbir-tanvir/storefront/internal/http/middleware"
)

const (
	sessAccessToken  = "access_token"
	sessRefreshToken = "refresh_token"

	// FeedProducts and FeedShops name the feeds the server expects
	FeedProducts = "products"
	FeedShops    = "shops"
)

type Server struct {
	Router  *chi.Mux
	Sess    *scs.SessionManager
	Backend *backend.Client
	Feeds   *feeds.Registry
	Logger  zerolog.Logger
	Now     func() time.Time
}

type ServerOptions struct {
	Sess    *scs.SessionManager
	Backend *backend.Client
	Feeds   *feeds.Registry
	Logger  zerolog.Logger
	Now     func() time.Time // defaults to time.Now
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Sess: opts.Sess, Backend: opts.Backend, Feeds: opts.Feeds, Logger: opts.Logger, Now: opts.Now}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Feeds == nil {
		s.Feeds = feeds.NewRegistry()
	}

	r.Use(s.sessionToContext)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Post("/auth/otp/request", s.handleOTPRequest)
	r.Post("/auth/otp/verify", s.handleOTPVerify)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/products", s.handleProducts)

		ar.Get("/feeds", s.handleFeedList)
		ar.Get("/feeds/{name}", s.handleFeed)
		ar.Get("/feeds/{name}/peek", s.handleFeedPeek)

		ar.Get("/shops", s.handleShops)
		ar.Get("/shops/{shopID}", s.handleShop)
		ar.Get("/shops/{shopID}/products", s.handleShopProducts)

		ar.Group(func(pr chi.Router) {
			pr.Use(appmw.RequireAuth)
			pr.Post("/orders", s.handlePlaceOrder)
			pr.Get("/orders", s.handleOrders)
			pr.Get("/transactions/{kind}", s.handleTransactions)
			pr.With(appmw.RequireShopOwner).Get("/dashboard", s.handleDashboard)
			pr.With(appmw.RequireShopOwner).Post("/feeds/{name}/invalidate", s.handleFeedInvalidate)
		})
	})

	return s
}

// Handler wraps the router with request logging and session loading.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.Router)
	if s.Sess != nil {
		h = s.Sess.LoadAndSave(h)
	}
	h = hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("took", dur).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	return hlog.NewHandler(s.Logger)(h)
}

// sessionToContext turns the session's access token into a principal.
// Expired or unreadable tokens are dropped from the session.
func (s *Server) sessionToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		if tok := s.Sess.GetString(ctx, sessAccessToken); tok != "" {
			claims, err := auth.Parse(tok, s.Now())
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("dropping session token")
				s.Sess.Remove(ctx, sessAccessToken)
				s.Sess.Remove(ctx, sessRefreshToken)
			} else {
				r = r.WithContext(appmw.WithPrincipal(ctx, appmw.Principal{Token: tok, Claims: claims}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// client returns the backend client acting for the request's principal.
func (s *Server) client(r *http.Request) *backend.Client {
	if p, ok := appmw.PrincipalFrom(r.Context()); ok {
		return s.Backend.WithToken(r.Context(), p.Token)
	}
	return s.Backend
}

func (s *Server) startSession(ctx context.Context, t backend.Tokens) (auth.Claims, error) {
	claims, err := auth.Parse(t.Access, s.Now())
	if err != nil {
		return auth.Claims{}, err
	}
	if err := s.Sess.RenewToken(ctx); err != nil {
		return auth.Claims{}, err
	}
	s.Sess.Put(ctx, sessAccessToken, t.Access)
	if t.Refresh != "" {
		s.Sess.Put(ctx, sessRefreshToken, t.Refresh)
	}
	return claims, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// backendError maps a failed backend call onto the response. Rejected
// credentials end the session.
func (s *Server) backendError(w http.ResponseWriter, r *http.Request, err error) {
	log := hlog.FromRequest(r)

	if errors.Is(err, backend.ErrNoToken) || backend.IsUnauthorized(err) {
		if s.Sess != nil {
			if derr := s.Sess.Destroy(r.Context()); derr != nil {
				log.Error().Err(derr).Msg("destroy session")
			}
		}
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		log.Info().Err(err).Msg("backend rejected request")
		writeError(w, r, apiErr.Status, apiErr.Message())
		return
	}

	log.Warn().Err(err).Msg("backend request failed")
	writeError(w, r, http.StatusBadGateway, "backend unavailable")
}

// listParams reads ?limit= and ?force=. An absent or negative limit means no
// limit.
func listParams(r *http.Request) (limit int, force bool, err error) {
	limit = cache.NoLimit
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, false, errors.New("limit must be an integer")
		}
		if limit < 0 {
			limit = cache.NoLimit
		}
	}
	if v := q.Get("force"); v != "" {
		if force, err = strconv.ParseBool(v); err != nil {
			return 0, false, errors.New("force must be a boolean")
		}
	}
	return limit, force, nil
}

func pageParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive integer")
	}
	return page, nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
