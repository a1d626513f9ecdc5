package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Southwavecodes/Southwaveapp/internal/cart"
	"github.com/Southwavecodes/Southwaveapp/internal/catalog"
	"github.com/Southwavecodes/Southwaveapp/internal/checkout"
	h "github.com/Southwavecodes/Southwaveapp/internal/http"
	"github.com/Southwavecodes/Southwaveapp/internal/music"
	"github.com/Southwavecodes/Southwaveapp/internal/spotify"
	"github.com/Southwavecodes/Southwaveapp/pkg/logger"
)

type Config struct {
	HTTPPort       string
	DBPath         string
	MigrationsPath string
	RedisAddr      string
	LogLevel       string

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyArtistID     string
	SpotifyMarket       string

	StripeSecretKey      string
	StripePublishableKey string
	CheckoutSessionURL   string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "southwave.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/catalog/migrations"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyArtistID:     getEnv("SPOTIFY_ARTIST_ID", "southwave-artist-id"),
		SpotifyMarket:       getEnv("SPOTIFY_MARKET", "US"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		CheckoutSessionURL:   getEnv("CHECKOUT_SESSION_URL", "https://api.stripe.com/v1/checkout/sessions"),
		CheckoutSuccessURL:   getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/merch/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:    getEnv("CHECKOUT_CANCEL_URL", "http://localhost:8080/merch"),

		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	log := logger.New(logger.Options{Service: "southwave-app", Level: cfg.LogLevel})

	repo, err := catalog.NewRepository(cfg.DBPath)
	if err != nil {
		log.Error("failed to open catalog database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Error("failed to run catalog migrations", "error", err)
		os.Exit(1)
	}

	var musicCache music.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		musicCache = music.NewRedisCache(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set, music metadata cache disabled")
	}

	spotifyClient := spotify.NewClient(spotify.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
	})
	musicService := music.NewService(spotifyClient, musicCache, log, cfg.SpotifyArtistID, cfg.SpotifyMarket)

	cartService := cart.NewService(repo)

	sessionClient := checkout.NewSessionClient(checkout.SessionClientConfig{
		SecretKey:  cfg.StripeSecretKey,
		Endpoint:   cfg.CheckoutSessionURL,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
	})
	checkoutService := checkout.NewService(cartService, repo, sessionClient, log)

	catalogHandler := h.NewCatalogHandler(repo, cfg.RequestTimeout)
	musicHandler := h.NewMusicHandler(musicService, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"publishable_key":"` + cfg.StripePublishableKey + `"}`))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.GetProducts)
			r.Get("/featured", catalogHandler.GetFeaturedProducts)
			r.Get("/{id}", catalogHandler.GetProduct)
		})
		r.Get("/concerts", catalogHandler.GetConcerts)

		r.Route("/music", func(r chi.Router) {
			r.Get("/artist", musicHandler.GetArtist)
			r.Get("/artist/albums", musicHandler.GetAlbums)
			r.Get("/artist/top-tracks", musicHandler.GetTopTracks)
			r.Get("/albums/{id}", musicHandler.GetAlbum)
			r.Get("/search", musicHandler.SearchTracks)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{index}", cartHandler.UpdateQuantity)
			r.Delete("/items/{index}", cartHandler.RemoveLine)
			r.Delete("/", cartHandler.ClearCart)
		})

		r.Post("/checkout", checkoutHandler.InitiateCheckout)
		r.Get("/checkout/success", checkoutHandler.CheckoutSuccess)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "southwave-app"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
