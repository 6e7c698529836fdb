package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/xtding233/football-gacha/internal/catalog"
	"github.com/xtding233/football-gacha/internal/gacha"
	"github.com/xtding233/football-gacha/internal/pricing"
	"github.com/xtding233/football-gacha/internal/wallet"
)

type api struct {
	log      *zap.Logger
	engine   *gacha.Engine
	registry *gacha.Registry
	cards    *catalog.Catalog
	wallet   *wallet.Memory // nil when draws are free
	packs    pricing.Catalog
}

func (a *api) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/draw", a.handleDraw)
		r.Post("/draw10", a.handleDrawTen)
		r.Get("/pity", a.handlePity)
		r.Get("/banners", a.handleBanners)
		r.Get("/price", a.handlePrice)
		r.Get("/simulate", a.handleSimulate)
		if a.wallet != nil {
			r.Post("/wallet/credit", a.handleCredit)
			r.Get("/wallet", a.handleBalance)
		}
	})
	return r
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.Info("request",
			zap.String("id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the engine taxonomy onto HTTP statuses.
func (a *api) writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gacha.ErrUnknownBanner):
		status = http.StatusNotFound
	case errors.Is(err, wallet.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, gacha.ErrStorage), errors.Is(err, gacha.ErrRNG):
		status = http.StatusServiceUnavailable
	case errors.Is(err, gacha.ErrEmptyTierPool):
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		a.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errResp{Error: err.Error()})
}

// drawParams pulls player and banner ids out of the query.
func drawParams(r *http.Request) (player, banner string, ok bool) {
	player = r.URL.Query().Get("player")
	banner = r.URL.Query().Get("banner")
	return player, banner, player != "" && banner != ""
}

func (a *api) handleDraw(w http.ResponseWriter, r *http.Request) {
	player, banner, ok := drawParams(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "player and banner are required"})
		return
	}
	res, err := a.engine.DrawSingle(r.Context(), player, banner)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *api) handleDrawTen(w http.ResponseWriter, r *http.Request) {
	player, banner, ok := drawParams(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "player and banner are required"})
		return
	}
	res, err := a.engine.DrawTen(r.Context(), player, banner)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type pityResp struct {
	Count     int `json:"count"`
	Remaining int `json:"remaining"`
}

func (a *api) handlePity(w http.ResponseWriter, r *http.Request) {
	player, banner, ok := drawParams(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "player and banner are required"})
		return
	}
	count, err := a.engine.PityCounter(r.Context(), player, banner)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	remaining, err := a.engine.PityRemaining(r.Context(), player, banner)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pityResp{Count: count, Remaining: remaining})
}

type bannerInfo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PityThreshold  int     `json:"pity_threshold"`
	GuaranteedTier int     `json:"guaranteed_tier"`
	BatchTier      int     `json:"batch_tier"`
	CostPerDraw    int     `json:"cost_per_draw"`
	CostPerTen     int     `json:"cost_per_ten"`
	PickupRate     float64 `json:"pickup_rate,omitempty"`
}

func (a *api) handleBanners(w http.ResponseWriter, _ *http.Request) {
	var out []bannerInfo
	for _, id := range a.registry.IDs() {
		b, ok := a.registry.Get(id)
		if !ok {
			continue
		}
		out = append(out, bannerInfo{
			ID:             b.ID,
			Name:           b.Name,
			PityThreshold:  b.PityThreshold,
			GuaranteedTier: int(b.GuaranteedTier),
			BatchTier:      int(b.BatchGuaranteeTier),
			CostPerDraw:    b.CostPerDraw,
			CostPerTen:     b.TenCost(),
			PickupRate:     b.PickupRate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePrice answers "cheapest packs to afford N draws on a banner".
func (a *api) handlePrice(w http.ResponseWriter, r *http.Request) {
	bannerID := r.URL.Query().Get("banner")
	b, ok := a.registry.Get(bannerID)
	if !ok {
		a.writeErr(w, gacha.ErrUnknownBanner)
		return
	}
	draws, err := strconv.Atoi(r.URL.Query().Get("draws"))
	if err != nil || draws <= 0 {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "draws must be a positive integer"})
		return
	}
	cost := wallet.Cost{PerDraw: b.CostPerDraw, PerTen: b.TenCost()}
	coins := cost.ForDraws(draws)
	firstTime := r.URL.Query().Get("first_time") == "true"
	var first pricing.FirstTimeState
	if firstTime {
		first = pricing.FirstTimeState{}
		for _, p := range a.packs.Packs {
			first[p.ID] = p.FirstTimeX2
		}
	}
	plan := pricing.MinCostAtLeastCoins(a.packs, coins, first)
	writeJSON(w, http.StatusOK, struct {
		CoinsNeeded int          `json:"coins_needed"`
		Plan        pricing.Plan `json:"plan"`
	}{CoinsNeeded: coins, Plan: plan})
}

// handleSimulate runs a Monte Carlo over a banner, for tuning tables.
func (a *api) handleSimulate(w http.ResponseWriter, r *http.Request) {
	bannerID := r.URL.Query().Get("banner")
	b, ok := a.registry.Get(bannerID)
	if !ok {
		a.writeErr(w, gacha.ErrUnknownBanner)
		return
	}
	q := r.URL.Query()
	target := int(b.GuaranteedTier)
	if s := q.Get("target"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid target"})
			return
		}
		target = v
	}
	tier, err := gacha.ParseRarity(target)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: err.Error()})
		return
	}
	trials := 10000
	if s := q.Get("trials"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > 1_000_000 {
			writeJSON(w, http.StatusBadRequest, errResp{Error: "trials must be in 1..1000000"})
			return
		}
		trials = v
	}
	var seed uint64 = 1
	if s := q.Get("seed"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid seed"})
			return
		}
		seed = v
	}
	stats, err := gacha.RunMonteCarlo(gacha.SimParams{
		Banner:     b,
		Cards:      a.cards,
		TargetTier: tier,
		Seed:       seed,
	}, gacha.GoalFirstAtLeast, trials, nil)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) handleCredit(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	amount, err := strconv.Atoi(r.URL.Query().Get("amount"))
	if player == "" || err != nil || amount <= 0 {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "player and positive amount are required"})
		return
	}
	a.wallet.Credit(player, amount)
	writeJSON(w, http.StatusOK, struct {
		Balance int `json:"balance"`
	}{Balance: a.wallet.Balance(player)})
}

func (a *api) handleBalance(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "player is required"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Balance int `json:"balance"`
	}{Balance: a.wallet.Balance(player)})
}
