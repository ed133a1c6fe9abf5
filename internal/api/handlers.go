package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/nextbest/internal/catalog"
	"github.com/hyperengineering/nextbest/internal/games"
	"github.com/hyperengineering/nextbest/internal/metrics"
	"github.com/hyperengineering/nextbest/internal/prefs"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
	"github.com/hyperengineering/nextbest/internal/validation"
)

// Ledger is the experience ledger as seen by the API.
type Ledger interface {
	games.Ledger
	Reset()
	Ready() bool
	Snapshot() types.LedgerSnapshot
}

// StatsProvider reports storage statistics for the health endpoint.
type StatsProvider interface {
	GetStats(ctx context.Context) (*types.StoreStats, error)
}

// Deps are the domain components the handlers operate on.
// Stats is optional.
type Deps struct {
	Catalog *catalog.Catalog
	Prefs   *prefs.State
	Ledger  Ledger
	Source  rank.RandomSource
	Stats   StatsProvider
}

// Options configure the HTTP surface.
type Options struct {
	APIKey  string
	Version string
	// DevMode leaves mutating routes unauthenticated.
	DevMode bool
	// RateLimit and RateBurst guard the game routes. RateLimit <= 0 disables limiting.
	RateLimit float64
	RateBurst int
	MaxDecks  int
}

// Handler implements the API handlers
type Handler struct {
	catalog    *catalog.Catalog
	prefs      *prefs.State
	ledger     Ledger
	src        rank.RandomSource
	stats      StatsProvider
	randomizer *games.Randomizer
	swipe      *games.Swipe
	claw       *games.Claw
	limiter    *RateLimiter

	apiKey  string
	version string
	devMode bool
}

// NewHandler wires the games to the shared ledger and random source.
func NewHandler(d Deps, opts Options) *Handler {
	src := d.Source
	if src == nil {
		src = rank.DefaultSource()
	}
	h := &Handler{
		catalog:    d.Catalog,
		prefs:      d.Prefs,
		ledger:     d.Ledger,
		src:        src,
		stats:      d.Stats,
		randomizer: games.NewRandomizer(src, d.Ledger),
		swipe:      games.NewSwipe(d.Ledger, opts.MaxDecks),
		claw:       games.NewClaw(src, d.Ledger),
		apiKey:     opts.APIKey,
		version:    opts.Version,
		devMode:    opts.DevMode,
	}
	if opts.RateLimit > 0 {
		h.limiter = NewRateLimiter(opts.RateLimit, max(1, opts.RateBurst))
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeOptionalBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeOptionalBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		CatalogSize: h.catalog.Len(),
		LedgerReady: h.ledger.Ready(),
	}

	if h.stats != nil {
		stats, err := h.stats.GetStats(r.Context())
		if err != nil {
			slog.Error("health stats failed", "error", err)
			WriteProblem(w, r, http.StatusServiceUnavailable, "Storage unavailable")
			return
		}
		resp.Store = stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListCatalog handles GET /api/v1/catalog
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Items())
}

// GetItem handles GET /api/v1/catalog/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Rank handles GET /api/v1/rank. Query parameters override the stored
// preferences field by field.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	p, limit, errs := parseRankQuery(r.URL.Query(), h.prefs.Get())
	if len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", errs)
		return
	}

	writeJSON(w, http.StatusOK, types.RankResponse{
		Preferences: p,
		Items:       rank.Rank(h.catalog.Items(), p, limit),
	})
}

func parseRankQuery(q url.Values, base types.Preferences) (types.Preferences, int, []validation.ValidationError) {
	var c validation.Collector
	p := base.Clone()
	limit := rank.DefaultLimit

	if raw, ok := q["category"]; ok {
		p.Categories = []types.Category{}
		for _, v := range splitValues(raw) {
			cat := types.Category(v)
			if !cat.Valid() {
				c.Add(&validation.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", v)})
				continue
			}
			p.Categories = append(p.Categories, cat)
		}
	}

	if raw, ok := q["price"]; ok {
		p.PricePrefs = []types.PriceTier{}
		for _, v := range splitValues(raw) {
			tier, err := types.ParsePriceTier(v)
			if err != nil {
				c.Add(&validation.ValidationError{Field: "price", Message: err.Error()})
				continue
			}
			p.PricePrefs = append(p.PricePrefs, tier)
		}
	}

	if v := q.Get("max_distance_km"); v != "" {
		km, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "max_distance_km", Message: "must be a number"})
		} else {
			p.MaxDistanceKm = km
		}
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "limit", Message: "must be an integer"})
		} else {
			limit = n
		}
	}

	if c.HasErrors() {
		return p, limit, c.Errors()
	}
	return p, limit, validation.ValidatePreferences(p)
}

// splitValues flattens repeated and comma-separated query values.
func splitValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Pick handles POST /api/v1/pick
func (h *Handler) Pick(w http.ResponseWriter, r *http.Request) {
	var req types.PickRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	p := h.prefs.Get()
	if req.Preferences != nil {
		if errs := validation.ValidatePreferences(*req.Preferences); len(errs) > 0 {
			WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
			return
		}
		p = *req.Preferences
	}
	if req.Limit < 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "limit", Message: "must not be negative"},
		})
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = rank.DefaultLimit
	}

	candidates := rank.Rank(h.catalog.Items(), p, limit)
	item, err := rank.WeightedPick(h.src, candidates)
	if err != nil {
		MapError(w, r, err)
		return
	}
	metrics.Picks.WithLabelValues("pick").Inc()

	writeJSON(w, http.StatusOK, types.PickResponse{Item: item, Candidates: len(candidates)})
}

// GetPrefs handles GET /api/v1/prefs
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.prefs.Get())
}

// PutPrefs handles PUT /api/v1/prefs
func (h *Handler) PutPrefs(w http.ResponseWriter, r *http.Request) {
	var p types.Preferences
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if p.Categories == nil {
		p.Categories = []types.Category{}
	}
	if errs := validation.ValidatePreferences(p); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	if err := h.prefs.Set(p); err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.prefs.Get())
}

// PutMaxDistance handles PUT /api/v1/prefs/max-distance
func (h *Handler) PutMaxDistance(w http.ResponseWriter, r *http.Request) {
	var req types.MaxDistanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if req.MaxDistanceKm == nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
			{Field: "max_distance_km", Message: "is required"},
		})
		return
	}
	if err := validation.ValidateNonNegative("max_distance_km", *req.MaxDistanceKm); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}
	if err := h.prefs.SetMaxDistanceKm(*req.MaxDistanceKm); err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.prefs.Get())
}

// PutPricePrefs handles PUT /api/v1/prefs/prices
// Tier names and symbols are both accepted; an empty list clears the preference.
func (h *Handler) PutPricePrefs(w http.ResponseWriter, r *http.Request) {
	var req types.PricePrefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	var tiers []types.PriceTier
	if len(req.PricePrefs) > 0 {
		tiers = req.PricePrefs
	}
	if err := h.prefs.SetPricePrefs(tiers); err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.prefs.Get())
}

// ToggleCategory handles POST /api/v1/prefs/categories/{category}/toggle
func (h *Handler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	cat := types.Category(chi.URLParam(r, "category"))
	if !cat.Valid() {
		WriteProblemWithErrors(w, r, "Unknown category", []validation.ValidationError{
			{Field: "category", Message: fmt.Sprintf("unknown category %q", cat)},
		})
		return
	}
	p, err := h.prefs.ToggleCategory(cat)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Spin handles POST /api/v1/games/randomizer/spin
func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.randomizer.Spin(h.catalog.Items(), h.prefs.Get())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateDeck handles POST /api/v1/games/swipe/decks
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	deck := h.swipe.NewDeck(h.catalog.Items(), h.prefs.Get())
	writeJSON(w, http.StatusCreated, deck)
}

// GetDeck handles GET /api/v1/games/swipe/decks/{id}
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := deckID(w, r)
	if !ok {
		return
	}
	deck, err := h.swipe.Deck(id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// SwipeDeck handles POST /api/v1/games/swipe/decks/{id}/swipe
func (h *Handler) SwipeDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := deckID(w, r)
	if !ok {
		return
	}
	var req types.SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	resp, err := h.swipe.Swipe(id, req.Direction)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func deckID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if verr := validation.ValidateULID("id", id); verr != nil {
		WriteProblem(w, r, http.StatusBadRequest, verr.Error())
		return "", false
	}
	return id, true
}

// Grab handles POST /api/v1/games/claw/grab
func (h *Handler) Grab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.claw.Grab())
}

// ListPrizes handles GET /api/v1/games/claw/prizes
func (h *Handler) ListPrizes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, games.Prizes())
}

// GetXP handles GET /api/v1/xp
func (h *Handler) GetXP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Snapshot())
}

// AwardXP handles POST /api/v1/xp/award
func (h *Handler) AwardXP(w http.ResponseWriter, r *http.Request) {
	var req types.AwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if errs := validation.ValidateAwardRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	h.ledger.Award(req.Amount, req.Win)
	writeJSON(w, http.StatusOK, h.ledger.Snapshot())
}

// ResetXP handles POST /api/v1/xp/reset
func (h *Handler) ResetXP(w http.ResponseWriter, r *http.Request) {
	h.ledger.Reset()
	slog.Info("ledger reset", "component", "api", "action", "xp_reset")
	writeJSON(w, http.StatusOK, h.ledger.Snapshot())
}
