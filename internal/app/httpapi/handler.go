// Package httpapi exposes the public REST surface.
package httpapi

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/R3E-Network/light_api/internal/app/domain/wallet"
	"github.com/R3E-Network/light_api/internal/app/storage"
	"github.com/R3E-Network/light_api/internal/errors"
	"github.com/R3E-Network/light_api/internal/gas"
	"github.com/R3E-Network/light_api/internal/httputil"
	"github.com/R3E-Network/light_api/internal/logging"
	"github.com/R3E-Network/light_api/internal/metrics"
)

// RootBanner is the body of GET /.
const RootBanner = "api.light.so"

// GasEstimator produces fee estimates for a chain.
type GasEstimator interface {
	Estimate(ctx context.Context, chainID uint64) (*gas.GasEstimation, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Paymasters storage.PaymasterStore
	Wallets    storage.WalletStore
	DB         storage.Pinger
	Gas        GasEstimator
	Logger     *logging.Logger
	StartedAt  time.Time
}

type handler struct {
	deps     Deps
	validate *validator.Validate
}

type paymasterQuery struct {
	ID string `validate:"required"`
}

type walletQuery struct {
	Address string `validate:"required,eth_addr"`
}

type gasQuery struct {
	ChainID string `validate:"required,numeric"`
}

// NewRouter registers every route on a fresh gorilla/mux router.
func NewRouter(deps Deps) *mux.Router {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}
	h := &handler{deps: deps, validate: validator.New()}

	r := mux.NewRouter()
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/check", h.check).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/paymaster/get", h.getPaymaster).Methods(http.MethodGet)
	r.HandleFunc("/wallet/get", h.getWallet).Methods(http.MethodGet)
	r.HandleFunc("/gas/estimation", h.gasEstimation).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	registerDocs(r)

	r.NotFoundHandler = http.HandlerFunc(httputil.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		httputil.WriteServiceError(w, req, errors.MethodNotAllowed(req.Method))
	})
	return r
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RootBanner))
}

func (h *handler) check(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getPaymaster(w http.ResponseWriter, r *http.Request) {
	q := paymasterQuery{ID: r.URL.Query().Get("id")}
	if err := h.validate.Struct(q); err != nil {
		h.writeValidationError(w, r, "id", err)
		return
	}

	pm, err := h.deps.Paymasters.GetPaymaster(r.Context(), q.ID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			httputil.WriteServiceError(w, r, errors.PaymasterNotFound(q.ID))
			return
		}
		h.writeInternal(w, r, "paymaster lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pm.Public())
}

func (h *handler) getWallet(w http.ResponseWriter, r *http.Request) {
	q := walletQuery{Address: strings.TrimSpace(r.URL.Query().Get("address"))}
	if err := h.validate.Struct(q); err != nil {
		h.writeValidationError(w, r, "address", err)
		return
	}
	address, ok := wallet.NormalizeAddress(q.Address)
	if !ok {
		httputil.WriteServiceError(w, r, errors.InvalidInput("address", "eth_addr"))
		return
	}

	wl, err := h.deps.Wallets.GetWallet(r.Context(), address)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			httputil.WriteServiceError(w, r, errors.WalletNotFound(address))
			return
		}
		h.writeInternal(w, r, "wallet lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wl.Public())
}

func (h *handler) gasEstimation(w http.ResponseWriter, r *http.Request) {
	q := gasQuery{ChainID: r.URL.Query().Get("chain_id")}
	if err := h.validate.Struct(q); err != nil {
		h.writeValidationError(w, r, "chain_id", err)
		return
	}
	chainID, err := strconv.ParseUint(q.ChainID, 10, 64)
	if err != nil {
		httputil.WriteServiceError(w, r, errors.InvalidInput("chain_id", "must be an unsigned 64-bit integer"))
		return
	}

	est, err := h.deps.Gas.Estimate(r.Context(), chainID)
	if err != nil {
		var reqErr *gas.RequestError
		switch {
		case stderrors.Is(err, gas.ErrUnsupportedChain):
			httputil.WriteServiceError(w, r, errors.UnsupportedChain(chainID, err).
				WithDetails("supported", gas.SupportedChains()))
		case stderrors.As(err, &reqErr):
			h.deps.Logger.WithContext(r.Context()).WithError(err).Warn("gas provider request failed")
			httputil.WriteServiceError(w, r, errors.Upstream("Gas provider request failed", err).
				WithDetails("chain_id", chainID))
		default:
			h.writeInternal(w, r, "gas estimation failed", err)
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, est)
}

func (h *handler) writeValidationError(w http.ResponseWriter, r *http.Request, field string, err error) {
	reason := "invalid"
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		reason = verrs[0].Tag()
	}
	httputil.WriteServiceError(w, r, errors.InvalidInput(field, reason))
}

func (h *handler) writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.deps.Logger.WithContext(r.Context()).WithError(err).Error(msg)
	httputil.WriteServiceError(w, r, errors.Internal("Internal server error", err))
}
