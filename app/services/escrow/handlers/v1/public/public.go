// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/escrow/business/web/errs"
	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/ardanlabs/escrow/foundation/events"
	"github.com/ardanlabs/escrow/foundation/nameservice"
	"github.com/ardanlabs/escrow/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of escrow endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the escrow.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the escrow or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction applies a transaction signed by a participant's wallet.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx journal.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "sig:nonce", signedTx, "op", signedTx.Op, "account", signedTx.Account, "amount", signedTx.Amount, "end", signedTx.End)

	from, err := h.State.SubmitTransaction(signedTx)
	if err != nil {
		if from == "" {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return errs.FromEscrow(err)
	}

	resp := struct {
		Status   string `json:"status"`
		From     string `json:"from"`
		Sequence uint64 `json:"sequence"`
	}{
		Status:   "applied",
		From:     from.String(),
		Sequence: h.State.RetrieveLastMoment().Sequence,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Account returns the asset position and nonce of a participant.
func (h Handlers) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	a, err := h.account(r)
	if err != nil {
		return err
	}

	bal := h.State.RetrieveAssetBalance(a)
	allowance := h.State.RetrieveAllowance(a, h.State.RetrieveEscrowAccount())

	resp := info{
		Account:   a.String(),
		Name:      h.NS.Lookup(a),
		Balance:   bal.Dec(),
		Allowance: allowance.Dec(),
		Nonce:     h.State.RetrieveNonce(a),
		Blocked:   h.State.IsBlocked(a),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the voting weight of a participant, now or at the past
// sequence given by the seq query parameter.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	a, err := h.account(r)
	if err != nil {
		return err
	}

	seq, past, err := sequence(r)
	if err != nil {
		return err
	}

	resp := balance{
		Account: a.String(),
		Name:    h.NS.Lookup(a),
	}

	if !past {
		bal := h.State.BalanceOf(a)
		resp.Balance = bal.Dec()
		resp.Sequence = h.State.RetrieveNow().Sequence
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	bal, err := h.State.BalanceOfAt(a, seq)
	if err != nil {
		return errs.FromEscrow(err)
	}
	resp.Balance = bal.Dec()
	resp.Sequence = seq

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Supply returns the total voting weight, now or at the past sequence given
// by the seq query parameter.
func (h Handlers) Supply(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	seq, past, err := sequence(r)
	if err != nil {
		return err
	}

	if !past {
		total := h.State.TotalSupply()
		resp := supply{
			Supply:   total.Dec(),
			Sequence: h.State.RetrieveNow().Sequence,
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	total, err := h.State.TotalSupplyAt(seq)
	if err != nil {
		return errs.FromEscrow(err)
	}
	resp := supply{
		Supply:   total.Dec(),
		Sequence: seq,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Locked returns the lock held by a participant.
func (h Handlers) Locked(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	a, err := h.account(r)
	if err != nil {
		return err
	}

	penalty := h.State.Penalty(a)
	resp := toLocked(a.String(), h.NS.Lookup(a), h.State.Locked(a), penalty.Dec())

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Locks returns every lock held in the escrow.
func (h Handlers) Locks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	locks := h.State.RetrieveLocks()

	resp := make([]locked, 0, len(locks))
	for a, lb := range locks {
		penalty := h.State.Penalty(a)
		resp = append(resp, toLocked(a.String(), h.NS.Lookup(a), lb, penalty.Dec()))
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// GlobalPoint returns a point of the global history. The epoch may be
// "latest".
func (h Handlers) GlobalPoint(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	last := h.State.GlobalEpoch()

	epoch, err := epochParam(r, last)
	if err != nil {
		return err
	}
	if epoch > last {
		return errs.NewTrusted(fmt.Errorf("epoch %d not recorded, latest %d", epoch, last), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toPoint(epoch, h.State.PointHistory(epoch)), http.StatusOK)
}

// UserPoint returns a point of a participant's history. The epoch may be
// "latest".
func (h Handlers) UserPoint(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	a, err := h.account(r)
	if err != nil {
		return err
	}

	last := h.State.UserPointEpoch(a)

	epoch, err := epochParam(r, last)
	if err != nil {
		return err
	}
	if epoch > last {
		return errs.NewTrusted(fmt.Errorf("epoch %d not recorded for %s, latest %d", epoch, a, last), http.StatusNotFound)
	}

	return web.Respond(ctx, w, toPoint(epoch, h.State.UserPointHistory(a, epoch)), http.StatusOK)
}

// Status returns the current state of the escrow.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	params := h.State.RetrieveParams()
	last := h.State.RetrieveLastMoment()
	totalLocked := h.State.RetrieveTotalLocked()
	totalSupply := h.State.TotalSupply()
	pool := h.State.RetrievePenaltyAccumulated()
	maxPenalty := h.State.RetrieveMaxPenalty()

	blocked := h.State.RetrieveBlocked()
	blockedAccounts := make([]string, len(blocked))
	for i, a := range blocked {
		blockedAccounts[i] = a.String()
	}

	resp := status{
		ChainID:        gen.ChainID,
		Escrow:         h.State.RetrieveEscrowAccount().String(),
		Admin:          h.State.RetrieveAdmin().String(),
		Recipient:      h.State.RetrievePenaltyRecipient().String(),
		LastSequence:   last.Sequence,
		LastTimestamp:  last.Timestamp,
		GlobalEpoch:    h.State.GlobalEpoch(),
		TotalLocked:    totalLocked.Dec(),
		TotalSupply:    totalSupply.Dec(),
		Holders:        h.State.RetrieveHolders(),
		PenaltyPool:    pool.Dec(),
		MaxPenalty:     maxPenalty.Dec(),
		MaxTime:        params.MaxTime,
		Epoch:          params.Epoch,
		BlockedAccount: blockedAccounts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// account reads the account parameter, accepting a name known to the name
// service in place of the hex form.
func (h Handlers) account(r *http.Request) (account.Account, error) {
	param := web.Param(r, "account")

	if h.NS != nil {
		if a, exists := h.NS.Resolve(param); exists {
			return a, nil
		}
	}

	a, err := account.ToAccount(param)
	if err != nil {
		return "", errs.NewTrusted(err, http.StatusBadRequest)
	}
	return a, nil
}

// sequence reads the optional seq query parameter.
func sequence(r *http.Request) (uint64, bool, error) {
	str := r.URL.Query().Get("seq")
	if str == "" {
		return 0, false, nil
	}

	seq, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, false, errs.NewTrusted(fmt.Errorf("seq %q: %w", str, err), http.StatusBadRequest)
	}
	return seq, true, nil
}

// epochParam reads the epoch parameter, where latest resolves to last.
func epochParam(r *http.Request, last uint64) (uint64, error) {
	str := web.Param(r, "epoch")
	if str == "latest" || str == "" {
		return last, nil
	}

	epoch, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("epoch %q: %w", str, err), http.StatusBadRequest)
	}
	return epoch, nil
}
