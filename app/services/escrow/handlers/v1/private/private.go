// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ardanlabs/escrow/business/web/errs"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ardanlabs/escrow/foundation/escrow/state"
	"github.com/ardanlabs/escrow/foundation/nameservice"
	"github.com/ardanlabs/escrow/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// SubmitAdminTransaction applies a transaction signed by the escrow admin.
// Only administrative operations are accepted here.
func (h Handlers) SubmitAdminTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var signedTx journal.SignedTx
	if err := web.Decode(r, &signedTx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if !signedTx.IsAdmin() {
		return errs.NewTrusted(fmt.Errorf("operation %q is not administrative", signedTx.Op), http.StatusBadRequest)
	}

	h.Log.Infow("submit admin tx", "traceid", v.TraceID, "sig:nonce", signedTx, "op", signedTx.Op, "account", signedTx.Account)

	from, err := h.State.SubmitTransaction(signedTx)
	if err != nil {
		if from == "" {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return errs.FromEscrow(err)
	}

	resp := struct {
		Status string `json:"status"`
		Admin  string `json:"admin"`
	}{
		Status: "applied",
		Admin:  h.NS.Lookup(from),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// JournalByRange returns the journal entries applied between the from and
// to sequence numbers. Either value may be "latest".
func (h Handlers) JournalByRange(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLastMoment().Sequence

	from, err := seqParam(r, "from", latest)
	if err != nil {
		return err
	}
	to, err := seqParam(r, "to", latest)
	if err != nil {
		return err
	}

	if from > to {
		return errs.NewTrusted(errors.New("from is greater than to"), http.StatusBadRequest)
	}

	entries, err := h.State.RetrieveEntries(from, to)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, entries, http.StatusOK)
}

func seqParam(r *http.Request, name string, latest uint64) (uint64, error) {
	str := web.Param(r, name)
	if str == "latest" || str == "" {
		return latest, nil
	}

	seq, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("%s %q: %w", name, str, err), http.StatusBadRequest)
	}
	return seq, nil
}
