package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 16

// Error codes returned in the "code" field of error bodies.
const (
	codeUnauthorized      = "UNAUTHORIZED"
	codeForbidden         = "FORBIDDEN"
	codeInvalidBody       = "INVALID_BODY"
	codeInvalidDate       = "INVALID_DATE"
	codeMissingDate       = "MISSING_DATE"
	codeInvalidTZ         = "INVALID_TZ"
	codeInvalidLimit      = "INVALID_LIMIT"
	codeInvalidMoves      = "INVALID_MOVES"
	codeTooManyMoves      = "TOO_MANY_MOVES"
	codeLedgerFail        = "LEDGER_FAIL"
	codeInsufficientFunds = "INSUFFICIENT_FUNDS"
	codeUnknownTier       = "UNKNOWN_TIER"
	codeEmptyCatalog      = "EMPTY_CATALOG"
	codeInvalidPick       = "INVALID_PICK"
	codeMissingTeam       = "MISSING_TEAM"
	codeMissingGameID     = "MISSING_GAME_ID"
	codeInvalidGameID     = "INVALID_GAME_ID"
	codeInvalidID         = "INVALID_ID"
	codeNotFound          = "NOT_FOUND"
	codeUpstreamFail      = "UPSTREAM_FAIL"
	codeInternal          = "INTERNAL"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeInternal logs err and answers 500 without leaking it.
func writeInternal(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.WithError(err).WithFields(log.Fields{
		"path": r.URL.Path,
		"code": code,
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, code, "internal error")
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// writeBodyError answers a decodeJSON failure. A body that is not valid JSON is
// a 500; an empty body or a well-formed body of the wrong shape is a 400 with code.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error, code, msg string) {
	var syn *json.SyntaxError
	if errors.As(err, &syn) || errors.Is(err, io.ErrUnexpectedEOF) {
		writeInternal(w, r, codeInternal, err)
		return
	}
	writeError(w, http.StatusBadRequest, code, msg)
}

// queryInt parses an optional integer query parameter and clamps it into [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return min(max(n, lo), hi), nil
}
