package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"economy/domain/entities"

	log "github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/rest/httpx"
)

const (
	apiKeyHeader   = "X-API-Key"
	hashPrefix     = "sha256:"
	errNotFound    = "not_found"
	errInsufficient = "insufficient_funds"
	errBadRequest  = "bad_request"
	errAuth        = "unauthorized"
)

// KeyVerifier checks raw API keys against salted hashes
type KeyVerifier struct {
	salt   string
	hashes []string
}

// NewKeyVerifier creates a verifier for hashes of the form sha256:<hex>
func NewKeyVerifier(salt string, approved []string) *KeyVerifier {
	v := &KeyVerifier{salt: salt}
	for _, h := range approved {
		h = strings.TrimSpace(h)
		if h != "" {
			v.hashes = append(v.hashes, h)
		}
	}
	return v
}

// HashKey returns the stored form of a raw key
func HashKey(salt, raw string) string {
	sum := sha256.Sum256([]byte(salt + raw))
	return hashPrefix + hex.EncodeToString(sum[:])
}

// Verify reports whether raw matches an approved hash. Every hash is compared.
func (v *KeyVerifier) Verify(raw string) bool {
	if v == nil || raw == "" {
		return false
	}
	candidate := []byte(HashKey(v.salt, raw))
	match := 0
	for _, h := range v.hashes {
		match |= subtle.ConstantTimeCompare(candidate, []byte(h))
	}
	return match == 1
}

type ChargeReq struct {
	ID     int64 `json:"id"`
	Amount int64 `json:"amount"`
}

type ChargeResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) charge(w http.ResponseWriter, r *http.Request) {
	if !s.keys.Verify(r.Header.Get(apiKeyHeader)) {
		httpx.WriteJson(w, http.StatusUnauthorized, &ChargeResp{Error: errAuth})
		return
	}

	var req ChargeReq
	if err := httpx.ParseJsonBody(r, &req); err != nil || req.Amount <= 0 {
		httpx.WriteJson(w, http.StatusBadRequest, &ChargeResp{Error: errBadRequest})
		return
	}

	balance, err := s.coins.Charge(r.Context(), req.ID, req.Amount)
	switch {
	case err == nil:
		log.WithFields(log.Fields{
			"userID":  req.ID,
			"amount":  req.Amount,
			"balance": balance,
		}).Info("Charge accepted")
		httpx.OkJson(w, &ChargeResp{OK: true})
	case entities.IsNotFound(err):
		httpx.OkJson(w, &ChargeResp{Error: errNotFound})
	case entities.IsInsufficientFunds(err):
		httpx.OkJson(w, &ChargeResp{Error: errInsufficient})
	case entities.IsValidation(err):
		httpx.WriteJson(w, http.StatusBadRequest, &ChargeResp{Error: errBadRequest})
	default:
		log.WithError(err).WithField("userID", req.ID).Error("Charge failed")
		httpx.WriteJson(w, http.StatusInternalServerError, &ChargeResp{Error: "internal_error"})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httpx.OkJson(w, &ChargeResp{OK: true})
}
