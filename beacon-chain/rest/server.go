// Package rest exposes the minimal validator-facing HTTP surface over the
// beacon chain coordinator, routed with gorilla/mux the way the teacher's
// beacon-chain/gateway binds its JSON routes.
package rest

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethprotolabs/beaconchain/beacon-chain/blockchain"
	beacontypes "github.com/ethprotolabs/beaconchain/beacon-chain/types"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "rest")

// Server is the HTTP boundary wrapping a coordinator.
type Server struct {
	chain  *blockchain.Service
	router *mux.Router
}

// NewServer builds a Server with every route registered.
func NewServer(chain *blockchain.Service) *Server {
	s := &Server{chain: chain, router: mux.NewRouter()}
	s.routes()
	return s
}

// Handler returns the server's http.Handler for use with http.Serve.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/node/genesis_time", s.genesisTime).Methods(http.MethodGet)
	r.HandleFunc("/node/version", s.version).Methods(http.MethodGet)
	r.HandleFunc("/node/syncing", s.syncing).Methods(http.MethodGet)
	r.HandleFunc("/beacon/state", s.beaconState).Methods(http.MethodGet)
	r.HandleFunc("/beacon/state_root", s.stateRoot).Methods(http.MethodGet)
	r.HandleFunc("/validator/duties", s.duties).Methods(http.MethodGet)
	r.HandleFunc("/validator/block", s.produceBlock).Methods(http.MethodGet)
	r.HandleFunc("/validator/block", s.publishBlock).Methods(http.MethodPost)
	r.HandleFunc("/validator/attestation", s.produceAttestation).Methods(http.MethodGet)
	r.HandleFunc("/validator/attestation", s.publishAttestation).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Could not encode response")
	}
}

func (s *Server) genesisTime(w http.ResponseWriter, r *http.Request) {
	st := s.chain.HeadState()
	if st == nil {
		http.Error(w, "no head state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]uint64{"genesis_time": st.GenesisTime})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": "beaconchain/unstable"})
}

func (s *Server) syncing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"syncing": false})
}

func (s *Server) beaconState(w http.ResponseWriter, r *http.Request) {
	st := s.chain.HeadState()
	if st == nil {
		http.Error(w, "no head state", http.StatusInternalServerError)
		return
	}
	writeJSON(w, st)
}

func (s *Server) stateRoot(w http.ResponseWriter, r *http.Request) {
	st := s.chain.HeadState()
	if st == nil {
		http.Error(w, "no head state", http.StatusInternalServerError)
		return
	}
	root, err := st.HashTreeRoot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"state_root": hex.EncodeToString(root[:])})
}

func (s *Server) duties(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not implemented", http.StatusNotImplemented)
}

func (s *Server) produceBlock(w http.ResponseWriter, r *http.Request) {
	slot, err := parseSlot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	block, err := s.chain.ProduceBlock(r.Context(), slot, 0, [96]byte{}, [32]byte{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, block)
}

func (s *Server) publishBlock(w http.ResponseWriter, r *http.Request) {
	var signed beacontypes.SignedBeaconBlock
	if err := json.NewDecoder(r.Body).Decode(&signed); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	outcome, err := s.chain.ReceiveBlock(r.Context(), &signed)
	switch outcome {
	case blockchain.Processed, blockchain.BlockIsAlreadyKnown:
		writeJSON(w, map[string]string{"outcome": outcome.String()})
	case blockchain.ParentUnknown, blockchain.FutureSlot:
		httpErr(w, err, outcome, http.StatusAccepted)
	default:
		httpErr(w, err, outcome, http.StatusBadRequest)
	}
}

func httpErr(w http.ResponseWriter, err error, outcome blockchain.BlockProcessingOutcome, status int) {
	msg := outcome.String()
	if err != nil {
		msg = err.Error()
	}
	http.Error(w, msg, status)
}

func (s *Server) produceAttestation(w http.ResponseWriter, r *http.Request) {
	slot, err := parseSlot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := s.chain.ProduceAttestationData(slot, 0)
	if errors.Is(err, blockchain.ErrAttestationSlotOutOfRange) || errors.Is(err, blockchain.ErrAttestationSlotInvalid) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func (s *Server) publishAttestation(w http.ResponseWriter, r *http.Request) {
	var att beacontypes.Attestation
	if err := json.NewDecoder(r.Body).Decode(&att); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.chain.ReceiveAttestation(r.Context(), &att); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func parseSlot(r *http.Request) (beacontypes.Slot, error) {
	raw := r.URL.Query().Get("slot")
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return beacontypes.Slot(v), nil
}
